package mediacore

import "time"

// LoadedBehavior and UnloadedBehavior describe what the engine should do
// automatically once media becomes loaded/unloaded.
type Behavior uint8

const (
	BehaviorManual Behavior = iota
	BehaviorPlay
	BehaviorPause
	BehaviorStop
	BehaviorClose
)

// LowResMode mirrors the enable_low_res enumeration.
type LowResMode uint8

const (
	LowResFull LowResMode = iota
	LowResHalf
	LowResQuarter
	LowResEighth
)

// SeekIndexMode controls whether the backend builds a seek index for
// frame-accurate video seeking.
type SeekIndexMode uint8

const (
	SeekIndexExact SeekIndexMode = iota
	SeekIndexFast
)

// Options is the full recognized configuration surface of the engine.
// Every field has a documented default; construct with NewOptions and
// customize with the With* functional options below.
type Options struct {
	// Container.
	ForcedInputFormat string
	FormatOptions     map[string]string
	ProbeSize         int64
	MaxAnalyzeDuration time.Duration
	ReadTimeout        time.Duration
	GeneratePTS        bool
	EnableLowRes       LowResMode
	EnableFastDecoding bool

	// Selection.
	IsAudioDisabled    bool
	IsVideoDisabled    bool
	IsSubtitleDisabled bool
	VideoStream        int // -1 = auto
	AudioStream        int
	SubtitleStream     int
	SubtitlesDelay     Ticks
	// SubtitlePath, if non-empty, is an external SRT/ASS file loaded
	// alongside the media and preloaded into a Subtitle MediaComponent
	// (reisen exposes no subtitle demux of its own). Ignored when
	// IsSubtitleDisabled is set.
	SubtitlePath       string
	VideoForcedFPS     float64
	VideoFilter        string
	VideoHardwareDevice string
	VideoSeekIndex     SeekIndexMode

	// Controller defaults.
	Volume             float64
	Balance            float64
	SpeedRatio         float64
	IsMuted            bool
	ScrubbingEnabled   bool
	LoadedBehavior     Behavior
	UnloadedBehavior   Behavior

	// Engine tuning constants (overridable).
	MaxBlocksVideo      int
	MaxBlocksAudio      int
	MaxBlocksSubtitle   int
	RenderTickInterval  time.Duration
	LowPriorityWait     time.Duration
	BufferCacheLength   time.Duration
	DownloadCacheLengthLiveFactor int
	DownloadCacheLengthVODFactor  int
}

// NewOptions returns an Options populated with documented defaults.
func NewOptions() *Options {
	return &Options{
		FormatOptions: make(map[string]string),
		ProbeSize:     5_000_000,
		ReadTimeout:   30 * time.Second,

		VideoStream:    -1,
		AudioStream:    -1,
		SubtitleStream: -1,

		Volume:     1.0,
		Balance:    0.0,
		SpeedRatio: 1.0,

		LoadedBehavior:   BehaviorPlay,
		UnloadedBehavior: BehaviorManual,

		MaxBlocksVideo:     12,
		MaxBlocksAudio:     24,
		MaxBlocksSubtitle:  48,
		RenderTickInterval: 15 * time.Millisecond,
		LowPriorityWait:    10 * time.Millisecond,
		BufferCacheLength:  1 * time.Second,

		DownloadCacheLengthLiveFactor: 30,
		DownloadCacheLengthVODFactor:  4,
	}
}

// DownloadCacheLength returns the live or VOD download cache target,
// 30 x buffer_cache_length live, 4 x buffer_cache_length VOD.
func (o *Options) DownloadCacheLength(isLive bool) time.Duration {
	if isLive {
		return o.BufferCacheLength * time.Duration(o.DownloadCacheLengthLiveFactor)
	}
	return o.BufferCacheLength * time.Duration(o.DownloadCacheLengthVODFactor)
}

// Option mutates an Options in place, used by the functional-options
// constructors below.
type Option func(*Options)

func WithFormatOption(key, value string) Option {
	return func(o *Options) { o.FormatOptions[key] = value }
}

func WithVideoStream(index int) Option    { return func(o *Options) { o.VideoStream = index } }
func WithAudioStream(index int) Option    { return func(o *Options) { o.AudioStream = index } }
func WithSubtitleStream(index int) Option { return func(o *Options) { o.SubtitleStream = index } }

func WithAudioDisabled(disabled bool) Option {
	return func(o *Options) { o.IsAudioDisabled = disabled }
}
func WithVideoDisabled(disabled bool) Option {
	return func(o *Options) { o.IsVideoDisabled = disabled }
}
func WithSubtitleDisabled(disabled bool) Option {
	return func(o *Options) { o.IsSubtitleDisabled = disabled }
}

// WithSubtitlePath loads an external SRT/ASS subtitle file alongside the
// media, producing the Subtitle MediaComponent.
func WithSubtitlePath(path string) Option {
	return func(o *Options) { o.SubtitlePath = path }
}

func WithSpeedRatio(r float64) Option { return func(o *Options) { o.SpeedRatio = r } }
func WithVolume(v float64) Option     { return func(o *Options) { o.Volume = v } }
func WithMuted(m bool) Option         { return func(o *Options) { o.IsMuted = m } }

func WithReadTimeout(d time.Duration) Option { return func(o *Options) { o.ReadTimeout = d } }

// Apply applies each option in order.
func (o *Options) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}
