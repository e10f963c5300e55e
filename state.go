package mediacore

import "sync"

// EngineState is the full observable snapshot of an Engine:
// everything a host UI might poll or bind to. All reads/writes go through
// the accessors below, which serialize access with mutex. The media state,
// seeking and buffering setters return a propertyChange when the value
// moved, which the caller dispatches as on_property_changed.
type EngineState struct {
	mutex sync.RWMutex

	media MediaState

	position        Ticks
	naturalDuration Ticks

	isOpen      bool
	isLive      bool
	isSeeking   bool
	isBuffering bool

	bufferingProgress float64 // 0..1
	downloadProgress  float64 // 0..1

	volume     float64
	balance    float64
	speedRatio float64
	isMuted    bool

	frameRate      float64
	videoWidth     int
	videoHeight    int
	audioChannels  int
	audioSampleRate int

	hasVideo    bool
	hasAudio    bool
	hasSubtitle bool

	lastError error
}

// newEngineState returns a freshly-initialized state reflecting 
// described defaults prior to any Open.
func newEngineState(o *Options) *EngineState {
	return &EngineState{
		media:      StateIdle,
		volume:     o.Volume,
		balance:    o.Balance,
		speedRatio: o.SpeedRatio,
		isMuted:    o.IsMuted,
	}
}

// snapshot is an immutable copy of EngineState handed to listeners and
// callers, avoiding lock contention/aliasing across goroutines.
type snapshot struct {
	Media MediaState

	Position        Ticks
	NaturalDuration Ticks

	IsOpen      bool
	IsLive      bool
	IsSeeking   bool
	IsBuffering bool

	BufferingProgress float64
	DownloadProgress  float64

	Volume     float64
	Balance    float64
	SpeedRatio float64
	IsMuted    bool

	FrameRate       float64
	VideoWidth      int
	VideoHeight     int
	AudioChannels   int
	AudioSampleRate int

	HasVideo    bool
	HasAudio    bool
	HasSubtitle bool

	LastError error
}

func (s *EngineState) Snapshot() snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return snapshot{
		Media:             s.media,
		Position:          s.position,
		NaturalDuration:   s.naturalDuration,
		IsOpen:            s.isOpen,
		IsLive:            s.isLive,
		IsSeeking:         s.isSeeking,
		IsBuffering:       s.isBuffering,
		BufferingProgress: s.bufferingProgress,
		DownloadProgress:  s.downloadProgress,
		Volume:            s.volume,
		Balance:           s.balance,
		SpeedRatio:        s.speedRatio,
		IsMuted:           s.isMuted,
		FrameRate:         s.frameRate,
		VideoWidth:        s.videoWidth,
		VideoHeight:       s.videoHeight,
		AudioChannels:     s.audioChannels,
		AudioSampleRate:   s.audioSampleRate,
		HasVideo:          s.hasVideo,
		HasAudio:          s.hasAudio,
		HasSubtitle:       s.hasSubtitle,
		LastError:         s.lastError,
	}
}

// propertyChange describes one field transition, used to drive
// on_property_changed notifications.
type propertyChange struct {
	Name string
	Old  any
	New  any
}

// setMedia updates the media state and returns the change if it moved,
// or (propertyChange{}, false) if it was already that state.
func (s *EngineState) setMedia(v MediaState) (propertyChange, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.media == v {
		return propertyChange{}, false
	}
	old := s.media
	s.media = v
	return propertyChange{"Media", old, v}, true
}

func (s *EngineState) setPosition(v Ticks) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.position = v
}

func (s *EngineState) setNaturalDuration(v Ticks) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.naturalDuration = v
}

func (s *EngineState) setOpen(v bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isOpen = v
}

func (s *EngineState) setLive(v bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isLive = v
}

func (s *EngineState) IsLive() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.isLive
}

func (s *EngineState) Media() MediaState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.media
}

func (s *EngineState) setSeeking(v bool) (propertyChange, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.isSeeking == v {
		return propertyChange{}, false
	}
	old := s.isSeeking
	s.isSeeking = v
	return propertyChange{"IsSeeking", old, v}, true
}

func (s *EngineState) setBuffering(v bool) (propertyChange, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.isBuffering == v {
		return propertyChange{}, false
	}
	old := s.isBuffering
	s.isBuffering = v
	return propertyChange{"IsBuffering", old, v}, true
}

func (s *EngineState) setBufferingProgress(v float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.bufferingProgress = clampFloat(v, 0, 1)
}

func (s *EngineState) setDownloadProgress(v float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.downloadProgress = clampFloat(v, 0, 1)
}

func (s *EngineState) setVolume(v float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.volume = clampFloat(v, 0, 1)
}

func (s *EngineState) setBalance(v float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.balance = clampFloat(v, -1, 1)
}

func (s *EngineState) setSpeedRatio(v float64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.speedRatio = v
}

func (s *EngineState) setMuted(v bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.isMuted = v
}

func (s *EngineState) setMediaInfo(info *MediaInfo, frameRate float64, w, h, channels, sampleRate int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.naturalDuration = info.Duration
	s.frameRate = frameRate
	s.videoWidth, s.videoHeight = w, h
	s.audioChannels, s.audioSampleRate = channels, sampleRate
	s.hasVideo = info.BestVideo != -1
	s.hasAudio = info.BestAudio != -1
}

func (s *EngineState) setError(err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.lastError = err
}

// reset restores the state to its post-close defaults without disturbing
// the embedded mutex, and preserves the user-controlled volume/balance/
// speed/mute settings across the reset.
func (s *EngineState) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.media = StateIdle
	s.position, s.naturalDuration = 0, 0
	s.isOpen, s.isLive, s.isSeeking, s.isBuffering = false, false, false, false
	s.bufferingProgress, s.downloadProgress = 0, 0
	s.frameRate = 0
	s.videoWidth, s.videoHeight = 0, 0
	s.audioChannels, s.audioSampleRate = 0, 0
	s.hasVideo, s.hasAudio, s.hasSubtitle = false, false, false
	s.lastError = nil
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
