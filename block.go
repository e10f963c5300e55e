package mediacore

import "sync"

// BlockState is the lifecycle state of a MediaBlock: free in its owning
// BlockBuffer's pool, or filled and sitting in the playback window.
type BlockState uint8

const (
	BlockPooled BlockState = iota
	BlockPlayback
)

// MediaBlock is a presentation-ready unit of one media type, backed by a
// pre-allocated, reusable buffer. Each block has exactly one
// owning BlockBuffer and exactly one state. A block's buffer supports at
// most one concurrent writer (the decoder, materializing a frame into it)
// or many concurrent readers (renderers); writer and readers never overlap,
// enforced by bufferLock.
type MediaBlock struct {
	Type  MediaType
	State BlockState

	StartTime Ticks
	EndTime   Ticks

	// CompressedSize approximates the size of the compressed packet(s)
	// that produced this block, used for BlockBuffer.RangeBitrate. The
	// codec backend this core is wired against (reisen) does not expose
	// compressed packet size at the frame boundary, so this defaults to
	// the decoded payload length.
	CompressedSize int

	// Video extras.
	PixelWidth, PixelHeight int
	PixelAspectRatio        float64
	Stride                  int
	DisplayPictureNumber    int64
	CodedPictureNumber      int64
	SMPTECode               string
	HardwareDecoded         bool
	ClosedCaptions          [][]byte

	// Audio extras.
	SampleRate       int
	ChannelCount     int
	SamplesPerChan   int
	SamplesBufferLen int

	// Subtitle extras.
	Lines        []string
	OriginalText string
	FormatTag    string

	// Data extras / shared payload for video pixels, audio PCM, raw bytes.
	Data []byte

	// prev/next reflect the sorted-by-StartTime order of the playback
	// window; prev is nil for the first block, next is nil for the last,
	// and both are nil for pooled blocks.
	prev, next *MediaBlock
	// index is this block's position within its BlockBuffer.playback
	// slice, kept in sync by every mutation.
	index int

	bufferLock sync.RWMutex
}

// Duration returns EndTime - StartTime.
func (b *MediaBlock) Duration() Ticks { return b.EndTime - b.StartTime }

// Previous returns the playback-order predecessor, or nil.
func (b *MediaBlock) Previous() *MediaBlock { return b.prev }

// Next returns the playback-order successor, or nil.
func (b *MediaBlock) Next() *MediaBlock { return b.next }

// lockWriter acquires exclusive access for materialization.
func (b *MediaBlock) lockWriter()   { b.bufferLock.Lock() }
func (b *MediaBlock) unlockWriter() { b.bufferLock.Unlock() }

// LockReader acquires shared access for the duration of a render call.
func (b *MediaBlock) LockReader()   { b.bufferLock.RLock() }
func (b *MediaBlock) UnlockReader() { b.bufferLock.RUnlock() }

func (b *MediaBlock) reset(t MediaType) {
	b.Type = t
	b.State = BlockPooled
	b.StartTime = 0
	b.EndTime = 0
	b.CompressedSize = 0
	b.PixelWidth, b.PixelHeight = 0, 0
	b.PixelAspectRatio = 0
	b.Stride = 0
	b.DisplayPictureNumber = 0
	b.CodedPictureNumber = 0
	b.SMPTECode = ""
	b.HardwareDecoded = false
	b.ClosedCaptions = nil
	b.SampleRate = 0
	b.ChannelCount = 0
	b.SamplesPerChan = 0
	b.SamplesBufferLen = 0
	b.Lines = nil
	b.OriginalText = ""
	b.FormatTag = ""
	b.prev, b.next = nil, nil
	b.index = -1
}
