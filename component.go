package mediacore

import (
	"sync"

	"github.com/erparts/reisen"
)

// decoderState is the Fresh/Draining state machine of a component's decoder: a
// flush packet drops anything previously sent to the decoder and returns
// to Fresh; an empty packet signals end-of-stream drain and moves to
// Draining.
type decoderState uint8

const (
	decoderFresh decoderState = iota
	decoderDraining
)

// PacketQueue is the single-writer (reader worker) / single-reader
// (decode worker) queue of packets for one component, with a clearer
// (the command coordinator, while workers are paused).
type PacketQueue struct {
	mutex    sync.Mutex
	packets  []MediaPacket
	length   int // sum of packet sizes currently queued
}

func (q *PacketQueue) push(p MediaPacket) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.packets = append(q.packets, p)
	q.length += p.Size
}

func (q *PacketQueue) pop() (MediaPacket, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.packets) == 0 {
		return MediaPacket{}, false
	}
	p := q.packets[0]
	q.packets = q.packets[1:]
	q.length -= p.Size
	return p, true
}

func (q *PacketQueue) count() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.packets)
}

func (q *PacketQueue) byteLength() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.length
}

func (q *PacketQueue) clear() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.packets = q.packets[:0]
	q.length = 0
}

// MediaComponent is a per-stream entity: a packet queue, a reference to
// the underlying decoder and the threshold knobs that decide when the
// component's buffer is considered "enough".
type MediaComponent struct {
	Type        MediaType
	StreamIndex int

	StartTime Ticks
	Duration  Ticks

	IsAttachedPicture bool

	queue PacketQueue
	state decoderState

	bufferCountThreshold    int
	bufferDurationThreshold Ticks

	eofReached   bool
	readAborted  bool

	videoStream *reisen.VideoStream
	audioStream *reisen.AudioStream

	// subtitleSource supplies pre-parsed subtitle blocks directly,
	// bypassing the packet queue/decoder path; see SPEC_FULL.md and
	// DESIGN.md for why reisen offers no subtitle demux to hook into.
	subtitleSource *subtitleTrack
}

// NewVideoComponent wraps a reisen video stream.
func NewVideoComponent(stream *reisen.VideoStream, countThreshold int, durationThreshold Ticks, attachedPic bool) *MediaComponent {
	dur, _ := stream.Duration()
	return &MediaComponent{
		Type:                    TypeVideo,
		StreamIndex:             stream.Index(),
		Duration:                TicksFromDuration(dur),
		IsAttachedPicture:       attachedPic,
		bufferCountThreshold:    countThreshold,
		bufferDurationThreshold: durationThreshold,
		videoStream:             stream,
	}
}

// NewAudioComponent wraps a reisen audio stream.
func NewAudioComponent(stream *reisen.AudioStream, countThreshold int, durationThreshold Ticks) *MediaComponent {
	dur, _ := stream.Duration()
	return &MediaComponent{
		Type:                    TypeAudio,
		StreamIndex:             stream.Index(),
		Duration:                TicksFromDuration(dur),
		bufferCountThreshold:    countThreshold,
		bufferDurationThreshold: durationThreshold,
		audioStream:             stream,
	}
}

// NewSubtitleComponent wraps a pre-parsed external subtitle track.
func NewSubtitleComponent(track *subtitleTrack, countThreshold int, durationThreshold Ticks) *MediaComponent {
	return &MediaComponent{
		Type:                    TypeSubtitle,
		StreamIndex:             -1,
		bufferCountThreshold:    countThreshold,
		bufferDurationThreshold: durationThreshold,
		subtitleSource:          track,
		eofReached:              true, // subtitles are preloaded in full, never "read more"
	}
}

// Open opens the underlying decode stream, if any (subtitle components
// have none to open).
func (c *MediaComponent) Open() error {
	switch {
	case c.videoStream != nil:
		return c.videoStream.Open()
	case c.audioStream != nil:
		return c.audioStream.Open()
	default:
		return nil
	}
}

// Close closes the underlying decode stream, if any.
func (c *MediaComponent) Close() error {
	switch {
	case c.videoStream != nil:
		return c.videoStream.Close()
	case c.audioStream != nil:
		return c.audioStream.Close()
	default:
		return nil
	}
}

// SendPacket queues a normal packet for this component, or special-cases
// flush/empty packets by updating the decoder state machine directly
// rather than queuing them.
func (c *MediaComponent) SendPacket(p MediaPacket) {
	switch p.Kind {
	case PacketFlush:
		c.queue.clear()
		c.state = decoderFresh
	case PacketEmpty:
		c.state = decoderDraining
	default:
		c.queue.push(p)
	}
}

// SignalEOF marks that the demuxer has no more packets for this
// component's stream.
func (c *MediaComponent) SignalEOF()          { c.eofReached = true }
func (c *MediaComponent) SignalReadAborted()  { c.readAborted = true }
func (c *MediaComponent) ClearEOF()           { c.eofReached = false; c.readAborted = false }

// HasEnoughPackets reports whether this component's buffer is deep enough
// to stop reading ahead of it: true for attached-picture
// video, once EOF/read-abort is observed, or once both the duration and
// count thresholds are satisfied.
func (c *MediaComponent) HasEnoughPackets() bool {
	if c.IsAttachedPicture || c.eofReached || c.readAborted {
		return true
	}
	return c.bufferDuration() >= c.bufferDurationThreshold && c.queue.count() >= c.bufferCountThreshold
}

// bufferDuration approximates queued duration as count x average packet
// duration is unavailable without decoding; this core tracks it as the
// sum of each queued packet's declared Duration field instead.
func (c *MediaComponent) bufferDuration() Ticks {
	c.queue.mutex.Lock()
	defer c.queue.mutex.Unlock()
	var total Ticks
	for _, p := range c.queue.packets {
		total += p.Duration
	}
	return total
}

// PacketBufferState snapshots the queue depth used by ComponentSet's
// aggregate buffering state.
type PacketBufferState struct {
	Length         int
	Count          int
	CountThreshold int
	HasEnough      bool
}

func (c *MediaComponent) BufferState() PacketBufferState {
	return PacketBufferState{
		Length:         c.queue.byteLength(),
		Count:          c.queue.count(),
		CountThreshold: c.bufferCountThreshold,
		HasEnough:      c.HasEnoughPackets(),
	}
}

// ReceiveNextFrame feeds queued packets to the decoder until a frame
// emerges or no more packets can be supplied this call.
// It returns (nil, nil) when nothing is available right now, which is not
// an error: the caller should try again on a later cycle.
func (c *MediaComponent) ReceiveNextFrame() (*MediaFrame, error) {
	switch {
	case c.videoStream != nil:
		return c.receiveVideoFrame()
	case c.audioStream != nil:
		return c.receiveAudioFrame()
	case c.subtitleSource != nil:
		return c.subtitleSource.next(), nil
	default:
		return nil, nil
	}
}

func (c *MediaComponent) receiveVideoFrame() (*MediaFrame, error) {
	for {
		if _, ok := c.queue.pop(); !ok {
			return nil, nil
		}
		frame, _, err := c.videoStream.ReadVideoFrame()
		if err != nil {
			return nil, &DecodeError{Kind: DecodeErrPacket, Cause: err}
		}
		if frame == nil {
			continue
		}
		return videoFrameToMediaFrame(c.videoStream, frame), nil
	}
}

func (c *MediaComponent) receiveAudioFrame() (*MediaFrame, error) {
	for {
		if _, ok := c.queue.pop(); !ok {
			return nil, nil
		}
		frame, _, err := c.audioStream.ReadAudioFrame()
		if err != nil {
			return nil, &DecodeError{Kind: DecodeErrPacket, Cause: err}
		}
		if frame == nil {
			continue
		}
		return audioFrameToMediaFrame(c.audioStream, frame), nil
	}
}

// MaterializeFrame converts a decoded frame into block, performing the
// per-type conversion each media type calls for: video pixel conversion sits
// entirely inside reisen (frame.Data() already yields RGBA), audio is
// passed through as interleaved 16-bit PCM (also reisen's native output),
// and subtitles are stripped of markup by subtitleTrack at load time.
func (c *MediaComponent) MaterializeFrame(frame *MediaFrame, block *MediaBlock) {
	block.StartTime = frame.StartTime
	block.EndTime = frame.StartTime + frame.Duration
	block.CompressedSize = len(frame.Data)
	block.Data = frame.Data

	switch frame.Type {
	case TypeVideo:
		block.PixelWidth = frame.PixelWidth
		block.PixelHeight = frame.PixelHeight
		block.PixelAspectRatio = frame.PixelAspectRatio
		block.Stride = frame.Stride
		block.DisplayPictureNumber = frame.DisplayPictureNumber
		block.CodedPictureNumber = frame.CodedPictureNumber
		block.SMPTECode = frame.SMPTECode
		block.HardwareDecoded = frame.HardwareDecoded
		block.ClosedCaptions = frame.ClosedCaptions
	case TypeAudio:
		block.SampleRate = frame.SampleRate
		block.ChannelCount = frame.ChannelCount
		block.SamplesPerChan = frame.SamplesPerChan
		block.SamplesBufferLen = frame.SamplesBufferLen
	case TypeSubtitle:
		block.Lines = frame.SubtitleLines
		block.OriginalText = frame.OriginalText
		block.FormatTag = frame.FormatTag
	}
}

// CanReadMoreFrames reports whether calling ReceiveNextFrame again could
// plausibly produce a frame: there must be queued packets, or more to
// come from the demuxer.
func (c *MediaComponent) CanReadMoreFrames() bool {
	if c.subtitleSource != nil {
		return !c.subtitleSource.exhausted()
	}
	return c.queue.count() > 0 || (!c.eofReached && !c.readAborted)
}
