package mediacore

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/erparts/reisen"
)

// StreamInfo describes one stream exposed by MediaInfo.
type StreamInfo struct {
	Index    int
	Type     MediaType
	Duration Ticks
}

// MediaInfo is returned by MediaContainer.Open and mirrors the subset of
// an opened source's metadata that the codec backend this core is wired
// against (reisen) can actually report: reisen exposes per-stream duration
// and frame rate, but not container format name, chapters, programs or
// aggregate bitrate, so MediaInfo carries no fields for those.
type MediaInfo struct {
	Streams       []StreamInfo
	Duration      Ticks
	BestVideo     int // index into Streams, or -1
	BestAudio     int
	IsAttachedPic bool // true if the only video stream is a still-image cover art
}

// MediaContainer is the façade over the codec backend. It
// owns the reisen.Media handle and hands out the per-stream reisen handles
// MediaComponent needs to actually decode.
type MediaContainer struct {
	media *reisen.Media

	videoStreams []*reisen.VideoStream
	audioStreams []*reisen.AudioStream

	aborted atomic.Bool
	tempFile string // non-empty when Open copied an InputStream to disk

	isAttachedPic bool
}

// Open resolves source (a URL/path string, or an InputStream) into an
// open reisen.Media and reports the streams it found. Fails with
// *OpenError.
func (c *MediaContainer) Open(source Source) (*MediaInfo, error) {
	path, err := source.resolvePath()
	if err != nil {
		return nil, &OpenError{Kind: OpenErrIo, Cause: err}
	}
	c.tempFile = source.tempFile

	media, err := reisen.NewMedia(path)
	if err != nil {
		return nil, &OpenError{Kind: OpenErrFormat, Cause: err}
	}
	c.media = media
	c.videoStreams = media.VideoStreams()
	c.audioStreams = media.AudioStreams()

	if len(c.videoStreams) == 0 && len(c.audioStreams) == 0 {
		return nil, &OpenError{Kind: OpenErrNoStreams, Cause: fmt.Errorf("no audio or video streams")}
	}

	info := &MediaInfo{BestVideo: -1, BestAudio: -1}
	for i, vs := range c.videoStreams {
		d, _ := vs.Duration()
		dur := TicksFromDuration(d)
		info.Streams = append(info.Streams, StreamInfo{Index: vs.Index(), Type: TypeVideo, Duration: dur})
		if info.BestVideo == -1 {
			info.BestVideo = i
		}
		if dur > info.Duration {
			info.Duration = dur
		}
	}
	for i, as := range c.audioStreams {
		d, _ := as.Duration()
		dur := TicksFromDuration(d)
		info.Streams = append(info.Streams, StreamInfo{Index: as.Index(), Type: TypeAudio, Duration: dur})
		if info.BestAudio == -1 {
			info.BestAudio = i
		}
		if dur > info.Duration {
			info.Duration = dur
		}
	}

	info.IsAttachedPic = isAttachedPicture(c.videoStreams, len(c.audioStreams) == 0)
	c.isAttachedPic = info.IsAttachedPic
	return info, nil
}

// IsAttachedPicture reports whether Open inferred the sole video stream
// to be cover-art rather than a real video track.
func (c *MediaContainer) IsAttachedPicture() bool { return c.isAttachedPic }

// isAttachedPicture heuristically flags a lone video stream as cover-art
// rather than a real video track: reisen does not expose an explicit
// "attached picture" disposition flag, so this core infers it from a frame
// rate numerator of 0 (no natural frame cadence). The flag is only set
// when the media also has at least one audio stream.
func isAttachedPicture(streams []*reisen.VideoStream, noAudio bool) bool {
	if len(streams) != 1 {
		return false
	}
	num, _ := streams[0].FrameRate()
	return num == 0 && !noAudio
}

// OpenDecode opens the decoder context for the container; must be called
// once before any component can Open its own stream.
func (c *MediaContainer) OpenDecode() error {
	return c.media.OpenDecode()
}

// CloseDecode closes the decoder context.
func (c *MediaContainer) CloseDecode() error {
	return c.media.CloseDecode()
}

// VideoStream returns the i-th video stream's reisen handle.
func (c *MediaContainer) VideoStream(i int) *reisen.VideoStream { return c.videoStreams[i] }

// AudioStream returns the i-th audio stream's reisen handle.
func (c *MediaContainer) AudioStream(i int) *reisen.AudioStream { return c.audioStreams[i] }

// VideoStreamCount and AudioStreamCount report how many streams of each
// type were found on Open.
func (c *MediaContainer) VideoStreamCount() int { return len(c.videoStreams) }
func (c *MediaContainer) AudioStreamCount() int { return len(c.audioStreams) }

// Read pulls the next packet from the demuxer. The returned bool is false
// on end-of-stream. Transient failures are wrapped in *ReadError.
func (c *MediaContainer) Read() (MediaPacket, bool, error) {
	if c.aborted.Load() {
		return MediaPacket{}, false, nil
	}
	packet, found, err := c.media.ReadPacket()
	if err != nil {
		return MediaPacket{}, false, &ReadError{Cause: err}
	}
	if !found {
		return MediaPacket{}, false, nil
	}

	t := TypeData
	switch packet.Type() {
	case reisen.StreamVideo:
		t = TypeVideo
	case reisen.StreamAudio:
		t = TypeAudio
	}
	return MediaPacket{StreamIndex: packet.StreamIndex(), Type: t, Kind: PacketNormal}, true, nil
}

// SignalAbortReads causes any blocked or future Read to return promptly
// with no packet and no error, unblocking the reader loop.
func (c *MediaContainer) SignalAbortReads() {
	c.aborted.Store(true)
}

// ClearAbort clears a previously signaled abort, allowing Read to resume
// (used when ChangeMedia restarts the workers, not after a terminal Close).
func (c *MediaContainer) ClearAbort() {
	c.aborted.Store(false)
}

// IsAborted reports whether SignalAbortReads has been called without a
// matching ClearAbort.
func (c *MediaContainer) IsAborted() bool { return c.aborted.Load() }

// Seek repositions every currently open stream as close as possible to
// target (at or before), and returns the first frame decoded from
// whichever stream produces one first (video preferred over audio, to
// match the main-type election priority), or nil if none do. Fails with
// *SeekError on irrecoverable failure, in which case callers should clamp
// or restore the pre-seek position.
func (c *MediaContainer) Seek(target Ticks) (*MediaFrame, error) {
	d := target.Duration()
	for _, vs := range c.videoStreams {
		if err := vs.Rewind(d); err != nil {
			return nil, &SeekError{Cause: err}
		}
	}
	for _, as := range c.audioStreams {
		if err := as.Rewind(d); err != nil {
			return nil, &SeekError{Cause: err}
		}
	}

	if len(c.videoStreams) > 0 {
		frame, err := readVideoFrameFrom(c, c.videoStreams[0])
		if err != nil {
			return nil, &SeekError{Cause: err}
		}
		if frame != nil {
			return frame, nil
		}
	}
	if len(c.audioStreams) > 0 {
		frame, err := readAudioFrameFrom(c, c.audioStreams[0])
		if err != nil {
			return nil, &SeekError{Cause: err}
		}
		return frame, nil
	}
	return nil, nil
}

// readVideoFrameFrom drains packets until the given stream yields a
// frame, or the demuxer runs dry.
func readVideoFrameFrom(c *MediaContainer, stream *reisen.VideoStream) (*MediaFrame, error) {
	for {
		packet, found, err := c.media.ReadPacket()
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		if packet.Type() != reisen.StreamVideo || packet.StreamIndex() != stream.Index() {
			continue
		}
		frame, _, err := stream.ReadVideoFrame()
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}
		return videoFrameToMediaFrame(stream, frame), nil
	}
}

func readAudioFrameFrom(c *MediaContainer, stream *reisen.AudioStream) (*MediaFrame, error) {
	for {
		packet, found, err := c.media.ReadPacket()
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		if packet.Type() != reisen.StreamAudio || packet.StreamIndex() != stream.Index() {
			continue
		}
		frame, _, err := stream.ReadAudioFrame()
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}
		return audioFrameToMediaFrame(stream, frame), nil
	}
}

func videoFrameToMediaFrame(stream *reisen.VideoStream, frame *reisen.VideoFrame) *MediaFrame {
	offset, _ := frame.PresentationOffset()
	return &MediaFrame{
		Type:          TypeVideo,
		StreamIndex:   stream.Index(),
		StartTime:     TicksFromDuration(offset),
		HasValidStart: true,
		PixelWidth:    stream.Width(),
		PixelHeight:   stream.Height(),
		Data:          frame.Data(),
	}
}

func audioFrameToMediaFrame(stream *reisen.AudioStream, frame *reisen.AudioFrame) *MediaFrame {
	offset, _ := frame.PresentationOffset()
	return &MediaFrame{
		Type:          TypeAudio,
		StreamIndex:   stream.Index(),
		StartTime:     TicksFromDuration(offset),
		HasValidStart: true,
		SampleRate:    stream.SampleRate(),
		Data:          frame.Data(),
	}
}

// Close releases the demuxer and any temp file created to back an
// InputStream source.
func (c *MediaContainer) Close() error {
	for _, vs := range c.videoStreams {
		_ = vs.Close()
	}
	for _, as := range c.audioStreams {
		_ = as.Close()
	}
	var err error
	if c.media != nil {
		err = c.media.Close()
	}
	if c.tempFile != "" {
		_ = os.Remove(c.tempFile)
	}
	return err
}

// Source identifies where to read media from: a URL/local path, or a
// caller-supplied InputStream. Exactly one of url/stream should be set;
// use SourceURL or SourceInputStream to construct one.
type Source struct {
	url      string
	stream   InputStream
	tempFile string
}

// SourceURL builds a Source from a local path or network URL, passed to
// the codec backend as-is (reisen/ffmpeg resolve the protocol).
func SourceURL(url string) Source { return Source{url: url} }

// SourceInputStream builds a Source from a caller-supplied byte stream.
// Because the codec backend this core wires against only accepts
// filenames, the stream is drained into a temp file on Open rather than
// passed through as an io.ReadSeeker.
func SourceInputStream(s InputStream) Source { return Source{stream: s} }

func (s *Source) resolvePath() (string, error) {
	if s.stream == nil {
		return s.url, nil
	}
	f, err := os.CreateTemp("", "mediacore-input-*")
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 64*1024)
	for {
		n, err := s.stream.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return "", werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	s.tempFile = f.Name()
	return f.Name(), nil
}

// InputStream is implemented by the host for caller-supplied byte sources
//.
type InputStream interface {
	Read(buffer []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Length() (uint64, bool)
	StreamURI() string
}
