package mediacore

// MediaFrame is a raw decoded frame produced by a component's decoder,
// carrying the common fields shared by every media type plus per-type extras.
type MediaFrame struct {
	Type            MediaType
	StreamIndex     int
	StartTime       Ticks
	Duration        Ticks
	HasValidStart   bool

	// Video extras.
	PixelWidth, PixelHeight int
	PixelAspectRatio        float64
	Stride                  int
	DisplayPictureNumber    int64
	CodedPictureNumber      int64
	PictureType             string
	SMPTECode               string
	HardwareDecoded         bool
	ClosedCaptions          [][]byte

	// Audio extras.
	SampleRate       int
	ChannelCount     int
	SamplesPerChan   int
	SamplesBufferLen int

	// Subtitle extras.
	SubtitleLines []string
	OriginalText  string
	FormatTag     string

	// Shared pixel/sample/text/raw payload, owned by this frame until it
	// is materialized into a MediaBlock (or discarded).
	Data []byte
}

// EndTime returns StartTime + Duration.
func (f *MediaFrame) EndTime() Ticks { return f.StartTime + f.Duration }
