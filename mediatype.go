package mediacore

// MediaType tags a stream, packet, frame or block with the kind of media
// it carries.
type MediaType uint8

const (
	TypeNone MediaType = iota
	TypeVideo
	TypeAudio
	TypeSubtitle
	TypeData
)

func (t MediaType) String() string {
	switch t {
	case TypeVideo:
		return "Video"
	case TypeAudio:
		return "Audio"
	case TypeSubtitle:
		return "Subtitle"
	case TypeData:
		return "Data"
	default:
		return "None"
	}
}

// knownMediaTypes is the set of stream types the decode/render cycles walk
// on every iteration (data streams have no component, so the reader drops
// their packets).
var knownMediaTypes = [...]MediaType{TypeVideo, TypeAudio, TypeSubtitle}
