package mediacore

// PacketKind classifies a MediaPacket.
type PacketKind uint8

const (
	// PacketNormal carries compressed media data for one stream.
	PacketNormal PacketKind = iota
	// PacketFlush instructs the owning component's decoder to drop any
	// packets it was previously fed and reset its internal buffers.
	PacketFlush
	// PacketEmpty signals end-of-stream drain: the decoder should be
	// allowed to emit any frames still buffered internally, with no more
	// input to follow.
	PacketEmpty
)

// MediaPacket describes a compressed unit read from the demuxer: its
// stream, kind, size and duration.
type MediaPacket struct {
	StreamIndex int
	Type        MediaType
	Kind        PacketKind
	Size        int
	Duration    Ticks // in the stream's original timebase, pre-normalization

	// data carries the raw compressed payload when the caller needs it
	// (e.g. for range_bitrate accounting); normal decode paths do not use
	// it, since the decoder reads from the reisen stream directly.
	data []byte
}

func newFlushPacket(streamIndex int, t MediaType) MediaPacket {
	return MediaPacket{StreamIndex: streamIndex, Type: t, Kind: PacketFlush}
}

func newEmptyPacket(streamIndex int, t MediaType) MediaPacket {
	return MediaPacket{StreamIndex: streamIndex, Type: t, Kind: PacketEmpty}
}
