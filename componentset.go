package mediacore

// ComponentSet holds at most one component of each known media type and
// elects the main synchronization reference among them.
type ComponentSet struct {
	Video    *MediaComponent
	Audio    *MediaComponent
	Subtitle *MediaComponent

	PlaybackStartTime Ticks
	PlaybackDuration  Ticks
}

// Main returns the component the wall-clock aligns to: Video (unless
// attached-picture), else Audio, else Video (attached-picture), else
// Subtitle. An attached-picture video is still elected over a
// Subtitle-only fallback when no real audio or video stream is present.
func (s *ComponentSet) Main() *MediaComponent {
	if s.Video != nil && !s.Video.IsAttachedPicture {
		return s.Video
	}
	if s.Audio != nil {
		return s.Audio
	}
	if s.Video != nil {
		return s.Video
	}
	return s.Subtitle
}

// MainType returns the MediaType of Main(), or TypeNone if the set is empty.
func (s *ComponentSet) MainType() MediaType {
	if m := s.Main(); m != nil {
		return m.Type
	}
	return TypeNone
}

// ForEach calls fn for every present component (Video, Audio, Subtitle in
// that order), matching the order the decode/render cycles walk types in.
func (s *ComponentSet) ForEach(fn func(*MediaComponent)) {
	if s.Video != nil {
		fn(s.Video)
	}
	if s.Audio != nil {
		fn(s.Audio)
	}
	if s.Subtitle != nil {
		fn(s.Subtitle)
	}
}

// Get returns the component of type t, or nil if absent.
func (s *ComponentSet) Get(t MediaType) *MediaComponent {
	switch t {
	case TypeVideo:
		return s.Video
	case TypeAudio:
		return s.Audio
	case TypeSubtitle:
		return s.Subtitle
	default:
		return nil
	}
}

// AggregatePacketBufferState sums the packet buffer state across every
// present component; HasEnough is true only if every component has enough.
func (s *ComponentSet) AggregatePacketBufferState() PacketBufferState {
	var agg PacketBufferState
	s.ForEach(func(c *MediaComponent) {
		st := c.BufferState()
		agg.Length += st.Length
		agg.Count += st.Count
		agg.CountThreshold += st.CountThreshold
	})
	agg.HasEnough = true
	s.ForEach(func(c *MediaComponent) {
		if !c.HasEnoughPackets() {
			agg.HasEnough = false
		}
	})
	return agg
}

// LeastBufferedDuration returns the smaller of the audio and video queued
// packet durations, ignoring whichever of the two is absent.
func (s *ComponentSet) LeastBufferedDuration() Ticks {
	var have bool
	var least Ticks
	consider := func(c *MediaComponent) {
		if c == nil {
			return
		}
		d := c.bufferDuration()
		if !have || d < least {
			least, have = d, true
		}
	}
	consider(s.Video)
	consider(s.Audio)
	if !have {
		return 0
	}
	return least
}
