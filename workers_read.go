package mediacore

import (
	"context"
	"time"
)

// readerLoop implements the reader contract: outside of seeks it is the
// goroutine that calls container.Read (a seek reads from the container on
// the decoder goroutine), routing each packet to its component and
// backing off when the buffer is full or the demuxer is dry.
func (e *Engine) readerLoop(ctx context.Context) error {
	gate := e.coordinator.ReadCycle()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if e.coordinator.IsClosing() {
			return nil
		}
		e.coordinator.WaitForDirectIdle()
		e.waitForSeekIdle()

		gate.begin()
		producedAny := e.readCycle()
		gate.complete()

		if e.isSeeking.Load() {
			continue
		}
		if !producedAny {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(e.options.LowPriorityWait):
			}
		}
	}
}

// readCycle pulls packets until every known component present has
// received at least one, or the pacing contract says to stop.
func (e *Engine) readCycle() bool {
	seenType := map[MediaType]bool{}
	producedAny := false

	for e.shouldReadMore() && e.canReadMore() && !e.isSeeking.Load() {
		packet, found, err := e.container.Read()
		if err != nil {
			logf(aspectReading, "read error: %v", err)
			continue
		}
		if !found {
			e.components.ForEach(func(c *MediaComponent) { c.SignalEOF() })
			break
		}
		c := e.componentForStream(packet)
		if c == nil {
			continue
		}
		c.SendPacket(packet)
		producedAny = true
		seenType[c.Type] = true

		allSeen := true
		e.components.ForEach(func(comp *MediaComponent) {
			if !seenType[comp.Type] {
				allSeen = false
			}
		})
		if allSeen {
			break
		}
	}
	return producedAny
}

func (e *Engine) componentForStream(p MediaPacket) *MediaComponent {
	var c *MediaComponent
	e.components.ForEach(func(comp *MediaComponent) {
		if comp.StreamIndex == p.StreamIndex {
			c = comp
		}
	})
	return c
}

// shouldReadMore is the reader's pacing contract: live sources
// always read ahead; VOD sources stop once the queued duration of the
// least-buffered of the audio and video components reaches the configured
// download cache length.
func (e *Engine) shouldReadMore() bool {
	if e.state.IsLive() {
		return true
	}
	return e.components.LeastBufferedDuration() < TicksFromDuration(e.options.DownloadCacheLength(false))
}

func (e *Engine) canReadMore() bool {
	return e.container != nil && !e.container.IsAborted()
}
