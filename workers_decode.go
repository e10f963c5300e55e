package mediacore

import (
	"context"
	"time"
)

// decoderLoop implements the decoder contract: it processes at
// most one priority/seek command per cycle, keeps every component's block
// buffer filled, detects sync-buffering and end-of-media, and publishes
// the aggregate decoding bitrate.
func (e *Engine) decoderLoop(ctx context.Context) error {
	gate := e.coordinator.DecodeCycle()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if e.coordinator.IsClosing() {
			return nil
		}

		commandRan := e.runOneQueuedCommand()

		gate.begin()
		producedAny := e.decodeCycle()
		gate.complete()

		if !producedAny && !commandRan && !e.coordinator.IsClosing() {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(e.options.LowPriorityWait):
			}
		}
	}
}

// runOneQueuedCommand consumes at most one priority command, then, if
// none was pending, at most one runnable seek — priority observation
// happens at most once per decode cycle, and a seek
// only runs once no direct/priority command is pending.
func (e *Engine) runOneQueuedCommand() bool {
	if p, done := e.coordinator.TakePriority(); p != PriorityNone {
		e.runPriority(p, done)
		return true
	}
	if req := e.coordinator.TakeSeek(); req != nil {
		e.runSeek(req)
		return true
	}
	return false
}

func (e *Engine) runPriority(p PriorityCommand, done chan CommandResult) {
	var result CommandResult = ResultOk
	switch p {
	case PriorityPlay:
		if e.canPlay() {
			e.clock.Start()
			e.forEachRenderer(func(r Renderer) { _ = r.Play() })
			e.setMediaState(StatePlaying)
		}
	case PriorityPause:
		if !e.state.IsLive() {
			e.clock.Pause()
			e.forEachRenderer(func(r Renderer) { _ = r.Pause() })
			e.snapToNearestBlockStart()
			e.setMediaState(StatePaused)
		}
	case PriorityStop:
		e.clock.Reset()
		e.newSeekExecutor().execute(&SeekRequest{Mode: SeekToStop})
		e.forEachRenderer(func(r Renderer) { _ = r.Stop() })
		e.setMediaState(StateStopped)
	}
	resolve(done, result)
}

func (e *Engine) runSeek(req *SeekRequest) {
	e.isSeeking.Store(true)
	e.dispatcher.SeekingStarted()
	se := e.newSeekExecutor()
	result := se.execute(req)
	e.isSeeking.Store(false)
	e.dispatcher.SeekingEnded()
	resolve(req.done, result)
}

func (e *Engine) newSeekExecutor() *seekExecutor {
	return &seekExecutor{
		clock:              e.clock,
		container:          e.container,
		components:         e.components,
		blocks:             e.blocks,
		options:            e.options,
		invalidateRenderer: e.invalidateRenderer,
		wasPlaying:         func() bool { return e.state.Media() == StatePlaying },
		resumePlaying: func() {
			e.forEachRenderer(func(r Renderer) { _ = r.Play() })
			e.setMediaState(StatePlaying)
		},
	}
}

func (e *Engine) canPlay() bool {
	if e.state.IsLive() {
		return true
	}
	if e.state.Media() == StateEnded {
		return false
	}
	mainType := e.components.MainType()
	bb := e.blocks.Get(mainType)
	if bb == nil {
		return true
	}
	return e.clock.ReadPosition() < bb.RangeEnd() || bb.Len() == 0
}

func (e *Engine) snapToNearestBlockStart() {
	mainType := e.components.MainType()
	bb := e.blocks.Get(mainType)
	if bb == nil {
		return
	}
	if b := bb.BlockAt(e.clock.ReadPosition()); b != nil {
		e.clock.Update(b.StartTime)
	}
}

// decodeCycle runs one pass of sync-buffering, per-type decoding and
// end-of-media detection.
func (e *Engine) decodeCycle() bool {
	if e.coordinator.IsClosing() {
		return false
	}

	mainType := e.components.MainType()
	mainComponent := e.components.Get(mainType)
	mainBlocks := e.blocks.Get(mainType)

	producedAny := false
	if mainBlocks != nil && !mainBlocks.IsInRange(e.clock.ReadPosition()) {
		producedAny = e.syncBuffer(mainType, mainComponent, mainBlocks) || producedAny
	}

	e.blocks.ForEach(func(t MediaType, bb *BlockBuffer) {
		c := e.components.Get(t)
		if c == nil {
			return
		}
		producedAny = e.decodeComponent(t, c, bb) || producedAny
	})

	e.detectEndOfMedia(mainType, mainComponent, mainBlocks, producedAny)
	e.publishDecodingBitrate()
	return producedAny
}

// syncBuffer pauses the clock and decodes main-type frames until the
// window catches up with the wall clock, or nothing more can be decoded.
func (e *Engine) syncBuffer(mainType MediaType, c *MediaComponent, bb *BlockBuffer) bool {
	e.isSyncBuffering.Store(true)
	wasRunning := e.clock.IsRunning()
	e.clock.Pause()
	if change, ok := e.state.setBuffering(true); ok {
		e.dispatcher.PropertyChanged(change)
	}
	e.dispatcher.BufferingStarted()

	addedAny := false
	for !e.coordinator.IsClosing() && c.CanReadMoreFrames() {
		if bb.IsInRange(e.clock.ReadPosition()) {
			break
		}
		if e.addNextBlock(c, bb) {
			addedAny = true
		}
		if bb.IsFull() && addedAny {
			break
		}
	}

	if !bb.IsInRange(e.clock.ReadPosition()) {
		if bb.Len() > 0 {
			if b := bb.BlockAt(e.clock.ReadPosition()); b != nil {
				e.clock.Update(b.StartTime)
			}
		} else {
			wasRunning = false
		}
	}

	e.isSyncBuffering.Store(false)
	if change, ok := e.state.setBuffering(false); ok {
		e.dispatcher.PropertyChanged(change)
	}
	e.dispatcher.BufferingEnded()
	if wasRunning && !e.mediaEnded.Load() {
		e.clock.Start()
	}
	e.invalidateRenderer(mainType)
	return addedAny
}

// decodeComponent keeps one type's buffer topped up to its target range.
func (e *Engine) decodeComponent(t MediaType, c *MediaComponent, bb *BlockBuffer) bool {
	producedAny := false
	for {
		rangePercent := bb.GetRangePercent(e.clock.ReadPosition())
		full := bb.IsFull()
		if full && rangePercent <= 0.75 {
			break
		}
		if !e.isSyncBuffering.Load() {
			if !full && rangePercent >= 0 && rangePercent <= 0.75 && bb.CapacityPercent() >= 0.25 && bb.IsInRange(e.clock.ReadPosition()) {
				break
			}
		}
		if e.isSyncBuffering.Load() && full {
			break
		}
		if !c.CanReadMoreFrames() {
			break
		}
		if !e.addNextBlock(c, bb) {
			break
		}
		producedAny = true
	}
	return producedAny
}

func (e *Engine) addNextBlock(c *MediaComponent, bb *BlockBuffer) bool {
	frame, err := c.ReceiveNextFrame()
	if err != nil {
		logf(aspectDecoding, "decode error: %v", err)
		return false
	}
	if frame == nil {
		return false
	}
	bb.Add(frame, c.MaterializeFrame)
	return true
}

func (e *Engine) detectEndOfMedia(mainType MediaType, c *MediaComponent, bb *BlockBuffer, producedAny bool) {
	if e.isSyncBuffering.Load() || producedAny || c == nil || bb == nil {
		e.mediaEnded.Store(false)
		return
	}
	if c.CanReadMoreFrames() {
		e.mediaEnded.Store(false)
		return
	}
	if bb.IndexOf(e.clock.ReadPosition()) < bb.Len()-1 {
		e.mediaEnded.Store(false)
		return
	}

	if e.mediaEnded.CompareAndSwap(false, true) {
		e.clock.Pause()
		e.clock.Update(bb.RangeEnd())
		e.setMediaState(StateStopped)
		e.forEachType(func(t MediaType) { e.invalidateRenderer(t) })
		e.dispatcher.MediaEnded()
	}
}

func (e *Engine) publishDecodingBitrate() {
	var total float64
	e.blocks.ForEach(func(_ MediaType, bb *BlockBuffer) {
		if bb.IsInRange(e.clock.ReadPosition()) {
			total += bb.RangeBitrate()
		}
	})
	e.decodingBitrate.Store(total)
}

func (e *Engine) waitForSeekIdle() {
	for e.isSeeking.Load() {
		time.Sleep(time.Millisecond)
	}
}

func (e *Engine) forEachType(fn func(MediaType)) {
	for _, t := range knownMediaTypes {
		fn(t)
	}
}
