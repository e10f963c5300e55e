package mediacore

// seekExecutor bundles the collaborators the decode worker needs to run a
// seek to completion: the clock it repositions, the
// components/blocks it drains and refills, the container it re-demuxes
// through, and the render invalidation hook.
type seekExecutor struct {
	clock      *RealTimeClock
	container  *MediaContainer
	components *ComponentSet
	blocks     *BlockSet
	options    *Options

	invalidateRenderer func(MediaType)
	wasPlaying         func() bool
	resumePlaying      func()
}

// execute runs the seek algorithm for req against the main
// media type, returning the CommandResult to resolve req.done with.
func (se *seekExecutor) execute(req *SeekRequest) CommandResult {
	se.clock.Pause()
	initialPosition := se.clock.ReadPosition()

	mainType := se.components.MainType()
	mainBlocks := se.blocks.Get(mainType)

	target := se.resolveTarget(req, mainBlocks, initialPosition)

	if mainBlocks != nil && mainBlocks.IsInRange(target) {
		se.clock.Update(target)
		se.finish()
		return ResultOk
	}

	// The adjustment reads the main buffer's monotonic duration, so it is
	// computed before the buffers are cleared below.
	adjustedTarget := se.adjustedTarget(mainBlocks, target)

	// Packet queues and decoder buffers are cleared so stale, pre-seek
	// data never reaches a block after the re-demux below.
	se.blocks.ForEach(func(t MediaType, bb *BlockBuffer) {
		if c := se.components.Get(t); c != nil {
			c.queue.clear()
			c.state = decoderFresh
		}
		bb.Clear()
	})

	frame, err := se.container.Seek(adjustedTarget)
	if err != nil {
		logf(aspectContainer, "seek failed, clamping to prior position: %v", err)
		se.clock.Update(initialPosition)
		se.finish()
		return ResultOk
	}
	if frame != nil {
		if c := se.components.Get(frame.Type); c != nil {
			if bb := se.blocks.Get(frame.Type); bb != nil {
				bb.Add(frame, c.MaterializeFrame)
			}
		}
	}

	se.drainToTarget(mainType, mainBlocks, target)

	finalPosition := se.finalPosition(mainBlocks, target, initialPosition)
	se.clock.Update(finalPosition)
	se.finish()

	if se.wasPlaying != nil && se.wasPlaying() {
		se.clock.Start()
		se.resumePlaying()
	}
	return ResultOk
}

func (se *seekExecutor) resolveTarget(req *SeekRequest, mainBlocks *BlockBuffer, current Ticks) Ticks {
	switch req.Mode {
	case SeekToStop:
		return 0
	case SeekStepForward, SeekStepBackward:
		if mainBlocks == nil {
			return current
		}
		prev, next, cur := mainBlocks.Neighbors(current)
		if cur == nil {
			return current
		}
		if req.Mode == SeekStepForward {
			if next != nil {
				return next.StartTime
			}
			return cur.StartTime + cur.Duration()/2
		}
		if prev != nil {
			return prev.StartTime
		}
		return cur.StartTime - cur.Duration()/2
	default:
		return req.Target
	}
}

// adjustedTarget re-centers the re-demux point so that, once decoding
// has refilled the window forward from here, target lands roughly in the
// middle of a monotonic buffer rather than at its leading edge.
func (se *seekExecutor) adjustedTarget(mainBlocks *BlockBuffer, target Ticks) Ticks {
	if mainBlocks == nil || !mainBlocks.IsMonotonic() {
		return target
	}
	half := Ticks(mainBlocks.Capacity()/2) * mainBlocks.MonotonicDuration()
	if target > half {
		return target - half
	}
	return target
}

// drainToTarget reads and decodes forward until the main buffer covers
// target or the demuxer/components can give no more.
func (se *seekExecutor) drainToTarget(mainType MediaType, mainBlocks *BlockBuffer, target Ticks) {
	for {
		if mainBlocks != nil && mainBlocks.IsInRange(target) {
			return
		}
		packet, found, err := se.container.Read()
		if err != nil || !found {
			return
		}
		c := se.componentForStream(packet)
		if c == nil {
			continue
		}
		c.SendPacket(packet)
		bb := se.blocks.Get(c.Type)
		if bb == nil || (bb.IsFull() && bb.IsInRange(target)) {
			continue
		}
		frame, err := c.ReceiveNextFrame()
		if err != nil || frame == nil {
			continue
		}
		bb.Add(frame, c.MaterializeFrame)
	}
}

func (se *seekExecutor) componentForStream(p MediaPacket) *MediaComponent {
	var c *MediaComponent
	se.components.ForEach(func(comp *MediaComponent) {
		if comp.StreamIndex == p.StreamIndex {
			c = comp
		}
	})
	return c
}

func (se *seekExecutor) finalPosition(mainBlocks *BlockBuffer, target, initial Ticks) Ticks {
	if mainBlocks == nil {
		return initial
	}
	if mainBlocks.IsInRange(target) {
		return target
	}
	if mainBlocks.Len() == 0 {
		if target != 0 {
			return initial
		}
		return 0
	}
	return clampTicks(target, mainBlocks.RangeStart(), mainBlocks.RangeEnd())
}

// finish invalidates every renderer's cached last-render-time so the next
// render tick is forced to re-present regardless of which block it lands on.
func (se *seekExecutor) finish() {
	if se.invalidateRenderer == nil {
		return
	}
	se.blocks.ForEach(func(t MediaType, _ *BlockBuffer) { se.invalidateRenderer(t) })
}
