package mediacore

import "math"

const minRenderTime Ticks = math.MinInt64

// renderState tracks the last-rendered block start time per media type,
// used to avoid redundant Render calls and to force a re-present after a
// seek.
type renderState struct {
	last map[MediaType]Ticks
}

func newRenderState() *renderState {
	rs := &renderState{last: make(map[MediaType]Ticks)}
	for _, t := range knownMediaTypes {
		rs.last[t] = minRenderTime
	}
	return rs
}

func (rs *renderState) invalidate(t MediaType) { rs.last[t] = minRenderTime }

// renderTick runs one pass of the renderer contract. It is
// driven by a Timer at roughly render_tick_interval and skips entirely
// if a cycle is already running, a direct command owns the workers, or a
// seek is in flight.
func (e *Engine) renderTick() {
	gate := e.coordinator.RenderCycle()
	if gate.isInProgress() || e.coordinator.IsExecutingDirect() || e.coordinator.IsClosing() {
		return
	}
	if e.isSeeking.Load() {
		return
	}

	gate.begin()
	defer gate.complete()

	wallClock := e.clock.ReadPosition()

	e.blocks.ForEach(func(t MediaType, bb *BlockBuffer) {
		block := bb.BlockAt(wallClock)
		if block == nil {
			return
		}

		if e.renderState.last[t] == minRenderTime || block.StartTime != e.renderState.last[t] {
			block.LockReader()
			if r := e.renderers[t]; r != nil {
				if err := r.Render(block); err != nil {
					logf(aspectRendering, "render error for %s: %v", t, err)
				}
			}
			block.UnlockReader()
			e.renderState.last[t] = block.StartTime
		}
	})

	e.forEachRenderer(func(r Renderer) {
		if err := r.Update(wallClock); err != nil {
			logf(aspectRendering, "renderer update error: %v", err)
		}
	})

	if !e.isSyncBuffering.Load() {
		e.state.setPosition(wallClock)
		e.dispatcher.PositionChanged(wallClock)
	}
}

func (e *Engine) invalidateRenderer(t MediaType) {
	e.renderState.invalidate(t)
}

func (e *Engine) forEachRenderer(fn func(Renderer)) {
	for _, t := range knownMediaTypes {
		if r := e.renderers[t]; r != nil {
			fn(r)
		}
	}
}
