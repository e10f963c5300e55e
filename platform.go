package mediacore

import "time"

// Platform is the host integration seam: everything the
// engine needs from its embedding environment but must not assume about
// directly (thread marshaling, renderer construction, timers).
type Platform interface {
	// UIInvoke runs fn on whatever thread Connector callbacks and
	// property-changed notifications must be delivered on, synchronously
	// (the engine blocks until fn returns).
	UIInvoke(fn func())
	// UIEnqueueInvoke schedules fn to run on that same thread, without
	// waiting for it to complete.
	UIEnqueueInvoke(fn func())

	// CreateRenderer builds a Renderer for the given media type, or nil
	// if the host has no presentation surface for it (e.g. headless audio
	// hosts never asked for a video renderer).
	CreateRenderer(t MediaType) Renderer

	// CreateTimer builds the Timer that drives the periodic render tick.
	CreateTimer() Timer

	// IsInDesignTime reports whether the engine is running inside a
	// design-time/editor preview, where workers should stay dormant.
	IsInDesignTime() bool
}

// Renderer is the per-media-type presentation sink driven by the render
// worker.
type Renderer interface {
	// WaitForReadyState blocks until the renderer's backing surface (GPU
	// device, audio device) is usable.
	WaitForReadyState() error

	// Play/Pause/Stop/Close mirror the controller's playback intent.
	Play() error
	Pause() error
	Stop() error
	Close() error

	// Seek discards any buffered presentation state ahead of a
	// reposition, so stale blocks are never drawn/played after a seek.
	Seek(target Ticks) error

	// Update advances renderer-internal pacing state (e.g. audio
	// pre-roll) given the current clock position; called every render
	// tick regardless of whether a new block was selected.
	Update(position Ticks) error

	// Render presents block, which the renderer does not own past the
	// call (the caller holds its read lock for the duration).
	Render(block *MediaBlock) error
}

// Timer abstracts a steady ticking signal used to drive the periodic
// render tick.
type Timer interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

// systemTimer is the default Timer, backed by time.Timer, used whenever a
// Platform does not need a custom pacing source.
type systemTimer struct {
	t *time.Timer
}

func NewSystemTimer(d time.Duration) Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

func (s *systemTimer) C() <-chan time.Time { return s.t.C }
func (s *systemTimer) Reset(d time.Duration) {
	if !s.t.Stop() {
		select {
		case <-s.t.C:
		default:
		}
	}
	s.t.Reset(d)
}
func (s *systemTimer) Stop() { s.t.Stop() }
