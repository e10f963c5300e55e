package mediacore

import (
	"context"
	"math"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// defaultBufferCountThreshold is the packet-count half of
// MediaComponent.HasEnoughPackets' threshold pair.
const defaultBufferCountThreshold = 8

// atomicFloat64 is a tiny lock-free float64 cell, used for the few
// metrics workers publish without funneling through EngineState.
type atomicFloat64 struct{ bits atomic.Uint64 }

func (a *atomicFloat64) Store(v float64) { a.bits.Store(math.Float64bits(v)) }
func (a *atomicFloat64) Load() float64   { return math.Float64frombits(a.bits.Load()) }

// Engine is the top-level façade: it owns the container,
// component set, block buffers, clock, command coordinator and worker
// triplet for one open media session, and exposes the non-blocking
// mutating API plus read-only state accessors.
type Engine struct {
	platform   Platform
	options    *Options
	dispatcher *EventDispatcher
	state      *EngineState

	coordinator *CommandCoordinator
	clock       *RealTimeClock

	container  *MediaContainer
	components *ComponentSet
	blocks     *BlockSet

	renderers   map[MediaType]Renderer
	renderState *renderState

	isSeeking       atomic.Bool
	isSyncBuffering atomic.Bool
	mediaEnded      atomic.Bool

	decodingBitrate atomicFloat64

	cancelWorkers context.CancelFunc
	workers       *errgroup.Group

	renderTimer   Timer
	stopRenderTimer chan struct{}

	disposed atomic.Bool
}

// NewEngine constructs an Engine in its Idle state. Call Open to load media.
func NewEngine(platform Platform, options *Options, dispatcher *EventDispatcher) *Engine {
	if options == nil {
		options = NewOptions()
	}
	return &Engine{
		platform:    platform,
		options:     options,
		dispatcher:  dispatcher,
		state:       newEngineState(options),
		coordinator: NewCommandCoordinator(),
		clock:       NewRealTimeClock(),
		renderers:   make(map[MediaType]Renderer),
		renderState: newRenderState(),
	}
}

// Snapshot returns an immutable copy of the engine's observable state.
func (e *Engine) Snapshot() snapshot { return e.state.Snapshot() }

func (e *Engine) setMediaState(v MediaState) {
	if change, ok := e.state.setMedia(v); ok {
		e.dispatcher.PropertyChanged(change)
	}
}

// Open begins loading source asynchronously, tearing down any previously
// open media first. Returns a Future resolving to Ok once the open command
// has run, or to Cancelled immediately if the engine has been disposed.
func (e *Engine) Open(source Source) *Future {
	if e.disposed.Load() {
		f, ch := newFuture()
		resolve(ch, ResultCancelled)
		return f
	}
	cmd, future := e.coordinator.SubmitDirect(DirectOpen, source)
	go e.runDirect(cmd)
	return future
}

// Close tears down the current media session and stops all workers.
func (e *Engine) Close() *Future {
	if e.disposed.Load() {
		f, ch := newFuture()
		resolve(ch, ResultCancelled)
		return f
	}
	cmd, future := e.coordinator.SubmitDirect(DirectClose, Source{})
	go e.runDirect(cmd)
	return future
}

// ChangeMedia rebuilds the component set from the current options while
// keeping the container open.
func (e *Engine) ChangeMedia() *Future {
	cmd, future := e.coordinator.SubmitDirect(DirectChange, Source{})
	go e.runDirect(cmd)
	return future
}

func (e *Engine) runDirect(cmd *DirectCommand) {
	e.coordinator.WaitForDirectIdle()
	e.coordinator.PauseWorkersToIdle()
	e.coordinator.BeginDirect()

	var result CommandResult = ResultOk
	switch cmd.Kind {
	case DirectOpen:
		result = e.executeOpen(cmd.Source)
	case DirectClose:
		result = e.executeClose()
	case DirectChange:
		result = e.executeChange()
	}

	e.coordinator.CompleteDirect(cmd, result)
}

func (e *Engine) executeOpen(source Source) CommandResult {
	if e.container != nil {
		e.executeClose()
	}
	e.dispatcher.MediaInitializing()
	e.setMediaState(StateOpening)
	e.dispatcher.MediaOpening()

	container := &MediaContainer{}
	info, err := container.Open(source)
	if err != nil {
		e.setMediaState(StateFailed)
		e.state.setError(err)
		e.dispatcher.MediaFailed(err)
		return ResultOk
	}
	if err := container.OpenDecode(); err != nil {
		e.setMediaState(StateFailed)
		e.state.setError(err)
		e.dispatcher.MediaFailed(err)
		return ResultOk
	}

	e.container = container
	e.components = e.buildComponents(container)
	e.blocks = NewBlockSet(e.components, e.options)
	e.renderState = newRenderState()
	e.buildRenderers()

	frameRate, w, h, channels, sampleRate := e.probeFormat()
	e.state.setMediaInfo(info, frameRate, w, h, channels, sampleRate)
	e.state.setOpen(true)
	e.mediaEnded.Store(false)

	e.startWorkers()

	e.setMediaState(StateReady)
	e.dispatcher.MediaOpened(info)

	switch e.options.LoadedBehavior {
	case BehaviorPlay:
		e.coordinator.SubmitPriority(PriorityPlay)
	case BehaviorPause:
		e.coordinator.SubmitPriority(PriorityPause)
	case BehaviorStop:
		e.coordinator.SubmitPriority(PriorityStop)
	}
	return ResultOk
}

func (e *Engine) executeClose() CommandResult {
	e.stopWorkers()
	if e.container != nil {
		_ = e.container.Close()
	}
	e.forEachRenderer(func(r Renderer) { _ = r.Close() })
	e.container = nil
	e.components = nil
	e.blocks = nil
	e.state.setOpen(false)
	e.setMediaState(StateClosing)
	e.state.reset()
	e.dispatcher.MediaClosed()
	return ResultOk
}

func (e *Engine) executeChange() CommandResult {
	if e.container == nil {
		return ResultOk
	}
	e.dispatcher.MediaChanging()
	e.stopWorkers()

	components := e.buildComponents(e.container)
	if components.Video == nil && components.Audio == nil && components.Subtitle == nil {
		e.setMediaState(StatePaused)
		e.dispatcher.MediaFailed(&ChangeError{Cause: ErrNoVideo})
		return ResultOk
	}
	e.components = components
	e.blocks = NewBlockSet(e.components, e.options)
	e.renderState = newRenderState()
	e.buildRenderers()

	e.container.ClearAbort()
	e.startWorkers()
	e.dispatcher.MediaChanged(nil)
	return ResultOk
}

// buildComponents elects streams per the current Options' selection
// settings and wraps them into a ComponentSet, honoring
// IsVideoDisabled/IsAudioDisabled/IsSubtitleDisabled.
func (e *Engine) buildComponents(container *MediaContainer) *ComponentSet {
	cs := &ComponentSet{}
	o := e.options

	if !o.IsVideoDisabled && container.VideoStreamCount() > 0 {
		idx := o.VideoStream
		if idx < 0 || idx >= container.VideoStreamCount() {
			idx = 0
		}
		stream := container.VideoStream(idx)
		cs.Video = NewVideoComponent(stream, defaultBufferCountThreshold, TicksFromDuration(o.BufferCacheLength), container.IsAttachedPicture())
		_ = cs.Video.Open()
	}
	if !o.IsAudioDisabled && container.AudioStreamCount() > 0 {
		idx := o.AudioStream
		if idx < 0 || idx >= container.AudioStreamCount() {
			idx = 0
		}
		stream := container.AudioStream(idx)
		cs.Audio = NewAudioComponent(stream, defaultBufferCountThreshold, TicksFromDuration(o.BufferCacheLength))
		_ = cs.Audio.Open()
	}

	if !o.IsSubtitleDisabled && o.SubtitlePath != "" {
		track, err := LoadSubtitleTrack(o.SubtitlePath)
		if err != nil {
			logf(aspectContainer, "subtitle load error: %v", err)
		} else {
			cs.Subtitle = NewSubtitleComponent(track, defaultBufferCountThreshold, TicksFromDuration(o.BufferCacheLength))
			_ = cs.Subtitle.Open()
		}
	}

	return cs
}

func (e *Engine) buildRenderers() {
	e.renderers = make(map[MediaType]Renderer)
	if e.platform == nil {
		return
	}
	e.components.ForEach(func(c *MediaComponent) {
		if r := e.platform.CreateRenderer(c.Type); r != nil {
			e.renderers[c.Type] = r
		}
	})
}

// probeFormat gathers the handful of format details the renderer/state
// layer wants up front (frame rate, dimensions, channel layout).
func (e *Engine) probeFormat() (frameRate float64, w, h, channels, sampleRate int) {
	if e.components == nil {
		return
	}
	if v := e.components.Video; v != nil && v.videoStream != nil {
		w, h = v.videoStream.Width(), v.videoStream.Height()
		num, _ := v.videoStream.FrameRate()
		frameRate = float64(num)
	}
	if a := e.components.Audio; a != nil && a.audioStream != nil {
		sampleRate = a.audioStream.SampleRate()
		channels = a.audioStream.ChannelCount()
	}
	return
}

func (e *Engine) startWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelWorkers = cancel
	group, gctx := errgroup.WithContext(ctx)
	e.workers = group
	group.Go(func() error { return e.readerLoop(gctx) })
	group.Go(func() error { return e.decoderLoop(gctx) })

	e.startRenderTimer()
}

// startRenderTimer owns the periodic render callback. When the host platform supplies
// no Timer, the render tick is left to the host to drive via RenderTick.
func (e *Engine) startRenderTimer() {
	if e.platform == nil {
		return
	}
	timer := e.platform.CreateTimer()
	if timer == nil {
		return
	}
	e.renderTimer = timer
	e.stopRenderTimer = make(chan struct{})
	timer.Reset(e.options.RenderTickInterval)

	stop := e.stopRenderTimer
	go func() {
		for {
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C():
				e.renderTick()
				timer.Reset(e.options.RenderTickInterval)
			}
		}
	}()
}

func (e *Engine) stopRenderTimerIfRunning() {
	if e.stopRenderTimer != nil {
		close(e.stopRenderTimer)
		e.stopRenderTimer = nil
		e.renderTimer = nil
	}
}

// stopWorkers aborts any blocked container read, cancels the workers'
// context and joins the reader/decoder goroutines, implemented with
// errgroup instead of a bespoke WaitGroup/channel pairing. The join has no
// time limit.
func (e *Engine) stopWorkers() {
	if e.cancelWorkers == nil {
		return
	}
	if e.container != nil {
		e.container.SignalAbortReads()
	}
	e.cancelWorkers()
	_ = e.workers.Wait()
	e.cancelWorkers = nil
	e.workers = nil
	e.stopRenderTimerIfRunning()
}

// Play, Pause, Stop submit priority commands; all are non-blocking and
// resolve via the returned Future.
func (e *Engine) Play() *Future  { return e.coordinator.SubmitPriority(PriorityPlay) }
func (e *Engine) Pause() *Future { return e.coordinator.SubmitPriority(PriorityPause) }
func (e *Engine) Stop() *Future  { return e.coordinator.SubmitPriority(PriorityStop) }

func (e *Engine) RequestSeek(target Ticks) *Future {
	return e.coordinator.SubmitSeek(SeekNormal, target)
}
func (e *Engine) RequestStepForward() *Future {
	return e.coordinator.SubmitSeek(SeekStepForward, 0)
}
func (e *Engine) RequestStepBackward() *Future {
	return e.coordinator.SubmitSeek(SeekStepBackward, 0)
}

func (e *Engine) SetSpeedRatio(r float64) {
	e.clock.SetSpeedRatio(r)
	e.state.setSpeedRatio(r)
}
func (e *Engine) SetVolume(v float64) {
	e.state.setVolume(v)
}
func (e *Engine) SetBalance(b float64) {
	e.state.setBalance(b)
}
func (e *Engine) SetMuted(m bool) {
	e.state.setMuted(m)
}
func (e *Engine) SetScrubbingEnabled(v bool) {
	e.options.ScrubbingEnabled = v
}

// RenderTick should be called by the host's timer callback at roughly
// options.RenderTickInterval; it is a no-op when media isn't open.
func (e *Engine) RenderTick() {
	if e.blocks == nil {
		return
	}
	e.renderTick()
}

// Dispose permanently shuts the engine down. Open and Close called after
// Dispose return a Future already resolved to Cancelled; the other
// commands are not checked against disposal.
func (e *Engine) Dispose() {
	if !e.disposed.CompareAndSwap(false, true) {
		return
	}
	e.executeClose()
}
