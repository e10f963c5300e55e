package mediacore

import "sync"

// PriorityCommand is one of the three mutually-coalescing transport
// commands: at most one is queued at a time, newest wins.
type PriorityCommand uint8

const (
	PriorityNone PriorityCommand = iota
	PriorityPlay
	PriorityPause
	PriorityStop
)

// SeekMode distinguishes the ways a seek target is resolved: a normal
// seek to a requested position, a step forward or backward, and the seek
// to zero that a Stop performs.
type SeekMode uint8

const (
	SeekNormal SeekMode = iota
	SeekStepForward
	SeekStepBackward
	SeekToStop
)

// SeekRequest is a coalesced seek/step command: a new request of any mode
// replaces whatever was previously queued.
type SeekRequest struct {
	Mode   SeekMode
	Target Ticks
	done   chan CommandResult
}

// CommandResult is the outcome every mutating Engine call eventually
// resolves to.
type CommandResult uint8

const (
	ResultOk CommandResult = iota
	ResultCancelled
)

// DirectKind distinguishes the three direct commands, which are mutually
// exclusive with each other and with running workers.
type DirectKind uint8

const (
	DirectOpen DirectKind = iota
	DirectClose
	DirectChange
)

// DirectCommand carries whatever payload its kind needs (a Source for
// Open; nothing for Close/Change).
type DirectCommand struct {
	Kind   DirectKind
	Source Source
	done   chan CommandResult
}

// Future is the caller-facing handle for a queued mutating call. Wait
// blocks until the command resolves; most callers should not block on it
// and can discard it instead.
type Future struct {
	ch chan CommandResult
}

func newFuture() (*Future, chan CommandResult) {
	ch := make(chan CommandResult, 1)
	return &Future{ch: ch}, ch
}

func (f *Future) Wait() CommandResult { return <-f.ch }

func resolve(ch chan CommandResult, r CommandResult) {
	if ch == nil {
		return
	}
	select {
	case ch <- r:
	default:
	}
}

// CommandCoordinator arbitrates the three command kinds and the cycle
// gates the worker triplet waits on. All fields are
// guarded by mutex except the cycle condition variables, which have
// their own.
type CommandCoordinator struct {
	mutex sync.Mutex

	hasPendingDirect bool
	isExecutingDirect bool
	isClosing        bool
	isChanging       bool

	pendingPriority     PriorityCommand
	pendingPriorityDone chan CommandResult

	queuedSeek *SeekRequest

	directCond *sync.Cond

	cycles [3]*cycleGate // read, decode, render, in that order
}

type cycleGate struct {
	mutex     sync.Mutex
	cond      *sync.Cond
	inProgress bool
}

func newCycleGate() *cycleGate {
	g := &cycleGate{}
	g.cond = sync.NewCond(&g.mutex)
	return g
}

func (g *cycleGate) begin() {
	g.mutex.Lock()
	g.inProgress = true
	g.mutex.Unlock()
}

func (g *cycleGate) complete() {
	g.mutex.Lock()
	g.inProgress = false
	g.cond.Broadcast()
	g.mutex.Unlock()
}

func (g *cycleGate) waitIdle() {
	g.mutex.Lock()
	for g.inProgress {
		g.cond.Wait()
	}
	g.mutex.Unlock()
}

func (g *cycleGate) isInProgress() bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.inProgress
}

const (
	cycleRead = iota
	cycleDecode
	cycleRender
)

func NewCommandCoordinator() *CommandCoordinator {
	c := &CommandCoordinator{}
	c.directCond = sync.NewCond(&c.mutex)
	c.cycles[cycleRead] = newCycleGate()
	c.cycles[cycleDecode] = newCycleGate()
	c.cycles[cycleRender] = newCycleGate()
	return c
}

func (c *CommandCoordinator) ReadCycle() *cycleGate   { return c.cycles[cycleRead] }
func (c *CommandCoordinator) DecodeCycle() *cycleGate { return c.cycles[cycleDecode] }
func (c *CommandCoordinator) RenderCycle() *cycleGate { return c.cycles[cycleRender] }

// SubmitDirect enqueues a direct command, cancelling any pending priority
// or seek command, and blocks
// the caller's goroutine only until the slot is claimed (not until the
// command finishes) — Future.Wait() is how a caller awaits completion.
func (c *CommandCoordinator) SubmitDirect(kind DirectKind, source Source) (*DirectCommand, *Future) {
	c.mutex.Lock()
	c.cancelPendingPriorityLocked()
	c.cancelQueuedSeekLocked()
	c.hasPendingDirect = true
	if kind == DirectClose {
		c.isClosing = true
	}
	if kind == DirectChange {
		c.isChanging = true
	}
	c.mutex.Unlock()

	future, ch := newFuture()
	return &DirectCommand{Kind: kind, Source: source, done: ch}, future
}

// BeginDirect marks direct execution as started; called by the coordinator
// owner once workers have been paused to idle.
func (c *CommandCoordinator) BeginDirect() {
	c.mutex.Lock()
	c.isExecutingDirect = true
	c.mutex.Unlock()
}

// CompleteDirect resolves cmd and clears the direct-command gates.
func (c *CommandCoordinator) CompleteDirect(cmd *DirectCommand, result CommandResult) {
	c.mutex.Lock()
	c.hasPendingDirect = false
	c.isExecutingDirect = false
	if cmd.Kind == DirectClose {
		c.isClosing = false
	}
	if cmd.Kind == DirectChange {
		c.isChanging = false
	}
	c.directCond.Broadcast()
	c.mutex.Unlock()
	resolve(cmd.done, result)
}

// SubmitPriority coalesces a Play/Pause/Stop request: it supersedes
// (cancels) any priority request already queued, and also cancels any
// queued seek, per rule 2 ("a priority command cancels and supersedes
// any pending seek").
func (c *CommandCoordinator) SubmitPriority(p PriorityCommand) *Future {
	c.mutex.Lock()
	c.cancelPendingPriorityLocked()
	c.cancelQueuedSeekLocked()
	future, ch := newFuture()
	c.pendingPriority = p
	c.pendingPriorityDone = ch
	c.mutex.Unlock()
	return future
}

func (c *CommandCoordinator) cancelPendingPriorityLocked() {
	if c.pendingPriority != PriorityNone {
		resolve(c.pendingPriorityDone, ResultCancelled)
		c.pendingPriority = PriorityNone
		c.pendingPriorityDone = nil
	}
}

// TakePriority consumes the queued priority command, if any, for the
// decode worker to process at most once per decode cycle.
func (c *CommandCoordinator) TakePriority() (PriorityCommand, chan CommandResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	p, ch := c.pendingPriority, c.pendingPriorityDone
	c.pendingPriority, c.pendingPriorityDone = PriorityNone, nil
	return p, ch
}

// SubmitSeek coalesces a seek/step request per rule 3: queued seeks never
// run while a direct or priority command is pending, and a new seek
// replaces whatever was previously queued.
func (c *CommandCoordinator) SubmitSeek(mode SeekMode, target Ticks) *Future {
	c.mutex.Lock()
	c.cancelQueuedSeekLocked()
	future, ch := newFuture()
	c.queuedSeek = &SeekRequest{Mode: mode, Target: target, done: ch}
	c.mutex.Unlock()
	return future
}

func (c *CommandCoordinator) cancelQueuedSeekLocked() {
	if c.queuedSeek != nil {
		resolve(c.queuedSeek.done, ResultCancelled)
		c.queuedSeek = nil
	}
}

// TakeSeek consumes the queued seek, if one is runnable (no direct or
// priority command pending).
func (c *CommandCoordinator) TakeSeek() *SeekRequest {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.hasPendingDirect || c.pendingPriority != PriorityNone {
		return nil
	}
	req := c.queuedSeek
	c.queuedSeek = nil
	return req
}

func (c *CommandCoordinator) HasPendingDirect() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.hasPendingDirect
}

func (c *CommandCoordinator) IsExecutingDirect() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isExecutingDirect
}

func (c *CommandCoordinator) IsClosing() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isClosing
}

func (c *CommandCoordinator) IsChanging() bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.isChanging
}

// WaitForDirectIdle blocks until no direct command is executing, the
// suspension point the reader/decoder loops use at the top of each cycle.
func (c *CommandCoordinator) WaitForDirectIdle() {
	c.mutex.Lock()
	for c.isExecutingDirect {
		c.directCond.Wait()
	}
	c.mutex.Unlock()
}

// PauseWorkersToIdle blocks until all three cycle gates report idle, used
// before running a direct command or the re-demux path of a seek.
func (c *CommandCoordinator) PauseWorkersToIdle() {
	for _, g := range c.cycles {
		g.waitIdle()
	}
}
