package mediacore

import "testing"

type recordingConnector struct {
	NoopConnector
	opened  int
	closed  int
	lastErr error
}

func (r *recordingConnector) OnMediaOpened(*MediaInfo) { r.opened++ }
func (r *recordingConnector) OnMediaClosed()           { r.closed++ }
func (r *recordingConnector) OnMediaFailed(err error)  { r.lastErr = err }

type panickingConnector struct{ NoopConnector }

func (panickingConnector) OnMediaOpened(*MediaInfo) { panic("boom") }

func TestEventDispatcherFansOutToAllListeners(t *testing.T) {
	d := NewEventDispatcher(nil)
	a := &recordingConnector{}
	b := &recordingConnector{}
	d.Add(a)
	d.Add(b)

	d.MediaOpened(&MediaInfo{})

	if a.opened != 1 || b.opened != 1 {
		t.Fatalf("expected both listeners notified, got a=%d b=%d", a.opened, b.opened)
	}
}

func TestEventDispatcherRemove(t *testing.T) {
	d := NewEventDispatcher(nil)
	a := &recordingConnector{}
	d.Add(a)
	d.Remove(a)
	d.MediaOpened(&MediaInfo{})
	if a.opened != 0 {
		t.Fatal("removed listener should not be notified")
	}
}

func TestEventDispatcherSwallowsListenerPanic(t *testing.T) {
	d := NewEventDispatcher(nil)
	d.Add(panickingConnector{})
	survivor := &recordingConnector{}
	d.Add(survivor)

	d.MediaOpened(&MediaInfo{}) // must not panic out of this call

	if survivor.opened != 1 {
		t.Fatal("a panicking listener must not prevent its peers from running")
	}
}

func TestEventDispatcherInvokeRunsOnGivenThread(t *testing.T) {
	var invoked bool
	d := NewEventDispatcher(func(fn func()) {
		invoked = true
		fn()
	})
	d.MediaClosed()
	if !invoked {
		t.Fatal("expected the dispatcher to route through the injected invoker")
	}
}
