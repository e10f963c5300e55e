package mediacore

import "testing"

func TestCommandCoordinatorPrioritySupersedes(t *testing.T) {
	c := NewCommandCoordinator()
	playFuture := c.SubmitPriority(PriorityPlay)
	pauseFuture := c.SubmitPriority(PriorityPause)

	if r := playFuture.Wait(); r != ResultCancelled {
		t.Fatalf("superseded play should be Cancelled, got %v", r)
	}

	p, done := c.TakePriority()
	if p != PriorityPause {
		t.Fatalf("expected Pause to survive, got %v", p)
	}
	resolve(done, ResultOk)
	if r := pauseFuture.Wait(); r != ResultOk {
		t.Fatalf("expected Ok, got %v", r)
	}
}

func TestCommandCoordinatorSeekCoalesces(t *testing.T) {
	c := NewCommandCoordinator()
	first := c.SubmitSeek(SeekNormal, 100)
	second := c.SubmitSeek(SeekNormal, 200)

	if r := first.Wait(); r != ResultCancelled {
		t.Fatalf("superseded seek should be Cancelled, got %v", r)
	}

	req := c.TakeSeek()
	if req == nil || req.Target != 200 {
		t.Fatalf("expected coalesced seek to target 200, got %+v", req)
	}
	resolve(req.done, ResultOk)
	if r := second.Wait(); r != ResultOk {
		t.Fatalf("expected Ok, got %v", r)
	}
}

func TestCommandCoordinatorPriorityCancelsQueuedSeek(t *testing.T) {
	c := NewCommandCoordinator()
	seekFuture := c.SubmitSeek(SeekNormal, 300)
	pauseFuture := c.SubmitPriority(PriorityPause)

	if r := seekFuture.Wait(); r != ResultCancelled {
		t.Fatalf("seek queued before a priority command should be Cancelled, got %v", r)
	}
	if req := c.TakeSeek(); req != nil {
		t.Fatalf("cancelled seek must not still be queued, got %+v", req)
	}

	p, done := c.TakePriority()
	if p != PriorityPause {
		t.Fatalf("expected Pause to survive, got %v", p)
	}
	resolve(done, ResultOk)
	if r := pauseFuture.Wait(); r != ResultOk {
		t.Fatalf("expected Ok, got %v", r)
	}

	// A fresh seek submitted after the priority command resolves must run.
	newSeek := c.SubmitSeek(SeekNormal, 300)
	req := c.TakeSeek()
	if req == nil || req.Target != 300 {
		t.Fatalf("expected a new seek to be queued and runnable, got %+v", req)
	}
	resolve(req.done, ResultOk)
	if r := newSeek.Wait(); r != ResultOk {
		t.Fatalf("expected Ok, got %v", r)
	}
}

func TestCommandCoordinatorDirectCancelsPriorityAndSeek(t *testing.T) {
	c := NewCommandCoordinator()
	priorityFuture := c.SubmitPriority(PriorityPlay)
	seekFuture := c.SubmitSeek(SeekNormal, 50)

	_, directFuture := c.SubmitDirect(DirectOpen, Source{})

	if r := priorityFuture.Wait(); r != ResultCancelled {
		t.Fatalf("priority should be cancelled by a direct command")
	}
	if r := seekFuture.Wait(); r != ResultCancelled {
		t.Fatalf("seek should be cancelled by a direct command")
	}
	if !c.HasPendingDirect() {
		t.Fatal("expected HasPendingDirect after SubmitDirect")
	}

	_ = directFuture
}

func TestCommandCoordinatorSeekBlockedByPendingDirect(t *testing.T) {
	c := NewCommandCoordinator()
	cmd, _ := c.SubmitDirect(DirectOpen, Source{})
	c.SubmitSeek(SeekNormal, 10)

	if req := c.TakeSeek(); req != nil {
		t.Fatal("seek should not run while a direct command is pending")
	}

	c.CompleteDirect(cmd, ResultOk)
	c.SubmitSeek(SeekNormal, 10)
	if req := c.TakeSeek(); req == nil {
		t.Fatal("seek should run once no direct command is pending")
	}
}

func TestCycleGateWaitIdle(t *testing.T) {
	g := newCycleGate()
	if g.isInProgress() {
		t.Fatal("new gate should be idle")
	}
	g.begin()
	if !g.isInProgress() {
		t.Fatal("gate should report in-progress after begin")
	}
	done := make(chan struct{})
	go func() {
		g.waitIdle()
		close(done)
	}()
	g.complete()
	<-done
}
