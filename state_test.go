package mediacore

import "testing"

func TestEngineStateSetMediaReportsChange(t *testing.T) {
	s := newEngineState(NewOptions())
	change, changed := s.setMedia(StateOpening)
	if !changed {
		t.Fatal("expected Idle -> Opening to report a change")
	}
	if change.Old != StateIdle || change.New != StateOpening {
		t.Fatalf("unexpected change %+v", change)
	}

	_, changed = s.setMedia(StateOpening)
	if changed {
		t.Fatal("setting the same state twice should report no change")
	}
}

func TestEngineStateClampsVolumeAndBalance(t *testing.T) {
	s := newEngineState(NewOptions())
	s.setVolume(5)
	s.setBalance(-5)
	snap := s.Snapshot()
	if snap.Volume != 1 {
		t.Fatalf("expected volume clamped to 1, got %v", snap.Volume)
	}
	if snap.Balance != -1 {
		t.Fatalf("expected balance clamped to -1, got %v", snap.Balance)
	}
}

func TestEngineStateResetPreservesControllerDefaults(t *testing.T) {
	s := newEngineState(NewOptions())
	s.setVolume(0.5)
	s.setMedia(StatePlaying)
	s.setPosition(TicksFromDuration(0))
	s.setOpen(true)

	s.reset()

	snap := s.Snapshot()
	if snap.Media != StateIdle {
		t.Fatalf("expected Media reset to Idle, got %v", snap.Media)
	}
	if snap.IsOpen {
		t.Fatal("expected IsOpen reset to false")
	}
	if snap.Volume != 0.5 {
		t.Fatalf("expected volume to survive reset, got %v", snap.Volume)
	}
}

func TestEngineStateSnapshotIsIndependentCopy(t *testing.T) {
	s := newEngineState(NewOptions())
	snap := s.Snapshot()
	s.setVolume(0.1)
	if snap.Volume == 0.1 {
		t.Fatal("snapshot should not observe later mutations")
	}
}
