package mediacore

import "testing"

func fillVideo(bb *BlockBuffer, start, dur Ticks, n int) {
	materialize := func(f *MediaFrame, b *MediaBlock) {
		b.StartTime = f.StartTime
		b.EndTime = f.StartTime + f.Duration
	}
	for i := 0; i < n; i++ {
		f := &MediaFrame{Type: TypeVideo, StartTime: start + Ticks(i)*dur, Duration: dur}
		bb.Add(f, materialize)
	}
}

func TestBlockBufferPoolPlaybackInvariant(t *testing.T) {
	bb := NewBlockBuffer(TypeVideo, 4)
	if bb.Len() != 0 || !(len(bb.pool) == 4) {
		t.Fatalf("expected empty playback and full pool at start")
	}
	fillVideo(bb, 0, 1000, 3)
	if bb.Len() != 3 {
		t.Fatalf("expected 3 blocks in playback, got %d", bb.Len())
	}
	if got := len(bb.pool) + bb.Len(); got != bb.Capacity() {
		t.Fatalf("pool+playback should equal capacity, got %d", got)
	}

	// filling past capacity should recycle the oldest block
	fillVideo(bb, 3000, 1000, 2)
	if !bb.IsFull() {
		t.Fatal("expected buffer to be full")
	}
	if got := len(bb.pool) + bb.Len(); got != bb.Capacity() {
		t.Fatalf("pool+playback should equal capacity after recycling, got %d", got)
	}
	if bb.RangeStart() != 1000 {
		t.Fatalf("expected oldest block (start=0) to have been recycled, range start = %d", bb.RangeStart())
	}
}

func TestBlockBufferSortedOrder(t *testing.T) {
	bb := NewBlockBuffer(TypeVideo, 4)
	materialize := func(f *MediaFrame, b *MediaBlock) {
		b.StartTime = f.StartTime
		b.EndTime = f.StartTime + f.Duration
	}
	// insert out of order
	order := []Ticks{3000, 1000, 0, 2000}
	for _, start := range order {
		f := &MediaFrame{Type: TypeVideo, StartTime: start, Duration: 1000}
		bb.Add(f, materialize)
	}
	var last Ticks = -1
	for i := 0; i < bb.Len(); i++ {
		b := bb.playback[i]
		if b.StartTime < last {
			t.Fatalf("playback window not sorted at index %d", i)
		}
		if b.index != i {
			t.Fatalf("block index out of sync: want %d got %d", i, b.index)
		}
		last = b.StartTime
	}
}

func TestBlockBufferIndexOf(t *testing.T) {
	bb := NewBlockBuffer(TypeVideo, 5)
	fillVideo(bb, 0, 1000, 5) // blocks at [0,1000) [1000,2000) ... [4000,5000)

	if i := bb.IndexOf(-500); i != 0 {
		t.Fatalf("expected 0 for ticks before range, got %d", i)
	}
	if i := bb.IndexOf(10000); i != bb.Len()-1 {
		t.Fatalf("expected last index for ticks after range, got %d", i)
	}
	if i := bb.IndexOf(1500); i != 1 {
		t.Fatalf("expected index 1 for ticks=1500, got %d", i)
	}
	b := bb.playback[bb.IndexOf(1500)]
	if !(bb.RangeStart() <= b.StartTime && b.StartTime <= 1500) {
		t.Fatalf("IndexOf postcondition violated")
	}
}

func TestBlockBufferEmptyIndexOf(t *testing.T) {
	bb := NewBlockBuffer(TypeVideo, 3)
	if i := bb.IndexOf(0); i != -1 {
		t.Fatalf("expected -1 for empty buffer, got %d", i)
	}
}

func TestBlockBufferMonotonic(t *testing.T) {
	bb := NewBlockBuffer(TypeVideo, 4)
	fillVideo(bb, 0, 1000, 4)
	if !bb.IsMonotonic() {
		t.Fatal("expected monotonic buffer for equal-duration blocks")
	}
	if bb.MonotonicDuration() != 1000 {
		t.Fatalf("expected monotonic duration 1000, got %d", bb.MonotonicDuration())
	}

	bb2 := NewBlockBuffer(TypeVideo, 4)
	materialize := func(f *MediaFrame, b *MediaBlock) {
		b.StartTime = f.StartTime
		b.EndTime = f.StartTime + f.Duration
	}
	bb2.Add(&MediaFrame{StartTime: 0, Duration: 1000}, materialize)
	bb2.Add(&MediaFrame{StartTime: 1000, Duration: 500}, materialize)
	if bb2.IsMonotonic() {
		t.Fatal("expected non-monotonic buffer for differing durations")
	}
}

func TestBlockBufferNeighborsAndContinuousNext(t *testing.T) {
	bb := NewBlockBuffer(TypeVideo, 4)
	fillVideo(bb, 0, 1000, 4)
	prev, next, current := bb.Neighbors(1500)
	if current == nil || current.StartTime != 1000 {
		t.Fatalf("expected current block start=1000, got %+v", current)
	}
	if prev == nil || prev.StartTime != 0 {
		t.Fatalf("expected previous block start=0, got %+v", prev)
	}
	if next == nil || next.StartTime != 2000 {
		t.Fatalf("expected next block start=2000, got %+v", next)
	}
	if cn := bb.ContinuousNext(current); cn == nil || cn.StartTime != 2000 {
		t.Fatalf("expected gapless continuous next, got %+v", cn)
	}
}

func TestBlockBufferClear(t *testing.T) {
	bb := NewBlockBuffer(TypeVideo, 4)
	fillVideo(bb, 0, 1000, 4)
	bb.Clear()
	if bb.Len() != 0 {
		t.Fatalf("expected 0 blocks after Clear, got %d", bb.Len())
	}
	if len(bb.pool) != bb.Capacity() {
		t.Fatalf("expected all blocks back in pool after Clear")
	}
	if bb.IsInRange(0) {
		t.Fatal("cleared buffer should report nothing in range")
	}
}
