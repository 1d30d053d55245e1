package task

import "testing"

func TestTwoPhaseStepsPrefetchThenProcess(t *testing.T) {
	var order []string
	tp := &TwoPhase{
		Prefetch: func() { order = append(order, "prefetch") },
		Process: func() bool {
			order = append(order, "process")
			return true
		},
	}
	if done := tp.Step(); done {
		t.Fatalf("first step should not be done (it only prefetches)")
	}
	if done := tp.Step(); !done {
		t.Fatalf("second step should report done")
	}
	if len(order) != 2 || order[0] != "prefetch" || order[1] != "process" {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestTwoPhaseProcessCanReportNotDone(t *testing.T) {
	remaining := 2
	prefetches := 0
	tp := &TwoPhase{
		Prefetch: func() { prefetches++ },
		Process: func() bool {
			remaining--
			return remaining <= 0
		},
	}
	Run(tp)
	// Run drives until Process finally reports done; Process was called
	// twice (remaining: 2->1 not done, 1->0 done), each preceded by a
	// Prefetch step, so 4 total Step calls.
	if remaining != 0 {
		t.Fatalf("Process called %d times, want 2", 2-remaining)
	}
	if prefetches != 2 {
		t.Fatalf("Prefetch called %d times, want 2", prefetches)
	}
}

func TestLaneFillsAndReports(t *testing.T) {
	lane := NewLane[int](3)
	for i := 0; i < 3; i++ {
		if !lane.Add(i) {
			t.Fatalf("add %d should succeed", i)
		}
	}
	if !lane.Full() {
		t.Fatalf("lane should be full")
	}
	if lane.Add(99) {
		t.Fatalf("add beyond capacity should fail")
	}
	if got := lane.Items(); len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	lane.Reset()
	if lane.Full() {
		t.Fatalf("lane should not be full after reset")
	}
}

func TestDefaultLaneSize(t *testing.T) {
	lane := NewLane[int](0)
	if lane.Cap() != DefaultLaneSize {
		t.Fatalf("expected default lane size %d, got %d", DefaultLaneSize, lane.Cap())
	}
}
