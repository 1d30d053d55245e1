// Package task implements the cooperative-task primitive the prefetch
// pipeline needs: a tiny, stackless, single-threaded unit of work that
// suspends only at explicit yield points and is driven, one step at a
// time, by the executor. Any implementation strategy is acceptable for
// this shape — stackless state machines, manual two-phase loops, or an
// actual cooperative-task facility — and this package takes the manual
// two-phase-loop route as a valid collapse of the general case.
package task

// Task is a single step of cooperative work. Step advances the task to
// its next yield point and reports whether this step was the task's
// final one: true means the batch is done, false means more work
// remains and Step should be called again.
type Task interface {
	Step() (done bool)
}

// TwoPhase implements the engine's "prefetch a batch, suspend, consume"
// shape as an explicit two-step state machine: Prefetch runs on the
// task's first Step, issuing software prefetches for the current lane;
// Process runs on the second Step, once the prefetched lines have had
// time to arrive, and reports whether the whole batch is done.
//
// Suspension here is genuinely cheap by construction: there is no
// stack to save, no scheduler involved, just a field flip and a
// return — the cost is a function call, not a context switch.
type TwoPhase struct {
	Prefetch func()
	Process  func() (done bool)

	prefetched bool
}

// Step implements Task.
func (t *TwoPhase) Step() (done bool) {
	if !t.prefetched {
		t.Prefetch()
		t.prefetched = true
		return false
	}
	t.prefetched = false
	return t.Process()
}

// Run drives t to completion. The task never migrates goroutines and is
// never preempted mid-step: a task runs to its next yield, full stop.
func Run(t Task) {
	for {
		if t.Step() {
			return
		}
	}
}
