package threadpool

import "sync/atomic"

// Termination is a distributed termination detector: each worker
// reports whether it saw pending work during the round; the round's
// barrier leader then reads Quiescent to decide whether every worker
// was idle, declaring global quiescence, or whether to reset and run
// another round.
type Termination struct {
	active atomic.Int32
}

// ReportActive marks that the calling worker saw pending work this round.
func (t *Termination) ReportActive() { t.active.Add(1) }

// Quiescent reports whether no worker reported activity since the last Reset.
func (t *Termination) Quiescent() bool { return t.active.Load() == 0 }

// Reset clears the activity count for the next round.
func (t *Termination) Reset() { t.active.Store(0) }
