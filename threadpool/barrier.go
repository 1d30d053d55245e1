package threadpool

import "sync"

// Barrier is a reusable, sense-reversing round barrier: n participants
// call Wait once per round; the barrier releases all of them together
// once the last one arrives, and can be reused for the next round
// without reconstruction.
//
// Wait reports true to exactly one caller per round — the one whose
// arrival tripped the barrier — so the engine can elect a round leader
// (recomputing the minimum scan start, checking for termination)
// without any extra coordination. A round that needs the leader's
// output visible to everyone else before proceeding calls Wait twice:
// once to arrive and elect a leader, once more after the leader
// finishes its post-processing, so the happens-before edge of the
// barrier's own mutex makes that post-processing visible to every
// other participant.
type Barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	n     int
	count int
	sense bool
}

// NewBarrier creates a barrier for n participants.
func NewBarrier(n int) *Barrier {
	b := &Barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks until all n participants have called Wait for the
// current round, then returns. It reports true for exactly one caller.
func (b *Barrier) Wait() (isLeader bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	localSense := b.sense
	b.count++
	if b.count == b.n {
		b.count = 0
		b.sense = !b.sense
		b.cond.Broadcast()
		return true
	}
	for b.sense == localSense {
		b.cond.Wait()
	}
	return false
}
