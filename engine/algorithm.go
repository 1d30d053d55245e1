// Package engine implements the Scatter/Sync/Gather executor and the
// small algorithm-adapter capability set it is parameterized by, with
// shortest paths (SSSP) as the representative algorithm and connected
// components as a second, simpler instance of the same adapter shape.
package engine

import (
	"math"
	"sync/atomic"

	"github.com/shayshani/corograph/obim"
)

// MaxNum is the sentinel value for "unreached" per-vertex state.
const MaxNum = math.MaxUint32

// FrontierItem is a unit of Scatter-side work: a vertex together with
// the value (distance, label, ...) that justifies revisiting it.
type FrontierItem struct {
	Vid uint32
	Val uint32
}

// UpdateItem is a unit of Gather-side work: a candidate new value for
// a destination vertex, produced by Scatter and delivered through a
// partition's gather queue.
type UpdateItem struct {
	Vid uint32
	Val uint32
}

// Algorithm is the capability set the executor needs from whatever is
// actually being computed. Monotonicity of GatherFunc (state only ever
// moves in one direction) is required for convergence; it is not
// checked here — a non-monotone GatherFunc is a capability-contract
// violation and its effects are undefined.
type Algorithm struct {
	Name string

	// State is the shared per-vertex algorithm state, mutated only
	// through atomic operations during Gather and read during Scatter.
	State []atomic.Uint32

	// FilterFunc reports whether a frontier item is stale and should be
	// skipped: true when candidateVal is strictly worse than the
	// vertex's current live state (a value equal to the live state is
	// still current and is not skipped).
	FilterFunc func(vid, candidateVal uint32) bool
	// ApplyWeight turns an edge weight and the source vertex's current
	// value into a candidate value for the destination vertex.
	ApplyWeight func(edgeWeight, srcVal uint32) uint32
	// GatherFunc attempts to commit candidateVal as destVid's new
	// state, reporting true iff the state actually changed.
	GatherFunc func(destVid, candidateVal uint32) bool
	// PushFunc builds the frontier item to re-enqueue after a
	// successful Gather.
	PushFunc func(dst, newVal uint32) FrontierItem
	// Indexer assigns a priority bucket to a frontier item.
	Indexer obim.Indexer[FrontierItem]
}

// AtomicMin attempts to lower state[idx] to val, retrying under
// contention, and reports whether it actually changed the value. This
// is the "atomic min" primitive every monotone GatherFunc is built on.
func AtomicMin(state []atomic.Uint32, idx, val uint32) bool {
	for {
		old := state[idx].Load()
		if val >= old {
			return false
		}
		if state[idx].CompareAndSwap(old, val) {
			return true
		}
	}
}

// Snapshot copies the current per-vertex state into a plain slice, for
// callers that want a stable view after the engine has converged.
func (a *Algorithm) Snapshot() []uint32 {
	out := make([]uint32, len(a.State))
	for i := range a.State {
		out[i] = a.State[i].Load()
	}
	return out
}
