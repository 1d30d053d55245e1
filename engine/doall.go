package engine

import (
	"sync/atomic"

	"github.com/shayshani/corograph/obim"
	"github.com/shayshani/corograph/threadpool"
)

// DoAll runs fn once for every vertex in [0, numV), data-parallel over
// pool with no ordering guarantee and no priority queue involved —
// the degenerate case of the executor for algorithms (like a plain
// one-shot label initialization) that need no propagation at all.
func DoAll(pool *threadpool.Pool, numV uint32, fn func(vid uint32)) {
	pool.ParallelFor(int(numV), func(_, lo, hi int) {
		for v := uint32(lo); v < uint32(hi); v++ {
			fn(v)
		}
	})
}

// ConstantIndexer always returns the same bucket, collapsing OBIM's
// priority ordering to a plain FIFO — the shape a PageRank-style
// algorithm wants, since every iteration is a full synchronous sweep
// with no notion of "more urgent" vertices.
func ConstantIndexer() obim.Indexer[FrontierItem] {
	return func(FrontierItem) obim.Index { return 0 }
}

// CCIndexer buckets a connected-components frontier item the way the
// reference implementation's UpdateRequestIndexer does: labels below
// 10 are bucketed by label>>shift, everything else collapses into a
// single overflow bucket. The bound of 10 is arbitrary and only
// matters in that both the read and write paths agree on it; OBIM
// treats this as an opaque indexer, never interpreting its output.
func CCIndexer(shift uint) obim.Indexer[FrontierItem] {
	return func(item FrontierItem) obim.Index {
		if item.Val < 10 {
			return obim.Index(item.Val >> shift)
		}
		return 10
	}
}

// NewConnectedComponents builds the label-propagation algorithm
// adapter: state is the component label, initialized to each vertex's
// own id, propagated unweighted (ApplyWeight ignores the edge weight),
// and committed via atomic min so every vertex converges to the
// smallest id reachable in its component.
func NewConnectedComponents(numV uint32) *Algorithm {
	state := make([]atomic.Uint32, numV)
	for i := range state {
		state[i].Store(uint32(i))
	}

	alg := &Algorithm{
		Name:  "connected-components",
		State: state,
		FilterFunc: func(vid, candidateVal uint32) bool {
			return candidateVal > state[vid].Load()
		},
		ApplyWeight: func(_ uint32, srcVal uint32) uint32 {
			return srcVal
		},
		GatherFunc: func(destVid, candidateVal uint32) bool {
			return AtomicMin(state, destVid, candidateVal)
		},
		PushFunc: func(dst, newVal uint32) FrontierItem {
			return FrontierItem{Vid: dst, Val: newVal}
		},
	}
	alg.Indexer = CCIndexer(1)
	return alg
}

// InitialLabels returns the frontier every vertex starts from: its own
// id as its initial (and, until improved, final) component label.
func InitialLabels(numV uint32) []FrontierItem {
	items := make([]FrontierItem, numV)
	for i := range items {
		items[i] = FrontierItem{Vid: uint32(i), Val: uint32(i)}
	}
	return items
}
