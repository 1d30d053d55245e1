package engine

import (
	"sync/atomic"

	"github.com/shayshani/corograph/obim"
)

// NewSSSP builds the single-source-shortest-paths algorithm adapter:
// state is distance, initialized to MaxNum except start (0), edges
// apply weight by addition, and the indexer buckets by distance >>
// stepShift (delta-stepping).
func NewSSSP(numV uint32, start uint32, stepShift uint) *Algorithm {
	state := make([]atomic.Uint32, numV)
	for i := range state {
		state[i].Store(MaxNum)
	}
	state[start].Store(0)

	alg := &Algorithm{
		Name:  "sssp",
		State: state,
		FilterFunc: func(vid, candidateVal uint32) bool {
			return candidateVal > state[vid].Load()
		},
		ApplyWeight: func(edgeWeight, srcVal uint32) uint32 {
			return srcVal + edgeWeight
		},
		GatherFunc: func(destVid, candidateVal uint32) bool {
			return AtomicMin(state, destVid, candidateVal)
		},
		PushFunc: func(dst, newVal uint32) FrontierItem {
			return FrontierItem{Vid: dst, Val: newVal}
		},
	}
	alg.Indexer = SSSPIndexer(stepShift)
	return alg
}

// SSSPIndexer quantizes distance into a delta-stepping bucket.
func SSSPIndexer(stepShift uint) obim.Indexer[FrontierItem] {
	return func(item FrontierItem) obim.Index { return obim.Index(item.Val >> stepShift) }
}

// InitialFrontier returns the single-item frontier SSSP starts from.
func InitialFrontier(start uint32) []FrontierItem {
	return []FrontierItem{{Vid: start, Val: 0}}
}
