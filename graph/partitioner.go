package graph

import (
	"fmt"
	"sort"

	"github.com/shayshani/corograph/algo"
	"github.com/shayshani/corograph/corographerr"
	"github.com/shayshani/corograph/threadpool"
)

// Partitioner runs the two-pass parallel build that converts a CSR into
// a PartitionedGraph, using pool to fan the per-vertex work out across
// workers.
type Partitioner struct {
	pool *threadpool.Pool
}

// NewPartitioner creates a partitioner driven by pool.
func NewPartitioner(pool *threadpool.Pool) *Partitioner {
	return &Partitioner{pool: pool}
}

// partitionSize computes the per-partition vertex span: ceil(numV / numPart).
func partitionSize(numV, numPart uint32) uint32 {
	return (numV + numPart - 1) / numPart
}

// vertexGroups scans v's CSR out-edges and buckets them by destination
// partition, returning groups in ascending partition-id order with each
// group's edges in their original CSR order. Both passes call this, so
// the fill pass's grouping is always consistent with the sizing pass's.
func vertexGroups(csr *CSR, v, partSize uint32) []Group {
	lo, hi := csr.NeighborRange(v)
	n := hi - lo
	if n == 0 {
		return nil
	}
	type tagged struct {
		partitionID uint32
		edge        Edge
	}
	tmp := make([]tagged, n)
	for i := uint32(0); i < n; i++ {
		edgeIdx := lo + i
		dst := csr.Edge[edgeIdx]
		tmp[i] = tagged{
			partitionID: dst / partSize,
			edge:        Edge{Dst: dst, Weight: csr.WeightOf(edgeIdx)},
		}
	}
	sort.SliceStable(tmp, func(i, j int) bool { return tmp[i].partitionID < tmp[j].partitionID })

	var groups []Group
	for _, t := range tmp {
		if len(groups) > 0 && groups[len(groups)-1].PartitionID == t.partitionID {
			last := &groups[len(groups)-1]
			last.Edges = append(last.Edges, t.edge)
			continue
		}
		groups = append(groups, Group{PartitionID: t.partitionID, Edges: []Edge{t.edge}})
	}
	return groups
}

// validateGroup checks that a group's encoding will fit the width it
// would be packed into, failing fast rather than producing a record
// the read path can't decode correctly.
func validateGroup(g Group) error {
	if g.PartitionID > MaxPartitionID {
		return fmt.Errorf("partition id %d exceeds inline limit %d", g.PartitionID, MaxPartitionID)
	}
	if len(g.Edges) > MaxGroupCount {
		return fmt.Errorf("group count %d exceeds limit %d", len(g.Edges), MaxGroupCount)
	}
	switch len(g.Edges) {
	case 1:
		e := g.Edges[0]
		if !fitsInline1(e.Dst, e.Weight) {
			return fmt.Errorf("edge (dst=%d, weight=%d) does not fit single-edge inline encoding", e.Dst, e.Weight)
		}
	case 2:
		if !fitsInline2(g.Edges[0], g.Edges[1]) {
			return fmt.Errorf("edges (%+v, %+v) do not fit two-edge inline encoding", g.Edges[0], g.Edges[1])
		}
	}
	return nil
}

// maxAllocationWords bounds the element count of Vtx, Overflow and
// HighEdge at 2^30, so Build fails fast with a KindAllocation error
// instead of handing make() a bug-sized count that triggers an OOM with
// no diagnostic attached. The bound is on elements, not bytes: at the
// bound Overflow is 4 GiB, HighEdge 8 GiB and Vtx 64 GiB, so it does not
// keep an array's byte size within a 32-bit int.
const maxAllocationWords = 1 << 30

// checkAllocationBounds reports an error if either array Build's fill
// pass is about to size (Overflow, HighEdge) would exceed
// maxAllocationWords. The vertex-count bound is checked separately, up
// front, before Build's sizing pass even starts.
func checkAllocationBounds(totalOverflow, totalHighEdge uint32) error {
	if totalOverflow > maxAllocationWords {
		return fmt.Errorf("overflow word count %d exceeds allocation bound %d", totalOverflow, maxAllocationWords)
	}
	if totalHighEdge > maxAllocationWords {
		return fmt.Errorf("high-edge count %d exceeds allocation bound %d", totalHighEdge, maxAllocationWords)
	}
	return nil
}

// Build runs the two-pass partitioner: pass 1 sizes the Overflow and
// HighEdge arrays in parallel over vertex ranges, a prefix sum turns
// per-worker counts into allocation offsets, and pass 2 re-scans to
// fill every Record, Overflow entry, and HighEdge slot.
func (p *Partitioner) Build(csr *CSR, numPart uint32) (*PartitionedGraph, error) {
	if numPart == 0 {
		return nil, corographerr.NewConfig("graph.Partitioner.Build", fmt.Errorf("numPart must be > 0"))
	}
	if csr.NumV > maxAllocationWords {
		err := fmt.Errorf("vertex count %d exceeds allocation bound %d", csr.NumV, maxAllocationWords)
		return nil, corographerr.NewAllocation("graph.Partitioner.Build", err)
	}
	partSize := partitionSize(csr.NumV, numPart)
	if partSize == 0 {
		partSize = 1
	}

	numWorkers := p.pool.NumWorkers()
	overflowWords := make([]uint32, numWorkers)
	highEdgeCounts := make([]uint32, numWorkers)
	var firstErr error

	// Pass 1: sizing.
	p.pool.ParallelFor(int(csr.NumV), func(worker, lo, hi int) {
		var overflow, highEdge uint32
		for v := uint32(lo); v < uint32(hi); v++ {
			groups := vertexGroups(csr, v, partSize)
			for i, g := range groups {
				if err := validateGroup(g); err != nil && firstErr == nil {
					firstErr = err
				}
				if i >= recordInlineGroups {
					overflow += 2
				}
				if len(g.Edges) > 2 {
					highEdge += uint32(len(g.Edges))
				}
			}
		}
		overflowWords[worker] = overflow
		highEdgeCounts[worker] = highEdge
	})
	if firstErr != nil {
		return nil, corographerr.NewEncodingLimit("graph.Partitioner.Build", firstErr)
	}

	overflowBase := exclusivePrefix(overflowWords)
	highEdgeBase := exclusivePrefix(highEdgeCounts)
	totalOverflow := overflowBase[numWorkers-1] + overflowWords[numWorkers-1]
	totalHighEdge := highEdgeBase[numWorkers-1] + highEdgeCounts[numWorkers-1]

	if err := checkAllocationBounds(totalOverflow, totalHighEdge); err != nil {
		return nil, corographerr.NewAllocation("graph.Partitioner.Build", err)
	}

	g := &PartitionedGraph{
		CSR:      csr,
		NumPart:  numPart,
		PartSize: partSize,
		Vtx:      AllocAlignedRecords(int(csr.NumV)),
		Overflow: make([]uint32, totalOverflow),
		HighEdge: make([]Edge, totalHighEdge),
	}

	// Pass 2: fill.
	p.pool.ParallelFor(int(csr.NumV), func(worker, lo, hi int) {
		overflowCursor := overflowBase[worker]
		highEdgeCursor := highEdgeBase[worker]
		for v := uint32(lo); v < uint32(hi); v++ {
			groups := vertexGroups(csr, v, partSize)
			rec := &g.Vtx[v]
			deg1 := len(groups)
			if deg1 > recordInlineGroups {
				deg1 = recordInlineGroups
			}
			rec.Deg1 = uint16(deg1)
			rec.Deg2 = uint16(len(groups) - deg1)

			for i := 0; i < deg1; i++ {
				gr := groups[i]
				header := packGroupHeader(gr.PartitionID, uint32(len(gr.Edges)))
				rec.PE[2*i] = header
				rec.PE[2*i+1] = g.encodeGroupData(gr, &highEdgeCursor)
			}
			if deg1 < len(groups) {
				rec.Offset = overflowCursor
				for _, gr := range groups[deg1:] {
					header := packGroupHeader(gr.PartitionID, uint32(len(gr.Edges)))
					data := g.encodeGroupData(gr, &highEdgeCursor)
					g.Overflow[overflowCursor] = header
					g.Overflow[overflowCursor+1] = data
					overflowCursor += 2
				}
			}
		}
	})

	return g, nil
}

// encodeGroupData produces a group's second slot word, writing to
// HighEdge (advancing cursor) for groups with more than two edges.
func (g *PartitionedGraph) encodeGroupData(gr Group, cursor *uint32) uint32 {
	switch len(gr.Edges) {
	case 0:
		return 0
	case 1:
		return packInline1(gr.Edges[0].Dst, gr.Edges[0].Weight)
	case 2:
		return packInline2(gr.Edges[0], gr.Edges[1])
	default:
		off := *cursor
		copy(g.HighEdge[off:], gr.Edges)
		*cursor += uint32(len(gr.Edges))
		return off
	}
}

// exclusivePrefix turns per-worker counts into per-worker base offsets.
func exclusivePrefix(counts []uint32) []uint32 {
	bases := make([]uint32, len(counts))
	copy(bases, counts)
	algo.PrefixSum(bases)
	for i := range bases {
		bases[i] -= counts[i]
	}
	return bases
}
