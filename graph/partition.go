package graph

// PartitionedGraph is the partition-grouped vertex record representation
// the Scatter/Gather loop runs against: for every vertex, its out-edges
// are grouped by destination partition and stored in ascending
// partition-id order, first inline in the vertex's own Record, then
// spilling to Overflow for vertices that touch more than seven
// partitions.
type PartitionedGraph struct {
	CSR      *CSR
	NumPart  uint32
	PartSize uint32

	// Vtx is 64-byte aligned; see AllocAlignedRecords.
	Vtx []Record
	// Overflow holds spilled groups, laid out exactly like PE: pairs of
	// (header, data) words, one pair per group.
	Overflow []uint32
	// HighEdge holds raw (dst, weight) pairs for any group (inline or
	// overflow) whose edge count exceeds two.
	HighEdge []Edge
}

// PartitionOf returns the partition id owning vertex v in O(1).
func (g *PartitionedGraph) PartitionOf(v uint32) uint32 {
	return v / g.PartSize
}

// Group is one decoded (partitionID, edges) group for a vertex.
type Group struct {
	PartitionID uint32
	Edges       []Edge
}

// decodeGroup expands a (header, data) word pair into a Group, pulling
// from HighEdge when the group's edge count exceeds two.
func (g *PartitionedGraph) decodeGroup(header, data uint32) Group {
	partitionID, count := unpackGroupHeader(header)
	switch count {
	case 0:
		return Group{PartitionID: partitionID}
	case 1:
		dst, weight := unpackInline1(data)
		return Group{PartitionID: partitionID, Edges: []Edge{{Dst: dst, Weight: weight}}}
	case 2:
		e0, e1 := unpackInline2(data)
		return Group{PartitionID: partitionID, Edges: []Edge{e0, e1}}
	default:
		return Group{PartitionID: partitionID, Edges: g.HighEdge[data : data+count]}
	}
}

// ForEachGroup calls fn once per destination-partition group of vertex
// v's out-edges, in ascending partition-id order: first the inline
// groups held in the vertex's own Record, then any groups spilled to
// Overflow.
func (g *PartitionedGraph) ForEachGroup(v uint32, fn func(Group)) {
	rec := &g.Vtx[v]
	n := int(rec.Deg1)
	for i := 0; i < n; i++ {
		fn(g.decodeGroup(rec.PE[2*i], rec.PE[2*i+1]))
	}
	m := int(rec.Deg2)
	if m == 0 {
		return
	}
	base := rec.Offset
	for i := 0; i < m; i++ {
		header := g.Overflow[base+uint32(2*i)]
		data := g.Overflow[base+uint32(2*i)+1]
		fn(g.decodeGroup(header, data))
	}
}

// RecordPointer returns a pointer to vertex v's record, for callers
// (the prefetch lane) that need a raw address rather than a decoded
// view.
func (g *PartitionedGraph) RecordPointer(v uint32) *Record {
	return &g.Vtx[v]
}
