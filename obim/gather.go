package obim

import "github.com/shayshani/corograph/container"

// GatherSystem is the gather side of the work queue: one update queue
// per partition, plus a per-socket queue of partition ids that have
// become non-empty, so a Gather worker can find work without scanning
// every partition. Partition ids are plain indices into partitions
// rather than shared pointers, in keeping with an arena-of-indices
// model: no component holds an owning reference into another.
type GatherSystem[T any] struct {
	partitions []*container.LinkedChunkQueue[T]
	idPool     *container.PerSocket[uint32]
	gatherQ    []*container.LinkedChunkQueue[uint32]
}

// NewGatherSystem creates a gather system for numPart partitions and
// numSockets independent gather queues. The id chunks advertise
// allocates to announce a non-empty partition come from a per-socket
// pool, so advertising a partition on one socket never contends with
// advertising on another.
func NewGatherSystem[T any](numPart, numSockets uint32) *GatherSystem[T] {
	g := &GatherSystem[T]{
		partitions: make([]*container.LinkedChunkQueue[T], numPart),
		idPool:     container.NewPerSocket[uint32](int(numSockets), 1),
		gatherQ:    make([]*container.LinkedChunkQueue[uint32], numSockets),
	}
	for i := range g.partitions {
		g.partitions[i] = container.NewLinkedChunkQueue[T]()
	}
	for i := range g.gatherQ {
		g.gatherQ[i] = container.NewLinkedChunkQueue[uint32]()
	}
	return g
}

func (g *GatherSystem[T]) advertise(socket int, partitionID uint32) {
	idChunk := g.idPool.Of(socket).Get()
	idChunk.Push(partitionID)
	g.gatherQ[socket].Push(idChunk)
}

// ScatterUpdate pushes chunk onto partitionID's update queue. If the
// queue was empty, the partition is advertised into socket's gather
// queue so a Gather worker on that socket learns there is work to do.
func (g *GatherSystem[T]) ScatterUpdate(partitionID uint32, chunk *container.Chunk[T], socket int) {
	wasEmpty := g.partitions[partitionID].Push(chunk)
	if wasEmpty {
		g.advertise(socket, partitionID)
	}
}

// popAdvertised pops one advertised partition id from socket's gather
// queue and its corresponding chunk, if the partition still has one.
// A partition whose chunk was already drained by a concurrent popper
// reports found=false for this attempt; the caller just tries again.
// If the partition still holds chunks after this pop, it is advertised
// again on socket so the remaining chunks stay findable.
func (g *GatherSystem[T]) popAdvertised(socket int) (partitionID uint32, chunk *container.Chunk[T], found bool) {
	idChunk, ok := g.gatherQ[socket].Pop()
	if !ok {
		return 0, nil, false
	}
	pid, ok := idChunk.Pop()
	g.idPool.Of(socket).Put(idChunk)
	if !ok {
		return 0, nil, false
	}
	c, ok := g.partitions[pid].Pop()
	if ok && !g.partitions[pid].Empty() {
		g.advertise(socket, pid)
	}
	return pid, c, ok
}

// PopPartition claims one chunk of partition updates for a worker whose
// home socket is mySocket: first from that socket's own gather queue,
// then by work-stealing a linear scan of the other sockets' gather
// queues, starting just after mySocket and wrapping around.
func (g *GatherSystem[T]) PopPartition(mySocket int) (partitionID uint32, chunk *container.Chunk[T], found bool) {
	n := len(g.gatherQ)
	for i := 0; i < n; i++ {
		s := (mySocket + i) % n
		for !g.gatherQ[s].Empty() {
			if pid, c, ok := g.popAdvertised(s); ok {
				return pid, c, true
			}
		}
	}
	return 0, nil, false
}
