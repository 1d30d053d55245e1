// Package obim implements the ordered-by-integer-metric priority work
// queue: a per-thread mirrored map of priority buckets, lazily
// synchronized through an append-only master log, plus the
// partition-queue gather side with per-socket work stealing.
package obim

import (
	"sort"
	"sync/atomic"

	"github.com/shayshani/corograph/container"
)

// Index is the quantized priority an Indexer assigns to an item; lower
// indices are drained preferentially.
type Index uint64

// Indexer assigns a priority bucket to an item. The engine treats this
// as opaque and algorithm-supplied: SSSP uses distance>>stepShift,
// other algorithms may use unrelated rules.
type Indexer[T any] func(item T) Index

type localBucket[T any] struct {
	queue *container.LinkedChunkQueue[T]
	bag   *container.Bag[T]
}

type localView[T any] struct {
	buckets     map[Index]*localBucket[T]
	curIndex    Index
	curBucket   *localBucket[T]
	scanStart   Index
	hasPushed   bool
	lastVersion uint64
	socket      int
}

// OBIM is the priority-bucket side of the work queue, with one
// independent local view per worker thread. Bag allocation is
// socket-local (see container.PerSocket): a worker's bucket bags draw
// chunks from its own socket's pool, only falling back to the shared
// pool across a socket boundary.
type OBIM[T any] struct {
	indexer         Indexer[T]
	log             *masterLog[T]
	pool            *container.PerSocket[T]
	local           []*localView[T]
	globalScanStart atomic.Uint64
}

// New creates an OBIM for numWorkers threads striped across topology's
// sockets per socketOf. chunkCapacity sizes the chunks each per-thread
// bag allocates from its socket's pool as items are pushed.
func New[T any](numWorkers, chunkCapacity int, socketOf []int, numSockets int, indexer Indexer[T]) *OBIM[T] {
	o := &OBIM[T]{
		indexer: indexer,
		log:     &masterLog[T]{},
		pool:    container.NewPerSocket[T](numSockets, chunkCapacity),
		local:   make([]*localView[T], numWorkers),
	}
	for i := range o.local {
		socket := 0
		if i < len(socketOf) {
			socket = socketOf[i]
		}
		o.local[i] = &localView[T]{buckets: make(map[Index]*localBucket[T]), socket: socket}
	}
	return o
}

func (o *OBIM[T]) bucketFor(lv *localView[T], idx Index) *localBucket[T] {
	if b, ok := lv.buckets[idx]; ok {
		return b
	}
	q := o.log.getOrCreate(idx)
	b := &localBucket[T]{queue: q, bag: container.NewBag[T](o.pool.Of(lv.socket))}
	lv.buckets[idx] = b
	return b
}

// Push buffers item into the calling worker's local bag for its
// priority bucket. Items are not visible to other workers until Flush
// publishes the bag's chunks into the bucket's shared queue.
func (o *OBIM[T]) Push(workerID int, item T) {
	idx := o.indexer(item)
	lv := o.local[workerID]
	if !lv.hasPushed || idx < lv.scanStart {
		lv.scanStart = idx
		lv.hasPushed = true
	}
	o.bucketFor(lv, idx).bag.Push(item)
}

// Flush publishes every chunk accumulated in the calling worker's local
// bags into their buckets' shared queues, making this round's pushes
// visible to Pop calls from any worker.
func (o *OBIM[T]) Flush(workerID int) {
	lv := o.local[workerID]
	for _, b := range lv.buckets {
		for _, c := range b.bag.Take() {
			b.queue.Push(c)
		}
	}
}

// sync replays any master-log entries the calling worker hasn't seen
// yet into its local bucket map.
func (o *OBIM[T]) sync(lv *localView[T]) {
	entries, newVersion := o.log.since(lv.lastVersion)
	for _, e := range entries {
		if _, ok := lv.buckets[e.index]; !ok {
			lv.buckets[e.index] = &localBucket[T]{queue: e.queue, bag: container.NewBag[T](o.pool.Of(lv.socket))}
		}
	}
	lv.lastVersion = newVersion
}

// PublishMinScanStart recomputes the global minimum scanStart across
// every worker's local view. Intended to be called once per round by
// the barrier's elected leader.
func (o *OBIM[T]) PublishMinScanStart() {
	min := Index(^uint64(0))
	seen := false
	for _, lv := range o.local {
		if lv.hasPushed && (!seen || lv.scanStart < min) {
			min = lv.scanStart
			seen = true
		}
	}
	if !seen {
		min = 0
	}
	o.globalScanStart.Store(uint64(min))
}

// GlobalScanStart returns the most recently published global minimum
// scanStart, the lower bound a worker's upward bucket scan starts from.
func (o *OBIM[T]) GlobalScanStart() Index {
	return Index(o.globalScanStart.Load())
}

// PopChunk drains one chunk from the calling worker's current bucket,
// falling back to a replay-then-scan for the lowest non-empty bucket at
// or above the published global scanStart. It reports false only when
// the worker's whole local view is empty.
func (o *OBIM[T]) PopChunk(workerID int) (*container.Chunk[T], bool) {
	lv := o.local[workerID]
	if lv.curBucket != nil {
		if c, ok := lv.curBucket.queue.Pop(); ok {
			return c, true
		}
	}

	o.sync(lv)
	start := o.GlobalScanStart()
	candidates := make([]Index, 0, len(lv.buckets))
	for idx := range lv.buckets {
		if idx >= start {
			candidates = append(candidates, idx)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	for _, idx := range candidates {
		b := lv.buckets[idx]
		if c, ok := b.queue.Pop(); ok {
			lv.curBucket = b
			lv.curIndex = idx
			return c, true
		}
	}
	return nil, false
}
