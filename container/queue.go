package container

import "sync/atomic"

type node[T any] struct {
	chunk *Chunk[T]
	next  atomic.Pointer[node[T]]
}

// LinkedChunkQueue is a lock-free linked queue of whole chunks (the
// Michael-Scott queue shape), used both as the contents of one OBIM
// priority bucket and as one partition's gather queue. Multiple
// producers may Push concurrently; Pop is safe to call concurrently
// too, though the engine only ever has a single consumer draining a
// given queue at a time.
type LinkedChunkQueue[T any] struct {
	head atomic.Pointer[node[T]]
	tail atomic.Pointer[node[T]]
}

// NewLinkedChunkQueue creates an empty queue.
func NewLinkedChunkQueue[T any]() *LinkedChunkQueue[T] {
	q := &LinkedChunkQueue[T]{}
	dummy := &node[T]{}
	q.head.Store(dummy)
	q.tail.Store(dummy)
	return q
}

// Push appends c and reports whether the queue was (momentarily) empty
// immediately before this push. The engine uses that signal to know
// when a partition's queue has transitioned from empty to non-empty
// and must be (re-)advertised into a gather queue — a liveness
// heuristic, not a linearizable guarantee, since a concurrent Pop can
// race with the empty check.
func (q *LinkedChunkQueue[T]) Push(c *Chunk[T]) (wasEmpty bool) {
	n := &node[T]{chunk: c}
	for {
		tail := q.tail.Load()
		next := tail.next.Load()
		if tail != q.tail.Load() {
			continue
		}
		if next == nil {
			wasEmpty = tail == q.head.Load()
			if tail.next.CompareAndSwap(nil, n) {
				q.tail.CompareAndSwap(tail, n)
				return wasEmpty
			}
		} else {
			q.tail.CompareAndSwap(tail, next)
		}
	}
}

// Pop removes and returns the oldest chunk, or reports false if the
// queue is empty.
func (q *LinkedChunkQueue[T]) Pop() (*Chunk[T], bool) {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		next := head.next.Load()
		if head != q.head.Load() {
			continue
		}
		if head == tail {
			if next == nil {
				return nil, false
			}
			q.tail.CompareAndSwap(tail, next)
			continue
		}
		c := next.chunk
		if q.head.CompareAndSwap(head, next) {
			return c, true
		}
	}
}

// Empty reports whether the queue currently holds no chunks. Like
// Push's wasEmpty, this is a snapshot that a concurrent Push/Pop can
// immediately invalidate.
func (q *LinkedChunkQueue[T]) Empty() bool {
	return q.head.Load().next.Load() == nil
}
