package container

// Bag is a per-thread, fixed-capacity-chunked accumulator that is never
// shared across goroutines. It is used as one partition's slot in a
// Scatter worker's (single-buffered) facing structure, as a Gather
// worker's buffer of newly improved frontier items, and as an OBIM
// worker's local push buffer for one priority bucket.
type Bag[T any] struct {
	chunks []*Chunk[T]
	cur    *Chunk[T]
	pool   *Pool[T]
}

// NewBag creates a bag that draws fresh chunks from pool.
func NewBag[T any](pool *Pool[T]) *Bag[T] {
	return &Bag[T]{pool: pool}
}

// Push appends v, allocating a new chunk from the pool and publishing
// the exhausted one into the bag's chunk list whenever the current
// chunk is full.
func (b *Bag[T]) Push(v T) {
	if b.cur == nil || b.cur.Full() {
		b.cur = b.pool.Get()
		b.chunks = append(b.chunks, b.cur)
	}
	b.cur.Push(v)
}

// Chunks returns the chunks accumulated so far, in push order.
func (b *Bag[T]) Chunks() []*Chunk[T] { return b.chunks }

// Take hands ownership of the accumulated chunks to the caller (e.g. to
// publish them into a LinkedChunkQueue) and clears the bag, without
// returning any chunk to the pool — the new owner is responsible for
// eventually recycling them once drained.
func (b *Bag[T]) Take() []*Chunk[T] {
	out := b.chunks
	b.chunks = nil
	b.cur = nil
	return out
}

// Reset discards the bag's contents, returning every chunk to the
// pool. Use this when the bag's chunks were only ever local scratch
// space (e.g. coro_scatter's tmp buffer) and never handed to a shared
// queue.
func (b *Bag[T]) Reset() {
	for _, c := range b.chunks {
		b.pool.Put(c)
	}
	b.chunks = nil
	b.cur = nil
}
