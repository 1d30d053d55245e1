package container

import (
	"sync"
	"testing"
)

func TestChunkPushPopOrder(t *testing.T) {
	c := NewChunk[int](4)
	for i := 0; i < 4; i++ {
		if !c.Push(i) {
			t.Fatalf("push %d: unexpected full", i)
		}
	}
	if c.Push(99) {
		t.Fatalf("push into a full chunk should fail")
	}
	for i := 0; i < 4; i++ {
		v, ok := c.Pop()
		if !ok || v != i {
			t.Fatalf("pop %d: got (%v,%v)", i, v, ok)
		}
	}
	if _, ok := c.Pop(); ok {
		t.Fatalf("pop from empty chunk should fail")
	}
}

func TestPoolRecycles(t *testing.T) {
	p := NewPool[int](2)
	c := p.Get()
	c.Push(1)
	p.Put(c)
	c2 := p.Get()
	if c2 != c {
		t.Fatalf("Get after Put should return the recycled chunk")
	}
	if !c2.Empty() {
		t.Fatalf("recycled chunk should be empty")
	}
}

func TestPerSocketRoutesToOwningSocket(t *testing.T) {
	ps := NewPerSocket[int](3, 2)
	put := make([]*Chunk[int], 3)
	for s := 0; s < 3; s++ {
		c := ps.Of(s).Get()
		c.Push(s)
		ps.Of(s).Put(c)
		put[s] = c
	}
	// Each socket's pool recycled its own chunk, not another socket's.
	for s := 0; s < 3; s++ {
		c := ps.Of(s).Get()
		if c != put[s] {
			t.Fatalf("socket %d: got a chunk that socket %d did not put", s, s)
		}
		if !c.Empty() {
			t.Fatalf("socket %d: expected a recycled empty chunk", s)
		}
	}
}

func TestPerSocketFallsBackToGlobalOutOfRange(t *testing.T) {
	ps := NewPerSocket[int](2, 2)
	if ps.Of(-1) != ps.global {
		t.Fatalf("negative socket should fall back to the global pool")
	}
	if ps.Of(5) != ps.global {
		t.Fatalf("out-of-range socket should fall back to the global pool")
	}
}

func TestLinkedChunkQueuePushPop(t *testing.T) {
	q := NewLinkedChunkQueue[int]()
	if !q.Empty() {
		t.Fatalf("new queue should be empty")
	}

	c1 := NewChunk[int](2)
	c1.Push(1)
	wasEmpty := q.Push(c1)
	if !wasEmpty {
		t.Fatalf("first push should report wasEmpty=true")
	}

	c2 := NewChunk[int](2)
	c2.Push(2)
	if q.Push(c2) {
		t.Fatalf("second push should report wasEmpty=false")
	}

	got1, ok := q.Pop()
	if !ok || got1 != c1 {
		t.Fatalf("expected FIFO pop of c1 first")
	}
	got2, ok := q.Pop()
	if !ok || got2 != c2 {
		t.Fatalf("expected FIFO pop of c2 second")
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("pop from drained queue should fail")
	}
}

func TestLinkedChunkQueueConcurrentProducers(t *testing.T) {
	q := NewLinkedChunkQueue[int]()
	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				c := NewChunk[int](1)
				c.Push(p*perProducer + i)
				q.Push(c)
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for {
		c, ok := q.Pop()
		if !ok {
			break
		}
		v, _ := c.Pop()
		if seen[v] {
			t.Fatalf("duplicate item %d", v)
		}
		seen[v] = true
	}
	if len(seen) != producers*perProducer {
		t.Fatalf("expected %d items, got %d", producers*perProducer, len(seen))
	}
}

func TestBagTakeTransfersOwnership(t *testing.T) {
	pool := NewPool[int](2)
	bag := NewBag[int](pool)
	bag.Push(1)
	bag.Push(2)
	bag.Push(3) // spills into a second chunk

	chunks := bag.Take()
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if len(bag.Chunks()) != 0 {
		t.Fatalf("Take should clear the bag")
	}

	total := 0
	for _, c := range chunks {
		total += c.Len()
	}
	if total != 3 {
		t.Fatalf("expected 3 items across chunks, got %d", total)
	}
}

func TestBagResetReturnsToPool(t *testing.T) {
	pool := NewPool[int](2)
	bag := NewBag[int](pool)
	bag.Push(1)
	owned := bag.Chunks()[0]
	bag.Reset()
	if len(bag.Chunks()) != 0 {
		t.Fatalf("Reset should clear the bag")
	}
	c := pool.Get()
	if c != owned {
		t.Fatalf("Reset should have returned the bag's chunk to the pool")
	}
	if !c.Empty() {
		t.Fatalf("recycled chunk from Reset should be empty")
	}
}
