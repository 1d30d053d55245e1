package threadpool

import (
	"sync/atomic"
	"testing"
)

func TestParallelForCoversAllIndices(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 97
	var seen [n]atomic.Bool
	p.ParallelFor(n, func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			seen[i].Store(true)
		}
	})
	for i := range n {
		if !seen[i].Load() {
			t.Fatalf("index %d not covered", i)
		}
	}
}

func TestOnEachRunsOncePerWorkerWithStableIDs(t *testing.T) {
	p := New(6)
	defer p.Close()

	seen := make([]atomic.Bool, p.NumWorkers())
	p.OnEach(func(tid, total int) {
		if total != p.NumWorkers() {
			t.Errorf("total mismatch: got %d want %d", total, p.NumWorkers())
		}
		seen[tid].Store(true)
	})
	for i, s := range seen {
		if !s.Load() {
			t.Fatalf("worker %d never ran", i)
		}
	}
}

func TestBarrierReleasesAllParticipantsTogether(t *testing.T) {
	const n = 8
	b := NewBarrier(n)
	done := make(chan bool, n)
	leaders := make(chan bool, n)

	for range n {
		go func() {
			isLeader := b.Wait()
			leaders <- isLeader
			done <- true
		}()
	}

	leaderCount := 0
	for range n {
		<-done
	}
	close(leaders)
	for l := range leaders {
		if l {
			leaderCount++
		}
	}
	if leaderCount != 1 {
		t.Fatalf("expected exactly one leader, got %d", leaderCount)
	}
}

func TestBarrierIsReusable(t *testing.T) {
	const n = 4
	b := NewBarrier(n)
	for round := 0; round < 3; round++ {
		done := make(chan struct{}, n)
		for range n {
			go func() {
				b.Wait()
				done <- struct{}{}
			}()
		}
		for range n {
			<-done
		}
	}
}

func TestTopologyAssignsOneLeaderPerSocket(t *testing.T) {
	topo := DetectTopology(10)
	leadersPerSocket := make(map[int]int)
	for w := 0; w < topo.NumWorkers; w++ {
		s := topo.SocketOf[w]
		if topo.IsLeader[w] {
			leadersPerSocket[s]++
		}
	}
	if len(leadersPerSocket) != topo.NumSockets {
		t.Fatalf("expected leaders for all %d sockets, got %d", topo.NumSockets, len(leadersPerSocket))
	}
	for s, count := range leadersPerSocket {
		if count != 1 {
			t.Fatalf("socket %d has %d leaders, want 1", s, count)
		}
	}
}

func TestTerminationDetector(t *testing.T) {
	var term Termination
	if !term.Quiescent() {
		t.Fatalf("fresh detector should be quiescent")
	}
	term.ReportActive()
	if term.Quiescent() {
		t.Fatalf("detector should not be quiescent after ReportActive")
	}
	term.Reset()
	if !term.Quiescent() {
		t.Fatalf("detector should be quiescent after Reset")
	}
}
