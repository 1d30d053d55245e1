package engine

import (
	"sync/atomic"
	"unsafe"

	"github.com/shayshani/corograph/container"
	"github.com/shayshani/corograph/graph"
	"github.com/shayshani/corograph/obim"
	"github.com/shayshani/corograph/prefetch"
	"github.com/shayshani/corograph/task"
	"github.com/shayshani/corograph/threadpool"
)

// workerScratch is the per-worker state the Scatter/Sync/Gather loop
// needs between phases: the facing structure (one bag of update items
// per destination partition) and the bag of newly improved frontier
// items collected during Gather. The facing structure is a single
// buffer, not a double buffer: syncRound drains it completely before
// the worker's next Scatter fills it again.
type workerScratch struct {
	facing      map[uint32]*container.Bag[UpdateItem]
	newFrontier *container.Bag[FrontierItem]
	socket      int
}

func (w *workerScratch) facingBag(pool *container.Pool[UpdateItem], partitionID uint32) *container.Bag[UpdateItem] {
	if b, ok := w.facing[partitionID]; ok {
		return b
	}
	b := container.NewBag[UpdateItem](pool)
	w.facing[partitionID] = b
	return b
}

// Executor runs the Scatter/Sync/Gather loop to convergence: each
// worker drains frontier work from OBIM's priority side, produces
// partition-grouped updates, hands them to the gather side, applies
// any that improve per-vertex state, and re-enqueues the result —
// until a round barrier observes every worker quiescent at once.
type Executor struct {
	graph     *graph.PartitionedGraph
	algorithm *Algorithm
	pool      *threadpool.Pool

	obimQ     *obim.OBIM[FrontierItem]
	gatherSys *obim.GatherSystem[UpdateItem]

	updatePool   *container.PerSocket[UpdateItem]
	frontierPool *container.PerSocket[FrontierItem]
	scratch      []*workerScratch
	laneSize     int

	barrier *threadpool.Barrier
	term    *threadpool.Termination
	done    atomic.Bool
}

// Run builds an Executor for graph g and algorithm, seeds it with
// initialFrontier, and drives it to quiescence using pool's workers.
// It blocks until every worker observes global termination.
func Run(g *graph.PartitionedGraph, initialFrontier []FrontierItem, algorithm *Algorithm, pool *threadpool.Pool, laneSize int) {
	numWorkers := pool.NumWorkers()
	topology := pool.Topology()

	ex := &Executor{
		graph:        g,
		algorithm:    algorithm,
		pool:         pool,
		obimQ:        obim.New[FrontierItem](numWorkers, laneSize, topology.SocketOf, topology.NumSockets, algorithm.Indexer),
		gatherSys:    obim.NewGatherSystem[UpdateItem](g.NumPart, uint32(topology.NumSockets)),
		updatePool:   container.NewPerSocket[UpdateItem](topology.NumSockets, container.LargeUpdateChunkCapacity),
		frontierPool: container.NewPerSocket[FrontierItem](topology.NumSockets, container.LargeFrontierChunkCapacity),
		barrier:      threadpool.NewBarrier(numWorkers),
		term:         &threadpool.Termination{},
		laneSize:     laneSize,
	}
	ex.scratch = make([]*workerScratch, numWorkers)
	for i := range ex.scratch {
		ex.scratch[i] = &workerScratch{
			facing: make(map[uint32]*container.Bag[UpdateItem]),
			socket: topology.SocketOf[i],
		}
	}

	for i, item := range initialFrontier {
		ex.obimQ.Push(i%numWorkers, item)
	}
	for w := 0; w < numWorkers; w++ {
		ex.obimQ.Flush(w)
	}
	ex.obimQ.PublishMinScanStart()

	pool.OnEach(func(tid, _ int) {
		ex.workerLoop(tid)
	})
}

// workerLoop drives one worker through rounds until the termination
// detector, refreshed by the round's elected barrier leader, declares
// global quiescence.
func (ex *Executor) workerLoop(workerID int) {
	for {
		didWork := ex.scatterRound(workerID)
		ex.syncRound(workerID)
		if ex.gatherRound(workerID) {
			didWork = true
		}
		if didWork {
			ex.term.ReportActive()
		}

		isLeader := ex.barrier.Wait()
		if isLeader {
			quiescent := ex.term.Quiescent()
			ex.term.Reset()
			ex.obimQ.PublishMinScanStart()
			ex.done.Store(quiescent)
		}
		ex.barrier.Wait()
		if ex.done.Load() {
			return
		}
	}
}

// scatterRound drains one chunk of frontier work into lanes of up to
// laneSize items, drives each lane through the coroutine-shaped
// prefetch-then-process task (prefetch the lane's vertex records, then
// read their out-edges once the lines have landed), discarding stale
// items and fanning each survivor's edges into this worker's
// per-partition facing buffers.
func (ex *Executor) scatterRound(workerID int) (didWork bool) {
	ws := ex.scratch[workerID]
	chunk, ok := ex.obimQ.PopChunk(workerID)
	if !ok {
		return false
	}
	didWork = true

	lane := task.NewLane[FrontierItem](ex.laneSize)
	for {
		item, ok := chunk.Pop()
		drained := !ok
		if ok {
			lane.Add(item)
		}
		if lane.Full() || (drained && len(lane.Items()) > 0) {
			ex.runScatterLane(ws, lane)
			lane.Reset()
		}
		if drained {
			break
		}
	}
	return didWork
}

// runScatterLane drives one lane to completion via the two-phase
// prefetch/process task: Prefetch issues a software prefetch for every
// item's vertex record, Process runs once those lines are expected to
// have arrived.
func (ex *Executor) runScatterLane(ws *workerScratch, lane *task.Lane[FrontierItem]) {
	items := lane.Items()
	t := &task.TwoPhase{
		Prefetch: func() {
			for _, item := range items {
				prefetch.Line(unsafe.Pointer(ex.graph.RecordPointer(item.Vid)))
			}
		},
		Process: func() bool {
			for _, item := range items {
				if ex.algorithm.FilterFunc(item.Vid, item.Val) {
					continue
				}
				ex.graph.ForEachGroup(item.Vid, func(grp graph.Group) {
					bag := ws.facingBag(ex.updatePool.Of(ws.socket), grp.PartitionID)
					for _, e := range grp.Edges {
						candidate := ex.algorithm.ApplyWeight(e.Weight, item.Val)
						bag.Push(UpdateItem{Vid: e.Dst, Val: candidate})
					}
				})
			}
			return true
		},
	}
	task.Run(t)
}

// syncRound publishes every non-empty facing buffer into the gather
// system's partition queues, advertising any that transitioned from
// empty so a Gather worker can find them.
func (ex *Executor) syncRound(workerID int) {
	ws := ex.scratch[workerID]
	socket := ex.pool.Topology().SocketOf[workerID]
	for partitionID, bag := range ws.facing {
		for _, c := range bag.Take() {
			ex.gatherSys.ScatterUpdate(partitionID, c, socket)
		}
	}
}

// gatherRound claims partition update queues (stealing across sockets
// when its own socket has none), drives each batch of updates through
// a prefetch-then-process lane (prefetch destination-vertex state, then
// apply the algorithm's monotone GatherFunc once it has landed), and
// re-enqueues improved vertices as new frontier items.
func (ex *Executor) gatherRound(workerID int) (didWork bool) {
	ws := ex.scratch[workerID]
	socket := ex.pool.Topology().SocketOf[workerID]

	lane := task.NewLane[UpdateItem](ex.laneSize)
	for {
		_, chunk, ok := ex.gatherSys.PopPartition(socket)
		if !ok {
			break
		}
		didWork = true
		for {
			upd, ok := chunk.Pop()
			drained := !ok
			if ok {
				lane.Add(upd)
			}
			if lane.Full() || (drained && len(lane.Items()) > 0) {
				ex.runGatherLane(ws, lane)
				lane.Reset()
			}
			if drained {
				break
			}
		}
	}

	if ws.newFrontier != nil {
		for _, c := range ws.newFrontier.Take() {
			for {
				item, ok := c.Pop()
				if !ok {
					break
				}
				ex.obimQ.Push(workerID, item)
			}
		}
	}
	ex.obimQ.Flush(workerID)
	return didWork
}

// runGatherLane drives one lane of updates through the two-phase
// prefetch/process task: Prefetch touches each update's destination
// algorithm-state word, Process applies GatherFunc once those lines
// are expected to have arrived.
func (ex *Executor) runGatherLane(ws *workerScratch, lane *task.Lane[UpdateItem]) {
	items := lane.Items()
	t := &task.TwoPhase{
		Prefetch: func() {
			// Algorithm state words are 4 bytes, far narrower than a
			// cache line, so prefetch.Line's full-line touch (see
			// ntaLine) would risk reading past the slice's backing
			// array for the last few vertices; a plain load pulls the
			// same line into cache without that risk.
			for _, upd := range items {
				_ = ex.algorithm.State[upd.Vid].Load()
			}
		},
		Process: func() bool {
			for _, upd := range items {
				if ex.algorithm.GatherFunc(upd.Vid, upd.Val) {
					item := ex.algorithm.PushFunc(upd.Vid, upd.Val)
					if ws.newFrontier == nil {
						ws.newFrontier = container.NewBag[FrontierItem](ex.frontierPool.Of(ws.socket))
					}
					ws.newFrontier.Push(item)
				}
			}
			return true
		},
	}
	task.Run(t)
}
