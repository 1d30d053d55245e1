// Package corograph is the engine's single external entry point: it
// wires configuration validation, graph partitioning, and the
// Scatter/Sync/Gather executor together behind one Run call.
package corograph

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shayshani/corograph/config"
	"github.com/shayshani/corograph/engine"
	"github.com/shayshani/corograph/graph"
	"github.com/shayshani/corograph/obim"
	"github.com/shayshani/corograph/threadpool"
)

// perVertexBytesHint and pagePoolSize feed the preallocation hook: a
// rough page-count estimate so a caller that wants to pre-touch memory
// has something to go on. It is advisory only; Run never acts on it.
const (
	perVertexBytesHint = 64 // one Record per vertex
	pagePoolSize       = 4096
)

// EstimatedPages returns the preallocation hook's page estimate for a
// run with the given thread count and vertex count.
func EstimatedPages(threads int, numV uint32) int {
	return threads + int(uint64(numV)*perVertexBytesHint/pagePoolSize)
}

// Run builds a PartitionedGraph from csr, then drives algorithm to
// convergence over initialFrontier using indexer as its priority
// function, returning the algorithm's final per-vertex state.
//
// Partitioning and the preallocation page estimate are independent of
// each other, so they run concurrently via an errgroup. Run returns an
// error only for an invalid configuration (rejected by config.Validate
// before anything runs) or a partitioning failure (e.g. an
// encoding-limit violation).
func Run(csr *graph.CSR, initialFrontier []engine.FrontierItem, algorithm *engine.Algorithm, indexer obim.Indexer[engine.FrontierItem], options config.Options) ([]uint32, error) {
	opts, err := config.Validate(csr.NumV, options)
	if err != nil {
		return nil, err
	}

	pool := threadpool.New(opts.Threads)
	defer pool.Close()

	var pg *graph.PartitionedGraph
	var estimatedPages int
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		built, err := graph.NewPartitioner(pool).Build(csr, opts.NumPart)
		if err != nil {
			return err
		}
		pg = built
		return nil
	})
	g.Go(func() error {
		estimatedPages = EstimatedPages(opts.Threads, csr.NumV)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = estimatedPages

	algorithm.Indexer = indexer
	engine.Run(pg, initialFrontier, algorithm, pool, opts.LaneSize)
	return algorithm.Snapshot(), nil
}
