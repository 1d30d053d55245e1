// Package config validates and defaults the options run() accepts:
// thread count, the delta-stepping step shift, partition count, and
// prefetch lane size. The engine carries no CLI or env var surface —
// Options is the whole configuration contract, populated by the caller
// in-process.
package config

import (
	"fmt"
	stdruntime "runtime"

	"github.com/shayshani/corograph/corographerr"
)

// Options mirrors the recognized option keys.
type Options struct {
	// Threads is the number of worker threads bound to the pool.
	Threads int
	// StepShift is the delta-stepping priority quantum: Index = val >> StepShift.
	// Validate and Run do not read it: Run takes its priority function
	// from the indexer argument, so a caller applies StepShift by
	// building that indexer (e.g. engine.SSSPIndexer(StepShift)).
	StepShift uint
	// NumPart is the partition count. Zero selects the default (4 * Threads).
	NumPart uint32
	// LaneSize is the prefetch lane width. Zero selects the default (64).
	LaneSize int
}

// WithDefaults returns a copy of o with zero-valued fields replaced by
// sensible defaults.
func (o Options) WithDefaults() Options {
	out := o
	if out.Threads <= 0 {
		out.Threads = stdruntime.GOMAXPROCS(0)
	}
	if out.NumPart == 0 {
		out.NumPart = uint32(4 * out.Threads)
	}
	if out.LaneSize <= 0 {
		out.LaneSize = 64
	}
	return out
}

// Validate defaults o and rejects invalid configurations: numV == 0,
// or a defaulted option that still resolves to zero.
func Validate(numV uint32, o Options) (Options, error) {
	if numV == 0 {
		return o, corographerr.NewConfig("config.Validate", fmt.Errorf("numV must be > 0"))
	}
	out := o.WithDefaults()
	if out.NumPart == 0 {
		return out, corographerr.NewConfig("config.Validate", fmt.Errorf("numPart must be > 0"))
	}
	if out.Threads <= 0 {
		return out, corographerr.NewConfig("config.Validate", fmt.Errorf("threads must be > 0"))
	}
	return out, nil
}
