//go:build amd64

package prefetch

import "golang.org/x/sys/cpu"

// NTAHint reports whether the current CPU is expected to benefit from a
// non-temporal prefetch hint rather than a temporal (all cache levels)
// one. The engine's lane-based access pattern touches each lane once
// per round and doesn't revisit it until the next partition's turn —
// a streaming pattern, so platforms with a fast non-temporal path are
// flagged here, detected once in init(); prefetch.go's own init() then
// switches Line to ntaLine when the flag is set.
var NTAHint bool

func init() {
	NTAHint = cpu.X86.HasAVX2
}
