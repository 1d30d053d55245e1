// Package prefetch issues the software prefetch a coroutine-pipelined
// task needs: issue a batch of prefetches, suspend for a handful of
// cycles, then consume. Go has no prefetch intrinsic, so Line is a
// func-var dispatched by architecture: a portable base implementation,
// swapped in init() according to the arch-specific NTAHint flag.
package prefetch

import "unsafe"

// cacheLineBytes is the line width the two touch strategies below
// assume; wrong on some platforms but only a tuning cost, not a
// correctness one.
const cacheLineBytes = 64

// Line prefetches (or, on the portable base implementation, simply
// touches) the cache line containing ptr. Swappable per architecture.
var Line func(ptr unsafe.Pointer) = baseLine

func init() {
	if NTAHint {
		Line = ntaLine
	}
}

// baseLine is the portable fallback: reading one byte pulls the line
// into the core's cache hierarchy on the normal load path, which is
// the only prefetch-equivalent operation available without
// architecture-specific assembly. Lane size is a tunable, not a
// correctness parameter, so this costs a little efficiency on exotic
// platforms but never correctness.
func baseLine(ptr unsafe.Pointer) {
	_ = *(*byte)(ptr)
}

// ntaLine is baseLine's counterpart for a platform flagged with a fast
// non-temporal path (see NTAHint): it touches the first and last byte
// of the line instead of just the first, so a record that straddles a
// line boundary still gets both lines started before Process reads it,
// since an NTA-style streaming load won't benefit from a second,
// separate temporal fetch the way a normal load would.
func ntaLine(ptr unsafe.Pointer) {
	_ = *(*byte)(ptr)
	_ = *(*byte)(unsafe.Add(ptr, cacheLineBytes-1))
}
