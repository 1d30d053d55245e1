//go:build !amd64 && !arm64

package prefetch

// NTAHint is always false on architectures without a detected fast
// non-temporal path.
var NTAHint = false
