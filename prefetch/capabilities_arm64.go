//go:build arm64

package prefetch

import "golang.org/x/sys/cpu"

// NTAHint mirrors capabilities_amd64.go's signal for arm64 targets.
var NTAHint bool

func init() {
	NTAHint = cpu.ARM64.HasASIMD
}
