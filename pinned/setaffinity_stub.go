//go:build !linux || tinygo

package pinned

// setAffinity is a no-op where thread affinity is not available.
//
//go:nosplit
//go:inline
func setAffinity(cpu int) {}
