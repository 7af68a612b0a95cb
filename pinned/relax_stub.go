//go:build (!amd64 && !arm64) || !cgo || noasm

package pinned

// cpuRelax is a no-op where no pause hint is wired.
func cpuRelax() {}
