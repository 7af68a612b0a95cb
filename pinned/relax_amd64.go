//go:build amd64 && cgo && !noasm

// relax_amd64.go
//
// cpuRelax emits PAUSE so spin loops yield pipeline resources to the sibling
// hyperthread.

package pinned

/*
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
*/
import "C"

//go:nosplit
//go:inline
func cpuRelax() {
	C.cpu_pause()
}
