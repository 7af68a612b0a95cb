//go:build arm64 && cgo && !noasm

package pinned

/*
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
*/
import "C"

// cpuRelax emits YIELD.
//
//go:nosplit
//go:inline
func cpuRelax() {
	C.cpu_yield()
}
