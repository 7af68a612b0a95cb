//go:build linux && !tinygo

// setaffinity_linux.go
//
// Pins the calling OS thread to one logical CPU via sched_setaffinity(2).
// Failure (EPERM in containers, EINVAL for an offline CPU) leaves the thread
// unpinned and is reported once per core.

package pinned

import (
	"sync"

	"golang.org/x/sys/unix"

	"ringqueue/debug"
	"ringqueue/utils"
)

var reported sync.Map // core -> struct{}

// setAffinity pins the current thread to cpu. Negative values disable
// pinning.
func setAffinity(cpu int) {
	if cpu < 0 {
		return
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		if _, seen := reported.LoadOrStore(cpu, struct{}{}); !seen {
			debug.DropError("pinned: affinity core "+utils.Itoa(cpu), err)
		}
	}
}
