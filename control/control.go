// control.go - Global hot/stop flags shared by the pinned loops
// ============================================================================
// RUN COORDINATION
// ============================================================================
//
// The producer marks the system hot while it is feeding; consumers read the
// flag to decide between tight spin and relaxed polling. A single stop flag
// asks every pinned loop to exit, and ShutdownWG lets main wait for them.
//
// Flag contract:
//   - SignalActivity / PollCooldown write hot, consumers only read it
//   - Shutdown writes stop, consumers only read it
//   - Reset is for run boundaries, never while loops are live

package control

import (
	"sync"
	"sync/atomic"
	"time"

	"ringqueue/constants"
)

var (
	hot  uint32 // 1 while the producer is active
	stop uint32 // 1 once shutdown is requested

	lastHot    atomic.Int64 // UnixNano of the last SignalActivity
	cooldownNs atomic.Int64

	// ShutdownWG tracks pinned loops that must finish before exit.
	ShutdownWG sync.WaitGroup
)

func init() {
	cooldownNs.Store(int64(constants.Cooldown))
}

// SignalActivity marks the system hot and records when.
//
//go:nosplit
//go:inline
//go:registerparams
func SignalActivity() {
	lastHot.Store(time.Now().UnixNano())
	atomic.StoreUint32(&hot, 1)
}

// PollCooldown clears the hot flag once no activity has been signalled for
// the cooldown period.
//
//go:nosplit
//go:inline
//go:registerparams
func PollCooldown() {
	if atomic.LoadUint32(&hot) == 1 && time.Now().UnixNano()-lastHot.Load() > cooldownNs.Load() {
		atomic.StoreUint32(&hot, 0)
	}
}

// SetCooldown overrides the idle period used by PollCooldown.
func SetCooldown(d time.Duration) {
	cooldownNs.Store(int64(d))
}

// Shutdown asks every loop watching the stop flag to exit.
//
//go:nosplit
//go:inline
//go:registerparams
func Shutdown() {
	atomic.StoreUint32(&stop, 1)
}

// Flags returns the stop and hot flags for the pinned loops. The pointers
// stay valid for the life of the process.
//
//go:nosplit
//go:inline
//go:registerparams
func Flags() (*uint32, *uint32) {
	return &stop, &hot
}

// Reset clears both flags and restores the default cooldown. Only call it
// between runs.
func Reset() {
	atomic.StoreUint32(&hot, 0)
	atomic.StoreUint32(&stop, 0)
	lastHot.Store(0)
	cooldownNs.Store(int64(constants.Cooldown))
}
