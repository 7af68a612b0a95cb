// ring_atomic.go
//
// Ordering helpers for the two cursors. sync/atomic loads and stores are
// sequentially consistent on every platform Go supports, a superset of the
// acquire/release pairing the protocol needs. Keeping the intended order in
// the helper name makes each gating load and publishing store auditable.

package ring

import "sync/atomic"

// loadAcquire32 is an acquire load of *p.
//
//go:nosplit
//go:inline
func loadAcquire32(p *uint32) uint32 {
	return atomic.LoadUint32(p)
}

// loadRelaxed32 is a load whose ordering does not matter to the caller: the
// cursor is either owned by the caller or a stale value is harmless.
//
//go:nosplit
//go:inline
func loadRelaxed32(p *uint32) uint32 {
	return atomic.LoadUint32(p)
}

// storeRelease32 is a release store of v to *p.
//
//go:nosplit
//go:inline
func storeRelease32(p *uint32, v uint32) {
	atomic.StoreUint32(p, v)
}
