// ring.go
//
// Lock-free single-producer/single-consumer ring queue over raw bytes.
//
// One allocation holds everything:
//
//	[ control{read, write} | pad | slot 0 | slot 1 | … | slot capacity+1 ]
//	                               ^
//	                               Raw.slots
//
// The handle keeps a pointer to slot 0; the control block sits immediately
// before it. Cursors are slot numbers in [0, capacity+2). Two spare slots let
// plain index equality separate the states without a counter:
//
//	full : next(write) == read
//	empty: next(read)  == write
//
// The producer writes slot `write` then publishes write+1. The consumer reads
// slot `read+1` then publishes it as the new read. Starting from write = 0 and
// read = slots-1 the first empty test is true and the first full test is false.
//
// ⚠️ Trusted-caller primitive:
//   - exactly one goroutine may call Enqueue, exactly one may call Dequeue
//   - Dispose only after both sides have stopped and the queue is drained;
//     anything still resident is abandoned, never cleaned up
//   - no use after Dispose
//
// None of the above is checked at runtime.

package ring

import (
	"math"
	"unsafe"

	"ringqueue/alloc"
	"ringqueue/debug"
	"ringqueue/layout"
)

// control is the shared header. Both fields are touched only through the
// helpers in ring_atomic.go.
type control struct {
	read  uint32 // last slot handed to the consumer
	write uint32 // next slot the producer fills
}

// MaxCapacity is the largest capacity whose slot count fits a 32-bit cursor.
const MaxCapacity = math.MaxUint32 - 2

// maxBytes bounds the slot array so Plan arithmetic stays inside uintptr.
const maxBytes = uint64(^uintptr(0)>>1) - 1<<16

// ControlLayout is the layout of the header that precedes slot 0.
//
//go:nosplit
//go:inline
func ControlLayout() layout.Layout {
	return layout.Of[control]()
}

// Raw is a byte-oriented SPSC queue for items of one fixed layout.
type Raw struct {
	slots unsafe.Pointer // slot 0; the control block lives just before it
	bound uint32         // slot count, capacity+2
	plan  layout.Plan
	alloc alloc.Allocator
}

// New builds a queue holding up to capacity items of the given layout.
// It panics on zero capacity, on a capacity whose slot count overflows the
// cursor width, and when the allocator cannot provide the region.
func New(item layout.Layout, capacity int, a alloc.Allocator) *Raw {
	if capacity <= 0 {
		panic("ring: capacity must be > 0")
	}
	if uint64(capacity) > MaxCapacity {
		panic("ring: capacity exceeds 32-bit cursor range")
	}
	if item.Size != 0 && uint64(capacity)+2 > maxBytes/uint64(item.Size) {
		panic("ring: allocation size overflows")
	}
	if a == nil {
		a = alloc.Default
	}

	plan := layout.NewPlan(ControlLayout(), item, capacity)
	origin, err := a.Alloc(plan.Total, plan.Align)
	if err != nil {
		panic("ring: backing allocation failed: " + err.Error())
	}

	r := &Raw{
		slots: unsafe.Add(origin, plan.Midpoint),
		bound: uint32(plan.Slots),
		plan:  plan,
		alloc: a,
	}
	*r.ctl() = control{
		read:  r.bound - 1,
		write: 0,
	}
	return r
}

// ctl returns the control block that precedes slot 0.
//
//go:nosplit
//go:inline
func (r *Raw) ctl() *control {
	return (*control)(unsafe.Add(r.slots, layout.ControlOffset(r.plan.Control)))
}

// slot returns the address of slot i.
//
//go:nosplit
//go:inline
func (r *Raw) slot(i uint32) unsafe.Pointer {
	return unsafe.Add(r.slots, r.plan.SlotOffset(i))
}

// next advances a cursor by one slot, wrapping to zero at the bound.
//
//go:nosplit
//go:inline
func (r *Raw) next(i uint32) uint32 {
	i++
	if i == r.bound {
		i = 0
	}
	return i
}

// Enqueue copies one item from src into the queue. It returns false, without
// side effects, when the queue is full. Producer goroutine only.
//
//go:nosplit
func (r *Raw) Enqueue(src unsafe.Pointer) bool {
	c := r.ctl()
	w := loadRelaxed32(&c.write) // our own cursor
	n := r.next(w)

	// A stale read cursor only reports full early; the retry sees the truth.
	if n == loadRelaxed32(&c.read) {
		return false
	}

	copyItem(r.slot(w), src, r.plan.Item.Size)

	// Publishes the bytes above; pairs with the acquire in Dequeue.
	storeRelease32(&c.write, n)
	return true
}

// Dequeue moves the oldest item into dst. It returns false, leaving dst
// untouched, when the queue is empty. Consumer goroutine only.
//
//go:nosplit
func (r *Raw) Dequeue(dst unsafe.Pointer) bool {
	c := r.ctl()
	rd := loadRelaxed32(&c.read) // our own cursor
	n := r.next(rd)

	// Gates the slot read below; must observe the producer's release.
	if n == loadAcquire32(&c.write) {
		return false
	}

	copyItem(dst, r.slot(n), r.plan.Item.Size)

	// Hands the slot back; pairs with the producer's read-cursor load.
	storeRelease32(&c.read, n)
	return true
}

// copyItem copies size bytes from src to dst.
//
//go:nosplit
//go:inline
func copyItem(dst, src unsafe.Pointer, size uintptr) {
	if size == 0 {
		return
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
}

// Dispose returns the backing region to the allocator. The queue must be
// drained and idle on both sides.
func (r *Raw) Dispose() {
	if r.slots == nil {
		debug.DropMessage("ring", "dispose called twice")
		return
	}
	first := uintptr(r.slots)
	back := first - layout.Origin(first, r.plan.Control, r.plan.Item)
	origin := unsafe.Add(r.slots, -int(back))
	r.slots = nil
	if err := r.alloc.Free(origin); err != nil {
		debug.DropError("ring: dispose", err)
	}
}

// Cap returns the number of items the queue can hold.
//
//go:nosplit
//go:inline
func (r *Raw) Cap() int {
	return r.plan.Capacity
}

// Len returns an approximate item count. Exact only when neither side is
// running.
func (r *Raw) Len() int {
	s := r.State()
	return int((uint64(s.Write) + uint64(s.Slots) - uint64(s.Read) - 1) % uint64(s.Slots))
}

// Plan returns the layout plan the queue was built from.
func (r *Raw) Plan() layout.Plan {
	return r.plan
}

// State is a snapshot of the cursors for diagnostics.
type State struct {
	Read  uint32 // last slot consumed
	Write uint32 // next slot to fill
	Slots uint32 // capacity+2
}

// State loads both cursors. The pair is not read atomically as a unit.
func (r *Raw) State() State {
	c := r.ctl()
	return State{
		Read:  loadAcquire32(&c.read),
		Write: loadAcquire32(&c.write),
		Slots: r.bound,
	}
}
