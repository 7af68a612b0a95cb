// layout.go
//
// Pure offset arithmetic for packing a control block and an item array into
// one allocation:
//
//	origin ─┬─ control block ─┬─ pad ─┬─ slot 0 ─┬─ slot 1 ─ … ─ slot capacity+1
//	        │                 │       │
//	        └─ Alignment      └───────┴─ Midpoint (first-slot offset)
//
// Nothing here touches memory; every helper is a function of sizes and
// alignments so it can be checked in isolation from the concurrent code.

package layout

import "unsafe"

// Layout describes the footprint of one value: its size in bytes and its
// required alignment. Align is always a power of two and at least 1.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// Of returns the layout of T.
//
//go:nosplit
//go:inline
func Of[T any]() Layout {
	var zero T
	return Layout{Size: unsafe.Sizeof(zero), Align: unsafe.Alignof(zero)}
}

// SlotCount returns the number of slots reserved for capacity live items.
// Two extra slots keep a sentinel gap between the cursors in both
// directions so index equality alone separates full from empty.
//
//go:nosplit
//go:inline
func SlotCount(capacity int) int {
	return capacity + 2
}

// RoundUp rounds n up to the next multiple of align (power of two).
//
//go:nosplit
//go:inline
func RoundUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// RoundDown rounds n down to a multiple of align (power of two).
//
//go:nosplit
//go:inline
func RoundDown(n, align uintptr) uintptr {
	return n &^ (align - 1)
}

// Midpoint is the offset of slot 0 from the allocation origin.
//
//go:nosplit
//go:inline
func Midpoint(control, item Layout) uintptr {
	return RoundUp(control.Size, item.Align)
}

// TotalSize is the number of bytes the backing allocation needs.
//
//go:nosplit
//go:inline
func TotalSize(control, item Layout, capacity int) uintptr {
	return Midpoint(control, item) + item.Size*uintptr(SlotCount(capacity))
}

// Alignment is the alignment the backing allocation must satisfy.
//
//go:nosplit
//go:inline
func Alignment(control, item Layout) uintptr {
	if item.Align > control.Align {
		return item.Align
	}
	return control.Align
}

// Origin recovers the allocation origin from the first-slot address.
// Padding may sit between the control block and slot 0, so stepping back by
// the control size alone can land past the origin; rounding down to the
// allocation alignment undoes that.
//
//go:nosplit
//go:inline
func Origin(firstSlot uintptr, control, item Layout) uintptr {
	return RoundDown(firstSlot-control.Size, Alignment(control, item))
}

// ControlOffset is the signed byte offset from slot 0 to the control block.
// The control block always ends exactly where slot 0 begins.
//
//go:nosplit
//go:inline
func ControlOffset(control Layout) int {
	return -int(control.Size)
}

// Plan is the full set of numbers for one queue instance, computed once at
// construction.
type Plan struct {
	Control  Layout
	Item     Layout
	Capacity int
	Slots    int     // SlotCount(Capacity)
	Midpoint uintptr // offset of slot 0 from the origin
	Total    uintptr // bytes to allocate
	Align    uintptr // alignment of the allocation
}

// NewPlan derives a Plan. It performs no validation.
func NewPlan(control, item Layout, capacity int) Plan {
	return Plan{
		Control:  control,
		Item:     item,
		Capacity: capacity,
		Slots:    SlotCount(capacity),
		Midpoint: Midpoint(control, item),
		Total:    TotalSize(control, item, capacity),
		Align:    Alignment(control, item),
	}
}

// SlotOffset is the byte offset of slot i from slot 0.
//
//go:nosplit
//go:inline
func (p *Plan) SlotOffset(i uint32) uintptr {
	return uintptr(i) * p.Item.Size
}
