// ════════════════════════════════════════════════════════════════════════════════════════════════
// Typed SPSC Queue
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Type-safe façade over the byte-oriented ring
//
// Description:
//   Queue[T] derives T's size and alignment once and forwards every call to
//   ring.Raw with that layout, so callers cannot hand the ring a mismatched
//   item. Items travel by copy: Enqueue copies *item into a slot, Dequeue
//   copies a slot into *dst.
//
// Item types:
//   Slots live in memory the garbage collector does not scan. T must therefore
//   be pointer-free (numbers, bools, arrays and structs of those). New panics
//   for any T that holds pointers, slices, strings, maps, channels, funcs or
//   interfaces.
//
// Concurrency contract (unchecked):
//   - one producer goroutine calls Enqueue
//   - one consumer goroutine calls Dequeue
//   - Dispose after both have stopped and the queue is drained
// ════════════════════════════════════════════════════════════════════════════════════════════════

package queue

import (
	"reflect"
	"unsafe"

	"ringqueue/alloc"
	"ringqueue/layout"
	"ringqueue/ring"
)

// Queue is a fixed-capacity SPSC queue of T values.
type Queue[T any] struct {
	raw *ring.Raw
}

// Option customises New.
type Option func(*options)

type options struct {
	alloc alloc.Allocator
}

// WithAllocator selects the allocator for the backing region.
func WithAllocator(a alloc.Allocator) Option {
	return func(o *options) { o.alloc = a }
}

// New builds a queue for up to capacity items. It panics when capacity is
// not positive, when T holds Go pointers, or when allocation fails.
func New[T any](capacity int, opts ...Option) *Queue[T] {
	if typ := reflect.TypeFor[T](); hasPointers(typ) {
		panic("queue: item type " + typ.String() + " contains pointers")
	}
	o := options{alloc: alloc.Default}
	for _, opt := range opts {
		opt(&o)
	}
	return &Queue[T]{raw: ring.New(layout.Of[T](), capacity, o.alloc)}
}

// Enqueue copies *item into the queue. False means full; nothing changed.
// Producer only.
//
//go:nosplit
//go:inline
func (q *Queue[T]) Enqueue(item *T) bool {
	return q.raw.Enqueue(unsafe.Pointer(item))
}

// Dequeue moves the oldest item into *dst. False means empty; *dst was not
// written and holds whatever it held before. Consumer only.
//
//go:nosplit
//go:inline
func (q *Queue[T]) Dequeue(dst *T) bool {
	return q.raw.Dequeue(unsafe.Pointer(dst))
}

// Dispose releases the backing region. Items still queued are abandoned.
func (q *Queue[T]) Dispose() {
	q.raw.Dispose()
}

// Cap returns the capacity.
func (q *Queue[T]) Cap() int {
	return q.raw.Cap()
}

// Len returns an approximate item count.
func (q *Queue[T]) Len() int {
	return q.raw.Len()
}

// Plan returns the layout of the backing region.
func (q *Queue[T]) Plan() layout.Plan {
	return q.raw.Plan()
}

// State exposes the cursor snapshot of the underlying ring.
func (q *Queue[T]) State() ring.State {
	return q.raw.State()
}

// hasPointers reports whether values of t contain anything the garbage
// collector would need to trace.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return true
	}
}
