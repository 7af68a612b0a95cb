// ════════════════════════════════════════════════════════════════════════════════════════════════
// Backing Allocation
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Component: Storage lifecycle for ring queues
//
// Description:
//   Hands out single contiguous, zeroed, aligned regions and takes them back by
//   their origin address. A ring queue performs exactly one Alloc at
//   construction and one Free at disposal; neither sits on the hot path, so the
//   bookkeeping below is a plain mutex-guarded map.
//
// Backends:
//   - Heap: Go-managed byte slices, over-allocated to honour the alignment
//   - Mmap: anonymous OS pages (mmap / VirtualAlloc), outside the Go heap
//
// Regions are never scanned by the garbage collector for pointers. Store only
// pointer-free data in them.
// ════════════════════════════════════════════════════════════════════════════════════════════════

package alloc

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"ringqueue/layout"
)

var (
	// ErrUnknownBlock is returned by Free for an origin that is not live.
	ErrUnknownBlock = errors.New("alloc: unknown block")

	// ErrBadAlignment is returned by Alloc for a zero or non power-of-two alignment.
	ErrBadAlignment = errors.New("alloc: alignment must be a power of two")
)

// Allocator provides aligned backing regions.
type Allocator interface {
	// Alloc returns a zeroed region of at least size bytes whose address is a
	// multiple of align.
	Alloc(size, align uintptr) (unsafe.Pointer, error)

	// Free releases the region that starts at origin.
	Free(origin unsafe.Pointer) error

	// Live reports the number of regions handed out and not yet freed.
	Live() int
}

// Default is the allocator used when a queue is built without one.
var Default Allocator = NewHeap()

// checkAlign validates an alignment argument.
//
//go:nosplit
//go:inline
func checkAlign(align uintptr) error {
	if align == 0 || align&(align-1) != 0 {
		return fmt.Errorf("%w: %d", ErrBadAlignment, align)
	}
	return nil
}

// alignWithin returns the first address inside region that is a multiple of
// align. The caller guarantees the region has enough slack.
//
//go:nosplit
//go:inline
func alignWithin(region []byte, align uintptr) unsafe.Pointer {
	base := unsafe.Pointer(unsafe.SliceData(region))
	addr := uintptr(base)
	return unsafe.Add(base, layout.RoundUp(addr, align)-addr)
}

// ============================================================================
// HEAP BACKEND
// ============================================================================

// Heap allocates from the Go heap. The region stays reachable through the
// bookkeeping map until Free and through any interior pointer held by the
// caller after that.
type Heap struct {
	mu     sync.Mutex
	blocks map[uintptr][]byte
}

// NewHeap returns an empty heap allocator.
func NewHeap() *Heap {
	return &Heap{blocks: make(map[uintptr][]byte)}
}

// Alloc implements Allocator.
func (h *Heap) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if err := checkAlign(align); err != nil {
		return nil, err
	}
	// align-1 bytes of slack for the worst-case offset, plus one so a zero
	// size still yields an addressable byte.
	buf := make([]byte, size+align)
	p := alignWithin(buf, align)

	h.mu.Lock()
	h.blocks[uintptr(p)] = buf
	h.mu.Unlock()
	return p, nil
}

// Free implements Allocator.
func (h *Heap) Free(origin unsafe.Pointer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.blocks[uintptr(origin)]; !ok {
		return fmt.Errorf("%w: %#x", ErrUnknownBlock, uintptr(origin))
	}
	delete(h.blocks, uintptr(origin))
	return nil
}

// Live implements Allocator.
func (h *Heap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blocks)
}

// ============================================================================
// PAGE BACKEND
// ============================================================================

// Mmap allocates whole OS pages outside the Go heap. Alignments above the
// page size are satisfied by over-mapping.
type Mmap struct {
	mu     sync.Mutex
	blocks map[uintptr][]byte // origin → full mapping
}

// NewMmap returns an empty page allocator.
func NewMmap() *Mmap {
	return &Mmap{blocks: make(map[uintptr][]byte)}
}

// Alloc implements Allocator.
func (m *Mmap) Alloc(size, align uintptr) (unsafe.Pointer, error) {
	if err := checkAlign(align); err != nil {
		return nil, err
	}
	page := uintptr(pageSize())
	if size == 0 {
		size = 1
	}
	n := layout.RoundUp(size, page)
	if align > page {
		n += align
	}
	region, err := mapPages(n)
	if err != nil {
		return nil, fmt.Errorf("alloc: map %d bytes: %w", n, err)
	}
	p := alignWithin(region, align)

	m.mu.Lock()
	m.blocks[uintptr(p)] = region
	m.mu.Unlock()
	return p, nil
}

// Free implements Allocator.
func (m *Mmap) Free(origin unsafe.Pointer) error {
	m.mu.Lock()
	region, ok := m.blocks[uintptr(origin)]
	if ok {
		delete(m.blocks, uintptr(origin))
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %#x", ErrUnknownBlock, uintptr(origin))
	}
	if err := unmapPages(region); err != nil {
		return fmt.Errorf("alloc: unmap %d bytes: %w", len(region), err)
	}
	return nil
}

// Live implements Allocator.
func (m *Mmap) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blocks)
}
