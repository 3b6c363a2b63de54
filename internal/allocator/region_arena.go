package allocator

import (
	"fmt"
	"unsafe"
)

// RegionArena bump-carves a single large backing buffer into several
// disjoint, correctly-aligned regions. It never participates in chunk-level
// allocation itself — each carved []byte is handed to Heap.Init as an
// independent region, exercising spec §4.6's "multiple regions populate the
// same shared pair of indices" behavior without requiring the caller to
// manage several separate backing allocations.
//
// This generalizes the teacher's bump-pointer arena allocator (which served
// user payloads directly) from a payload allocator into a region source;
// payload-level bump allocation isn't part of this spec.
type RegionArena struct {
	buf     []byte
	current uintptr
}

// NewRegionArena allocates a backing buffer of size bytes to carve regions
// from.
func NewRegionArena(size uintptr) (*RegionArena, error) {
	if size == 0 {
		return nil, fmt.Errorf("allocator: arena size must be greater than 0")
	}

	return &RegionArena{buf: make([]byte, size)}, nil
}

// alignUp rounds size up to the next multiple of alignment.
func alignUp(size, alignment uintptr) uintptr {
	if alignment == 0 {
		return size
	}

	return (size + alignment - 1) &^ (alignment - 1)
}

// regionAlignment is the alignment every carved region's base address must
// satisfy so chunk headers (which embed pointers) overlay cleanly.
var regionAlignment = unsafe.Alignof(chunkHeader{})

// Carve returns a fresh, non-overlapping region of size bytes suitable for
// Heap.Init, or an error if the arena doesn't have enough space left.
func (a *RegionArena) Carve(size uintptr) ([]byte, error) {
	if size < minRegionBytes() {
		return nil, fmt.Errorf("allocator: carved region of %d bytes is smaller than the minimum %d", size, minRegionBytes())
	}

	start := alignUp(a.current, regionAlignment)
	if start+size > uintptr(len(a.buf)) {
		return nil, fmt.Errorf("allocator: arena has %d bytes left, cannot carve %d", uintptr(len(a.buf))-a.current, size)
	}

	region := a.buf[start : start+size : start+size]
	a.current = start + size

	return region, nil
}

// Available returns the number of unclaimed bytes left in the arena.
func (a *RegionArena) Available() uintptr {
	return uintptr(len(a.buf)) - a.current
}
