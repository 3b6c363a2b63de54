package allocator

import (
	"fmt"
	"sync"
	"unsafe"
)

// defaultHeap backs the package-level convenience functions below. Per
// spec §9's design note ("Expose [the two index roots] as a single
// allocator state value that the operations take as an explicit
// parameter; make the default allocator a singleton on top of that if
// source compatibility is desired"), every operation here is a thin
// wrapper over an explicit *Heap; nothing relies on hidden statics beyond
// this one pointer.
var (
	defaultHeapMu sync.Mutex
	defaultHeap   *Heap
)

// InitDefault constructs (or replaces) the package-level default Heap. The
// package-level functions in this file each hold defaultHeapMu for the
// duration of the call; the *Heap returned by Default is not guarded by it.
func InitDefault(opts ...Option) {
	defaultHeapMu.Lock()
	defer defaultHeapMu.Unlock()

	defaultHeap = NewHeap(opts...)
}

// RegisterDefault registers a region on the package-level default Heap,
// constructing one with default options first if InitDefault was never
// called.
func RegisterDefault(region []byte) error {
	defaultHeapMu.Lock()
	defer defaultHeapMu.Unlock()

	if defaultHeap == nil {
		defaultHeap = NewHeap()
	}

	return defaultHeap.Init(region)
}

// Alloc allocates from the package-level default Heap.
func Alloc(size int) (unsafe.Pointer, error) {
	defaultHeapMu.Lock()
	defer defaultHeapMu.Unlock()

	if defaultHeap == nil {
		return nil, fmt.Errorf("allocator: default heap not initialized, call InitDefault or RegisterDefault first")
	}

	return defaultHeap.Alloc(size), nil
}

// Free releases ptr on the package-level default Heap.
func Free(ptr unsafe.Pointer) {
	defaultHeapMu.Lock()
	defer defaultHeapMu.Unlock()

	if defaultHeap != nil {
		defaultHeap.Free(ptr)
	}
}

// Default returns the package-level default Heap, or nil if it was never
// initialized.
func Default() *Heap {
	defaultHeapMu.Lock()
	defer defaultHeapMu.Unlock()

	return defaultHeap
}
