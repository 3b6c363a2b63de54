package allocator

import (
	"io"
	"sync"
	"unsafe"
)

// SafeHeap wraps a Heap with a single exclusive mutex held for the
// duration of each call, per spec §5's note that such a wrapper is
// sufficient for thread safety but explicitly out of the core's scope. The
// core Heap itself stays single-threaded and synchronization-free.
type SafeHeap struct {
	mu sync.Mutex
	h  *Heap
}

// NewSafeHeap wraps a freshly constructed Heap.
func NewSafeHeap(opts ...Option) *SafeHeap {
	return &SafeHeap{h: NewHeap(opts...)}
}

func (s *SafeHeap) Init(region []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.Init(region)
}

func (s *SafeHeap) Alloc(size int) unsafe.Pointer {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.Alloc(size)
}

func (s *SafeHeap) Free(ptr unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.h.Free(ptr)
}

func (s *SafeHeap) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.Stats()
}

func (s *SafeHeap) Display(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.h.Display(w)
}

func (s *SafeHeap) Checksum() ([32]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.h.Checksum()
}
