package allocator

import (
	"testing"
	"unsafe"
)

func newTestHeap(t *testing.T, regionBytes int) *Heap {
	t.Helper()

	h := NewHeap()
	if err := h.Init(make([]byte, regionBytes)); err != nil {
		t.Fatalf("Init: %v", err)
	}

	return h
}

func TestHeapInitRejectsUndersizedRegion(t *testing.T) {
	h := NewHeap()

	if err := h.Init(make([]byte, int(minRegionBytes())-1)); err == nil {
		t.Fatal("expected an error for a region smaller than the minimum")
	}
}

func TestHeapInitAcceptsMinimumRegion(t *testing.T) {
	h := NewHeap()

	if err := h.Init(make([]byte, int(minRegionBytes()))); err != nil {
		t.Fatalf("Init: %v", err)
	}

	stats := h.Stats()
	if stats.RegionCount != 1 {
		t.Fatalf("want RegionCount 1, got %d", stats.RegionCount)
	}
}

func TestHeapAllocReturnsUsableMemory(t *testing.T) {
	h := newTestHeap(t, 1024)

	ptr := h.Alloc(64)
	if ptr == nil {
		t.Fatal("Alloc returned nil")
	}

	buf := unsafe.Slice((*byte)(ptr), 64)
	for i := range buf {
		buf[i] = byte(i)
	}

	for i := range buf {
		if buf[i] != byte(i) {
			t.Fatalf("payload byte %d corrupted: got %d", i, buf[i])
		}
	}
}

func TestHeapAllocZeroRejected(t *testing.T) {
	h := newTestHeap(t, 1024)

	if ptr := h.Alloc(0); ptr != nil {
		t.Fatal("Alloc(0) must return nil")
	}
}

func TestHeapAllocSplitsOversizedChunk(t *testing.T) {
	h := newTestHeap(t, 1024)

	first := h.Alloc(16)
	if first == nil {
		t.Fatal("first Alloc failed")
	}

	second := h.Alloc(16)
	if second == nil {
		t.Fatal("second Alloc failed")
	}

	if first == second {
		t.Fatal("two live allocations must not alias")
	}

	stats := h.Stats()
	if stats.AllocCount != 2 {
		t.Fatalf("want AllocCount 2, got %d", stats.AllocCount)
	}
}

func TestHeapAllocFailsWhenExhausted(t *testing.T) {
	h := newTestHeap(t, int(3*headerSize+10))

	first := h.Alloc(10)
	if first == nil {
		t.Fatal("expected the first allocation to succeed")
	}

	if ptr := h.Alloc(1); ptr != nil {
		t.Fatal("expected the second allocation to fail: region is exhausted")
	}

	if h.Stats().FailedAllocs != 1 {
		t.Fatalf("want FailedAllocs 1, got %d", h.Stats().FailedAllocs)
	}
}

func TestHeapFreeThenReallocReusesSpace(t *testing.T) {
	h := newTestHeap(t, 512)

	a := h.Alloc(32)
	if a == nil {
		t.Fatal("Alloc failed")
	}

	h.Free(a)

	b := h.Alloc(32)
	if b == nil {
		t.Fatal("Alloc after Free failed")
	}

	if a != b {
		t.Fatalf("expected the freed chunk to be reused, got a=%p b=%p", a, b)
	}
}

func TestHeapFreeNilIsNoop(t *testing.T) {
	h := newTestHeap(t, 256)
	h.Free(nil)

	if h.Stats().FreeCount != 0 {
		t.Fatalf("Free(nil) should not be counted, got %d", h.Stats().FreeCount)
	}
}

func TestHeapFreeCoalescesForward(t *testing.T) {
	h := newTestHeap(t, 512)

	a := h.Alloc(32)
	b := h.Alloc(32)

	if a == nil || b == nil {
		t.Fatal("setup allocations failed")
	}

	h.Free(b)
	h.Free(a)

	// A single coalesced free chunk should now be able to satisfy a request
	// that neither original 32-byte slice could on its own.
	big := h.Alloc(80)
	if big == nil {
		t.Fatal("expected a coalesced chunk large enough for 80 bytes")
	}
}

func TestHeapFreeCoalescesBackward(t *testing.T) {
	h := newTestHeap(t, 512)

	a := h.Alloc(32)
	b := h.Alloc(32)

	if a == nil || b == nil {
		t.Fatal("setup allocations failed")
	}

	h.Free(a)
	h.Free(b)

	big := h.Alloc(80)
	if big == nil {
		t.Fatal("expected a coalesced chunk large enough for 80 bytes")
	}
}

func TestHeapFreeRejectsBadPointer(t *testing.T) {
	h := newTestHeap(t, 256)

	reporter := &CollectingReporter{}
	h.cfg.Reporter = reporter

	var garbage [256]byte
	h.Free(unsafe.Pointer(&garbage[headerSize]))

	if len(reporter.Errors) == 0 || reporter.Errors[0].Kind != BadPointer {
		t.Fatalf("expected a BadPointer report, got %+v", reporter.Errors)
	}
}

func TestHeapMultipleRegionsDoNotCoalesce(t *testing.T) {
	h := NewHeap()

	// Carve both regions from one arena so they are physically adjacent:
	// region 2 begins at the byte right after region 1's sentinel.
	arena, err := NewRegionArena(512)
	if err != nil {
		t.Fatalf("NewRegionArena: %v", err)
	}

	r1, err := arena.Carve(256)
	if err != nil {
		t.Fatalf("Carve region 1: %v", err)
	}

	r2, err := arena.Carve(256)
	if err != nil {
		t.Fatalf("Carve region 2: %v", err)
	}

	if err := h.Init(r1); err != nil {
		t.Fatalf("Init region 1: %v", err)
	}

	if err := h.Init(r2); err != nil {
		t.Fatalf("Init region 2: %v", err)
	}

	if h.Stats().RegionCount != 2 {
		t.Fatalf("want RegionCount 2, got %d", h.Stats().RegionCount)
	}

	// Each region keeps its own free chunk and its own sentinel.
	count := 0

	var walk func(n *addrNode)

	walk = func(n *addrNode) {
		if n == nil {
			return
		}

		walk(n.left)
		count++
		walk(n.right)
	}

	walk(h.addrIdx.root)

	if count != 4 {
		t.Fatalf("want 4 address index entries (2 free chunks + 2 sentinels), got %d", count)
	}
}
