package allocator

import (
	"fmt"
	"unsafe"
)

// Stats reports allocator activity counters, the single-threaded analogue
// of the original's counterMalloc/counterFree summary line.
type Stats struct {
	AllocCount      uint64
	FreeCount       uint64
	FailedAllocs    uint64
	RegisteredBytes uintptr
	RegionCount     int
}

// Heap is a single-threaded free-chunk index over zero or more externally
// supplied byte regions. It provides no internal synchronization (spec
// Non-goal); callers sharing a Heap across goroutines must serialize
// externally, or use the wrapper in safe.go.
type Heap struct {
	cfg *Config

	sizeIdx sizeIndex
	addrIdx addrIndex

	// regions keeps every registered []byte alive for as long as the Heap
	// exists. Chunk headers are overlaid onto this backing storage via
	// unsafe.Pointer; if the last reference to a region's slice vanished,
	// the garbage collector would be free to reclaim memory that raw
	// chunk pointers still reference.
	regions []region

	stats Stats
}

type region struct {
	buf []byte
}

// NewHeap constructs an empty Heap with no regions registered.
func NewHeap(opts ...Option) *Heap {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if !isValidFormatVersion(cfg.FormatVersion) {
		cfg.FormatVersion = dumpFormatVersion
	}

	return &Heap{cfg: cfg}
}

func (h *Heap) report(kind Kind, offset uintptr, msg string) {
	h.cfg.Reporter.Report(AllocError{Kind: kind, Offset: offset, Message: msg})
}

// Init registers region as a managed region: it plants a sentinel chunk at
// the region's tail, formats the remainder as a single free chunk, and
// publishes that chunk to both indices (spec §4.6). Multiple calls with
// distinct, non-overlapping regions populate the same shared pair of
// indices; chunks from distinct regions are never coalesced.
func (h *Heap) Init(reg []byte) error {
	if uintptr(len(reg)) < minRegionBytes() {
		return fmt.Errorf("allocator: region of %d bytes is smaller than the minimum %d", len(reg), minRegionBytes())
	}

	h.regions = append(h.regions, region{buf: reg})

	sentinelOffset := uintptr(len(reg)) - headerSize
	sentinel := headerAt(reg, sentinelOffset)
	sentinel.tag = magic
	sentinel.size = 0
	sentinel.allocated = true
	sentinel.sizeNode = sizeNode{}
	sentinel.addrNode = addrNode{owner: sentinel}

	// The sentinel lives in the Address Index only (spec §4.6, §9): best
	// fit must never be able to return a zero-payload chunk that can
	// satisfy no positive request anyway, so it is kept out of the Size
	// Index entirely rather than filtered at lookup time.
	if !h.addrIdx.insert(&sentinel.addrNode) {
		h.report(IndexInconsistency, sentinelOffset, "sentinel address already registered")
	}

	first := headerAt(reg, 0)
	payload := uintptr(len(reg)) - 2*headerSize
	markAllocated(first, payload)

	h.stats.RegisteredBytes += uintptr(len(reg))
	h.stats.RegionCount++

	// Format it exactly like a fresh allocation, then push it through the
	// ordinary free path (step 4 of §4.5 only — there's nothing to
	// coalesce with yet).
	h.free(payloadOf(first))

	return nil
}

// Alloc returns a pointer to size writable bytes inside some registered
// region, or nil if no free chunk is large enough. Alloc(0) is rejected
// with nil; this implementation does not treat it as Alloc(1).
func (h *Heap) Alloc(size int) unsafe.Pointer {
	if size <= 0 {
		return nil
	}

	total := headerSize + uintptr(size)

	node := h.sizeIdx.findBestFit(total)
	if node == nil {
		h.stats.FailedAllocs++
		return nil
	}

	chunk := node.owner

	if !h.sizeIdx.remove(node) {
		h.report(IndexInconsistency, uintptr(unsafe.Pointer(chunk)), "best-fit node missing from size index")
	}

	if !h.addrIdx.remove(&chunk.addrNode) {
		h.report(IndexInconsistency, uintptr(unsafe.Pointer(chunk)), "best-fit node missing from address index")
	}

	// extra is signed: the size-index search guarantees chunk.size >=
	// total = header_size + size, so in practice extra is always >=
	// header_size here. The explicit sign-aware computation mirrors the
	// original's `long extraBytes = curr->size - size;` rather than
	// assuming that invariant holds forever.
	extra := int64(chunk.size) - int64(size)

	if extra > 0 {
		tailOffset := uintptr(unsafe.Pointer(chunk)) + headerSize + uintptr(size)
		tail := (*chunkHeader)(unsafe.Pointer(tailOffset))
		tailPayload := uintptr(extra) - headerSize

		markAllocated(tail, tailPayload)
		h.free(payloadOf(tail))
	}

	markAllocated(chunk, uintptr(size))
	h.stats.AllocCount++

	return payloadOf(chunk)
}

// Free releases a pointer previously returned by Alloc. A nil pointer is a
// no-op. A pointer whose recovered header fails the magic check is
// rejected without mutating allocator state.
func (h *Heap) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	h.stats.FreeCount++
	h.free(ptr)
}

// free implements spec §4.5: successor coalesce, then predecessor
// coalesce, then publish. Used both by the public Free and internally by
// Init/Alloc to carve and publish a freshly formatted chunk.
func (h *Heap) free(ptr unsafe.Pointer) {
	curr := headerOf(ptr)
	if !isValid(curr) {
		h.report(BadPointer, uintptr(unsafe.Pointer(curr)), "magic tag mismatch on release")
		return
	}

	next := successorOf(curr)
	if !isValid(next) {
		h.report(CorruptNeighbor, uintptr(unsafe.Pointer(next)), "magic tag mismatch on physical successor")
		// Corruption at the successor is surfaced but non-fatal: skip
		// the successor coalesce and continue with the predecessor
		// check and publish, per spec §4.5 failure semantics.
	} else if !next.allocated {
		if !h.sizeIdx.remove(&next.sizeNode) {
			h.report(IndexInconsistency, uintptr(unsafe.Pointer(next)), "free successor missing from size index")
		}

		if !h.addrIdx.remove(&next.addrNode) {
			h.report(IndexInconsistency, uintptr(unsafe.Pointer(next)), "free successor missing from address index")
		}

		curr.size += next.size + headerSize
	}

	currAddr := uintptr(unsafe.Pointer(curr))
	if predNode := h.addrIdx.findPredecessor(currAddr); predNode != nil {
		pred := predNode.owner
		predSuccessorAddr := uintptr(unsafe.Pointer(pred)) + headerSize + pred.size

		// The address predecessor may be the sentinel of a region that ends
		// exactly where this one begins; sentinels are never absorbed.
		if predSuccessorAddr == currAddr && !pred.allocated {
			if !h.sizeIdx.remove(&pred.sizeNode) {
				h.report(IndexInconsistency, uintptr(unsafe.Pointer(pred)), "free predecessor missing from size index")
			}

			if !h.addrIdx.remove(&pred.addrNode) {
				h.report(IndexInconsistency, uintptr(unsafe.Pointer(pred)), "free predecessor missing from address index")
			}

			pred.size += curr.size + headerSize
			curr = pred
		}
	}

	resetFree(curr, curr.size)
	h.sizeIdx.insert(&curr.sizeNode)

	if !h.addrIdx.insert(&curr.addrNode) {
		h.report(IndexInconsistency, uintptr(unsafe.Pointer(curr)), "freed chunk address already registered")
	}
}

// Stats returns a snapshot of allocator activity counters.
func (h *Heap) Stats() Stats {
	return h.stats
}
