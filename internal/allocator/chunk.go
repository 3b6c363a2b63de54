// Package allocator implements a best-fit, coalescing heap allocator over
// externally supplied contiguous byte regions. It is the free-chunk index
// that would back a malloc/free-style interface on top of a raw memory
// region (a shared-memory segment, a static buffer, an mmap'd area) without
// relying on any underlying OS allocator.
package allocator

import "unsafe"

// magic is the fixed sentinel tag every chunk header carries. A header
// whose tag doesn't match this is evidence of corruption, or of reading
// past a region's sentinel.
const magic uint32 = 0xDEBB1E83

// sizeNode is the embedded Size Index tree node living inside every chunk
// header. It is only meaningful while the owning chunk is free.
type sizeNode struct {
	left, right *sizeNode
	list        *sizeNode // equal-size bucket chain
	key         uintptr
	owner       *chunkHeader
}

// addrNode is the embedded Address Index tree node living inside every
// chunk header. It is only meaningful while the owning chunk is free.
type addrNode struct {
	left, right *addrNode
	owner       *chunkHeader
}

// chunkHeader prefixes every chunk, free or allocated, in a managed region.
// Its address never changes for the lifetime of the chunk: surviving
// chunks after a coalesce are always the lower-address one, so index
// back-references through sizeNode/addrNode.owner stay valid.
type chunkHeader struct {
	tag       uint32
	size      uintptr // payload bytes, excluding this header
	allocated bool
	sizeNode  sizeNode
	addrNode  addrNode
}

// headerSize is the fixed header footprint every chunk pays regardless of
// payload size.
var headerSize = unsafe.Sizeof(chunkHeader{})

// minPayloadForSplit is the least payload a region's initial free chunk may
// have. minRegionBytes is the smallest region Init will accept: two headers
// (one for the sentinel, one for the initial free chunk) plus that payload.
const minPayloadForSplit = 1

func minRegionBytes() uintptr { return 2*headerSize + minPayloadForSplit }

// headerAt overlays a *chunkHeader onto region at the given byte offset.
// The region slice must outlive every pointer derived from it; Heap keeps
// a reference to each registered region for exactly this reason.
func headerAt(region []byte, offset uintptr) *chunkHeader {
	return (*chunkHeader)(unsafe.Pointer(&region[offset]))
}

// payloadOf returns the address of a chunk's payload, i.e. what Alloc
// hands back to callers.
func payloadOf(h *chunkHeader) unsafe.Pointer {
	return unsafe.Pointer(uintptr(unsafe.Pointer(h)) + headerSize)
}

// headerOf recovers the chunk header from a payload pointer previously
// returned by Alloc. The caller must still validate the magic tag before
// trusting the result; this is pure pointer arithmetic.
func headerOf(ptr unsafe.Pointer) *chunkHeader {
	return (*chunkHeader)(unsafe.Pointer(uintptr(ptr) - headerSize))
}

// successorOf returns the chunk physically following h: the byte
// immediately after h's payload is either another chunk's header or the
// region sentinel (invariant I2).
func successorOf(h *chunkHeader) *chunkHeader {
	addr := uintptr(unsafe.Pointer(h)) + headerSize + h.size
	return (*chunkHeader)(unsafe.Pointer(addr))
}

// isValid reports whether h's magic tag is intact.
func isValid(h *chunkHeader) bool {
	return h != nil && h.tag == magic
}

// resetFree reinitializes h as a free chunk of the given payload size,
// clearing any stale index-node links.
func resetFree(h *chunkHeader, size uintptr) {
	h.tag = magic
	h.size = size
	h.allocated = false
	h.sizeNode = sizeNode{key: size, owner: h}
	h.addrNode = addrNode{owner: h}
}

// markAllocated flips h to the allocated state with the given payload
// size, clearing any stale index-node links (allocated chunks are never
// indexed, invariant I4).
func markAllocated(h *chunkHeader, size uintptr) {
	h.tag = magic
	h.size = size
	h.allocated = true
	h.sizeNode = sizeNode{}
	h.addrNode = addrNode{}
}
