package allocator

import (
	"fmt"
	"io"
	"unsafe"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Display is the diagnostic dump collaborator spec §6 describes as out of
// core scope: it reads, never mutates, the two indices and emits a
// human-readable dump, the direct analogue of the original's shmHeapDisp /
// sizeTreeTraverse / addrTreeTraverse.
func (h *Heap) Display(w io.Writer) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "chunkheap dump (format %s)\n", h.cfg.FormatVersion)
	p.Fprintf(w, "regions: %d, registered bytes: %v\n", h.stats.RegionCount, number.Decimal(h.stats.RegisteredBytes))
	p.Fprintf(w, "alloc: %v, free: %v, failed allocs: %v\n\n",
		number.Decimal(h.stats.AllocCount), number.Decimal(h.stats.FreeCount), number.Decimal(h.stats.FailedAllocs))

	fmt.Fprintln(w, "Size Index:")
	dumpSizeTree(w, p, h.sizeIdx.root)

	fmt.Fprintln(w, "\nAddress Index:")
	dumpAddrTree(w, p, h.addrIdx.root)
}

func dumpSizeTree(w io.Writer, p *message.Printer, n *sizeNode) {
	if n == nil {
		return
	}

	dumpSizeTree(w, p, n.left)

	count := 1
	for c := n.list; c != nil; c = c.list {
		count++
	}

	p.Fprintf(w, "  size %v: %d chunk(s), head @%#x\n", number.Decimal(n.key), count, uintptr(unsafe.Pointer(n.owner)))

	dumpSizeTree(w, p, n.right)
}

func dumpAddrTree(w io.Writer, p *message.Printer, n *addrNode) {
	if n == nil {
		return
	}

	dumpAddrTree(w, p, n.left)

	owner := n.owner
	kind := "free"

	if owner.allocated {
		kind = "sentinel"
	}

	p.Fprintf(w, "  @%#x: %s, size %v\n", uintptr(unsafe.Pointer(owner)), kind, number.Decimal(owner.size))

	dumpAddrTree(w, p, n.right)
}
