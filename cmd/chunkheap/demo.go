package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"github.com/chunkheap/chunkheap/internal/allocator"
)

// runDemo builds a single Heap over one freshly allocated region, runs a
// scripted sequence of alloc/free sizes against it, and prints the
// resulting dump plus checksum. It is the in-process analogue of the
// original's init/malloc/free/disp command sequence; since nothing here
// persists across invocations, there is no need for the region itself to
// outlive the process.
func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	regionBytes := fs.Int("region-bytes", 4096, "size of the backing region in bytes")
	allocList := fs.String("alloc", "", "comma-separated payload sizes to allocate, in order")
	freeList := fs.String("free", "", "comma-separated zero-based indices (into the alloc list) to free")

	if err := fs.Parse(args); err != nil {
		return err
	}

	h := allocator.NewHeap()
	if err := h.Init(make([]byte, *regionBytes)); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	var live []unsafe.Pointer

	for _, field := range splitNonEmpty(*allocList) {
		size, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("invalid -alloc entry %q: %w", field, err)
		}

		ptr := h.Alloc(size)
		live = append(live, ptr)

		if ptr == nil {
			fmt.Fprintf(os.Stderr, "alloc(%d) failed\n", size)
		}
	}

	for _, field := range splitNonEmpty(*freeList) {
		idx, err := strconv.Atoi(field)
		if err != nil {
			return fmt.Errorf("invalid -free entry %q: %w", field, err)
		}

		if idx < 0 || idx >= len(live) {
			return fmt.Errorf("-free index %d out of range (%d allocations recorded)", idx, len(live))
		}

		h.Free(live[idx])
	}

	h.Display(os.Stdout)

	sum, err := h.Checksum()
	if err != nil {
		return fmt.Errorf("checksum: %w", err)
	}

	fmt.Printf("checksum: %x\n", sum)

	return nil
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	fields := strings.Split(s, ",")
	out := make([]string, 0, len(fields))

	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}

	return out
}
