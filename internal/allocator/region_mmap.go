//go:build linux || darwin

package allocator

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// mmapRegion is the io.Closer returned alongside an mmap'd region; closing
// it unmaps the backing memory. Callers must not dereference any pointer
// derived from the region (or keep it registered in a Heap) after Close.
type mmapRegion struct {
	buf []byte
}

func (r *mmapRegion) Close() error {
	if r.buf == nil {
		return nil
	}

	err := unix.Munmap(r.buf)
	r.buf = nil

	return err
}

// NewMmapRegion obtains size bytes of anonymous, zero-filled memory via
// mmap, for the shared-memory-segment scenario spec §6 alludes to: a
// region that could in principle be attached to by a second process. The
// returned closer unmaps the memory; the returned []byte must not be used
// after calling it.
func NewMmapRegion(size int) (buf []byte, closer io.Closer, err error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("allocator: mmap region size must be greater than 0")
	}

	buf, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, fmt.Errorf("allocator: mmap: %w", err)
	}

	return buf, &mmapRegion{buf: buf}, nil
}
