package allocator

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Checksum folds every chunk header's offset/size/allocated triple, across
// every registered region, through a blake2b digest. It gives tests (and
// the diagnostic dump) a cheap way to assert "chunk layout is unchanged
// between two points in time" without diffing full text dumps.
func (h *Heap) Checksum() ([32]byte, error) {
	var out [32]byte

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return out, fmt.Errorf("allocator: blake2b init: %w", err)
	}

	var rec [17]byte

	for _, r := range h.regions {
		offset := uintptr(0)
		for offset < uintptr(len(r.buf)) {
			hdr := headerAt(r.buf, offset)
			if !isValid(hdr) {
				return out, AllocError{Kind: CorruptNeighbor, Offset: offset, Message: "checksum walk hit an invalid header"}
			}

			binary.LittleEndian.PutUint64(rec[0:8], uint64(offset))
			binary.LittleEndian.PutUint64(rec[8:16], uint64(hdr.size))

			rec[16] = 0
			if hdr.allocated {
				rec[16] = 1
			}

			hasher.Write(rec[:])

			if hdr.size == 0 && hdr.allocated {
				break // reached this region's sentinel
			}

			offset += headerSize + hdr.size
		}
	}

	copy(out[:], hasher.Sum(nil))

	return out, nil
}
