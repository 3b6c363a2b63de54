package allocator

import (
	"fmt"
	"os"
)

// Kind enumerates the allocator's closed error taxonomy (spec §7). Only
// OutOfMemory is ever surfaced in-band (a nil return from Alloc); the other
// three are diagnostic and flow through a Reporter instead of altering
// return values, because by the time they're detected the operation is
// already attempting to rescue partial state.
type Kind int

const (
	// OutOfMemory means Alloc could not find a free chunk large enough.
	OutOfMemory Kind = iota
	// BadPointer means Free received a pointer whose recovered header
	// lacks the magic tag.
	BadPointer
	// CorruptNeighbor means a neighbor's magic tag was wrong during
	// coalescing.
	CorruptNeighbor
	// IndexInconsistency means a remove operation failed to locate the
	// identity it was given.
	IndexInconsistency
)

func (k Kind) String() string {
	switch k {
	case OutOfMemory:
		return "out of memory"
	case BadPointer:
		return "bad pointer"
	case CorruptNeighbor:
		return "corrupt neighbor"
	case IndexInconsistency:
		return "index inconsistency"
	default:
		return "unknown"
	}
}

// AllocError describes a diagnostic condition raised while servicing an
// Alloc or Free call. It is delivered to a Reporter, never returned from
// Free (which has no return value, mirroring the original's void
// shmHeapFree).
type AllocError struct {
	Kind    Kind
	Offset  uintptr // region-relative or raw header address, best effort
	Message string
}

func (e AllocError) Error() string {
	return fmt.Sprintf("allocator: %s at %#x: %s", e.Kind, e.Offset, e.Message)
}

// Reporter receives diagnostic conditions detected while servicing Alloc or
// Free. A production deployment may escalate any of them to a fatal abort;
// the core never does so itself.
type Reporter interface {
	Report(err AllocError)
}

// stderrReporter is the default Reporter, the direct generalization of the
// original C implementation's fprintf(stderr, ...) diagnostic calls.
type stderrReporter struct{}

func (stderrReporter) Report(err AllocError) {
	fmt.Fprintln(os.Stderr, err.Error())
}

// NopReporter discards every diagnostic condition. Useful in tests that
// intentionally trigger BadPointer/CorruptNeighbor/IndexInconsistency and
// want to assert on behavior rather than on stderr output.
type NopReporter struct{}

func (NopReporter) Report(AllocError) {}

// CollectingReporter accumulates every reported condition, for tests that
// want to assert on exactly what was reported.
type CollectingReporter struct {
	Errors []AllocError
}

func (c *CollectingReporter) Report(err AllocError) {
	c.Errors = append(c.Errors, err)
}
