// Package sysmem provides the system memory sources that back allocator
// blocks and bulk spans: the Go heap, and anonymous mappings obtained from
// the operating system.
package sysmem

import (
	"errors"
	"fmt"
)

var (
	// ErrZeroSize indicates a reservation of zero bytes.
	ErrZeroSize = errors.New("sysmem: zero-byte reservation")

	// ErrNotOwned indicates a release of memory the source did not hand out.
	ErrNotOwned = errors.New("sysmem: memory not owned by source")
)

// Source reserves and releases raw memory.
type Source interface {
	// Reserve returns size zeroed bytes.
	Reserve(size int) ([]byte, error)

	// Release returns memory obtained from Reserve. The slice must not be
	// used afterwards.
	Release(mem []byte) error

	// Name identifies the source in logs and stats.
	Name() string
}

// Heap reserves memory from the Go heap. Release only drops the reference.
type Heap struct{}

// Reserve allocates size bytes on the Go heap.
func (Heap) Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrZeroSize, size)
	}
	return make([]byte, size), nil
}

// Release is a no-op; the garbage collector reclaims the slice.
func (Heap) Release(mem []byte) error {
	return nil
}

// Name returns "heap".
func (Heap) Name() string { return "heap" }

// NewMapped returns the platform's anonymous-mapping source. On platforms
// without one it falls back to Heap.
func NewMapped() Source {
	return newMapped()
}
