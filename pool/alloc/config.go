package alloc

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// DefaultBlockSize is the number of slots per block when none is configured.
const DefaultBlockSize = 1

// Backing selects where block and span storage comes from.
type Backing uint8

const (
	// BackingHeap stores slots in ordinary Go slices.
	BackingHeap Backing = iota

	// BackingMapped stores slots in anonymous memory mappings outside the Go
	// heap. Only element types without Go pointers may use it.
	BackingMapped
)

func (b Backing) String() string {
	switch b {
	case BackingHeap:
		return "heap"
	case BackingMapped:
		return "mapped"
	default:
		return fmt.Sprintf("Backing(%d)", uint8(b))
	}
}

// ParseBacking maps "heap" or "mapped" (case-insensitive) to a Backing.
func ParseBacking(s string) (Backing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heap", "":
		return BackingHeap, nil
	case "mapped", "mmap":
		return BackingMapped, nil
	}
	return 0, fmt.Errorf("%w: unknown backing %q", ErrInvalidConfig, s)
}

// Config is the sizing and storage policy of an allocator. It carries no
// element type, so Rebind can hand the same policy to an allocator of
// another type.
type Config struct {
	// BlockSize is the number of slots minted per block.
	// Default: 1 (a zero value is replaced by the default)
	BlockSize int

	// Backing selects heap or mapped storage.
	// Default: BackingHeap
	Backing Backing

	// MaxBytes caps the bytes reserved at any time (0 = unlimited).
	// Exceeding it fails with ErrAllocationFailure.
	MaxBytes int64

	// Logger receives debug records for block and span lifecycle.
	// Default: logger.L at construction time
	Logger *slog.Logger
}

// DefaultConfig returns the default allocator policy.
func DefaultConfig() Config {
	return Config{
		BlockSize: DefaultBlockSize,
		Backing:   BackingHeap,
	}
}

func (c Config) normalize() Config {
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	return c
}

func (c Config) validate() error {
	if c.BlockSize < 1 || uint64(c.BlockSize) > math.MaxUint32 {
		return fmt.Errorf("%w: block size %d", ErrInvalidConfig, c.BlockSize)
	}
	if c.MaxBytes < 0 {
		return fmt.Errorf("%w: max bytes %d", ErrInvalidConfig, c.MaxBytes)
	}
	if c.Backing > BackingMapped {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, c.Backing)
	}
	return nil
}
