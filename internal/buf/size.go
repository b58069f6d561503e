// Package buf holds overflow-checked size arithmetic shared by the allocator
// and the system memory sources.
package buf

import (
	"errors"
	"fmt"
	"math"
)

// MaxAlloc is the largest reservation, in bytes, that SpanBytes accepts.
// It stays below the runtime's own ceiling (48-bit heap addresses on 64-bit
// platforms) so oversized requests fail with an error instead of a
// makeslice panic.
const MaxAlloc = 1 << (30 + 17*(^uint(0)>>63))

// ErrTooLarge indicates a reservation above MaxAlloc.
var ErrTooLarge = errors.New("buf: reservation exceeds platform limit")

// MulSize multiplies two non-negative sizes, returning ok = false on int
// overflow or a negative operand.
func MulSize(count, elemSize int) (int, bool) {
	if count < 0 || elemSize < 0 {
		return 0, false
	}
	if count == 0 || elemSize == 0 {
		return 0, true
	}
	if count > math.MaxInt/elemSize {
		return 0, false
	}
	return count * elemSize, true
}

// AddBytes adds two non-negative byte counts, returning ok = false when the
// sum would overflow int64.
func AddBytes(used, n int64) (int64, bool) {
	if used < 0 || n < 0 || n > math.MaxInt64-used {
		return 0, false
	}
	return used + n, true
}

// SpanBytes returns the byte size of count elements of elemSize bytes each.
// Sizes above MaxAlloc fail with ErrTooLarge.
//
//	n, err := buf.SpanBytes(blockSize, int(unsafe.Sizeof(v)))
//	if err != nil {
//	    return fmt.Errorf("block: %w", err)
//	}
func SpanBytes(count, elemSize int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	if elemSize < 0 {
		return 0, fmt.Errorf("negative element size: %d", elemSize)
	}
	total, ok := MulSize(count, elemSize)
	if !ok || total > MaxAlloc {
		return 0, fmt.Errorf("%w: %d x %d bytes", ErrTooLarge, count, elemSize)
	}
	return total, nil
}

// WithinLimit reports whether adding n bytes to used stays at or under limit.
// A limit of zero or less means unlimited.
func WithinLimit(used, n, limit int64) bool {
	if limit <= 0 {
		return true
	}
	total, ok := AddBytes(used, n)
	return ok && total <= limit
}
