package alloc

import "errors"

var (
	// ErrInvalidConfig indicates a negative block size, a negative byte limit or an unknown backing.
	ErrInvalidConfig = errors.New("alloc: invalid config")

	// ErrInvalidCount indicates a negative or oversized slot count.
	ErrInvalidCount = errors.New("alloc: invalid slot count")

	// ErrAllocationFailure indicates the backing source could not satisfy a
	// reservation or the byte limit would be exceeded. It is not retried.
	ErrAllocationFailure = errors.New("alloc: allocation failure")

	// ErrBadRef indicates a reference this allocator never handed out.
	ErrBadRef = errors.New("alloc: bad reference")

	// ErrStaleRef indicates a reference to storage that has since been freed,
	// reclaimed or cleared. Freeing the same reference twice reports this error.
	ErrStaleRef = errors.New("alloc: stale reference")

	// ErrSizeMismatch indicates Deallocate was called with a count that differs
	// from the one used to allocate.
	ErrSizeMismatch = errors.New("alloc: slot count does not match allocation")

	// ErrPointerElem indicates a mapped backing was requested for an element
	// type that holds Go pointers.
	ErrPointerElem = errors.New("alloc: element type holds pointers")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("alloc: allocator closed")
)
