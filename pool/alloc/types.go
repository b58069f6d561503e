package alloc

import "fmt"

// Ref identifies storage handed out by Allocate. A single-slot Ref names one
// slot of one block and carries the slot's generation; a bulk Ref names a
// span of n contiguous slots. The zero Ref is the null reference.
type Ref struct {
	id   uint32
	slot uint32
	gen  uint32
	n    uint32
}

// IsNil reports whether r is the null reference.
func (r Ref) IsNil() bool { return r.id == 0 }

// Len returns the number of slots r spans.
func (r Ref) Len() int { return int(r.n) }

// Block returns the id of the block (or bulk span) r points into.
func (r Ref) Block() uint32 { return r.id }

// Slot returns the slot index within the block.
func (r Ref) Slot() int { return int(r.slot) }

// Gen returns the slot generation captured when r was handed out.
func (r Ref) Gen() uint32 { return r.gen }

func (r Ref) String() string {
	switch {
	case r.IsNil():
		return "ref(nil)"
	case r.n > 1:
		return fmt.Sprintf("span(%d x%d)", r.id, r.n)
	default:
		return fmt.Sprintf("ref(block=%d slot=%d gen=%d)", r.id, r.slot, r.gen)
	}
}

// Allocator is the allocator contract containers are written against.
//
// Implementations:
//   - PoolAllocator: block-pooled single slots, pass-through bulk spans
//
// Every Ref returned by Allocate(n) must be returned through Deallocate with
// the same n. Construct and Destroy manage the value stored in a slot;
// Deallocate never touches the value.
type Allocator[T any] interface {
	// Allocate reserves n contiguous slots. n == 0 returns the null Ref.
	Allocate(n int) (Ref, error)

	// Deallocate returns storage obtained from Allocate(n).
	Deallocate(ref Ref, n int) error

	// Construct stores v in the first slot of ref.
	Construct(ref Ref, v T) error

	// Destroy resets every slot of ref to the zero value.
	Destroy(ref Ref) error

	// Get returns a pointer to the first slot of ref.
	Get(ref Ref) (*T, error)

	// Slice returns all slots of ref.
	Slice(ref Ref) ([]T, error)

	// Allocated returns the bytes currently reserved.
	Allocated() int64
}
