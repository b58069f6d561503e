// Package alloc provides a segmented block-pool allocator for fixed-size slots.
//
// # Overview
//
// PoolAllocator[T] reserves storage in blocks of BlockSize slots and hands out
// single slots as Ref handles. Freed slots are recycled last-in first-out, and
// a block whose every slot has been freed is returned to its backing source.
// Requests for more than one slot bypass the pool entirely.
//
// # Allocation Paths
//
// Allocate(1) tries, in order:
//
//  1. the free list (most recently freed slot first)
//  2. the unused tail of the active block (bump pointer)
//  3. a newly minted block, which becomes the active block
//
// Allocate(n) with n > 1 reserves n*sizeof(T) bytes directly and returns a
// span Ref. Spans are released on Deallocate but never enter the free list,
// and their bytes stay counted in Allocated().
//
// # References
//
// A Ref is a handle, not an address. Single-slot refs carry the block id,
// slot index and slot generation; the generation is bumped on every free, so
// using or freeing a ref after it was freed reports ErrStaleRef rather than
// touching recycled storage. Block ids are never reused by one allocator.
//
//	a, err := alloc.New[Point](&alloc.Config{BlockSize: 64})
//	if err != nil {
//	    return err
//	}
//	ref, err := a.Allocate(1)
//	if err != nil {
//	    return err
//	}
//	_ = a.Construct(ref, Point{X: 1, Y: 2})
//	p, _ := a.Get(ref)
//	p.X++
//	_ = a.Destroy(ref)
//	_ = a.Deallocate(ref, 1)
//
// # Rebinding
//
// Config holds no element type. Rebind[U](a) builds an allocator for U with
// a's policy and empty pools; containers use it to turn an element allocator
// into a node allocator:
//
//	nodes, err := alloc.Rebind[list.Node[int]](elems)
//
// # Accounting
//
// Allocated() counts bytes of live blocks plus every bulk span ever
// allocated. Reclaiming a block subtracts its bytes; freeing a span does not.
// Clear releases everything and resets the count to zero.
//
// # Backing
//
// BackingHeap keeps slots in Go slices. BackingMapped places them in anonymous
// memory mappings (mmap on Unix, VirtualAlloc on Windows) outside the Go heap;
// it is refused with ErrPointerElem for element types that hold pointers.
//
// # Thread Safety
//
// Allocators are not thread-safe. Callers that share one allocator between
// goroutines must synchronize access externally.
//
// # Related Packages
//
//   - github.com/joshuapare/slabkit/pool/list: linked containers built on PoolAllocator
//   - github.com/joshuapare/slabkit/pool/printer: formatted Stats output
package alloc
