// Package list provides linked sequences whose nodes live in a pool allocator.
//
// # Overview
//
// List[T] is doubly linked and ForwardList[T] singly linked. Neither holds
// Go pointers between nodes: links are alloc.Ref handles into a
// PoolAllocator of node values, obtained by rebinding the element-typed
// allocator given at construction.
//
//	elems, _ := alloc.New[int](&alloc.Config{BlockSize: 5})
//	l, err := list.New(elems)
//	if err != nil {
//	    return err
//	}
//	defer l.Close()
//
//	for i := range 10 {
//	    _ = l.PushBack(i)
//	}
//	_ = l.Erase(2)
//	for i, v := range l.All() {
//	    fmt.Println(i, v)
//	}
//
// # Positions
//
// Insert accepts positions in [0, Len()]; Erase, At and Set accept [0, Len()).
// Anything else returns ErrIndexOutOfRange before the list is touched.
// Positional access walks from whichever end is closer.
//
// # Ownership
//
// A list built with New owns its node allocator and closes it on Close.
// NewShared lets several lists draw nodes from one allocator, in which case
// their allocations are visible to each other through it and Close leaves it
// open. Clone always copies into a fresh allocator with the same policy.
// Move hands nodes and allocator to a new list and leaves the receiver empty.
//
// # Iteration
//
// All, Values and Backward return range-over-func iterators. The next link is
// read before each element is yielded, so erasing the element just yielded is
// safe; any other structural change during iteration is not.
//
// # Thread Safety
//
// Lists are not safe for concurrent use.
package list
