package list

import (
	"errors"
	"fmt"
	"iter"

	"github.com/joshuapare/slabkit/pool/alloc"
)

// Node is the storage unit of a List: one element plus its links.
type Node[T any] struct {
	prev, next alloc.Ref
	value      T
}

// List is a doubly linked sequence of T.
//
// The zero List is not usable; construct one with New or NewShared.
type List[T any] struct {
	head, tail alloc.Ref
	count      int

	nodes  *alloc.PoolAllocator[Node[T]]
	cfg    alloc.Config // policy for a replacement allocator after Move
	shared bool         // nodes belongs to the caller
	closed bool
}

// New returns an empty list whose nodes come from a rebinding of a.
// A nil a uses alloc.DefaultConfig().
func New[T any](a *alloc.PoolAllocator[T]) (*List[T], error) {
	var (
		nodes *alloc.PoolAllocator[Node[T]]
		err   error
	)
	if a == nil {
		nodes, err = alloc.New[Node[T]](nil)
	} else {
		nodes, err = alloc.Rebind[Node[T]](a)
	}
	if err != nil {
		return nil, err
	}
	return &List[T]{nodes: nodes, cfg: nodes.Config()}, nil
}

// NewShared returns an empty list drawing nodes from an allocator the caller
// owns and may hand to other lists.
func NewShared[T any](nodes *alloc.PoolAllocator[Node[T]]) *List[T] {
	return &List[T]{nodes: nodes, cfg: nodes.Config(), shared: true}
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.count }

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.count == 0 }

// Allocator returns the node allocator, for diagnostics. It is nil on a list
// that has been moved from and not inserted into since.
func (l *List[T]) Allocator() *alloc.PoolAllocator[Node[T]] { return l.nodes }

// node resolves a link. Links are only ever written by this package, so a
// link that does not resolve means the node allocator was misused.
func (l *List[T]) node(ref alloc.Ref) *Node[T] {
	n, err := l.nodes.Get(ref)
	if err != nil {
		panic(fmt.Sprintf("list: corrupt link %s: %v", ref, err))
	}
	return n
}

func (l *List[T]) ready() error {
	if l.closed {
		return ErrClosed
	}
	if l.nodes != nil {
		return nil
	}
	nodes, err := alloc.New[Node[T]](&l.cfg)
	if err != nil {
		return err
	}
	l.nodes = nodes
	l.shared = false
	return nil
}

// link allocates a node holding v between prev and next.
func (l *List[T]) link(v T, prev, next alloc.Ref) error {
	if err := l.ready(); err != nil {
		return err
	}
	ref, err := l.nodes.Allocate(1)
	if err != nil {
		return err
	}
	if err := l.nodes.Construct(ref, Node[T]{prev: prev, next: next, value: v}); err != nil {
		return err
	}

	if prev.IsNil() {
		l.head = ref
	} else {
		l.node(prev).next = ref
	}
	if next.IsNil() {
		l.tail = ref
	} else {
		l.node(next).prev = ref
	}
	l.count++
	return nil
}

// unlink removes the node at ref and returns its value.
func (l *List[T]) unlink(ref alloc.Ref) (T, error) {
	n := l.node(ref)
	v, prev, next := n.value, n.prev, n.next

	if prev.IsNil() {
		l.head = next
	} else {
		l.node(prev).next = next
	}
	if next.IsNil() {
		l.tail = prev
	} else {
		l.node(next).prev = prev
	}
	l.count--

	if err := l.nodes.Destroy(ref); err != nil {
		return v, err
	}
	return v, l.nodes.Deallocate(ref, 1)
}

// at returns the node at pos, walking from the nearer end. pos must be valid.
func (l *List[T]) at(pos int) alloc.Ref {
	if pos < l.count/2 {
		ref := l.head
		for range pos {
			ref = l.node(ref).next
		}
		return ref
	}
	ref := l.tail
	for range l.count - 1 - pos {
		ref = l.node(ref).prev
	}
	return ref
}

func (l *List[T]) checkIndex(pos, limit int) error {
	if l.closed {
		return ErrClosed
	}
	if pos < 0 || pos >= limit {
		return fmt.Errorf("%w: position %d, length %d", ErrIndexOutOfRange, pos, l.count)
	}
	return nil
}

// checkFilled reports why the ends of l cannot be read, if they cannot.
func (l *List[T]) checkFilled() error {
	if l.closed {
		return ErrClosed
	}
	if l.count == 0 {
		return ErrEmpty
	}
	return nil
}

// PushBack appends v.
func (l *List[T]) PushBack(v T) error {
	return l.link(v, l.tail, alloc.Ref{})
}

// PushFront prepends v.
func (l *List[T]) PushFront(v T) error {
	return l.link(v, alloc.Ref{}, l.head)
}

// Insert places v at pos, shifting later elements back. pos == Len() appends.
func (l *List[T]) Insert(pos int, v T) error {
	if err := l.checkIndex(pos, l.count+1); err != nil {
		return err
	}
	if pos == l.count {
		return l.PushBack(v)
	}
	next := l.at(pos)
	return l.link(v, l.node(next).prev, next)
}

// Erase removes the element at pos.
func (l *List[T]) Erase(pos int) error {
	if err := l.checkIndex(pos, l.count); err != nil {
		return err
	}
	_, err := l.unlink(l.at(pos))
	return err
}

// EraseRange removes the elements at positions [first, last). Positions refer
// to the list before any of them is removed.
func (l *List[T]) EraseRange(first, last int) error {
	if l.closed {
		return ErrClosed
	}
	if first < 0 || first > last || last > l.count {
		return fmt.Errorf("%w: range [%d, %d), length %d", ErrIndexOutOfRange, first, last, l.count)
	}
	if first == last {
		return nil
	}
	ref := l.at(first)
	var errs []error
	for range last - first {
		next := l.node(ref).next
		if _, err := l.unlink(ref); err != nil {
			errs = append(errs, err)
		}
		ref = next
	}
	return errors.Join(errs...)
}

// PopFront removes and returns the first element.
func (l *List[T]) PopFront() (T, error) {
	if err := l.checkFilled(); err != nil {
		var zero T
		return zero, err
	}
	return l.unlink(l.head)
}

// PopBack removes and returns the last element.
func (l *List[T]) PopBack() (T, error) {
	if err := l.checkFilled(); err != nil {
		var zero T
		return zero, err
	}
	return l.unlink(l.tail)
}

// Front returns the first element.
func (l *List[T]) Front() (T, error) {
	if err := l.checkFilled(); err != nil {
		var zero T
		return zero, err
	}
	return l.node(l.head).value, nil
}

// Back returns the last element.
func (l *List[T]) Back() (T, error) {
	if err := l.checkFilled(); err != nil {
		var zero T
		return zero, err
	}
	return l.node(l.tail).value, nil
}

// At returns the element at pos.
func (l *List[T]) At(pos int) (T, error) {
	if err := l.checkIndex(pos, l.count); err != nil {
		var zero T
		return zero, err
	}
	return l.node(l.at(pos)).value, nil
}

// Set replaces the element at pos.
func (l *List[T]) Set(pos int, v T) error {
	if err := l.checkIndex(pos, l.count); err != nil {
		return err
	}
	l.node(l.at(pos)).value = v
	return nil
}

// Clear removes every element front to back, destroying each payload and
// returning each node to the allocator exactly once.
func (l *List[T]) Clear() error {
	var errs []error
	for l.count > 0 {
		if _, err := l.unlink(l.head); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// All yields each position and element from front to back.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := 0
		for ref := l.head; !ref.IsNil(); i++ {
			n := l.node(ref)
			ref = n.next
			if !yield(i, n.value) {
				return
			}
		}
	}
}

// Values yields each element from front to back.
func (l *List[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range l.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Backward yields each position and element from back to front.
func (l *List[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		i := l.count - 1
		for ref := l.tail; !ref.IsNil(); i-- {
			n := l.node(ref)
			ref = n.prev
			if !yield(i, n.value) {
				return
			}
		}
	}
}

// Clone returns a deep copy backed by a fresh allocator with the same policy.
// Changes to either list never show in the other.
func (l *List[T]) Clone() (*List[T], error) {
	if l.closed {
		return nil, ErrClosed
	}
	nodes, err := alloc.New[Node[T]](&l.cfg)
	if err != nil {
		return nil, err
	}
	c := &List[T]{nodes: nodes, cfg: l.cfg}
	for v := range l.Values() {
		if err := c.PushBack(v); err != nil {
			_ = c.Close()
			return nil, err
		}
	}
	return c, nil
}

// Move transfers the elements and the node allocator to a new list. l is left
// empty and allocates a fresh node allocator with the same policy on its next
// insertion.
func (l *List[T]) Move() *List[T] {
	m := *l
	*l = List[T]{cfg: l.cfg, closed: l.closed}
	return &m
}

// Close clears the list and, unless the allocator is shared, closes it.
// Closing twice is a no-op.
func (l *List[T]) Close() error {
	if l.closed {
		return nil
	}
	var err error
	if l.nodes != nil {
		err = l.Clear()
		if !l.shared {
			err = errors.Join(err, l.nodes.Close())
		}
	}
	l.nodes = nil
	l.closed = true
	return err
}
