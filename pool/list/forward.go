package list

import (
	"errors"
	"fmt"
	"iter"

	"github.com/joshuapare/slabkit/pool/alloc"
)

// ForwardNode is the storage unit of a ForwardList.
type ForwardNode[T any] struct {
	next  alloc.Ref
	value T
}

// ForwardList is a singly linked sequence of T. It keeps only a head link,
// so PushBack and positional operations walk from the front.
type ForwardList[T any] struct {
	head  alloc.Ref
	count int

	nodes  *alloc.PoolAllocator[ForwardNode[T]]
	cfg    alloc.Config
	closed bool
}

// NewForward returns an empty singly linked list whose nodes come from a
// rebinding of a. A nil a uses alloc.DefaultConfig().
func NewForward[T any](a *alloc.PoolAllocator[T]) (*ForwardList[T], error) {
	var (
		nodes *alloc.PoolAllocator[ForwardNode[T]]
		err   error
	)
	if a == nil {
		nodes, err = alloc.New[ForwardNode[T]](nil)
	} else {
		nodes, err = alloc.Rebind[ForwardNode[T]](a)
	}
	if err != nil {
		return nil, err
	}
	return &ForwardList[T]{nodes: nodes, cfg: nodes.Config()}, nil
}

// Len returns the number of elements.
func (l *ForwardList[T]) Len() int { return l.count }

// Empty reports whether the list has no elements.
func (l *ForwardList[T]) Empty() bool { return l.count == 0 }

// Allocator returns the node allocator, nil after Move until the next insertion.
func (l *ForwardList[T]) Allocator() *alloc.PoolAllocator[ForwardNode[T]] { return l.nodes }

func (l *ForwardList[T]) node(ref alloc.Ref) *ForwardNode[T] {
	n, err := l.nodes.Get(ref)
	if err != nil {
		panic(fmt.Sprintf("list: corrupt link %s: %v", ref, err))
	}
	return n
}

func (l *ForwardList[T]) ready() error {
	if l.closed {
		return ErrClosed
	}
	if l.nodes != nil {
		return nil
	}
	nodes, err := alloc.New[ForwardNode[T]](&l.cfg)
	if err != nil {
		return err
	}
	l.nodes = nodes
	return nil
}

// before returns the node preceding pos, or the null ref for pos 0.
func (l *ForwardList[T]) before(pos int) alloc.Ref {
	var prev alloc.Ref
	ref := l.head
	for range pos {
		prev, ref = ref, l.node(ref).next
	}
	return prev
}

// insertAfter links a node holding v after prev (at the head for null prev).
func (l *ForwardList[T]) insertAfter(prev alloc.Ref, v T) error {
	if err := l.ready(); err != nil {
		return err
	}
	ref, err := l.nodes.Allocate(1)
	if err != nil {
		return err
	}
	next := l.head
	if !prev.IsNil() {
		next = l.node(prev).next
	}
	if err := l.nodes.Construct(ref, ForwardNode[T]{next: next, value: v}); err != nil {
		return err
	}
	if prev.IsNil() {
		l.head = ref
	} else {
		l.node(prev).next = ref
	}
	l.count++
	return nil
}

// eraseAfter unlinks the node after prev (the head for null prev).
func (l *ForwardList[T]) eraseAfter(prev alloc.Ref) (T, error) {
	ref := l.head
	if !prev.IsNil() {
		ref = l.node(prev).next
	}
	n := l.node(ref)
	v := n.value
	if prev.IsNil() {
		l.head = n.next
	} else {
		l.node(prev).next = n.next
	}
	l.count--

	if err := l.nodes.Destroy(ref); err != nil {
		return v, err
	}
	return v, l.nodes.Deallocate(ref, 1)
}

func (l *ForwardList[T]) checkIndex(pos, limit int) error {
	if l.closed {
		return ErrClosed
	}
	if pos < 0 || pos >= limit {
		return fmt.Errorf("%w: position %d, length %d", ErrIndexOutOfRange, pos, l.count)
	}
	return nil
}

// PushFront prepends v.
func (l *ForwardList[T]) PushFront(v T) error {
	return l.insertAfter(alloc.Ref{}, v)
}

// PushBack appends v. It walks the whole list.
func (l *ForwardList[T]) PushBack(v T) error {
	return l.insertAfter(l.before(l.count), v)
}

// Insert places v at pos in [0, Len()].
func (l *ForwardList[T]) Insert(pos int, v T) error {
	if err := l.checkIndex(pos, l.count+1); err != nil {
		return err
	}
	return l.insertAfter(l.before(pos), v)
}

// Erase removes the element at pos in [0, Len()).
func (l *ForwardList[T]) Erase(pos int) error {
	if err := l.checkIndex(pos, l.count); err != nil {
		return err
	}
	_, err := l.eraseAfter(l.before(pos))
	return err
}

// PopFront removes and returns the first element.
func (l *ForwardList[T]) PopFront() (T, error) {
	if l.closed {
		var zero T
		return zero, ErrClosed
	}
	if l.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return l.eraseAfter(alloc.Ref{})
}

// Front returns the first element.
func (l *ForwardList[T]) Front() (T, error) {
	if l.closed {
		var zero T
		return zero, ErrClosed
	}
	if l.count == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return l.node(l.head).value, nil
}

// At returns the element at pos.
func (l *ForwardList[T]) At(pos int) (T, error) {
	if err := l.checkIndex(pos, l.count); err != nil {
		var zero T
		return zero, err
	}
	ref := l.head
	for range pos {
		ref = l.node(ref).next
	}
	return l.node(ref).value, nil
}

// Clear pops the front until the list is empty.
func (l *ForwardList[T]) Clear() error {
	var errs []error
	for l.count > 0 {
		if _, err := l.eraseAfter(alloc.Ref{}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// All yields each position and element from front to back.
func (l *ForwardList[T]) All() iter.Seq2[int, T] {
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
func (l *ForwardList[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range l.All() {
			if !yield(v) {
				return
			}
		}
	}
}

// Clone returns a deep copy backed by a fresh allocator with the same policy.
func (l *ForwardList[T]) Clone() (*ForwardList[T], error) {
	if l.closed {
		return nil, ErrClosed
	}
	nodes, err := alloc.New[ForwardNode[T]](&l.cfg)
	if err != nil {
		return nil, err
	}
	c := &ForwardList[T]{nodes: nodes, cfg: l.cfg}

	// Append through a running tail to keep the copy linear.
	var tail alloc.Ref
	for v := range l.Values() {
		if err := c.insertAfter(tail, v); err != nil {
			_ = c.Close()
			return nil, err
		}
		if tail.IsNil() {
			tail = c.head
		} else {
			tail = c.node(tail).next
		}
	}
	return c, nil
}

// Move transfers the elements and the node allocator to a new list, leaving
// l empty.
func (l *ForwardList[T]) Move() *ForwardList[T] {
	m := *l
	*l = ForwardList[T]{cfg: l.cfg, closed: l.closed}
	return &m
}

// Close clears the list and closes its node allocator.
func (l *ForwardList[T]) Close() error {
	if l.closed {
		return nil
	}
	var err error
	if l.nodes != nil {
		err = errors.Join(l.Clear(), l.nodes.Close())
	}
	l.nodes = nil
	l.closed = true
	return err
}
