package list

import (
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/slabkit/pool/alloc"
)

// newTestList builds a list over blocks of blockSize nodes.
func newTestList(t *testing.T, blockSize int) *List[int] {
	t.Helper()
	elems, err := alloc.New[int](&alloc.Config{BlockSize: blockSize})
	require.NoError(t, err)
	l, err := New(elems)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func fill(t *testing.T, l *List[int], vals ...int) {
	t.Helper()
	for _, v := range vals {
		require.NoError(t, l.PushBack(v))
	}
}

// requireLinks checks the structural invariants: head and tail agree with
// count, end links are null, and prev/next are mutual inverses.
func requireLinks[T any](t *testing.T, l *List[T]) {
	t.Helper()
	if l.count == 0 {
		require.True(t, l.head.IsNil())
		require.True(t, l.tail.IsNil())
		return
	}
	require.True(t, l.node(l.head).prev.IsNil(), "head.prev")
	require.True(t, l.node(l.tail).next.IsNil(), "tail.next")

	n := 0
	var prev alloc.Ref
	for ref := l.head; !ref.IsNil(); ref = l.node(ref).next {
		require.Equal(t, prev, l.node(ref).prev, "node %d prev link", n)
		prev = ref
		n++
	}
	require.Equal(t, l.tail, prev)
	require.Equal(t, l.count, n)
}

func TestNew_RebindsElementAllocator(t *testing.T) {
	elems, err := alloc.New[int](&alloc.Config{BlockSize: 5})
	require.NoError(t, err)
	l, err := New(elems)
	require.NoError(t, err)
	defer l.Close()

	nodes := l.Allocator()
	require.NotNil(t, nodes)
	assert.Equal(t, 5, nodes.BlockSize())
	assert.Equal(t, int(unsafe.Sizeof(Node[int]{})), nodes.ElemSize())
	assert.Zero(t, elems.Allocated(), "element allocator is never drawn from")

	fill(t, l, 1, 2, 3)
	assert.Zero(t, elems.Allocated())
	assert.Equal(t, int64(5*nodes.ElemSize()), nodes.Allocated())
}

func TestNew_NilAllocatorUsesDefaults(t *testing.T) {
	l, err := New[string](nil)
	require.NoError(t, err)
	defer l.Close()
	assert.Equal(t, alloc.DefaultBlockSize, l.Allocator().BlockSize())
}

func TestNew_MappedBacking(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mapping test in short mode")
	}
	elems, err := alloc.New[int](&alloc.Config{BlockSize: 16, Backing: alloc.BackingMapped})
	require.NoError(t, err)
	l, err := New(elems)
	require.NoError(t, err)
	defer l.Close()

	for i := range 40 {
		require.NoError(t, l.PushBack(i))
	}
	require.NoError(t, l.Erase(20))
	assert.Equal(t, 39, l.Len())
	requireLinks(t, l)

	// Nodes of a pointerful payload cannot live in mapped memory.
	_, err = alloc.Rebind[Node[string]](elems)
	require.ErrorIs(t, err, alloc.ErrPointerElem)
}

func TestPushBack_Order(t *testing.T) {
	l := newTestList(t, 5)
	fill(t, l, 0, 1, 2)
	require.NoError(t, l.PushFront(-1))

	assert.Equal(t, []int{-1, 0, 1, 2}, slices.Collect(l.Values()))
	assert.Equal(t, 4, l.Len())
	assert.False(t, l.Empty())
	requireLinks(t, l)

	front, err := l.Front()
	require.NoError(t, err)
	assert.Equal(t, -1, front)
	back, err := l.Back()
	require.NoError(t, err)
	assert.Equal(t, 2, back)
}

// Removing the elements at positions 2, 3 and 4 of 0..9.
func TestErase_PositionsBeforeRemoval(t *testing.T) {
	tests := []struct {
		name  string
		erase func(l *List[int]) error
	}{
		{"range", func(l *List[int]) error { return l.EraseRange(2, 5) }},
		{"one at a time", func(l *List[int]) error {
			for i, pos := range []int{2, 3, 4} {
				// Each earlier removal shifts the target down by one.
				if err := l.Erase(pos - i); err != nil {
					return err
				}
			}
			return nil
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList(t, 5)
			for i := range 10 {
				require.NoError(t, l.PushBack(i))
			}
			require.NoError(t, tt.erase(l))
			assert.Equal(t, []int{0, 1, 5, 6, 7, 8, 9}, slices.Collect(l.Values()))
			assert.Equal(t, 7, l.Len())
			requireLinks(t, l)
		})
	}
}

// Erase positions are evaluated against the current list.
func TestErase_ShiftsLaterElements(t *testing.T) {
	l := newTestList(t, 5)
	for i := range 10 {
		require.NoError(t, l.PushBack(i))
	}
	for _, pos := range []int{2, 3, 4} {
		require.NoError(t, l.Erase(pos))
		requireLinks(t, l)
	}
	assert.Equal(t, []int{0, 1, 3, 5, 7, 8, 9}, slices.Collect(l.Values()))
}

func TestEraseRange(t *testing.T) {
	tests := []struct {
		name        string
		first, last int
		want        []int
		err         error
	}{
		{"empty range", 1, 1, []int{0, 1, 2, 3}, nil},
		{"prefix", 0, 2, []int{2, 3}, nil},
		{"suffix", 2, 4, []int{0, 1}, nil},
		{"everything", 0, 4, nil, nil},
		{"past end", 2, 5, []int{0, 1, 2, 3}, ErrIndexOutOfRange},
		{"reversed", 3, 1, []int{0, 1, 2, 3}, ErrIndexOutOfRange},
		{"negative", -1, 2, []int{0, 1, 2, 3}, ErrIndexOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList(t, 3)
			fill(t, l, 0, 1, 2, 3)

			err := l.EraseRange(tt.first, tt.last)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, slices.Collect(l.Values()))
			requireLinks(t, l)
		})
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name string
		pos  int
		want []int
	}{
		{"front", 0, []int{99, 10, 20, 30}},
		{"middle", 1, []int{10, 99, 20, 30}},
		{"before tail", 2, []int{10, 20, 99, 30}},
		{"end", 3, []int{10, 20, 30, 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestList(t, 2)
			fill(t, l, 10, 20, 30)

			require.NoError(t, l.Insert(tt.pos, 99))
			assert.Equal(t, tt.want, slices.Collect(l.Values()))
			assert.Equal(t, 4, l.Len())
			requireLinks(t, l)
		})
	}
}

func TestInsert_IntoEmpty(t *testing.T) {
	l := newTestList(t, 1)
	require.NoError(t, l.Insert(0, 7))
	assert.Equal(t, []int{7}, slices.Collect(l.Values()))
	requireLinks(t, l)
}

func TestOutOfRange_LeavesListUnchanged(t *testing.T) {
	l := newTestList(t, 3)
	fill(t, l, 1, 2, 3)
	before := l.Allocator().Stats()

	require.ErrorIs(t, l.Erase(3), ErrIndexOutOfRange)
	require.ErrorIs(t, l.Erase(-1), ErrIndexOutOfRange)
	require.ErrorIs(t, l.Insert(4, 0), ErrIndexOutOfRange)
	require.ErrorIs(t, l.Insert(-1, 0), ErrIndexOutOfRange)
	require.ErrorIs(t, l.Set(3, 0), ErrIndexOutOfRange)
	_, err := l.At(3)
	require.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.Equal(t, []int{1, 2, 3}, slices.Collect(l.Values()))
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, before, l.Allocator().Stats())
	requireLinks(t, l)
}

func TestEmptyErrors(t *testing.T) {
	l := newTestList(t, 1)
	_, err := l.PopFront()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = l.PopBack()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = l.Front()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = l.Back()
	require.ErrorIs(t, err, ErrEmpty)
	require.ErrorIs(t, l.Erase(0), ErrIndexOutOfRange)
}

func TestPop(t *testing.T) {
	l := newTestList(t, 4)
	fill(t, l, 1, 2, 3, 4)

	v, err := l.PopFront()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = l.PopBack()
	require.NoError(t, err)
	assert.Equal(t, 4, v)
	assert.Equal(t, []int{2, 3}, slices.Collect(l.Values()))
	requireLinks(t, l)

	_, _ = l.PopFront()
	_, _ = l.PopFront()
	assert.True(t, l.Empty())
	requireLinks(t, l)
}

func TestAtSet_WalkFromEitherEnd(t *testing.T) {
	l := newTestList(t, 8)
	for i := range 11 {
		require.NoError(t, l.PushBack(i*10))
	}
	for i := range 11 {
		v, err := l.At(i)
		require.NoError(t, err)
		assert.Equal(t, i*10, v)
	}
	require.NoError(t, l.Set(1, -1))
	require.NoError(t, l.Set(9, -9))
	v, _ := l.At(1)
	assert.Equal(t, -1, v)
	v, _ = l.At(9)
	assert.Equal(t, -9, v)
}

func TestIteration(t *testing.T) {
	l := newTestList(t, 3)
	fill(t, l, 5, 6, 7)

	var idx []int
	for i, v := range l.All() {
		idx = append(idx, i)
		assert.Equal(t, 5+i, v)
	}
	assert.Equal(t, []int{0, 1, 2}, idx)

	var back []int
	for i, v := range l.Backward() {
		back = append(back, v)
		assert.Equal(t, v-5, i)
	}
	assert.Equal(t, []int{7, 6, 5}, back)

	// Early exit.
	for v := range l.Values() {
		if v == 6 {
			break
		}
	}
}

func TestIteration_EraseYieldedFront(t *testing.T) {
	l := newTestList(t, 2)
	fill(t, l, 1, 2, 3, 4)

	var seen []int
	for v := range l.Values() {
		seen = append(seen, v)
		_, err := l.PopFront()
		require.NoError(t, err)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, seen)
	assert.True(t, l.Empty())
}

func TestClear_FreesEveryNode(t *testing.T) {
	l := newTestList(t, 4)
	fill(t, l, 1, 2, 3, 4, 5, 6, 7, 8)
	nodes := l.Allocator()

	require.NoError(t, l.Clear())
	assert.True(t, l.Empty())
	requireLinks(t, l)

	s := nodes.Stats()
	assert.Zero(t, s.LiveSlots)
	assert.Equal(t, 8, s.FreeCalls, "each node freed exactly once")
	assert.Zero(t, nodes.Allocated(), "every block fully freed and reclaimed")

	// Reusable after Clear.
	fill(t, l, 42)
	assert.Equal(t, []int{42}, slices.Collect(l.Values()))
}

func TestClone_Independent(t *testing.T) {
	l := newTestList(t, 5)
	fill(t, l, 1, 2, 3)

	c, err := l.Clone()
	require.NoError(t, err)
	defer c.Close()

	assert.NotSame(t, l.Allocator(), c.Allocator())
	assert.Equal(t, l.Allocator().Config(), c.Allocator().Config())
	assert.Equal(t, slices.Collect(l.Values()), slices.Collect(c.Values()))

	require.NoError(t, c.Set(0, 100))
	require.NoError(t, c.PushBack(4))
	require.NoError(t, l.Erase(2))

	assert.Equal(t, []int{1, 2}, slices.Collect(l.Values()))
	assert.Equal(t, []int{100, 2, 3, 4}, slices.Collect(c.Values()))
	requireLinks(t, c)
}

func TestMove(t *testing.T) {
	l := newTestList(t, 5)
	fill(t, l, 1, 2, 3)
	nodes := l.Allocator()

	m := l.Move()
	defer m.Close()

	assert.Same(t, nodes, m.Allocator())
	assert.Equal(t, []int{1, 2, 3}, slices.Collect(m.Values()))
	assert.Equal(t, 3, m.Len())

	assert.True(t, l.Empty())
	assert.Nil(t, l.Allocator())
	requireLinks(t, l)

	// The moved-from list starts over with its own allocator.
	require.NoError(t, l.PushBack(9))
	require.NotNil(t, l.Allocator())
	assert.NotSame(t, nodes, l.Allocator())
	assert.Equal(t, 5, l.Allocator().BlockSize())
	assert.Equal(t, []int{1, 2, 3}, slices.Collect(m.Values()))
}

func TestShared_AllocatorVisibleToBoth(t *testing.T) {
	nodes, err := alloc.New[Node[int]](&alloc.Config{BlockSize: 4})
	require.NoError(t, err)
	defer nodes.Close()

	a := NewShared(nodes)
	b := NewShared(nodes)
	fill(t, a, 1, 2)
	fill(t, b, 3, 4)

	assert.Equal(t, 1, nodes.Stats().Blocks, "four nodes share one block")
	assert.Equal(t, 4, nodes.Stats().LiveSlots)

	_, err = a.PopFront()
	require.NoError(t, err)
	require.NoError(t, b.PushBack(5))
	assert.Equal(t, 1, nodes.Stats().ReuseHits, "b reused the slot a freed")

	require.NoError(t, a.Close())
	_, err = nodes.Allocate(1)
	require.NoError(t, err, "closing a shared list leaves the allocator open")
	assert.Equal(t, []int{3, 4, 5}, slices.Collect(b.Values()))
}

func TestAllocationFailure_Propagates(t *testing.T) {
	elems, err := alloc.New[int](&alloc.Config{BlockSize: 2, MaxBytes: 80})
	require.NoError(t, err)
	l, err := New(elems)
	require.NoError(t, err)
	defer l.Close()

	fill(t, l, 1, 2)
	err = l.PushBack(3)
	require.ErrorIs(t, err, alloc.ErrAllocationFailure)
	assert.Equal(t, 2, l.Len())
	requireLinks(t, l)
}

func TestClose(t *testing.T) {
	l := newTestList(t, 2)
	fill(t, l, 1, 2, 3)
	nodes := l.Allocator()

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.True(t, l.Empty())

	_, err := nodes.Allocate(1)
	require.ErrorIs(t, err, alloc.ErrClosed)
	require.ErrorIs(t, l.PushBack(1), ErrClosed)
	_, err = l.Clone()
	require.ErrorIs(t, err, ErrClosed)
}

func TestClose_ReportsClosedBeforeBounds(t *testing.T) {
	l := newTestList(t, 2)
	fill(t, l, 1, 2, 3)
	require.NoError(t, l.Close())

	require.ErrorIs(t, l.Insert(0, 9), ErrClosed)
	require.ErrorIs(t, l.Erase(0), ErrClosed)
	require.ErrorIs(t, l.EraseRange(0, 1), ErrClosed)
	require.ErrorIs(t, l.Set(0, 9), ErrClosed)
	_, err := l.At(0)
	require.ErrorIs(t, err, ErrClosed)
	_, err = l.Front()
	require.ErrorIs(t, err, ErrClosed)
	_, err = l.Back()
	require.ErrorIs(t, err, ErrClosed)
	_, err = l.PopFront()
	require.ErrorIs(t, err, ErrClosed)
	_, err = l.PopBack()
	require.ErrorIs(t, err, ErrClosed)
}

func TestCorruptLinkPanics(t *testing.T) {
	l := newTestList(t, 2)
	fill(t, l, 1, 2)
	require.NoError(t, l.Allocator().Clear())

	assert.Panics(t, func() { _, _ = l.Front() })
	l.head, l.tail, l.count = alloc.Ref{}, alloc.Ref{}, 0
}
