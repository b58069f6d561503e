package alloc

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"unsafe"

	"github.com/bits-and-blooms/bitset"

	"github.com/joshuapare/slabkit/internal/buf"
	"github.com/joshuapare/slabkit/internal/logger"
)

// PoolAllocator hands out slots of T from fixed-size blocks.
//
// Single-slot requests are served, in order, from the free list (most recently
// freed first), from the unused tail of the active block, or from a freshly
// minted block. Requests for more than one slot bypass the pool and go
// straight to the backing source.
//
// Freed single slots go onto one flat free list shared by all blocks. When
// every slot of a block is on the free list the block is released back to the
// source, its entries leave the free list and its bytes leave Allocated().
type PoolAllocator[T any] struct {
	cfg      Config
	elemSize int
	store    storage[T]
	log      *slog.Logger

	// blocks in mint order; byID indexes the same records.
	blocks    []*block[T]
	byID      map[uint32]*block[T]
	nextBlock uint32

	// freeSlots is a LIFO stack of recycled single slots across all blocks.
	freeSlots []Ref

	// active is the block being filled by bump allocation; activeIndex is the
	// next unused slot in it.
	active      *block[T]
	activeIndex int

	// spans holds live bulk allocations (n > 1), which are never pooled.
	spans    map[uint32][]T
	nextSpan uint32

	// allocated is the byte count currently reserved: live blocks plus every
	// bulk span ever handed out. Bulk frees do not decrement it.
	allocated int64

	stats  counters
	closed bool
}

// block is one reservation of BlockSize slots.
type block[T any] struct {
	id       uint32
	slots    []T
	occupied *bitset.BitSet // set = handed out
	gen      []uint32
	free     int // slots of this block currently on the free list
}

// counters are cumulative and survive Clear.
type counters struct {
	allocCalls      int
	freeCalls       int
	reuseHits       int
	bumpHits        int
	bulkAllocs      int
	bulkFrees       int
	blocksMinted    int
	blocksReclaimed int
}

// New creates a PoolAllocator for T. A nil cfg uses DefaultConfig().
//
// Example:
//
//	a, err := alloc.New[int64](&alloc.Config{BlockSize: 5})
//	if err != nil {
//	    return err
//	}
//	ref, err := a.Allocate(1)
//	if err != nil {
//	    return err
//	}
//	_ = a.Construct(ref, 42)
func New[T any](cfg *Config) (*PoolAllocator[T], error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	c = c.normalize()
	if err := c.validate(); err != nil {
		return nil, err
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))

	store, err := newStorage[T](c.Backing, elemSize)
	if err != nil {
		return nil, err
	}

	log := c.Logger
	if log == nil {
		log = logger.L
	}

	return &PoolAllocator[T]{
		cfg:       c,
		elemSize:  elemSize,
		store:     store,
		log:       log,
		byID:      make(map[uint32]*block[T]),
		nextBlock: 1,
		spans:     make(map[uint32][]T),
		nextSpan:  1,
	}, nil
}

// Rebind returns a fresh allocator for U with the same policy as a. The two
// allocators share no storage.
func Rebind[U, T any](a *PoolAllocator[T]) (*PoolAllocator[U], error) {
	cfg := a.cfg
	return New[U](&cfg)
}

// Allocate reserves n contiguous slots.
//   - n == 0 returns the null Ref and changes nothing
//   - n == 1 is served from the pool
//   - n > 1 is reserved directly from the backing source
func (a *PoolAllocator[T]) Allocate(n int) (Ref, error) {
	if a.closed {
		return Ref{}, ErrClosed
	}
	switch {
	case n < 0:
		return Ref{}, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	case n == 0:
		return Ref{}, nil
	case n > 1:
		return a.allocateSpan(n)
	}

	// Recycled slot, most recent first.
	if last := len(a.freeSlots) - 1; last >= 0 {
		ref := a.freeSlots[last]
		a.freeSlots = a.freeSlots[:last]
		b := a.byID[ref.id]
		b.free--
		b.occupied.Set(uint(ref.slot))
		a.stats.allocCalls++
		a.stats.reuseHits++
		return ref, nil
	}

	if a.active != nil && a.activeIndex < a.cfg.BlockSize {
		a.stats.bumpHits++
	} else if err := a.mintBlock(); err != nil {
		return Ref{}, err
	}

	b := a.active
	slot := a.activeIndex
	a.activeIndex++
	b.occupied.Set(uint(slot))
	a.stats.allocCalls++
	return Ref{id: b.id, slot: uint32(slot), gen: b.gen[slot], n: 1}, nil
}

// mintBlock reserves a new block and makes it the active block.
func (a *PoolAllocator[T]) mintBlock() error {
	if a.nextBlock == 0 {
		return fmt.Errorf("%w: block ids exhausted", ErrAllocationFailure)
	}
	size, err := buf.SpanBytes(a.cfg.BlockSize, a.elemSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}
	if !buf.WithinLimit(a.allocated, int64(size), a.cfg.MaxBytes) {
		return fmt.Errorf("%w: block of %d bytes exceeds limit %d (reserved %d)",
			ErrAllocationFailure, size, a.cfg.MaxBytes, a.allocated)
	}
	slots, err := a.store.reserve(a.cfg.BlockSize)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}

	b := &block[T]{
		id:       a.nextBlock,
		slots:    slots,
		occupied: bitset.New(uint(a.cfg.BlockSize)),
		gen:      make([]uint32, a.cfg.BlockSize),
	}
	a.nextBlock++
	a.blocks = append(a.blocks, b)
	a.byID[b.id] = b
	a.allocated += int64(size)
	a.active = b
	a.activeIndex = 0
	a.stats.blocksMinted++

	a.log.Debug("alloc: block minted",
		"block", b.id, "slots", a.cfg.BlockSize, "bytes", size, "source", a.store.name())
	return nil
}

func (a *PoolAllocator[T]) allocateSpan(n int) (Ref, error) {
	if uint64(n) > math.MaxUint32 {
		return Ref{}, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if a.nextSpan == 0 {
		return Ref{}, fmt.Errorf("%w: span ids exhausted", ErrAllocationFailure)
	}
	size, err := buf.SpanBytes(n, a.elemSize)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}
	if !buf.WithinLimit(a.allocated, int64(size), a.cfg.MaxBytes) {
		return Ref{}, fmt.Errorf("%w: span of %d bytes exceeds limit %d (reserved %d)",
			ErrAllocationFailure, size, a.cfg.MaxBytes, a.allocated)
	}
	slots, err := a.store.reserve(n)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	}

	id := a.nextSpan
	a.nextSpan++
	a.spans[id] = slots
	a.allocated += int64(size)
	a.stats.allocCalls++
	a.stats.bulkAllocs++

	a.log.Debug("alloc: bulk span", "span", id, "slots", n, "bytes", size)
	return Ref{id: id, n: uint32(n)}, nil
}

// Deallocate returns storage obtained from Allocate(n). n must match the
// count used to allocate ref.
//
// A single slot goes onto the free list and may trigger reclamation of its
// block. A bulk span is released to the backing source immediately; its bytes
// stay counted in Allocated().
func (a *PoolAllocator[T]) Deallocate(ref Ref, n int) error {
	if a.closed {
		return ErrClosed
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if n == 0 && ref.IsNil() {
		return nil
	}
	if ref.IsNil() {
		return fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	if int(ref.n) != n {
		return fmt.Errorf("%w: %s freed with n=%d", ErrSizeMismatch, ref, n)
	}
	if n > 1 {
		return a.freeSpan(ref)
	}

	b, err := a.lookup(ref)
	if err != nil {
		return err
	}
	slot := int(ref.slot)
	b.occupied.Clear(uint(slot))
	b.gen[slot]++
	b.free++
	a.freeSlots = append(a.freeSlots, Ref{id: b.id, slot: ref.slot, gen: b.gen[slot], n: 1})
	a.stats.freeCalls++

	return a.reclaim(b)
}

func (a *PoolAllocator[T]) freeSpan(ref Ref) error {
	slots, ok := a.spans[ref.id]
	if !ok {
		if ref.id < a.nextSpan {
			return fmt.Errorf("%w: %s", ErrStaleRef, ref)
		}
		return fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	if len(slots) != int(ref.n) {
		return fmt.Errorf("%w: %s covers %d slots", ErrSizeMismatch, ref, len(slots))
	}
	delete(a.spans, ref.id)
	a.stats.freeCalls++
	a.stats.bulkFrees++

	if err := a.store.release(slots); err != nil {
		return fmt.Errorf("alloc: release span %d: %w", ref.id, err)
	}
	return nil
}

// reclaim releases b if all of its slots are on the free list. A partially
// filled active block never qualifies: its unused tail is not on the list.
func (a *PoolAllocator[T]) reclaim(b *block[T]) error {
	if len(a.freeSlots) < a.cfg.BlockSize || b.free < a.cfg.BlockSize {
		return nil
	}

	kept := a.freeSlots[:0]
	for _, r := range a.freeSlots {
		if r.id != b.id {
			kept = append(kept, r)
		}
	}
	clear(a.freeSlots[len(kept):])
	a.freeSlots = kept

	delete(a.byID, b.id)
	if i := slices.Index(a.blocks, b); i >= 0 {
		a.blocks = slices.Delete(a.blocks, i, i+1)
	}
	if a.active == b {
		a.active = nil
		a.activeIndex = 0
	}

	size := int64(a.cfg.BlockSize) * int64(a.elemSize)
	a.allocated -= size
	a.stats.blocksReclaimed++

	a.log.Debug("alloc: block reclaimed", "block", b.id, "bytes", size, "blocks", len(a.blocks))

	if err := a.store.release(b.slots); err != nil {
		return fmt.Errorf("alloc: release block %d: %w", b.id, err)
	}
	return nil
}

// lookup resolves a single-slot reference to its block.
func (a *PoolAllocator[T]) lookup(ref Ref) (*block[T], error) {
	b, ok := a.byID[ref.id]
	if !ok {
		// Block ids are never reused, so a known id means the block is gone.
		if ref.id < a.nextBlock {
			return nil, fmt.Errorf("%w: %s", ErrStaleRef, ref)
		}
		return nil, fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	if int(ref.slot) >= len(b.slots) {
		return nil, fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	if b.gen[ref.slot] != ref.gen || !b.occupied.Test(uint(ref.slot)) {
		return nil, fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}
	return b, nil
}

// Slice returns every slot covered by ref.
func (a *PoolAllocator[T]) Slice(ref Ref) ([]T, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if ref.IsNil() {
		return nil, fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	if ref.n > 1 {
		slots, ok := a.spans[ref.id]
		if !ok || len(slots) != int(ref.n) {
			if ref.id < a.nextSpan {
				return nil, fmt.Errorf("%w: %s", ErrStaleRef, ref)
			}
			return nil, fmt.Errorf("%w: %s", ErrBadRef, ref)
		}
		return slots, nil
	}
	b, err := a.lookup(ref)
	if err != nil {
		return nil, err
	}
	return b.slots[ref.slot : ref.slot+1 : ref.slot+1], nil
}

// Get returns a pointer to the first slot of ref. The pointer stays valid
// until ref is deallocated or the allocator is cleared.
func (a *PoolAllocator[T]) Get(ref Ref) (*T, error) {
	slots, err := a.Slice(ref)
	if err != nil {
		return nil, err
	}
	return &slots[0], nil
}

// Construct stores v in the first slot of ref.
func (a *PoolAllocator[T]) Construct(ref Ref, v T) error {
	p, err := a.Get(ref)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Destroy resets every slot of ref to the zero value of T, dropping any
// references the old values held.
func (a *PoolAllocator[T]) Destroy(ref Ref) error {
	slots, err := a.Slice(ref)
	if err != nil {
		return err
	}
	clear(slots)
	return nil
}

// Clear releases every block and bulk span regardless of occupancy, empties
// the free list and resets Allocated() to zero. Values still stored in slots
// are dropped without Destroy. References handed out earlier become stale.
func (a *PoolAllocator[T]) Clear() error {
	var errs []error
	for _, b := range a.blocks {
		if err := a.store.release(b.slots); err != nil {
			errs = append(errs, fmt.Errorf("alloc: release block %d: %w", b.id, err))
		}
	}
	for id, slots := range a.spans {
		if err := a.store.release(slots); err != nil {
			errs = append(errs, fmt.Errorf("alloc: release span %d: %w", id, err))
		}
	}

	a.log.Debug("alloc: cleared", "blocks", len(a.blocks), "spans", len(a.spans), "bytes", a.allocated)

	a.blocks = nil
	clear(a.byID)
	clear(a.spans)
	a.freeSlots = nil
	a.active = nil
	a.activeIndex = 0
	a.allocated = 0
	return errors.Join(errs...)
}

// Close clears the allocator and rejects further use with ErrClosed.
// Closing twice is a no-op.
func (a *PoolAllocator[T]) Close() error {
	if a.closed {
		return nil
	}
	err := a.Clear()
	a.closed = true
	return err
}

// Equal reports whether a and other are interchangeable. Allocators of the
// same element type always are: storage from one may be handed to a
// container holding the other.
func (a *PoolAllocator[T]) Equal(other *PoolAllocator[T]) bool {
	return true
}

// Allocated returns the bytes currently reserved.
func (a *PoolAllocator[T]) Allocated() int64 { return a.allocated }

// BlockSize returns the number of slots per block.
func (a *PoolAllocator[T]) BlockSize() int { return a.cfg.BlockSize }

// ElemSize returns the size of one slot in bytes.
func (a *PoolAllocator[T]) ElemSize() int { return a.elemSize }

// Config returns the policy this allocator was built with.
func (a *PoolAllocator[T]) Config() Config { return a.cfg }

// Compile-time interface check
var _ Allocator[int] = (*PoolAllocator[int])(nil)
