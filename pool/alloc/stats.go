package alloc

import (
	"fmt"
	"io"
)

// Stats is a snapshot of allocator state and cumulative counters.
type Stats struct {
	Source    string // backing source name ("heap", "mmap", ...)
	ElemSize  int    // bytes per slot
	BlockSize int    // slots per block

	Blocks        int   // live blocks
	LiveSlots     int   // single slots currently handed out
	FreeSlots     int   // entries on the free list
	BumpRemaining int   // unused slots left in the active block
	Spans         int   // live bulk spans
	Allocated     int64 // bytes currently reserved

	// Cumulative since construction; Clear does not reset these.
	AllocCalls      int
	FreeCalls       int
	ReuseHits       int // single slots served from the free list
	BumpHits        int // single slots served from the active block without minting
	BulkAllocs      int
	BulkFrees       int
	BlocksMinted    int
	BlocksReclaimed int
}

// Stats returns a snapshot of the allocator.
func (a *PoolAllocator[T]) Stats() Stats {
	live := 0
	for _, b := range a.blocks {
		live += int(b.occupied.Count())
	}
	remaining := 0
	if a.active != nil {
		remaining = a.cfg.BlockSize - a.activeIndex
	}
	return Stats{
		Source:          a.store.name(),
		ElemSize:        a.elemSize,
		BlockSize:       a.cfg.BlockSize,
		Blocks:          len(a.blocks),
		LiveSlots:       live,
		FreeSlots:       len(a.freeSlots),
		BumpRemaining:   remaining,
		Spans:           len(a.spans),
		Allocated:       a.allocated,
		AllocCalls:      a.stats.allocCalls,
		FreeCalls:       a.stats.freeCalls,
		ReuseHits:       a.stats.reuseHits,
		BumpHits:        a.stats.bumpHits,
		BulkAllocs:      a.stats.bulkAllocs,
		BulkFrees:       a.stats.bulkFrees,
		BlocksMinted:    a.stats.blocksMinted,
		BlocksReclaimed: a.stats.blocksReclaimed,
	}
}

// PrintStats writes a plain-text summary of Stats to w.
// See the printer package for formatted and JSON output.
func (a *PoolAllocator[T]) PrintStats(w io.Writer) error {
	s := a.Stats()
	_, err := fmt.Fprintf(w,
		"=== ALLOCATOR STATISTICS ===\n"+
			"Source:        %s\n"+
			"Slot size:     %d bytes x %d per block\n"+
			"Blocks:        %d (minted %d, reclaimed %d)\n"+
			"Slots:         %d live, %d free, %d unbumped\n"+
			"Spans:         %d\n"+
			"Allocated:     %d bytes\n"+
			"Alloc calls:   %d (reuse: %d, bump: %d, bulk: %d)\n"+
			"Free calls:    %d (bulk: %d)\n",
		s.Source,
		s.ElemSize, s.BlockSize,
		s.Blocks, s.BlocksMinted, s.BlocksReclaimed,
		s.LiveSlots, s.FreeSlots, s.BumpRemaining,
		s.Spans,
		s.Allocated,
		s.AllocCalls, s.ReuseHits, s.BumpHits, s.BulkAllocs,
		s.FreeCalls, s.BulkFrees,
	)
	return err
}
