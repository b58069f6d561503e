package printer

import (
	"encoding/json"

	"github.com/joshuapare/slabkit/pool/alloc"
)

// StatsJSON is the JSON shape of one allocator snapshot.
type StatsJSON struct {
	Name      string `json:"name,omitempty"`
	Source    string `json:"source"`
	ElemSize  int    `json:"elem_size"`
	BlockSize int    `json:"block_size"`

	Blocks        int   `json:"blocks"`
	LiveSlots     int   `json:"live_slots"`
	FreeSlots     int   `json:"free_slots"`
	BumpRemaining int   `json:"bump_remaining"`
	Spans         int   `json:"spans"`
	Allocated     int64 `json:"allocated_bytes"`

	Counters *CountersJSON `json:"counters,omitempty"`
}

// CountersJSON carries the cumulative counters when Options.ShowCounters is set.
type CountersJSON struct {
	AllocCalls      int     `json:"alloc_calls"`
	FreeCalls       int     `json:"free_calls"`
	ReuseHits       int     `json:"reuse_hits"`
	BumpHits        int     `json:"bump_hits"`
	BulkAllocs      int     `json:"bulk_allocs"`
	BulkFrees       int     `json:"bulk_frees"`
	BlocksMinted    int     `json:"blocks_minted"`
	BlocksReclaimed int     `json:"blocks_reclaimed"`
	ReuseRate       float64 `json:"reuse_rate"`
}

// JSON converts s to the snake_case form PrintStats emits in FormatJSON, for
// callers embedding allocator stats in a larger document.
func (p *Printer) JSON(name string, s alloc.Stats) StatsJSON {
	js := StatsJSON{
		Name:          name,
		Source:        s.Source,
		ElemSize:      s.ElemSize,
		BlockSize:     s.BlockSize,
		Blocks:        s.Blocks,
		LiveSlots:     s.LiveSlots,
		FreeSlots:     s.FreeSlots,
		BumpRemaining: s.BumpRemaining,
		Spans:         s.Spans,
		Allocated:     s.Allocated,
	}
	if p.opts.ShowCounters {
		js.Counters = &CountersJSON{
			AllocCalls:      s.AllocCalls,
			FreeCalls:       s.FreeCalls,
			ReuseHits:       s.ReuseHits,
			BumpHits:        s.BumpHits,
			BulkAllocs:      s.BulkAllocs,
			BulkFrees:       s.BulkFrees,
			BlocksMinted:    s.BlocksMinted,
			BlocksReclaimed: s.BlocksReclaimed,
			ReuseRate:       ReuseRate(s),
		}
	}
	return js
}

func (p *Printer) printJSON(v any) error {
	enc := json.NewEncoder(p.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
