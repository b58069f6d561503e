// Package printer renders allocator statistics as text or JSON.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/slabkit/pool/alloc"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text.
	FormatText Format = "text"

	// FormatJSON outputs indented JSON.
	FormatJSON Format = "json"
)

// ParseFormat maps "text" or "json" to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("printer: unknown format %q", s)
}

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// Locale selects digit grouping for counts and byte sizes (text format only).
	// Default: language.English
	Locale language.Tag

	// ShowCounters includes the cumulative call counters.
	// Default: true
	ShowCounters bool

	// HumanBytes appends a KiB/MiB rendering to byte counts (text format only).
	// Default: true
	HumanBytes bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:       FormatText,
		Locale:       language.English,
		ShowCounters: true,
		HumanBytes:   true,
	}
}

// Printer writes allocator statistics.
type Printer struct {
	opts   Options
	writer io.Writer
	msg    *message.Printer
}

// New creates a Printer writing to w.
//
// Example:
//
//	p := printer.New(os.Stdout, printer.DefaultOptions())
//	p.PrintStats("nodes", a.Stats())
func New(w io.Writer, opts Options) *Printer {
	return &Printer{
		opts:   opts,
		writer: w,
		msg:    message.NewPrinter(opts.Locale),
	}
}

// Entry is one named allocator snapshot.
type Entry struct {
	Name  string
	Stats alloc.Stats
}

// PrintStats prints one allocator snapshot under name.
func (p *Printer) PrintStats(name string, s alloc.Stats) error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(p.JSON(name, s))
	default:
		return p.printStatsText(name, s)
	}
}

// PrintTable prints several snapshots, one row each in text mode and as a
// JSON array otherwise.
func (p *Printer) PrintTable(entries []Entry) error {
	switch p.opts.Format {
	case FormatJSON:
		out := make([]StatsJSON, 0, len(entries))
		for _, e := range entries {
			out = append(out, p.JSON(e.Name, e.Stats))
		}
		return p.printJSON(out)
	default:
		return p.printTableText(entries)
	}
}

// ReuseRate is the share of single-slot allocations served from the free list.
func ReuseRate(s alloc.Stats) float64 {
	single := s.AllocCalls - s.BulkAllocs
	if single <= 0 {
		return 0
	}
	return float64(s.ReuseHits) / float64(single)
}
