package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/joshuapare/slabkit/pool/alloc"
)

func (p *Printer) printStatsText(name string, s alloc.Stats) error {
	// Format into a buffer so a failing writer surfaces as one error.
	var sb strings.Builder
	m := p.msg
	if name != "" {
		m.Fprintf(&sb, "=== %s ===\n", name)
	}
	m.Fprintf(&sb, "Source:        %s\n", s.Source)
	m.Fprintf(&sb, "Slot size:     %d bytes x %d per block\n", s.ElemSize, s.BlockSize)
	m.Fprintf(&sb, "Blocks:        %d (minted %d, reclaimed %d)\n", s.Blocks, s.BlocksMinted, s.BlocksReclaimed)
	m.Fprintf(&sb, "Slots:         %d live, %d free, %d unbumped\n", s.LiveSlots, s.FreeSlots, s.BumpRemaining)
	m.Fprintf(&sb, "Spans:         %d\n", s.Spans)
	m.Fprintf(&sb, "Allocated:     %s\n", p.bytes(s.Allocated))

	if p.opts.ShowCounters {
		m.Fprintf(&sb, "Alloc calls:   %d (reuse %d, bump %d, bulk %d)\n", s.AllocCalls, s.ReuseHits, s.BumpHits, s.BulkAllocs)
		m.Fprintf(&sb, "Free calls:    %d (bulk %d)\n", s.FreeCalls, s.BulkFrees)
		m.Fprintf(&sb, "Reuse rate:    %.1f%%\n", ReuseRate(s)*100)
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(p.writer, sb.String())
	return err
}

func (p *Printer) printTableText(entries []Entry) error {
	tw := tabwriter.NewWriter(p.writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	m := p.msg

	if p.opts.ShowCounters {
		fmt.Fprintln(tw, "NAME\tBLOCK\tBLOCKS\tLIVE\tFREE\tALLOCATED\tALLOCS\tREUSE\t")
	} else {
		fmt.Fprintln(tw, "NAME\tBLOCK\tBLOCKS\tLIVE\tFREE\tALLOCATED\t")
	}
	for _, e := range entries {
		s := e.Stats
		m.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t", e.Name, s.BlockSize, s.Blocks, s.LiveSlots, s.FreeSlots, s.Allocated)
		if p.opts.ShowCounters {
			m.Fprintf(tw, "%d\t%.1f%%\t", s.AllocCalls, ReuseRate(s)*100)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// bytes renders a byte count with locale grouping and, optionally, a binary
// unit suffix.
func (p *Printer) bytes(n int64) string {
	s := p.msg.Sprintf("%d bytes", n)
	if !p.opts.HumanBytes || n < 1024 {
		return s
	}
	return s + " (" + formatBytes(n) + ")"
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
