package printer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/joshuapare/slabkit/pool/alloc"
)

func sampleStats() alloc.Stats {
	return alloc.Stats{
		Source:          "heap",
		ElemSize:        8,
		BlockSize:       512,
		Blocks:          3,
		LiveSlots:       1400,
		FreeSlots:       100,
		BumpRemaining:   36,
		Allocated:       12288,
		AllocCalls:      2100,
		FreeCalls:       700,
		ReuseHits:       500,
		BumpHits:        1597,
		BulkAllocs:      100,
		BlocksMinted:    3,
		BlocksReclaimed: 0,
	}
}

func TestPrintStats_Text(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, DefaultOptions())
	require.NoError(t, p.PrintStats("nodes", sampleStats()))

	out := buf.String()
	t.Logf("Text output:\n%s", out)
	for _, want := range []string{
		"=== nodes ===",
		"Source:        heap",
		"Slot size:     8 bytes x 512 per block",
		"Blocks:        3 (minted 3, reclaimed 0)",
		"Slots:         1,400 live, 100 free, 36 unbumped",
		"Allocated:     12,288 bytes (12.0 KiB)",
		"Alloc calls:   2,100 (reuse 500, bump 1,597, bulk 100)",
		"Reuse rate:    25.0%",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPrintStats_TextWithoutCounters(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.ShowCounters = false
	opts.HumanBytes = false
	require.NoError(t, New(&buf, opts).PrintStats("", sampleStats()))

	out := buf.String()
	assert.NotContains(t, out, "===")
	assert.NotContains(t, out, "Alloc calls")
	assert.Contains(t, out, "Allocated:     12,288 bytes\n")
}

func TestPrintStats_Locale(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Locale = language.German
	require.NoError(t, New(&buf, opts).PrintStats("", sampleStats()))
	assert.Contains(t, buf.String(), "12.288 bytes")
}

// failingWriter rejects every write.
type failingWriter struct{ writes int }

var errSink = errors.New("sink closed")

func (w *failingWriter) Write([]byte) (int, error) {
	w.writes++
	return 0, errSink
}

func TestPrintStats_TextWriteError(t *testing.T) {
	w := &failingWriter{}
	err := New(w, DefaultOptions()).PrintStats("nodes", sampleStats())
	require.ErrorIs(t, err, errSink)
	assert.Equal(t, 1, w.writes, "text output is written in one call")
}

func TestJSON_MatchesPrintStats(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatJSON
	p := New(&buf, opts)
	require.NoError(t, p.PrintStats("nodes", sampleStats()))

	var printed StatsJSON
	require.NoError(t, json.Unmarshal(buf.Bytes(), &printed))
	assert.Equal(t, p.JSON("nodes", sampleStats()), printed)
}

func TestPrintStats_JSON(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatJSON
	require.NoError(t, New(&buf, opts).PrintStats("nodes", sampleStats()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "nodes", got["name"])
	assert.Equal(t, float64(12288), got["allocated_bytes"])
	assert.Equal(t, float64(512), got["block_size"])

	counters, ok := got["counters"].(map[string]any)
	require.True(t, ok, "counters object present")
	assert.Equal(t, 0.25, counters["reuse_rate"])
}

func TestPrintStats_JSONWithoutCounters(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = FormatJSON
	opts.ShowCounters = false
	require.NoError(t, New(&buf, opts).PrintStats("", sampleStats()))

	assert.NotContains(t, buf.String(), "counters")
	assert.NotContains(t, buf.String(), `"name"`)
}

func TestPrintTable(t *testing.T) {
	a := sampleStats()
	b := sampleStats()
	b.BlockSize = 1
	b.Allocated = 800

	entries := []Entry{{Name: "block=512", Stats: a}, {Name: "block=1", Stats: b}}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, DefaultOptions()).PrintTable(entries))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ALLOCATED")
	assert.Contains(t, lines[1], "12,288")
	assert.Contains(t, lines[2], "800")

	buf.Reset()
	opts := DefaultOptions()
	opts.Format = FormatJSON
	require.NoError(t, New(&buf, opts).PrintTable(entries))
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "block=1", rows[1]["name"])
}

func TestReuseRate(t *testing.T) {
	assert.Zero(t, ReuseRate(alloc.Stats{}))
	assert.Zero(t, ReuseRate(alloc.Stats{AllocCalls: 3, BulkAllocs: 3}))
	assert.InDelta(t, 0.5, ReuseRate(alloc.Stats{AllocCalls: 4, ReuseHits: 2}), 1e-9)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	_, err = ParseFormat("yaml")
	require.Error(t, err)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 << 20, "5.0 MiB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.in))
	}
}

func TestPrintStats_Live(t *testing.T) {
	a, err := alloc.New[int64](&alloc.Config{BlockSize: 4})
	require.NoError(t, err)
	defer a.Close()
	for range 6 {
		_, err := a.Allocate(1)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, DefaultOptions()).PrintStats("int64", a.Stats()))
	assert.Contains(t, buf.String(), "Blocks:        2 (minted 2, reclaimed 0)")
	assert.Contains(t, buf.String(), "Allocated:     64 bytes\n")
}
