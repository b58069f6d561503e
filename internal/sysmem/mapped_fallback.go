//go:build !unix && !windows

package sysmem

// newMapped falls back to the Go heap when anonymous mappings are unavailable.
func newMapped() Source { return Heap{} }
