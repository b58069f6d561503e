//go:build unix

package sysmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// mapped reserves private anonymous mappings with mmap(2).
type mapped struct{}

func newMapped() Source { return mapped{} }

func (mapped) Reserve(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrZeroSize, size)
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("sysmem: mmap %d bytes: %w", size, err)
	}
	return mem, nil
}

func (mapped) Release(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	err := unix.Munmap(mem)
	if errors.Is(err, unix.EINVAL) {
		return fmt.Errorf("%w: %v", ErrNotOwned, err)
	}
	return err
}

func (mapped) Name() string { return "mmap" }
