//go:build linux || darwin || freebsd

package alloc

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Mmap allocates anonymous private mappings. The kernel hands out zeroed
// pages, so Raw and Zeroed return identical memory, as large malloc calls do.
type Mmap struct{}

// NewMmap returns an mmap-backed allocator.
func NewMmap() (Allocator, error) {
	return Mmap{}, nil
}

func (Mmap) Name() string { return string(KindMmap) }

func (m Mmap) Raw(n int) ([]byte, error) {
	return m.mapAnon(n)
}

func (m Mmap) Zeroed(n int) ([]byte, error) {
	return m.mapAnon(n)
}

func (Mmap) mapAnon(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("alloc: negative size %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("alloc: mmap %d bytes: %w", n, err)
	}
	return buf, nil
}

// Free unmaps buf. It must be the exact slice returned by Raw or Zeroed.
func (Mmap) Free(buf []byte) error {
	if cap(buf) == 0 {
		return nil
	}
	if err := unix.Munmap(buf); err != nil {
		return fmt.Errorf("alloc: munmap: %w", err)
	}
	return nil
}
