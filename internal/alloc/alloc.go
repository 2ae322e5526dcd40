// Package alloc provides the memory sources the benchmark strategies draw from.
package alloc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// ErrUnsupported is returned when an allocator is not available on this platform.
var ErrUnsupported = errors.New("allocator not supported on this platform")

// Allocator hands out byte buffers and takes them back.
type Allocator interface {
	// Raw returns n bytes whose contents are unspecified.
	Raw(n int) ([]byte, error)
	// Zeroed returns n bytes guaranteed to be zero.
	Zeroed(n int) ([]byte, error)
	// Free releases a buffer previously returned by Raw or Zeroed.
	Free(buf []byte) error
	Name() string
}

// Kind names an Allocator implementation.
type Kind string

const (
	KindHeap Kind = "heap"
	KindMmap Kind = "mmap"
)

// New builds the allocator for kind.
func New(kind Kind) (Allocator, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case "", KindHeap:
		return Heap{}, nil
	case KindMmap:
		return NewMmap()
	default:
		return nil, fmt.Errorf("unknown allocator %q", kind)
	}
}

// Heap allocates from the Go heap. Raw skips the runtime's zeroing pass.
type Heap struct{}

func (Heap) Name() string { return string(KindHeap) }

func (Heap) Raw(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("alloc: negative size %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	return dirtmake.Bytes(n, n), nil
}

func (Heap) Zeroed(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("alloc: negative size %d", n)
	}
	return make([]byte, n), nil
}

// Free drops the reference; the garbage collector owns reclamation.
func (Heap) Free([]byte) error { return nil }
