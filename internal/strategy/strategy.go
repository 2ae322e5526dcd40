// Package strategy implements the buffer-initialization strategies under test.
//
// Every strategy obtains bytes+1 bytes from an allocator, reads bytes bytes
// from the file into the front of the buffer and leaves a zero terminator at
// offset bytes. They differ only in how the memory gets initialized before the
// read.
package strategy

import (
	"errors"
	"fmt"
	"io"

	"github.com/torosent/zerobench/internal/alloc"
)

// Func fills a freshly allocated buffer with bytes bytes read from r.
type Func func(r io.Reader, bytes int, a alloc.Allocator) (*Buffer, error)

// Strategy is a named buffer-initialization strategy.
type Strategy struct {
	Name  string // stable key used in thresholds and reports
	Label string // column label in text output
	Run   Func
}

const (
	NameNoInit = "noinit"
	NameMemset = "memset"
	NameCalloc = "calloc"
)

var (
	NoInit = Strategy{Name: NameNoInit, Label: "no initialization:", Run: noInitialization}
	Memset = Strategy{Name: NameMemset, Label: "initialize w/ memset:", Run: initializeWithMemset}
	Calloc = Strategy{Name: NameCalloc, Label: "initialize w/ calloc:", Run: initializeWithCalloc}
)

// All returns every strategy in execution order.
func All() []Strategy {
	return []Strategy{NoInit, Memset, Calloc}
}

// Select maps a benchmark selector to the strategies it runs.
// 1, 2 and 3 pick a single strategy; anything else runs all of them.
func Select(selector int) []Strategy {
	switch selector {
	case 1:
		return []Strategy{NoInit}
	case 2:
		return []Strategy{Memset}
	case 3:
		return []Strategy{Calloc}
	default:
		return All()
	}
}

// Lookup finds a strategy by name.
func Lookup(name string) (Strategy, bool) {
	for _, s := range All() {
		if s.Name == name {
			return s, true
		}
	}
	return Strategy{}, false
}

// Buffer is the memory a strategy produced for one trial.
type Buffer struct {
	Data []byte
	// Read is the number of bytes the single read call returned.
	Read      int
	Requested int

	alloc alloc.Allocator
}

// Short reports whether the read returned fewer bytes than requested.
func (b *Buffer) Short() bool {
	return b.Read < b.Requested
}

// Release hands the memory back to its allocator. It is safe to call twice.
func (b *Buffer) Release() error {
	if b == nil || b.Data == nil {
		return nil
	}
	data := b.Data
	b.Data = nil
	return b.alloc.Free(data)
}

func noInitialization(r io.Reader, bytes int, a alloc.Allocator) (*Buffer, error) {
	mem, err := a.Raw(bytes + 1)
	if err != nil {
		return nil, err
	}
	buf := &Buffer{Data: mem, Requested: bytes, alloc: a}
	if err := buf.fill(r); err != nil {
		return nil, err
	}
	mem[bytes] = 0
	return buf, nil
}

func initializeWithMemset(r io.Reader, bytes int, a alloc.Allocator) (*Buffer, error) {
	mem, err := a.Raw(bytes + 1)
	if err != nil {
		return nil, err
	}
	clear(mem)
	buf := &Buffer{Data: mem, Requested: bytes, alloc: a}
	if err := buf.fill(r); err != nil {
		return nil, err
	}
	return buf, nil
}

func initializeWithCalloc(r io.Reader, bytes int, a alloc.Allocator) (*Buffer, error) {
	mem, err := a.Zeroed(bytes + 1)
	if err != nil {
		return nil, err
	}
	buf := &Buffer{Data: mem, Requested: bytes, alloc: a}
	if err := buf.fill(r); err != nil {
		return nil, err
	}
	return buf, nil
}

// fill issues exactly one Read. Short reads are recorded, not retried.
func (b *Buffer) fill(r io.Reader) error {
	if b.Requested == 0 {
		return nil
	}
	n, err := r.Read(b.Data[:b.Requested])
	b.Read = n
	if err != nil && !errors.Is(err, io.EOF) {
		_ = b.alloc.Free(b.Data)
		b.Data = nil
		return fmt.Errorf("read %d bytes: %w", b.Requested, err)
	}
	return nil
}
