//go:build !(linux || darwin || freebsd)

package alloc

// NewMmap reports ErrUnsupported on platforms without anonymous mmap support.
func NewMmap() (Allocator, error) {
	return nil, ErrUnsupported
}
