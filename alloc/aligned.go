package alloc

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hupe1980/storagekit/traits"
)

// CacheLine is the block alignment of Aligned (64 bytes, also the AVX-512
// vector width).
const CacheLine = 64

// Aligned allocates cache-line aligned blocks from the Go heap. The block
// lives in a byte buffer, so element types must be pointer-free. Free is a
// no-op.
type Aligned struct{}

// Allocate implements Allocator.
func (Aligned) Allocate(t reflect.Type, n int) (unsafe.Pointer, error) {
	if traits.HasPointers(t) {
		return nil, fmt.Errorf("%w: %s", ErrPointerElements, t)
	}
	size, err := BlockBytes(t, n)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: empty block of %s", ErrOutOfMemory, t)
	}
	return alignedBytes(int(size)), nil
}

// Free implements Allocator.
func (Aligned) Free(reflect.Type, unsafe.Pointer, int) {}

// alignedBytes returns the first CacheLine boundary of a zeroed buffer with
// room for size bytes after it.
func alignedBytes(size int) unsafe.Pointer {
	buf := make([]byte, size+CacheLine-1)
	p := unsafe.Pointer(unsafe.SliceData(buf))
	off := (CacheLine - uintptr(p)&(CacheLine-1)) & (CacheLine - 1)
	return unsafe.Add(p, off)
}
