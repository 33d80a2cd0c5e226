package alloc

import (
	"errors"
	"fmt"
	"math/bits"
	"reflect"
	"unsafe"
)

var (
	// ErrOutOfMemory is returned when an allocator cannot provide a block.
	ErrOutOfMemory = errors.New("alloc: out of memory")
	// ErrPointerElements is returned by off-heap allocators for element
	// types the garbage collector must scan.
	ErrPointerElements = errors.New("alloc: element type contains pointers")
	// ErrUnsupported is returned by Reallocate when the block cannot be
	// resized in place.
	ErrUnsupported = errors.New("alloc: in-place reallocation unsupported")
	// ErrUnknownBlock is returned when a pointer was not allocated here.
	ErrUnknownBlock = errors.New("alloc: unknown block")
)

// Allocator provides raw element blocks.
type Allocator interface {
	// Allocate returns a zeroed block for n elements of type t.
	Allocate(t reflect.Type, n int) (unsafe.Pointer, error)
	// Free releases a block returned by Allocate or Reallocate.
	Free(t reflect.Type, p unsafe.Pointer, n int)
}

// Reallocator is implemented by allocators that can resize a block while
// keeping its first min(oldN, newN) elements. The returned pointer may
// differ from p.
type Reallocator interface {
	Allocator
	Reallocate(t reflect.Type, p unsafe.Pointer, oldN, newN int) (unsafe.Pointer, error)
}

// Default is used wherever a nil Allocator is passed.
var Default Allocator = Heap{}

// ReallocateReporter is implemented by wrapping allocators whose
// Reallocate method depends on the allocator they wrap.
type ReallocateReporter interface {
	SupportsReallocate() bool
}

// SupportsReallocate reports whether a advertises in-place reallocation.
// Allocators implementing ReallocateReporter answer for themselves.
func SupportsReallocate(a Allocator) bool {
	a = orDefault(a)
	if r, ok := a.(ReallocateReporter); ok {
		return r.SupportsReallocate()
	}
	_, ok := a.(Reallocator)
	return ok
}

// Make allocates a block of n elements and returns it as a slice of length n.
func Make[T any](a Allocator, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	rt := reflect.TypeFor[T]()
	if rt.Size() == 0 {
		return make([]T, n), nil
	}
	p, err := orDefault(a).Allocate(rt, n)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %d x %s", ErrOutOfMemory, n, rt)
	}
	return unsafe.Slice((*T)(p), n), nil
}

// Resize resizes the block s in place to n elements. It returns
// ErrUnsupported when the allocator cannot; s is then unchanged and still
// owned by the caller.
func Resize[T any](a Allocator, s []T, n int) ([]T, error) {
	rt := reflect.TypeFor[T]()
	if len(s) == 0 || n <= 0 || rt.Size() == 0 {
		return nil, ErrUnsupported
	}
	r, ok := orDefault(a).(Reallocator)
	if !ok {
		return nil, ErrUnsupported
	}
	p, err := r.Reallocate(rt, unsafe.Pointer(unsafe.SliceData(s)), len(s), n)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(p), n), nil
}

// Release frees the block s. s must be the whole block.
func Release[T any](a Allocator, s []T) {
	rt := reflect.TypeFor[T]()
	if len(s) == 0 || rt.Size() == 0 {
		return
	}
	orDefault(a).Free(rt, unsafe.Pointer(unsafe.SliceData(s)), len(s))
}

// BlockBytes returns the byte size of n elements of t.
func BlockBytes(t reflect.Type, n int) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrOutOfMemory, n)
	}
	hi, lo := bits.Mul64(uint64(t.Size()), uint64(n))
	if hi != 0 || lo > 1<<62 {
		return 0, fmt.Errorf("%w: %d x %s overflows", ErrOutOfMemory, n, t)
	}
	return int64(lo), nil
}

func orDefault(a Allocator) Allocator {
	if a == nil {
		return Default
	}
	return a
}

// Heap allocates from the Go garbage-collected heap. Free is a no-op; the
// collector reclaims a block once nothing references it.
type Heap struct{}

// Allocate implements Allocator.
func (Heap) Allocate(t reflect.Type, n int) (unsafe.Pointer, error) {
	if _, err := BlockBytes(t, n); err != nil {
		return nil, err
	}
	return reflect.MakeSlice(reflect.SliceOf(t), n, n).UnsafePointer(), nil
}

// Free implements Allocator.
func (Heap) Free(reflect.Type, unsafe.Pointer, int) {}
