package storage

import (
	"errors"

	"github.com/hupe1980/storagekit/alloc"
	"github.com/hupe1980/storagekit/traits"
)

// HeapStorage is the heap-only strategy.
type HeapStorage[T any] struct {
	alloc alloc.Allocator
	data  []T
}

// NewHeap returns an empty heap storage served by a.
func NewHeap[T any](a alloc.Allocator) *HeapStorage[T] {
	if a == nil {
		a = alloc.Default
	}
	return &HeapStorage[T]{alloc: a}
}

func (h *HeapStorage[T]) Data() []T          { return h.data }
func (h *HeapStorage[T]) Cap() int           { return len(h.data) }
func (h *HeapStorage[T]) Strategy() Strategy { return HeapOnly(h.alloc) }

func (h *HeapStorage[T]) Reallocate(newCap, live int, move MoveFunc[T]) error {
	checkRealloc("storage.Heap.Reallocate", newCap, live, len(h.data))
	if newCap == len(h.data) {
		return nil
	}
	data, err := reallocate(h.alloc, h.data, newCap, live, move)
	if err != nil {
		return err
	}
	h.data = data
	return nil
}

func (h *HeapStorage[T]) Release() {
	alloc.Release(h.alloc, h.data)
	h.data = nil
}

// reallocate moves the live prefix of old into a block of newCap slots and
// frees old. It tries an in-place resize first when move is nil and the
// element type is bulk-reallocatable.
func reallocate[T any](a alloc.Allocator, old []T, newCap, live int, move MoveFunc[T]) ([]T, error) {
	if move == nil && len(old) > 0 && newCap > 0 && traits.Of[T]().BulkReallocatable {
		data, err := alloc.Resize(a, old, newCap)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, alloc.ErrUnsupported) {
			return nil, err
		}
	}

	data, err := alloc.Make[T](a, newCap)
	if err != nil {
		return nil, err
	}
	defaultMove(move)(data[:live], old[:live])
	alloc.Release(a, old)
	return data, nil
}
