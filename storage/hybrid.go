package storage

import (
	"github.com/hupe1980/storagekit/alloc"
)

// HybridStorage keeps up to len(inline) slots inline and moves to the heap
// beyond that. heap == nil is the inline state.
type HybridStorage[T any] struct {
	alloc  alloc.Allocator
	inline []T
	heap   []T
}

// NewHybrid uses inline as the embedded storage and a for heap buffers.
func NewHybrid[T any](inline []T, a alloc.Allocator) *HybridStorage[T] {
	if a == nil {
		a = alloc.Default
	}
	return &HybridStorage[T]{alloc: a, inline: inline}
}

// IsInline reports whether the inline slots are in use.
func (h *HybridStorage[T]) IsInline() bool { return h.heap == nil }

func (h *HybridStorage[T]) Data() []T {
	if h.heap != nil {
		return h.heap
	}
	return h.inline
}

func (h *HybridStorage[T]) Cap() int           { return len(h.Data()) }
func (h *HybridStorage[T]) Strategy() Strategy { return Hybrid(len(h.inline), h.alloc) }

func (h *HybridStorage[T]) Reallocate(newCap, live int, move MoveFunc[T]) error {
	checkRealloc("storage.Hybrid.Reallocate", newCap, live, h.Cap())
	newCap = max(newCap, len(h.inline))

	switch {
	case h.heap == nil && newCap == len(h.inline):
		return nil
	case h.heap == nil:
		data, err := alloc.Make[T](h.alloc, newCap)
		if err != nil {
			return err
		}
		defaultMove(move)(data[:live], h.inline[:live])
		h.heap = data
	case newCap == len(h.inline):
		defaultMove(move)(h.inline[:live], h.heap[:live])
		alloc.Release(h.alloc, h.heap)
		h.heap = nil
	case newCap != len(h.heap):
		data, err := reallocate(h.alloc, h.heap, newCap, live, move)
		if err != nil {
			return err
		}
		h.heap = data
	}
	return nil
}

func (h *HybridStorage[T]) Release() {
	if h.heap != nil {
		alloc.Release(h.alloc, h.heap)
		h.heap = nil
	}
}
