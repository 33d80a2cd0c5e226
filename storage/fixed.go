package storage

import "github.com/hupe1980/storagekit/internal/assert"

// FixedStorage is the fixed-capacity strategy. It never allocates after
// construction.
type FixedStorage[T any] struct {
	buf []T
}

// NewFixed uses buf as the storage. Capacity is len(buf) for the lifetime
// of the storage.
func NewFixed[T any](buf []T) *FixedStorage[T] {
	return &FixedStorage[T]{buf: buf}
}

func (f *FixedStorage[T]) Data() []T          { return f.buf }
func (f *FixedStorage[T]) Cap() int           { return len(f.buf) }
func (f *FixedStorage[T]) Strategy() Strategy { return Fixed(len(f.buf)) }

// Reallocate only validates: the capacity never changes.
func (f *FixedStorage[T]) Reallocate(newCap, live int, _ MoveFunc[T]) error {
	checkRealloc("storage.Fixed.Reallocate", newCap, live, len(f.buf))
	assert.That(newCap <= len(f.buf), "storage.Fixed.Reallocate", "fixed capacity %d exceeded by %d", len(f.buf), newCap)
	return nil
}

func (f *FixedStorage[T]) Release() {}
