package ring

import (
	"iter"

	"github.com/hupe1980/storagekit"
)

// Iter is a forward cursor over a Buffer. Its position is an unbounded
// counter; the sentinel one past the last element is back.
type Iter[T any, S storagekit.Size] struct {
	b   *Buffer[T, S]
	pos S
}

// Iter returns a cursor at the first element.
func (b *Buffer[T, S]) Iter() Iter[T, S] {
	return Iter[T, S]{b: b, pos: b.front}
}

// Valid reports whether the cursor is on an element.
func (it Iter[T, S]) Valid() bool {
	return it.pos-it.b.front < it.b.Size()
}

// Index returns the logical index of the cursor.
func (it Iter[T, S]) Index() S { return it.pos - it.b.front }

// Value returns the element under the cursor.
func (it Iter[T, S]) Value() T { return it.b.At(it.Index()) }

// Ptr returns a pointer to the element under the cursor.
func (it Iter[T, S]) Ptr() *T { return it.b.Ptr(it.Index()) }

// Next advances the cursor.
func (it *Iter[T, S]) Next() { it.pos++ }

// Prev moves the cursor back.
func (it *Iter[T, S]) Prev() { it.pos-- }

// ReverseIter is a backward cursor over a Buffer. The sentinel one before
// the first element is front-1, which wraps for front == 0; validity is
// therefore tested with unsigned distance from front.
type ReverseIter[T any, S storagekit.Size] struct {
	b   *Buffer[T, S]
	pos S
}

// ReverseIter returns a cursor at the last element.
func (b *Buffer[T, S]) ReverseIter() ReverseIter[T, S] {
	return ReverseIter[T, S]{b: b, pos: b.back - 1}
}

// Valid reports whether the cursor is on an element.
func (it ReverseIter[T, S]) Valid() bool {
	return it.pos-it.b.front < it.b.Size()
}

// Index returns the logical index of the cursor.
func (it ReverseIter[T, S]) Index() S { return it.pos - it.b.front }

// Value returns the element under the cursor.
func (it ReverseIter[T, S]) Value() T { return it.b.At(it.Index()) }

// Ptr returns a pointer to the element under the cursor.
func (it ReverseIter[T, S]) Ptr() *T { return it.b.Ptr(it.Index()) }

// Next moves the cursor towards the front.
func (it *ReverseIter[T, S]) Next() { it.pos-- }

// Prev moves the cursor towards the back.
func (it *ReverseIter[T, S]) Prev() { it.pos++ }

// All iterates the elements front to back with their logical indices.
func (b *Buffer[T, S]) All() iter.Seq2[S, T] {
	return func(yield func(S, T) bool) {
		for it := b.Iter(); it.Valid(); it.Next() {
			if !yield(it.Index(), it.Value()) {
				return
			}
		}
	}
}

// Backward iterates the elements back to front with their logical indices.
func (b *Buffer[T, S]) Backward() iter.Seq2[S, T] {
	return func(yield func(S, T) bool) {
		for it := b.ReverseIter(); it.Valid(); it.Next() {
			if !yield(it.Index(), it.Value()) {
				return
			}
		}
	}
}
