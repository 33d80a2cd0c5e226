package storage

import (
	"fmt"

	"github.com/hupe1980/storagekit/alloc"
	"github.com/hupe1980/storagekit/internal/assert"
	"github.com/hupe1980/storagekit/internal/memops"
)

// MoveFunc relocates len(src) live elements from src into dst. The slices
// never overlap.
type MoveFunc[T any] func(dst, src []T)

// Storage is a backing buffer.
type Storage[T any] interface {
	// Data returns the whole buffer; len(Data()) == Cap().
	Data() []T
	// Cap returns the number of slots.
	Cap() int
	// Reallocate resizes the buffer to newCap slots, relocating slots
	// [0, live) with move. A nil move selects memops.Move and lets the
	// allocator resize in place when the element type allows it. Slots in
	// [live, Cap()) must hold no live elements.
	Reallocate(newCap, live int, move MoveFunc[T]) error
	// Release frees any heap buffer and returns to the empty state.
	Release()
	// Strategy describes this storage.
	Strategy() Strategy
}

// Kind enumerates the storage strategies.
type Kind uint8

const (
	KindHeap Kind = iota
	KindFixed
	KindHybrid
)

func (k Kind) String() string {
	switch k {
	case KindHeap:
		return "heap"
	case KindFixed:
		return "fixed"
	case KindHybrid:
		return "hybrid"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Strategy describes a storage kind and its parameters.
type Strategy struct {
	kind  Kind
	n     int
	alloc alloc.Allocator
}

// HeapOnly describes heap storage served by a. A nil a uses alloc.Default.
func HeapOnly(a alloc.Allocator) Strategy {
	return Strategy{kind: KindHeap, alloc: a}
}

// Fixed describes storage of exactly n slots that never reallocates.
func Fixed(n int) Strategy {
	assert.That(n >= 0, "storage.Fixed", "negative capacity %d", n)
	return Strategy{kind: KindFixed, n: n}
}

// Hybrid describes storage with n inline slots and heap storage from a
// beyond that.
func Hybrid(n int, a alloc.Allocator) Strategy {
	assert.That(n >= 0, "storage.Hybrid", "negative inline capacity %d", n)
	return Strategy{kind: KindHybrid, n: n, alloc: a}
}

// Kind returns the strategy kind.
func (s Strategy) Kind() Kind { return s.kind }

// Inline returns N for Fixed and Hybrid, 0 for HeapOnly.
func (s Strategy) Inline() int { return s.n }

// Allocator returns the allocator serving heap buffers.
func (s Strategy) Allocator() alloc.Allocator {
	if s.alloc == nil {
		return alloc.Default
	}
	return s.alloc
}

// WithInline returns s with N replaced. Containers use it to size a
// companion storage, such as the occupancy words of a sparse array.
func (s Strategy) WithInline(n int) Strategy {
	if s.kind == KindHeap {
		return s
	}
	s.n = n
	return s
}

func (s Strategy) String() string {
	if s.kind == KindHeap {
		return s.kind.String()
	}
	return fmt.Sprintf("%s(%d)", s.kind, s.n)
}

// New builds an empty storage of strategy s.
func New[T any](s Strategy) Storage[T] {
	switch s.kind {
	case KindFixed:
		buf, err := alloc.Make[T](alloc.Default, s.n)
		if err != nil {
			panic(err)
		}
		return NewFixed(buf)
	case KindHybrid:
		return NewHybrid(make([]T, s.n), s.alloc)
	default:
		return NewHeap[T](s.alloc)
	}
}

// Swap exchanges the buffers of two heap storages of the same allocator in
// O(1). It reports false, leaving both untouched, when that is not possible.
func Swap[T any](a, b Storage[T]) bool {
	ha, ok := a.(*HeapStorage[T])
	if !ok {
		return false
	}
	hb, ok := b.(*HeapStorage[T])
	if !ok || !sameAllocator(ha.alloc, hb.alloc) {
		return false
	}
	ha.data, hb.data = hb.data, ha.data
	return true
}

func sameAllocator(a, b alloc.Allocator) bool {
	if a == nil {
		a = alloc.Default
	}
	if b == nil {
		b = alloc.Default
	}
	defer func() { _ = recover() }()
	return a == b
}

func defaultMove[T any](move MoveFunc[T]) MoveFunc[T] {
	if move == nil {
		return memops.Move[T]
	}
	return move
}

func checkRealloc(op string, newCap, live, capacity int) {
	assert.That(newCap >= 0, op, "negative capacity %d", newCap)
	assert.That(live <= newCap, op, "live count %d exceeds new capacity %d", live, newCap)
	assert.That(live <= capacity, op, "live count %d exceeds capacity %d", live, capacity)
}
