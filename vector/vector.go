// Package vector provides a growable contiguous sequence over any storage
// strategy.
package vector

import (
	"iter"

	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/internal/assert"
	"github.com/hupe1980/storagekit/internal/growth"
	"github.com/hupe1980/storagekit/internal/memops"
	"github.com/hupe1980/storagekit/storage"
)

// Vector is a contiguous sequence. Slots [0, Len()) hold live elements.
// The zero value is an empty vector on heap storage.
type Vector[T any, S storagekit.Size] struct {
	st   storage.Storage[T]
	size S
}

// New returns an empty vector on a new storage of strategy s.
func New[T any, S storagekit.Size](s storage.Strategy) *Vector[T, S] {
	return &Vector[T, S]{st: storage.New[T](s)}
}

// NewWith returns an empty vector on st. st must hold no live elements.
func NewWith[T any, S storagekit.Size](st storage.Storage[T]) *Vector[T, S] {
	return &Vector[T, S]{st: st}
}

func (v *Vector[T, S]) storage() storage.Storage[T] {
	if v.st == nil {
		v.st = storage.NewHeap[T](nil)
	}
	return v.st
}

func (v *Vector[T, S]) data() []T {
	return v.storage().Data()
}

// Strategy returns the storage strategy.
func (v *Vector[T, S]) Strategy() storage.Strategy {
	return v.storage().Strategy()
}

// Len returns the number of elements.
func (v *Vector[T, S]) Len() int { return int(v.size) }

// Size returns the number of elements as S.
func (v *Vector[T, S]) Size() S { return v.size }

// Cap returns the capacity.
func (v *Vector[T, S]) Cap() int { return v.storage().Cap() }

// Empty reports whether the vector has no elements.
func (v *Vector[T, S]) Empty() bool { return v.size == 0 }

// At returns the element at i.
func (v *Vector[T, S]) At(i S) T {
	assert.Index("vector.At", uint64(i), uint64(v.size))
	return v.data()[i]
}

// Ptr returns a pointer to the element at i. It is invalidated by any
// operation that reallocates.
func (v *Vector[T, S]) Ptr(i S) *T {
	assert.Index("vector.Ptr", uint64(i), uint64(v.size))
	return &v.data()[i]
}

// Set replaces the element at i with a copy of x.
func (v *Vector[T, S]) Set(i S, x T) {
	assert.Index("vector.Set", uint64(i), uint64(v.size))
	p := &v.data()[i]
	memops.DestructOne(p)
	memops.CopyOne(p, &x)
}

// Front returns the first element.
func (v *Vector[T, S]) Front() T {
	assert.NotEmpty("vector.Front", uint64(v.size))
	return v.data()[0]
}

// Back returns the last element.
func (v *Vector[T, S]) Back() T {
	assert.NotEmpty("vector.Back", uint64(v.size))
	return v.data()[v.size-1]
}

// Slice returns the live elements. The slice aliases the storage and is
// invalidated by any operation that reallocates.
func (v *Vector[T, S]) Slice() []T {
	return v.data()[:v.size]
}

// reserveFor makes room for n more elements, reallocating to the grown
// capacity when needed.
func (v *Vector[T, S]) reserveFor(op string, n S) {
	assert.That(n <= storagekit.MaxSize[S]()-v.size, op, "size %d + %d overflows", v.size, n)
	need := v.size + n
	capacity := v.Cap()
	if int(need) <= capacity {
		return
	}
	newCap := growth.Grow(need, clampSize[S](capacity))
	if err := v.storage().Reallocate(int(newCap), int(v.size), nil); err != nil {
		panic(err)
	}
}

// expose grows the vector by n slots and returns them.
func (v *Vector[T, S]) expose(op string, n S) []T {
	v.reserveFor(op, n)
	s := v.data()[v.size : v.size+n]
	v.size += n
	return s
}

// PushBack appends a copy of x.
func (v *Vector[T, S]) PushBack(x T) {
	s := v.expose("vector.PushBack", 1)
	memops.CopyOne(&s[0], &x)
}

// PushBackDefault appends a default-constructed element and returns it.
func (v *Vector[T, S]) PushBackDefault() *T {
	s := v.expose("vector.PushBackDefault", 1)
	memops.ConstructOne(&s[0])
	return &s[0]
}

// PushBackZeroed appends a zero-filled element without constructing it.
func (v *Vector[T, S]) PushBackZeroed() *T {
	s := v.expose("vector.PushBackZeroed", 1)
	clear(s)
	return &s[0]
}

// Append appends copies of xs. xs must not alias the vector.
func (v *Vector[T, S]) Append(xs ...T) {
	if len(xs) == 0 {
		return
	}
	s := v.expose("vector.Append", sizeOf[S]("vector.Append", len(xs)))
	memops.Copy(s, xs)
}

// PopBack removes the last element and returns it.
func (v *Vector[T, S]) PopBack() T {
	assert.NotEmpty("vector.PopBack", uint64(v.size))
	v.size--
	var out T
	memops.MoveOne(&out, &v.data()[v.size])
	return out
}

// Insert inserts copies of xs before position i. xs must not alias the
// vector.
func (v *Vector[T, S]) Insert(i S, xs ...T) {
	assert.That(i <= v.size, "vector.Insert", "position %d out of range [0, %d]", i, v.size)
	if len(xs) == 0 {
		return
	}
	n := sizeOf[S]("vector.Insert", len(xs))
	old := v.size
	v.expose("vector.Insert", n)
	d := v.data()
	memops.Move(d[i+n:old+n], d[i:old])
	memops.Copy(d[i:i+n], xs)
}

// Erase removes n elements starting at i.
func (v *Vector[T, S]) Erase(i, n S) {
	assert.That(i <= v.size && n <= v.size-i, "vector.Erase", "range [%d, %d+%d) out of range [0, %d)", i, i, n, v.size)
	if n == 0 {
		return
	}
	d := v.data()
	memops.Destruct(d[i : i+n])
	memops.Move(d[i:v.size-n], d[i+n:v.size])
	v.size -= n
}

// Resize sets the length to n, filling new slots with copies of x.
func (v *Vector[T, S]) Resize(n S, x T) {
	if s := v.resize("vector.Resize", n); s != nil {
		memops.Fill(s, x)
	}
}

// ResizeDefault sets the length to n, default-constructing new slots.
func (v *Vector[T, S]) ResizeDefault(n S) {
	if s := v.resize("vector.ResizeDefault", n); s != nil {
		memops.Construct(s)
	}
}

// ResizeZeroed sets the length to n, zero-filling new slots.
func (v *Vector[T, S]) ResizeZeroed(n S) {
	if s := v.resize("vector.ResizeZeroed", n); s != nil {
		clear(s)
	}
}

// resize shrinks by destructing the tail or grows and returns the new
// slots.
func (v *Vector[T, S]) resize(op string, n S) []T {
	if n <= v.size {
		memops.Destruct(v.data()[n:v.size])
		v.size = n
		return nil
	}
	return v.expose(op, n-v.size)
}

// Reserve ensures capacity for at least n elements without changing the
// length.
func (v *Vector[T, S]) Reserve(n S) error {
	if int(n) <= v.Cap() {
		return nil
	}
	return v.storage().Reallocate(int(n), int(v.size), nil)
}

// ShrinkToFit releases unused capacity when the shrink policy allows it.
func (v *Vector[T, S]) ShrinkToFit() {
	capacity := clampSize[S](v.Cap())
	if newCap := growth.Shrink(v.size, capacity); newCap != capacity {
		if err := v.storage().Reallocate(int(newCap), int(v.size), nil); err != nil {
			panic(err)
		}
	}
}

// Clear destroys every element. The capacity is kept.
func (v *Vector[T, S]) Clear() {
	if v.size == 0 {
		return
	}
	memops.Destruct(v.data()[:v.size])
	v.size = 0
}

// Release destroys every element and frees the storage.
func (v *Vector[T, S]) Release() {
	v.Clear()
	v.storage().Release()
}

// IndexOf returns the index of the first element equal to x, or
// storagekit.Invalid[S]().
func (v *Vector[T, S]) IndexOf(x T) S {
	d := v.data()
	for i := S(0); i < v.size; i++ {
		if memops.CompareOne(&d[i], &x) {
			return i
		}
	}
	return storagekit.Invalid[S]()
}

// Equal reports whether v and o hold equal elements in the same order.
func (v *Vector[T, S]) Equal(o *Vector[T, S]) bool {
	return memops.Compare(v.Slice(), o.Slice())
}

// CopyFrom replaces the contents of v with copies of o's elements.
func (v *Vector[T, S]) CopyFrom(o *Vector[T, S]) {
	if v == o {
		return
	}
	v.Clear()
	if o.size == 0 {
		return
	}
	memops.Copy(v.expose("vector.CopyFrom", o.size), o.Slice())
}

// MoveFrom moves o's elements into v. o is left empty with its storage
// released.
func (v *Vector[T, S]) MoveFrom(o *Vector[T, S]) {
	if v == o {
		return
	}
	v.Release()
	if storage.Swap(v.storage(), o.storage()) {
		v.size, o.size = o.size, 0
		return
	}
	if o.size > 0 {
		memops.Move(v.expose("vector.MoveFrom", o.size), o.Slice())
		o.size = 0
	}
	o.storage().Release()
}

// Clone returns a deep copy on a new storage of the same strategy.
func (v *Vector[T, S]) Clone() *Vector[T, S] {
	c := New[T, S](v.Strategy())
	c.CopyFrom(v)
	return c
}

// All iterates the elements front to back.
func (v *Vector[T, S]) All() iter.Seq2[S, T] {
	return func(yield func(S, T) bool) {
		for i := S(0); i < v.size; i++ {
			if !yield(i, v.data()[i]) {
				return
			}
		}
	}
}

// Backward iterates the elements back to front.
func (v *Vector[T, S]) Backward() iter.Seq2[S, T] {
	return func(yield func(S, T) bool) {
		for i := v.size; i > 0; i-- {
			if !yield(i-1, v.data()[i-1]) {
				return
			}
		}
	}
}

func clampSize[S storagekit.Size](n int) S {
	if n >= storagekit.MaxLen[S]() {
		return storagekit.MaxSize[S]()
	}
	return S(n)
}

func sizeOf[S storagekit.Size](op string, n int) S {
	assert.That(n <= storagekit.MaxLen[S](), op, "count %d exceeds max size %d", n, storagekit.MaxSize[S]())
	return S(n)
}
