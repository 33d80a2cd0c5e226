package ring

import (
	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/internal/assert"
	"github.com/hupe1980/storagekit/internal/growth"
	"github.com/hupe1980/storagekit/internal/memops"
	"github.com/hupe1980/storagekit/storage"
	"github.com/hupe1980/storagekit/traits"
)

// Buffer is a circular sequence. The zero value is an empty buffer on heap
// storage.
type Buffer[T any, S storagekit.Size] struct {
	st    storage.Storage[T]
	front S
	back  S
}

// New returns an empty buffer on a new storage of strategy s.
func New[T any, S storagekit.Size](s storage.Strategy) *Buffer[T, S] {
	return NewWith[T, S](storage.New[T](s))
}

// NewWith returns an empty buffer on st. st must hold no live elements.
func NewWith[T any, S storagekit.Size](st storage.Storage[T]) *Buffer[T, S] {
	assert.That(st.Cap() <= storagekit.MaxLen[S](), "ring.New", "capacity %d exceeds max size %d", st.Cap(), storagekit.MaxSize[S]())
	return &Buffer[T, S]{st: st}
}

func (b *Buffer[T, S]) storage() storage.Storage[T] {
	if b.st == nil {
		b.st = storage.NewHeap[T](nil)
	}
	return b.st
}

func (b *Buffer[T, S]) data() []T {
	return b.storage().Data()
}

// Strategy returns the storage strategy.
func (b *Buffer[T, S]) Strategy() storage.Strategy {
	return b.storage().Strategy()
}

// Len returns the number of elements.
func (b *Buffer[T, S]) Len() int { return int(b.back - b.front) }

// Size returns the number of elements as S.
func (b *Buffer[T, S]) Size() S { return b.back - b.front }

// Cap returns the capacity.
func (b *Buffer[T, S]) Cap() int { return b.storage().Cap() }

// Empty reports whether the buffer has no elements.
func (b *Buffer[T, S]) Empty() bool { return b.front == b.back }

// Counters returns the raw front and back counters.
func (b *Buffer[T, S]) Counters() (front, back S) { return b.front, b.back }

func (b *Buffer[T, S]) resolve(p S) int {
	return int(uint64(p) % uint64(b.Cap()))
}

// window returns the physical parts of the logical range [start, start+n).
// The first part maps to logical offset 0, the second (possibly empty) to
// logical offset len(first).
func (b *Buffer[T, S]) window(start S, n int) (first, second []T) {
	if n == 0 {
		return nil, nil
	}
	c := b.Cap()
	r := b.resolve(start)
	d := b.data()
	if r+n <= c {
		return d[r : r+n], nil
	}
	return d[r:c], d[:n-(c-r)]
}

// Window returns the live elements as at most two contiguous parts, in
// logical order.
func (b *Buffer[T, S]) Window() (first, second []T) {
	return b.window(b.front, b.Len())
}

// IsBroken reports whether the live window wraps past the end of the
// buffer.
func (b *Buffer[T, S]) IsBroken() bool {
	if b.Empty() {
		return false
	}
	return b.resolve(b.front)+b.Len() > b.Cap()
}

// At returns the element at logical index i.
func (b *Buffer[T, S]) At(i S) T {
	assert.Index("ring.At", uint64(i), uint64(b.Size()))
	return b.data()[b.resolve(b.front+i)]
}

// Ptr returns a pointer to the element at logical index i.
func (b *Buffer[T, S]) Ptr(i S) *T {
	assert.Index("ring.Ptr", uint64(i), uint64(b.Size()))
	return &b.data()[b.resolve(b.front+i)]
}

// Set replaces the element at logical index i with a copy of x.
func (b *Buffer[T, S]) Set(i S, x T) {
	p := b.Ptr(i)
	memops.DestructOne(p)
	memops.CopyOne(p, &x)
}

// Front returns the first element.
func (b *Buffer[T, S]) Front() T {
	assert.NotEmpty("ring.Front", uint64(b.Size()))
	return b.data()[b.resolve(b.front)]
}

// Back returns the last element.
func (b *Buffer[T, S]) Back() T {
	assert.NotEmpty("ring.Back", uint64(b.Size()))
	return b.data()[b.resolve(b.back-1)]
}

// reserveFor makes room for n more elements.
func (b *Buffer[T, S]) reserveFor(op string, n S) {
	size := b.Size()
	assert.That(n <= storagekit.MaxSize[S]()-size, op, "size %d + %d overflows", size, n)
	c := b.Cap()
	if int(size+n) <= c {
		return
	}
	if err := b.reallocate(int(growth.Grow(size+n, S(c)))); err != nil {
		panic(err)
	}
}

// reallocate grows the buffer to newCap slots and repairs a broken window
// by moving its shorter part into the new room.
func (b *Buffer[T, S]) reallocate(newCap int) error {
	assert.That(newCap <= storagekit.MaxLen[S](), "ring.Reserve", "capacity %d exceeds max size %d", newCap, storagekit.MaxSize[S]())
	st := b.storage()
	oldCap := st.Cap()
	size := b.Len()
	if size == 0 {
		if err := st.Reallocate(newCap, 0, nil); err != nil {
			return err
		}
		b.front, b.back = 0, 0
		return nil
	}

	rf := b.resolve(b.front)
	tail := min(size, oldCap-rf)
	head := size - tail

	var move storage.MoveFunc[T]
	if !traits.Of[T]().BulkReallocatable {
		move = func(dst, src []T) {
			memops.Move(dst[rf:rf+tail], src[rf:rf+tail])
			memops.Move(dst[:head], src[:head])
		}
	}
	if err := st.Reallocate(newCap, oldCap, move); err != nil {
		return err
	}

	newCap = st.Cap()
	front := rf
	if head > 0 {
		d := st.Data()
		if head <= tail && head <= newCap-oldCap {
			memops.Move(d[oldCap:oldCap+head], d[:head])
		} else {
			front = newCap - tail
			memops.Move(d[front:newCap], d[rf:oldCap])
		}
	}
	b.front = S(front)
	b.back = b.front + S(size)
	if uint64(front)+uint64(size) > uint64(storagekit.MaxSize[S]()) {
		// back would wrap; restart the counters at zero.
		b.rotate(0)
	}
	return nil
}

// rotate moves the live window so it starts at physical slot p mod Cap()
// and sets front to p.
func (b *Buffer[T, S]) rotate(p int) {
	c := b.Cap()
	size := b.Len()
	if size > 0 {
		rf := b.resolve(b.front)
		if k := (rf - p%c + c) % c; k != 0 {
			rotateSlots(b.data(), k, rf, size)
		}
	}
	b.front = S(p)
	b.back = b.front + S(size)
}

// rotateSlots sets d[i] to the old d[(i+k) mod len(d)] for every live
// slot, where the live slots are the size slots starting at rf. Dead slots
// are never moved from.
func rotateSlots[T any](d []T, k, rf, size int) {
	c := len(d)
	live := func(q int) bool { return (q-rf+c)%c < size }
	for start := range gcd(c, k) {
		var tmp T
		startLive := live(start)
		if startLive {
			memops.MoveOne(&tmp, &d[start])
		}
		i := start
		for {
			j := (i + k) % c
			if j == start {
				break
			}
			if live(j) {
				memops.MoveOne(&d[i], &d[j])
			}
			i = j
		}
		if startLive {
			memops.MoveOne(&d[i], &tmp)
		}
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// rebaseBack keeps back+n representable.
func (b *Buffer[T, S]) rebaseBack(n S) {
	limit := storagekit.MaxSize[S]()
	if b.back <= limit-n {
		return
	}
	c := S(b.Cap())
	shift := b.front - b.front%c
	b.front -= shift
	b.back -= shift
	if b.back > limit-n {
		b.rotate(0)
	}
}

// rebaseFront keeps front-n non-negative.
func (b *Buffer[T, S]) rebaseFront(n S) {
	if b.front >= n {
		return
	}
	c := S(b.Cap())
	limit := storagekit.MaxSize[S]()
	if b.back > limit || c > limit-b.back {
		b.rotate(int(n))
		return
	}
	b.front += c
	b.back += c
}

func (b *Buffer[T, S]) exposeBack(op string, n S) (first, second []T) {
	if n == 0 {
		return nil, nil
	}
	b.reserveFor(op, n)
	b.rebaseBack(n)
	start := b.back
	b.back += n
	return b.window(start, int(n))
}

func (b *Buffer[T, S]) exposeFront(op string, n S) (first, second []T) {
	if n == 0 {
		return nil, nil
	}
	b.reserveFor(op, n)
	b.rebaseFront(n)
	b.front -= n
	return b.window(b.front, int(n))
}

// PushBack appends a copy of x.
func (b *Buffer[T, S]) PushBack(x T) {
	s, _ := b.exposeBack("ring.PushBack", 1)
	memops.CopyOne(&s[0], &x)
}

// PushFront prepends a copy of x.
func (b *Buffer[T, S]) PushFront(x T) {
	s, _ := b.exposeFront("ring.PushFront", 1)
	memops.CopyOne(&s[0], &x)
}

// PushBackDefault appends a default-constructed element and returns it.
func (b *Buffer[T, S]) PushBackDefault() *T {
	s, _ := b.exposeBack("ring.PushBackDefault", 1)
	memops.ConstructOne(&s[0])
	return &s[0]
}

// PushFrontDefault prepends a default-constructed element and returns it.
func (b *Buffer[T, S]) PushFrontDefault() *T {
	s, _ := b.exposeFront("ring.PushFrontDefault", 1)
	memops.ConstructOne(&s[0])
	return &s[0]
}

// PushBackZeroed appends a zero-filled element without constructing it.
func (b *Buffer[T, S]) PushBackZeroed() *T {
	s, _ := b.exposeBack("ring.PushBackZeroed", 1)
	clear(s)
	return &s[0]
}

// PushFrontZeroed prepends a zero-filled element without constructing it.
func (b *Buffer[T, S]) PushFrontZeroed() *T {
	s, _ := b.exposeFront("ring.PushFrontZeroed", 1)
	clear(s)
	return &s[0]
}

// PushBackUninitialized appends n slots and returns them in logical order.
// Their contents are unspecified; the caller must assign every slot.
func (b *Buffer[T, S]) PushBackUninitialized(n S) (first, second []T) {
	return b.exposeBack("ring.PushBackUninitialized", n)
}

// PushFrontUninitialized prepends n slots and returns them in logical
// order. The caller must assign every slot.
func (b *Buffer[T, S]) PushFrontUninitialized(n S) (first, second []T) {
	return b.exposeFront("ring.PushFrontUninitialized", n)
}

// PushBackN appends copies of xs. xs must not alias the buffer.
func (b *Buffer[T, S]) PushBackN(xs ...T) {
	first, second := b.exposeBack("ring.PushBackN", sizeOf[S]("ring.PushBackN", len(xs)))
	zip(first, second, xs, nil, memops.Copy[T])
}

// PushFrontN prepends copies of xs so that xs[0] becomes the front. xs must
// not alias the buffer.
func (b *Buffer[T, S]) PushFrontN(xs ...T) {
	first, second := b.exposeFront("ring.PushFrontN", sizeOf[S]("ring.PushFrontN", len(xs)))
	zip(first, second, xs, nil, memops.Copy[T])
}

// PopBack removes the last element and returns it.
func (b *Buffer[T, S]) PopBack() T {
	assert.NotEmpty("ring.PopBack", uint64(b.Size()))
	b.back--
	var out T
	memops.MoveOne(&out, &b.data()[b.resolve(b.back)])
	return out
}

// PopFront removes the first element and returns it.
func (b *Buffer[T, S]) PopFront() T {
	assert.NotEmpty("ring.PopFront", uint64(b.Size()))
	var out T
	memops.MoveOne(&out, &b.data()[b.resolve(b.front)])
	b.front++
	return out
}

// PopBackN destroys the last n elements.
func (b *Buffer[T, S]) PopBackN(n S) {
	assert.That(n <= b.Size(), "ring.PopBackN", "count %d exceeds size %d", n, b.Size())
	first, second := b.window(b.back-n, int(n))
	memops.Destruct(first)
	memops.Destruct(second)
	b.back -= n
}

// PopFrontN destroys the first n elements.
func (b *Buffer[T, S]) PopFrontN(n S) {
	assert.That(n <= b.Size(), "ring.PopFrontN", "count %d exceeds size %d", n, b.Size())
	first, second := b.window(b.front, int(n))
	memops.Destruct(first)
	memops.Destruct(second)
	b.front += n
}

// Reserve ensures capacity for at least n elements.
func (b *Buffer[T, S]) Reserve(n S) error {
	assert.That(n <= storagekit.MaxSize[S](), "ring.Reserve", "capacity %d exceeds max size %d", n, storagekit.MaxSize[S]())
	if int(n) <= b.Cap() {
		return nil
	}
	return b.reallocate(int(n))
}

// ShrinkToFit releases unused capacity when the shrink policy allows it.
// The window is rotated to the start of the buffer first.
func (b *Buffer[T, S]) ShrinkToFit() {
	if b.Strategy().Kind() == storage.KindFixed {
		return
	}
	c := S(b.Cap())
	newCap := growth.Shrink(b.Size(), c)
	if newCap == c {
		return
	}
	if b.Cap() > 0 {
		b.rotate(0)
	}
	if err := b.storage().Reallocate(int(newCap), b.Len(), nil); err != nil {
		panic(err)
	}
}

// Clear destroys every element. The capacity is kept.
func (b *Buffer[T, S]) Clear() {
	b.PopFrontN(b.Size())
	b.front, b.back = 0, 0
}

// Release destroys every element and frees the storage.
func (b *Buffer[T, S]) Release() {
	b.Clear()
	b.storage().Release()
}

// IndexOf returns the logical index of the first element equal to x, or
// storagekit.Invalid[S]().
func (b *Buffer[T, S]) IndexOf(x T) S {
	first, second := b.Window()
	for i := range first {
		if memops.CompareOne(&first[i], &x) {
			return S(i)
		}
	}
	for i := range second {
		if memops.CompareOne(&second[i], &x) {
			return S(len(first) + i)
		}
	}
	return storagekit.Invalid[S]()
}

// Equal reports whether b and o hold equal elements in the same logical
// order, regardless of physical layout.
func (b *Buffer[T, S]) Equal(o *Buffer[T, S]) bool {
	if b.Size() != o.Size() {
		return false
	}
	x1, x2 := b.Window()
	y1, y2 := o.Window()
	equal := true
	zip(x1, x2, y1, y2, func(x, y []T) {
		equal = equal && memops.Compare(x, y)
	})
	return equal
}

// CopyFrom replaces the contents of b with copies of o's elements.
func (b *Buffer[T, S]) CopyFrom(o *Buffer[T, S]) {
	if b == o {
		return
	}
	b.Clear()
	d1, d2 := b.exposeBack("ring.CopyFrom", o.Size())
	s1, s2 := o.Window()
	zip(d1, d2, s1, s2, memops.Copy[T])
}

// MoveFrom moves o's elements into b. o is left empty with its storage
// released.
func (b *Buffer[T, S]) MoveFrom(o *Buffer[T, S]) {
	if b == o {
		return
	}
	b.Release()
	if storage.Swap(b.storage(), o.storage()) {
		b.front, b.back = o.front, o.back
		o.front, o.back = 0, 0
		return
	}
	d1, d2 := b.exposeBack("ring.MoveFrom", o.Size())
	s1, s2 := o.Window()
	zip(d1, d2, s1, s2, memops.Move[T])
	o.front, o.back = 0, 0
	o.storage().Release()
}

// Clone returns a deep copy on a new storage of the same strategy.
func (b *Buffer[T, S]) Clone() *Buffer[T, S] {
	c := New[T, S](b.Strategy())
	c.CopyFrom(b)
	return c
}

// zip calls fn on aligned chunks of the two-part sequences (d1, d2) and
// (s1, s2), which must have the same total length.
func zip[T any](d1, d2, s1, s2 []T, fn func(dst, src []T)) {
	dst := [2][]T{d1, d2}
	src := [2][]T{s1, s2}
	di, si := 0, 0
	for di < 2 && si < 2 {
		switch {
		case len(dst[di]) == 0:
			di++
		case len(src[si]) == 0:
			si++
		default:
			n := min(len(dst[di]), len(src[si]))
			fn(dst[di][:n], src[si][:n])
			dst[di] = dst[di][n:]
			src[si] = src[si][n:]
		}
	}
}

func sizeOf[S storagekit.Size](op string, n int) S {
	assert.That(n <= storagekit.MaxLen[S](), op, "count %d exceeds max size %d", n, storagekit.MaxSize[S]())
	return S(n)
}
