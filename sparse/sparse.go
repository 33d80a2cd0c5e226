package sparse

import (
	"iter"

	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/internal/assert"
	"github.com/hupe1980/storagekit/internal/bitset"
	"github.com/hupe1980/storagekit/internal/growth"
	"github.com/hupe1980/storagekit/internal/memops"
	"github.com/hupe1980/storagekit/storage"
	"github.com/hupe1980/storagekit/traits"
)

// slot holds either a live value or free-list links; the occupancy bit
// says which. The inactive field is never read.
type slot[T any, S storagekit.Size] struct {
	value      T
	prev, next S
}

// Array is a sparse slot array. The zero value is an empty array on heap
// storage.
type Array[T any, S storagekit.Size] struct {
	slots storage.Storage[slot[T, S]]
	bits  storage.Storage[uint64]

	freeHead S
	holes    S
	sparse   S
}

// New returns an empty array on new storages of strategy s.
func New[T any, S storagekit.Size](s storage.Strategy) *Array[T, S] {
	a := &Array[T, S]{
		slots:    storage.New[slot[T, S]](s),
		bits:     storage.New[uint64](s.WithInline(int(bitset.WordsFor(uint64(s.Inline()))))),
		freeHead: storagekit.Invalid[S](),
	}
	assert.That(a.slots.Cap() <= storagekit.MaxLen[S](), "sparse.New", "capacity %d exceeds max size %d", a.slots.Cap(), storagekit.MaxSize[S]())
	return a
}

func (a *Array[T, S]) init() {
	if a.slots == nil {
		a.slots = storage.NewHeap[slot[T, S]](nil)
		a.bits = storage.NewHeap[uint64](nil)
		a.freeHead = storagekit.Invalid[S]()
	}
}

func (a *Array[T, S]) data() []slot[T, S] {
	a.init()
	return a.slots.Data()
}

func (a *Array[T, S]) words() []uint64 {
	a.init()
	return a.bits.Data()
}

// Strategy returns the storage strategy.
func (a *Array[T, S]) Strategy() storage.Strategy {
	a.init()
	return a.slots.Strategy()
}

// Len returns the number of live elements.
func (a *Array[T, S]) Len() int { return int(a.sparse - a.holes) }

// SparseLen returns one past the highest slot index in use.
func (a *Array[T, S]) SparseLen() int { return int(a.sparse) }

// Holes returns the number of free slots below SparseLen.
func (a *Array[T, S]) Holes() int { return int(a.holes) }

// FreeHead returns the slot the next Insert reuses, or Invalid[S]() if
// there are no holes.
func (a *Array[T, S]) FreeHead() S {
	if a.holes == 0 {
		return storagekit.Invalid[S]()
	}
	return a.freeHead
}

// Cap returns the number of slots.
func (a *Array[T, S]) Cap() int {
	a.init()
	return a.slots.Cap()
}

// Has reports whether slot i holds a live element.
func (a *Array[T, S]) Has(i S) bool {
	return i < a.sparse && bitset.Test(a.words(), uint64(i))
}

func (a *Array[T, S]) checkLive(op string, i S) {
	if assert.Enabled && !a.Has(i) {
		assert.Fail(op, "slot %d is not live", i)
	}
}

// Get returns the element in slot i.
func (a *Array[T, S]) Get(i S) T {
	a.checkLive("sparse.Get", i)
	return a.data()[i].value
}

// Ptr returns a pointer to the element in slot i. It is invalidated by any
// operation that reallocates.
func (a *Array[T, S]) Ptr(i S) *T {
	a.checkLive("sparse.Ptr", i)
	return &a.data()[i].value
}

// Set replaces the element in slot i with a copy of x.
func (a *Array[T, S]) Set(i S, x T) {
	p := a.Ptr(i)
	memops.DestructOne(p)
	memops.CopyOne(p, &x)
}

// Insert stores a copy of x in the most recently freed slot, or in a new
// slot when there are no holes. It returns the slot index and a pointer to
// the stored element.
func (a *Array[T, S]) Insert(x T) (S, *T) {
	i := a.claim("sparse.Insert")
	p := &a.data()[i].value
	memops.CopyOne(p, &x)
	return i, p
}

// InsertDefault is Insert with a default-constructed element.
func (a *Array[T, S]) InsertDefault() (S, *T) {
	i := a.claim("sparse.InsertDefault")
	p := &a.data()[i].value
	memops.ConstructOne(p)
	return i, p
}

func (a *Array[T, S]) claim(op string) S {
	a.init()
	if a.holes > 0 {
		i := a.freeHead
		a.unlink(i)
		bitset.Set(a.words(), uint64(i))
		return i
	}
	assert.That(a.sparse < storagekit.MaxSize[S](), op, "slot count overflows")
	i := a.sparse
	a.reserveFor(i + 1)
	a.sparse++
	bitset.Set(a.words(), uint64(i))
	return i
}

// InsertAt stores a copy of x in slot i, which must not be live. Slots
// between SparseLen and i become holes.
func (a *Array[T, S]) InsertAt(i S, x T) *T {
	a.init()
	assert.That(i < storagekit.MaxSize[S](), "sparse.InsertAt", "slot %d out of range", i)
	if i < a.sparse {
		assert.That(!a.Has(i), "sparse.InsertAt", "slot %d is live", i)
		a.unlink(i)
	} else {
		a.reserveFor(i + 1)
		for j := a.sparse; j < i; j++ {
			a.pushFree(j)
		}
		a.sparse = i + 1
	}
	bitset.Set(a.words(), uint64(i))
	p := &a.data()[i].value
	memops.CopyOne(p, &x)
	return p
}

// Remove destroys the element in slot i and makes the slot the head of
// the free list.
func (a *Array[T, S]) Remove(i S) {
	a.checkLive("sparse.Remove", i)
	memops.DestructOne(&a.data()[i].value)
	a.free(i)
}

// Take removes the element in slot i and returns it.
func (a *Array[T, S]) Take(i S) T {
	a.checkLive("sparse.Take", i)
	var out T
	memops.MoveOne(&out, &a.data()[i].value)
	a.free(i)
	return out
}

func (a *Array[T, S]) free(i S) {
	bitset.Unset(a.words(), uint64(i))
	a.pushFree(i)
}

func (a *Array[T, S]) pushFree(i S) {
	d := a.data()
	none := storagekit.Invalid[S]()
	d[i].prev = none
	d[i].next = none
	if a.holes > 0 {
		d[i].next = a.freeHead
		d[a.freeHead].prev = i
	}
	a.freeHead = i
	a.holes++
}

// unlink removes free slot i from anywhere in the free list.
func (a *Array[T, S]) unlink(i S) {
	d := a.data()
	none := storagekit.Invalid[S]()
	prev, next := d[i].prev, d[i].next
	if prev != none {
		d[prev].next = next
	} else {
		a.freeHead = next
	}
	if next != none {
		d[next].prev = prev
	}
	a.holes--
	if a.holes == 0 {
		a.freeHead = none
	}
}

func (a *Array[T, S]) reserveFor(n S) {
	c := a.slots.Cap()
	if int(n) <= c {
		return
	}
	if err := a.reallocate(int(growth.Grow(n, S(c)))); err != nil {
		panic(err)
	}
}

// reallocate resizes both storages. Occupancy words grow before and
// shrink after the slots, so every slot always has a bit.
func (a *Array[T, S]) reallocate(newCap int) error {
	if a.slots.Strategy().Kind() == storage.KindFixed {
		assert.That(newCap <= a.slots.Cap(), "storage.Fixed.Reallocate", "fixed capacity %d exceeded by %d", a.slots.Cap(), newCap)
	}
	liveWords := int(bitset.WordsFor(uint64(a.sparse)))
	if words := int(bitset.WordsFor(uint64(newCap))); words > a.bits.Cap() {
		if err := a.bits.Reallocate(words, liveWords, nil); err != nil {
			return err
		}
		clear(a.bits.Data()[liveWords:])
	}

	var move storage.MoveFunc[slot[T, S]]
	if !traits.Of[T]().BulkReallocatable {
		move = a.relocate
	}
	if err := a.slots.Reallocate(newCap, int(a.sparse), move); err != nil {
		return err
	}

	if words := int(bitset.WordsFor(uint64(a.slots.Cap()))); words < a.bits.Cap() {
		if err := a.bits.Reallocate(words, liveWords, nil); err != nil {
			return err
		}
		clear(a.bits.Data()[liveWords:])
	}
	return nil
}

// relocate moves slots between buffers: live values with their element
// move, free slots as plain links.
func (a *Array[T, S]) relocate(dst, src []slot[T, S]) {
	w := a.words()
	for i := range src {
		if bitset.Test(w, uint64(i)) {
			memops.MoveOne(&dst[i].value, &src[i].value)
		} else {
			dst[i].prev, dst[i].next = src[i].prev, src[i].next
		}
	}
}

// Reserve ensures capacity for at least n slots.
func (a *Array[T, S]) Reserve(n S) error {
	if int(n) <= a.Cap() {
		return nil
	}
	return a.reallocate(int(n))
}

// ShrinkToFit drops free slots at the end and releases unused capacity
// when the shrink policy allows it. Live slots keep their indices.
func (a *Array[T, S]) ShrinkToFit() {
	a.init()
	last, ok := bitset.PrevSet(a.words(), uint64(a.sparse))
	newSparse := S(0)
	if ok {
		newSparse = S(last + 1)
	}
	for j := newSparse; j < a.sparse; j++ {
		a.unlink(j)
	}
	a.sparse = newSparse

	if a.slots.Strategy().Kind() == storage.KindFixed {
		return
	}
	c := S(a.slots.Cap())
	if newCap := growth.Shrink(a.sparse, c); newCap != c {
		if err := a.reallocate(int(newCap)); err != nil {
			panic(err)
		}
	}
}

// Clear destroys every element and forgets all holes. The capacity is kept.
func (a *Array[T, S]) Clear() {
	a.init()
	d, w := a.data(), a.words()
	for i, ok := bitset.NextSet(w, 0, uint64(a.sparse)); ok; i, ok = bitset.NextSet(w, i+1, uint64(a.sparse)) {
		memops.DestructOne(&d[i].value)
	}
	clear(w[:bitset.WordsFor(uint64(a.sparse))])
	a.sparse, a.holes = 0, 0
	a.freeHead = storagekit.Invalid[S]()
}

// Release destroys every element and frees both storages.
func (a *Array[T, S]) Release() {
	a.Clear()
	a.slots.Release()
	a.bits.Release()
}

// All iterates the live elements in slot order.
func (a *Array[T, S]) All() iter.Seq2[S, T] {
	return func(yield func(S, T) bool) {
		limit := uint64(a.sparse)
		for i, ok := bitset.NextSet(a.words(), 0, limit); ok; i, ok = bitset.NextSet(a.words(), i+1, limit) {
			if !yield(S(i), a.data()[i].value) {
				return
			}
		}
	}
}

// Indices iterates the live slot indices in order.
func (a *Array[T, S]) Indices() iter.Seq[S] {
	return func(yield func(S) bool) {
		for i := range a.All() {
			if !yield(i) {
				return
			}
		}
	}
}

// CopyFrom replaces the contents of a with copies of o's elements. Slot
// indices, holes and the free list order are preserved.
func (a *Array[T, S]) CopyFrom(o *Array[T, S]) {
	if a == o {
		return
	}
	a.Clear()
	a.adopt(o, memops.CopyOne[T])
}

// MoveFrom moves o's slots into a. o is left empty with its storages
// released.
func (a *Array[T, S]) MoveFrom(o *Array[T, S]) {
	if a == o {
		return
	}
	a.Release()
	o.init()
	if storage.Swap(a.slots, o.slots) {
		if storage.Swap(a.bits, o.bits) {
			a.freeHead, a.holes, a.sparse = o.freeHead, o.holes, o.sparse
			o.sparse, o.holes = 0, 0
			o.freeHead = storagekit.Invalid[S]()
			return
		}
		storage.Swap(a.slots, o.slots)
	}
	a.adopt(o, memops.MoveOne[T])
	o.forget()
	o.slots.Release()
	o.bits.Release()
}

// adopt transfers o's slots into the empty array a with transfer, keeping
// every index.
func (a *Array[T, S]) adopt(o *Array[T, S], transfer func(dst, src *T)) {
	o.init()
	if o.sparse == 0 {
		return
	}
	a.reserveFor(o.sparse)
	n := bitset.WordsFor(uint64(o.sparse))
	copy(a.words()[:n], o.words()[:n])

	dst, src := a.data(), o.data()
	w := o.words()
	for i := range uint64(o.sparse) {
		if bitset.Test(w, i) {
			transfer(&dst[i].value, &src[i].value)
		} else {
			dst[i].prev, dst[i].next = src[i].prev, src[i].next
		}
	}
	a.freeHead, a.holes, a.sparse = o.freeHead, o.holes, o.sparse
}

// forget resets the bookkeeping of an array whose slots were transferred.
func (a *Array[T, S]) forget() {
	clear(a.words()[:bitset.WordsFor(uint64(a.sparse))])
	a.sparse, a.holes = 0, 0
	a.freeHead = storagekit.Invalid[S]()
}

// Clone returns a deep copy on new storages of the same strategy.
func (a *Array[T, S]) Clone() *Array[T, S] {
	c := New[T, S](a.Strategy())
	c.CopyFrom(a)
	return c
}
