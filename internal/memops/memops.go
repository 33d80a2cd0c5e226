package memops

import (
	"bytes"
	"reflect"
	"unsafe"

	"github.com/hupe1980/storagekit/internal/assert"
	"github.com/hupe1980/storagekit/traits"
)

// Construct default-constructs every element of s in order.
func Construct[T any](s []T) {
	if !traits.Of[T]().NeedsConstruct {
		clear(s)
		return
	}
	var zero T
	for i := range s {
		s[i] = zero
		any(&s[i]).(traits.Initializer).Init()
	}
}

// ConstructOne default-constructs *p.
func ConstructOne[T any](p *T) {
	var zero T
	*p = zero
	if traits.Of[T]().NeedsConstruct {
		any(p).(traits.Initializer).Init()
	}
}

// Destruct destroys every element of s in order.
func Destruct[T any](s []T) {
	tr := traits.Of[T]()
	if tr.NeedsDestruct {
		for i := range s {
			any(&s[i]).(traits.Destroyer).Destroy()
		}
	}
	if tr.HasPointers {
		clear(s)
	}
}

// DestructOne destroys *p.
func DestructOne[T any](p *T) {
	tr := traits.Of[T]()
	if tr.NeedsDestruct {
		any(p).(traits.Destroyer).Destroy()
	}
	if tr.HasPointers {
		var zero T
		*p = zero
	}
}

// Copy copy-constructs src into dst. The slices must have equal length.
func Copy[T any](dst, src []T) {
	assert.That(len(dst) == len(src), "memops.Copy", "length mismatch %d != %d", len(dst), len(src))
	if len(src) == 0 || same(dst, src) {
		return
	}
	if !traits.Of[T]().NeedsCopy {
		copy(dst, src)
		return
	}
	for i := range src {
		dst[i] = any(&src[i]).(traits.Cloner[T]).Clone()
	}
}

// CopyOne copy-constructs *src into *dst.
func CopyOne[T any](dst, src *T) {
	if dst == src {
		return
	}
	if traits.Of[T]().NeedsCopy {
		*dst = any(src).(traits.Cloner[T]).Clone()
		return
	}
	*dst = *src
}

// Fill copy-constructs v into every slot of dst.
func Fill[T any](dst []T, v T) {
	if !traits.Of[T]().NeedsCopy {
		for i := range dst {
			dst[i] = v
		}
		return
	}
	c := any(&v).(traits.Cloner[T])
	for i := range dst {
		dst[i] = c.Clone()
	}
}

// Move move-constructs src into dst. The ranges may overlap; iteration runs
// ascending when dst precedes src and descending otherwise, so every source
// slot is consumed before it is overwritten.
func Move[T any](dst, src []T) {
	move(dst, src, false)
}

// MoveAssign is Move with assignment into live destination slots.
func MoveAssign[T any](dst, src []T) {
	move(dst, src, true)
}

func move[T any](dst, src []T, assign bool) {
	assert.That(len(dst) == len(src), "memops.Move", "length mismatch %d != %d", len(dst), len(src))
	if len(src) == 0 || same(dst, src) {
		return
	}
	tr := traits.Of[T]()
	if !tr.NeedsMove {
		copy(dst, src)
		if tr.HasPointers {
			clear(uncovered(dst, src, tr.Size))
		}
		return
	}
	if addr(dst) < addr(src) {
		for i := 0; i < len(src); i++ {
			moveOne(&dst[i], &src[i], tr, assign)
		}
		return
	}
	for i := len(src) - 1; i >= 0; i-- {
		moveOne(&dst[i], &src[i], tr, assign)
	}
}

// MoveOne move-constructs *src into *dst.
func MoveOne[T any](dst, src *T) {
	if dst == src {
		return
	}
	moveOne(dst, src, traits.Of[T](), false)
}

func moveOne[T any](dst, src *T, tr traits.Traits, assign bool) {
	if !tr.NeedsMove {
		*dst = *src
		if tr.HasPointers {
			var zero T
			*src = zero
		}
		return
	}
	if !assign {
		var zero T
		*dst = zero
	}
	any(dst).(traits.Mover[T]).MoveFrom(src)
	if tr.NeedsDestructAfterMove {
		any(src).(traits.Destroyer).Destroy()
	}
	if tr.HasPointers {
		var zero T
		*src = zero
	}
}

// Swap exchanges *a and *b.
func Swap[T any](a, b *T) {
	if a == b {
		return
	}
	if !traits.Of[T]().NeedsMove {
		*a, *b = *b, *a
		return
	}
	var tmp T
	MoveOne(&tmp, a)
	MoveOne(a, b)
	MoveOne(b, &tmp)
}

// Compare reports whether a and b hold equal elements.
func Compare[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	tr := traits.Of[T]()
	if !tr.NeedsCompare {
		return bytes.Equal(rawBytes(a, tr.Size), rawBytes(b, tr.Size))
	}
	for i := range a {
		if !compareOne(&a[i], &b[i], tr) {
			return false
		}
	}
	return true
}

// CompareOne reports whether *a equals *b.
func CompareOne[T any](a, b *T) bool {
	tr := traits.Of[T]()
	if !tr.NeedsCompare {
		return bytes.Equal(rawBytes(unsafe.Slice(a, 1), tr.Size), rawBytes(unsafe.Slice(b, 1), tr.Size))
	}
	return compareOne(a, b, tr)
}

func compareOne[T any](a, b *T, tr traits.Traits) bool {
	if e, ok := any(a).(traits.Equaler[T]); ok {
		return e.Equal(*b)
	}
	if tr.Comparable {
		return any(*a) == any(*b)
	}
	return reflect.DeepEqual(*a, *b)
}

// Convert copies src into dst, as raw bytes when the pair allows it and
// through conv otherwise.
func Convert[D, S any](dst []D, src []S, conv func(S) D) {
	assert.That(len(dst) == len(src), "memops.Convert", "length mismatch %d != %d", len(dst), len(src))
	if len(src) == 0 {
		return
	}
	p := traits.PairOf[D, S]()
	if p.Raw {
		copy(rawBytes(dst, p.Dst.Size), rawBytes(src, p.Src.Size))
		return
	}
	for i := range src {
		dst[i] = conv(src[i])
	}
}

func rawBytes[T any](s []T, size uintptr) []byte {
	if len(s) == 0 || size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), uintptr(len(s))*size)
}

func addr[T any](s []T) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))
}

func same[T any](a, b []T) bool {
	return unsafe.SliceData(a) == unsafe.SliceData(b)
}

// uncovered returns the part of src that dst did not overwrite.
func uncovered[T any](dst, src []T, size uintptr) []T {
	if size == 0 {
		return nil
	}
	n := len(src)
	d, s := addr(dst), addr(src)
	if s > d {
		k := int((s - d) / size)
		if k >= n {
			return src
		}
		return src[n-k:]
	}
	k := int((d - s) / size)
	if k >= n {
		return src
	}
	return src[:k]
}
