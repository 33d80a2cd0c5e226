package traits

import (
	"reflect"
	"sync"
)

// Initializer is implemented by types whose construction is not zero-fill.
type Initializer interface {
	Init()
}

// Destroyer is implemented by types that must release something on destruction.
type Destroyer interface {
	Destroy()
}

// Cloner is implemented by types whose copy is deeper than a byte copy.
type Cloner[T any] interface {
	Clone() T
}

// Mover is implemented by types that cannot be relocated by memmove.
// MoveFrom leaves src in a destructible state.
type Mover[T any] interface {
	MoveFrom(src *T)
}

// Equaler is implemented by types with their own notion of equality.
type Equaler[T any] interface {
	Equal(other T) bool
}

// Traits is the capability descriptor of one element type.
type Traits struct {
	Type reflect.Type
	Size uintptr

	NeedsConstruct         bool
	NeedsDestruct          bool
	NeedsCopy              bool
	NeedsAssign            bool
	NeedsMove              bool
	NeedsMoveAssign        bool
	NeedsDestructAfterMove bool
	NeedsCompare           bool

	// BulkReallocatable reports that a block of live elements may be
	// relocated by a raw reallocation instead of move+destroy.
	BulkReallocatable bool

	// HasPointers reports that the garbage collector must see the memory.
	// Raw (off-heap) allocators refuse such types.
	HasPointers bool

	// Comparable reports that == is defined on the type.
	Comparable bool
}

// Trivial reports whether every operation may be done on raw memory.
func (t Traits) Trivial() bool {
	return !t.NeedsConstruct && !t.NeedsDestruct && !t.NeedsCopy && !t.NeedsMove && !t.NeedsCompare
}

var cache sync.Map // reflect.Type -> Traits

// Of returns the capability descriptor of T. The result is computed once per
// type and is safe to request concurrently.
func Of[T any]() Traits {
	rt := reflect.TypeFor[T]()
	if v, ok := cache.Load(rt); ok {
		return v.(Traits)
	}
	t := compute[T](rt)
	cache.Store(rt, t)
	return t
}

func compute[T any](rt reflect.Type) Traits {
	p := any((*T)(nil))
	_, construct := p.(Initializer)
	_, destruct := p.(Destroyer)
	_, cloner := p.(Cloner[T])
	_, mover := p.(Mover[T])
	_, equaler := p.(Equaler[T])

	return Traits{
		Type:                   rt,
		Size:                   rt.Size(),
		NeedsConstruct:         construct,
		NeedsDestruct:          destruct,
		NeedsCopy:              cloner,
		NeedsAssign:            cloner,
		NeedsMove:              mover,
		NeedsMoveAssign:        mover,
		NeedsDestructAfterMove: mover && destruct,
		NeedsCompare:           equaler || !bytewise(rt),
		BulkReallocatable:      !mover,
		HasPointers:            hasPointers(rt),
		Comparable:             rt.Comparable(),
	}
}

// hasPointers reports whether values of t contain memory the GC must scan.
func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
	}
	return false
}

// bytewise reports whether == on t is exactly equality of its bytes.
func bytewise(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return true
	case reflect.Array:
		return t.Len() == 0 || bytewise(t.Elem())
	case reflect.Struct:
		var sum uintptr
		for i := range t.NumField() {
			f := t.Field(i)
			if f.Name == "_" || !bytewise(f.Type) {
				return false
			}
			sum += f.Type.Size()
		}
		// padding bytes are unspecified
		return sum == t.Size()
	}
	return false
}

// HasPointers reports whether values of t contain memory the garbage
// collector must scan. Allocators use it to refuse off-heap placement.
func HasPointers(t reflect.Type) bool {
	return hasPointers(t)
}
