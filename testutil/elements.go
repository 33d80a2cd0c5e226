package testutil

import (
	"sync/atomic"
)

// Counters records the per-element operations performed on Tracked values.
type Counters struct {
	Inits    int64
	Destroys int64
	Clones   int64
	Moves    int64
	Compares int64
}

var counters struct {
	inits, destroys, clones, moves, compares atomic.Int64
}

// ResetCounters zeroes the global counters.
func ResetCounters() {
	counters.inits.Store(0)
	counters.destroys.Store(0)
	counters.clones.Store(0)
	counters.moves.Store(0)
	counters.compares.Store(0)
}

// Counts returns a snapshot of the global counters.
func Counts() Counters {
	return Counters{
		Inits:    counters.inits.Load(),
		Destroys: counters.destroys.Load(),
		Clones:   counters.clones.Load(),
		Moves:    counters.moves.Load(),
		Compares: counters.compares.Load(),
	}
}

// State is the lifecycle state of a Tracked slot.
type State uint8

const (
	// Raw is the state of zeroed, never constructed memory.
	Raw State = iota
	Alive
	MovedFrom
	Destroyed
)

// Tracked implements every per-element hook and counts each call.
type Tracked struct {
	Value int
	State State
}

// Live returns an alive Tracked holding v without touching the counters.
func Live(v int) Tracked {
	return Tracked{Value: v, State: Alive}
}

func (t *Tracked) Init() {
	counters.inits.Add(1)
	t.Value = -1
	t.State = Alive
}

func (t *Tracked) Destroy() {
	counters.destroys.Add(1)
	t.State = Destroyed
}

func (t *Tracked) Clone() Tracked {
	counters.clones.Add(1)
	return Tracked{Value: t.Value, State: Alive}
}

func (t *Tracked) MoveFrom(src *Tracked) {
	counters.moves.Add(1)
	t.Value = src.Value
	t.State = Alive
	src.State = MovedFrom
}

func (t *Tracked) Equal(other Tracked) bool {
	counters.compares.Add(1)
	return t.Value == other.Value
}

// Plain is a trivially copyable, bytewise comparable type.
type Plain struct {
	A int32
	B int32
}

// Padded is trivially copyable but has padding, so equality is per field.
type Padded struct {
	A int8
	B int64
}

// Handle holds a pointer; it is trivial but must live on the GC heap.
type Handle struct {
	P *int
	N int
}

// Ratio holds floats, which are never compared bytewise.
type Ratio struct {
	Num, Den float64
}
