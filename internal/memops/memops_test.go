package memops

import (
	"testing"

	"github.com/hupe1980/storagekit/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(s []testutil.Tracked) []int {
	out := make([]int, len(s))
	for i := range s {
		out[i] = s[i].Value
	}
	return out
}

func liveRange(from, to int) []testutil.Tracked {
	out := make([]testutil.Tracked, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, testutil.Live(i))
	}
	return out
}

func TestConstruct(t *testing.T) {
	t.Run("hooked", func(t *testing.T) {
		testutil.ResetCounters()
		s := []testutil.Tracked{{Value: 9, State: testutil.Destroyed}, {}, {}}
		Construct(s)
		assert.Equal(t, int64(3), testutil.Counts().Inits)
		for _, e := range s {
			assert.Equal(t, testutil.Alive, e.State)
			assert.Equal(t, -1, e.Value)
		}
	})

	t.Run("trivial zero fills", func(t *testing.T) {
		s := []testutil.Plain{{1, 2}, {3, 4}}
		Construct(s)
		assert.Equal(t, []testutil.Plain{{}, {}}, s)
	})

	t.Run("one", func(t *testing.T) {
		testutil.ResetCounters()
		var e testutil.Tracked
		ConstructOne(&e)
		assert.Equal(t, testutil.Alive, e.State)
		assert.Equal(t, int64(1), testutil.Counts().Inits)

		p := testutil.Plain{A: 5}
		ConstructOne(&p)
		assert.Equal(t, testutil.Plain{}, p)
	})
}

func TestDestruct(t *testing.T) {
	testutil.ResetCounters()
	s := liveRange(0, 4)
	Destruct(s)
	assert.Equal(t, int64(4), testutil.Counts().Destroys)
	for _, e := range s {
		assert.Equal(t, testutil.Destroyed, e.State)
	}

	x := 1
	h := []testutil.Handle{{P: &x, N: 1}}
	Destruct(h)
	assert.Nil(t, h[0].P, "pointer slots are cleared")

	p := []testutil.Plain{{1, 2}}
	Destruct(p)
	assert.Equal(t, testutil.Plain{A: 1, B: 2}, p[0], "trivial destruct is a no-op")

	var one testutil.Tracked
	DestructOne(&one)
	assert.Equal(t, testutil.Destroyed, one.State)
}

func TestCopy(t *testing.T) {
	t.Run("hooked", func(t *testing.T) {
		testutil.ResetCounters()
		src := liveRange(0, 3)
		dst := make([]testutil.Tracked, 3)
		Copy(dst, src)
		assert.Equal(t, []int{0, 1, 2}, values(dst))
		assert.Equal(t, int64(3), testutil.Counts().Clones)
	})

	t.Run("same slice is a no-op", func(t *testing.T) {
		testutil.ResetCounters()
		s := liveRange(0, 3)
		Copy(s, s)
		assert.Zero(t, testutil.Counts().Clones)
	})

	t.Run("raw", func(t *testing.T) {
		src := []int{1, 2, 3}
		dst := make([]int, 3)
		Copy(dst, src)
		assert.Equal(t, src, dst)
	})

	t.Run("one", func(t *testing.T) {
		testutil.ResetCounters()
		a, b := testutil.Live(4), testutil.Tracked{}
		CopyOne(&b, &a)
		assert.Equal(t, 4, b.Value)
		assert.Equal(t, int64(1), testutil.Counts().Clones)
	})

	t.Run("length mismatch", func(t *testing.T) {
		assert.Panics(t, func() { Copy(make([]int, 2), make([]int, 3)) })
	})
}

func TestFill(t *testing.T) {
	testutil.ResetCounters()
	dst := make([]testutil.Tracked, 3)
	Fill(dst, testutil.Live(8))
	assert.Equal(t, []int{8, 8, 8}, values(dst))
	assert.Equal(t, int64(3), testutil.Counts().Clones)

	ints := make([]int, 4)
	Fill(ints, 3)
	assert.Equal(t, []int{3, 3, 3, 3}, ints)
}

func TestMove_Overlap(t *testing.T) {
	t.Run("dst before src ascends", func(t *testing.T) {
		testutil.ResetCounters()
		buf := liveRange(0, 6)
		Move(buf[0:4], buf[2:6])
		assert.Equal(t, []int{2, 3, 4, 5}, values(buf[:4]))
		// slots 4 and 5 were vacated and destroyed after the move
		assert.Equal(t, testutil.Destroyed, buf[4].State)
		assert.Equal(t, testutil.Destroyed, buf[5].State)
		for _, e := range buf[:4] {
			assert.Equal(t, testutil.Alive, e.State)
		}
		c := testutil.Counts()
		assert.Equal(t, int64(4), c.Moves)
		assert.Equal(t, int64(4), c.Destroys)
	})

	t.Run("dst after src descends", func(t *testing.T) {
		buf := liveRange(0, 6)
		Move(buf[2:6], buf[0:4])
		assert.Equal(t, []int{0, 1, 2, 3}, values(buf[2:]))
		assert.Equal(t, testutil.Destroyed, buf[0].State)
		assert.Equal(t, testutil.Destroyed, buf[1].State)
		for _, e := range buf[2:] {
			assert.Equal(t, testutil.Alive, e.State)
		}
	})

	t.Run("raw overlap", func(t *testing.T) {
		buf := []int{0, 1, 2, 3, 4, 5}
		Move(buf[1:6], buf[0:5])
		assert.Equal(t, []int{0, 0, 1, 2, 3, 4}, buf)

		buf = []int{0, 1, 2, 3, 4, 5}
		Move(buf[0:5], buf[1:6])
		assert.Equal(t, []int{1, 2, 3, 4, 5, 5}, buf)
	})

	t.Run("raw pointers clear vacated slots", func(t *testing.T) {
		xs := []int{0, 1, 2, 3}
		buf := []testutil.Handle{{P: &xs[0]}, {P: &xs[1]}, {P: &xs[2]}, {P: &xs[3]}}
		Move(buf[0:3], buf[1:4])
		assert.Same(t, &xs[1], buf[0].P)
		assert.Same(t, &xs[3], buf[2].P)
		assert.Nil(t, buf[3].P)

		buf = []testutil.Handle{{P: &xs[0]}, {P: &xs[1]}, {P: &xs[2]}, {P: &xs[3]}}
		Move(buf[2:4], buf[0:2])
		assert.Nil(t, buf[0].P)
		assert.Nil(t, buf[1].P)
		assert.Same(t, &xs[0], buf[2].P)
	})

	t.Run("disjoint", func(t *testing.T) {
		src := liveRange(0, 3)
		dst := make([]testutil.Tracked, 3)
		Move(dst, src)
		assert.Equal(t, []int{0, 1, 2}, values(dst))
	})
}

func TestMoveAssign(t *testing.T) {
	testutil.ResetCounters()
	dst := liveRange(10, 13)
	src := liveRange(0, 3)
	MoveAssign(dst, src)
	assert.Equal(t, []int{0, 1, 2}, values(dst))
	assert.Equal(t, int64(3), testutil.Counts().Moves)
	assert.Equal(t, int64(3), testutil.Counts().Destroys)
}

func TestMoveOne(t *testing.T) {
	a := testutil.Live(1)
	var b testutil.Tracked
	MoveOne(&b, &a)
	assert.Equal(t, 1, b.Value)
	assert.Equal(t, testutil.Destroyed, a.State)

	x := 3
	h := testutil.Handle{P: &x}
	var g testutil.Handle
	MoveOne(&g, &h)
	assert.Same(t, &x, g.P)
	assert.Nil(t, h.P)
}

func TestSwap(t *testing.T) {
	a, b := testutil.Live(1), testutil.Live(2)
	Swap(&a, &b)
	assert.Equal(t, 2, a.Value)
	assert.Equal(t, 1, b.Value)
	assert.Equal(t, testutil.Alive, a.State)
	assert.Equal(t, testutil.Alive, b.State)

	x, y := 1, 2
	Swap(&x, &y)
	assert.Equal(t, []int{2, 1}, []int{x, y})
}

func TestCompare(t *testing.T) {
	t.Run("raw", func(t *testing.T) {
		assert.True(t, Compare([]int{1, 2}, []int{1, 2}))
		assert.False(t, Compare([]int{1, 2}, []int{1, 3}))
		assert.False(t, Compare([]int{1}, []int{1, 2}))
		assert.True(t, Compare[int](nil, nil))
	})

	t.Run("hooked", func(t *testing.T) {
		testutil.ResetCounters()
		a := []testutil.Tracked{{Value: 1}, {Value: 2}}
		b := []testutil.Tracked{{Value: 1, State: testutil.Alive}, {Value: 2}}
		assert.True(t, Compare(a, b), "Equal ignores State")
		assert.Equal(t, int64(2), testutil.Counts().Compares)
	})

	t.Run("floats use ==", func(t *testing.T) {
		assert.True(t, Compare([]float64{0}, []float64{negZero()}))
		assert.True(t, Compare([]testutil.Ratio{{1, 2}}, []testutil.Ratio{{1, 2}}))
	})

	t.Run("padded compares fields", func(t *testing.T) {
		a := testutil.Padded{A: 1, B: 2}
		b := testutil.Padded{A: 1, B: 2}
		assert.True(t, CompareOne(&a, &b))
	})

	t.Run("strings by content", func(t *testing.T) {
		a := []string{"ab" + suffix()}
		b := []string{"abc"}
		assert.True(t, Compare(a, b))
	})

	t.Run("not comparable", func(t *testing.T) {
		assert.True(t, Compare([][]int{{1, 2}}, [][]int{{1, 2}}))
		assert.False(t, Compare([][]int{{1, 2}}, [][]int{{2}}))
	})

	t.Run("one raw", func(t *testing.T) {
		a, b := testutil.Plain{A: 1}, testutil.Plain{A: 1}
		assert.True(t, CompareOne(&a, &b))
		b.B = 9
		assert.False(t, CompareOne(&a, &b))
	})
}

func negZero() float64 {
	z := 0.0
	return -z
}

func suffix() string { return "c" }

func TestConvert(t *testing.T) {
	t.Run("raw", func(t *testing.T) {
		src := []int64{-1, 2}
		dst := make([]uint64, 2)
		Convert(dst, src, func(int64) uint64 {
			require.FailNow(t, "conversion must not be called")
			return 0
		})
		assert.Equal(t, []uint64{^uint64(0), 2}, dst)
	})

	t.Run("converted", func(t *testing.T) {
		src := []int32{1, 2}
		dst := make([]int64, 2)
		Convert(dst, src, func(v int32) int64 { return int64(v) * 10 })
		assert.Equal(t, []int64{10, 20}, dst)
	})
}
