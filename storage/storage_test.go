package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/alloc"
	"github.com/hupe1980/storagekit/testutil"
)

func fillSeq(s []int) {
	for i := range s {
		s[i] = i + 1
	}
}

func TestStrategy(t *testing.T) {
	assert.Equal(t, "heap", HeapOnly(nil).String())
	assert.Equal(t, "fixed(8)", Fixed(8).String())
	assert.Equal(t, "hybrid(4)", Hybrid(4, nil).String())
	assert.Equal(t, alloc.Default, HeapOnly(nil).Allocator())
	assert.Equal(t, 3, Fixed(8).WithInline(3).Inline())
	assert.Equal(t, 0, HeapOnly(nil).WithInline(3).Inline())
}

func TestNew_InitialCapacity(t *testing.T) {
	assert.Equal(t, 0, New[int](HeapOnly(nil)).Cap())
	assert.Nil(t, New[int](HeapOnly(nil)).Data())
	assert.Equal(t, 8, New[int](Fixed(8)).Cap())
	assert.Equal(t, 4, New[int](Hybrid(4, nil)).Cap())
	assert.Equal(t, KindHybrid, New[int](Hybrid(4, nil)).Strategy().Kind())
}

func TestHeap_ReallocatePreservesLive(t *testing.T) {
	tr := alloc.NewTracker(nil)
	s := NewHeap[int](tr)

	require.NoError(t, s.Reallocate(4, 0, nil))
	fillSeq(s.Data())
	require.NoError(t, s.Reallocate(22, 3, nil))
	assert.Equal(t, 22, s.Cap())
	assert.Equal(t, []int{1, 2, 3}, s.Data()[:3])
	assert.Zero(t, s.Data()[3])

	require.NoError(t, s.Reallocate(22, 3, nil))
	st := tr.Stats()
	assert.Equal(t, uint64(2), st.Allocations)
	assert.Equal(t, uint64(1), st.Frees)

	s.Release()
	assert.Zero(t, s.Cap())
	assert.Zero(t, tr.Stats().LiveBlocks)
}

func TestHeap_NonTrivialElementsAreMoved(t *testing.T) {
	testutil.ResetCounters()
	s := NewHeap[testutil.Tracked](nil)
	require.NoError(t, s.Reallocate(4, 0, nil))
	d := s.Data()
	for i := range d {
		d[i] = testutil.Live(i)
	}
	old := d

	require.NoError(t, s.Reallocate(8, 4, nil))
	assert.Equal(t, int64(4), testutil.Counts().Moves)
	assert.Equal(t, int64(4), testutil.Counts().Destroys)
	for i := 0; i < 4; i++ {
		assert.Equal(t, testutil.Live(i), s.Data()[i])
		assert.Equal(t, testutil.Destroyed, old[i].State)
	}
}

func TestHeap_CustomMove(t *testing.T) {
	s := NewHeap[int](nil)
	require.NoError(t, s.Reallocate(4, 0, nil))
	fillSeq(s.Data())

	calls := 0
	require.NoError(t, s.Reallocate(8, 2, func(dst, src []int) {
		calls++
		for i := range src {
			dst[i] = src[i] * 10
		}
	}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []int{10, 20}, s.Data()[:2])
}

func TestHeap_AllocatorFailure(t *testing.T) {
	tr := alloc.NewTracker(nil, alloc.WithBudget(64))
	s := NewHeap[int64](tr)
	require.NoError(t, s.Reallocate(4, 0, nil))

	err := s.Reallocate(100, 4, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, alloc.ErrBudgetExceeded))
	assert.Equal(t, 4, s.Cap())
}

func TestHeap_PreconditionLiveBeyondCap(t *testing.T) {
	if !storagekit.ChecksEnabled {
		t.Skip("checks compiled out")
	}
	s := NewHeap[int](nil)
	assert.PanicsWithError(t, "storage.Heap.Reallocate: precondition violated: live count 5 exceeds new capacity 4", func() {
		_ = s.Reallocate(4, 5, nil)
	})
}

func TestFixed(t *testing.T) {
	var buf [6]int
	s := NewFixed(buf[:])
	assert.Equal(t, 6, s.Cap())
	assert.Equal(t, Fixed(6), s.Strategy())

	require.NoError(t, s.Reallocate(3, 2, nil))
	assert.Equal(t, 6, s.Cap())
	s.Data()[5] = 9
	assert.Equal(t, 9, buf[5])

	if storagekit.ChecksEnabled {
		assert.PanicsWithError(t, "storage.Fixed.Reallocate: precondition violated: fixed capacity 6 exceeded by 7", func() {
			_ = s.Reallocate(7, 6, nil)
		})
	}
	s.Release()
	assert.Equal(t, 6, s.Cap())
}

func TestHybrid_Transitions(t *testing.T) {
	tr := alloc.NewTracker(nil)
	var inline [4]int
	s := NewHybrid(inline[:], tr)
	require.True(t, s.IsInline())

	// inline -> inline
	require.NoError(t, s.Reallocate(2, 0, nil))
	assert.True(t, s.IsInline())
	assert.Equal(t, 4, s.Cap())
	fillSeq(s.Data())

	// inline -> heap
	require.NoError(t, s.Reallocate(10, 4, nil))
	assert.False(t, s.IsInline())
	assert.Equal(t, 10, s.Cap())
	assert.Equal(t, []int{1, 2, 3, 4}, s.Data()[:4])
	s.Data()[0] = 42

	// heap -> heap
	require.NoError(t, s.Reallocate(20, 4, nil))
	assert.Equal(t, 20, s.Cap())
	assert.Equal(t, []int{42, 2, 3, 4}, s.Data()[:4])

	// heap -> inline, clamped to N
	require.NoError(t, s.Reallocate(3, 3, nil))
	assert.True(t, s.IsInline())
	assert.Equal(t, 4, s.Cap())
	assert.Equal(t, []int{42, 2, 3}, inline[:3])

	st := tr.Stats()
	assert.Equal(t, uint64(2), st.Allocations)
	assert.Equal(t, uint64(2), st.Frees)
}

func TestHybrid_Release(t *testing.T) {
	s := NewHybrid(make([]int, 2), nil)
	require.NoError(t, s.Reallocate(8, 0, nil))
	require.False(t, s.IsInline())
	s.Release()
	assert.True(t, s.IsInline())
	assert.Equal(t, 2, s.Cap())
}

func TestSwap(t *testing.T) {
	a := NewHeap[int](nil)
	b := NewHeap[int](nil)
	require.NoError(t, a.Reallocate(4, 0, nil))
	fillSeq(a.Data())

	require.True(t, Swap[int](a, b))
	assert.Zero(t, a.Cap())
	assert.Equal(t, []int{1, 2, 3, 4}, b.Data())

	other := NewHeap[int](alloc.NewTracker(nil))
	assert.False(t, Swap[int](b, other))
	assert.False(t, Swap[int](b, NewFixed(make([]int, 4))))
}
