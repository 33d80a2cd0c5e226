package alloc

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake_Heap(t *testing.T) {
	s, err := Make[int64](Heap{}, 16)
	require.NoError(t, err)
	require.Len(t, s, 16)
	for _, v := range s {
		assert.Zero(t, v)
	}
	s[15] = 7
	Release(Heap{}, s)
}

func TestMake_NilAllocatorUsesDefault(t *testing.T) {
	s, err := Make[string](nil, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", ""}, s)
}

func TestMake_EmptyAndZeroSized(t *testing.T) {
	s, err := Make[int](Heap{}, 0)
	require.NoError(t, err)
	assert.Nil(t, s)

	// Zero-sized elements never reach the allocator.
	tr := NewTracker(Heap{})
	z, err := Make[struct{}](tr, 1000)
	require.NoError(t, err)
	assert.Len(t, z, 1000)
	assert.Zero(t, tr.Stats().Allocations)
}

func TestResize_HeapUnsupported(t *testing.T) {
	s, err := Make[int](Heap{}, 4)
	require.NoError(t, err)
	_, err = Resize(Heap{}, s, 8)
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.False(t, SupportsReallocate(Heap{}))
	assert.False(t, SupportsReallocate(nil))
}

func TestBlockBytes(t *testing.T) {
	n, err := BlockBytes(reflect.TypeFor[uint32](), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(40), n)

	_, err = BlockBytes(reflect.TypeFor[[64]byte](), math.MaxInt)
	assert.ErrorIs(t, err, ErrOutOfMemory)

	_, err = BlockBytes(reflect.TypeFor[byte](), -1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestHeap_OverflowRejected(t *testing.T) {
	_, err := Make[[1 << 20]byte](Heap{}, math.MaxInt/2)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}
