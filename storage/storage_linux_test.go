//go:build linux

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/storagekit/alloc"
)

func TestHeap_InPlaceReallocation(t *testing.T) {
	m := alloc.NewMmap()
	defer m.Close()
	tr := alloc.NewTracker(m)
	s := NewHeap[uint32](tr)

	require.NoError(t, s.Reallocate(1024, 0, nil))
	for i := range s.Data() {
		s.Data()[i] = uint32(i)
	}
	require.NoError(t, s.Reallocate(1<<16, 1024, nil))
	assert.Equal(t, uint32(1023), s.Data()[1023])

	st := tr.Stats()
	assert.Equal(t, uint64(1), st.Allocations)
	assert.Equal(t, uint64(1), st.Reallocations)
	assert.Equal(t, int64(4<<16), st.LiveBytes)

	s.Release()
	assert.Equal(t, 0, m.Live())
}

func TestHeap_CustomMoveSkipsInPlace(t *testing.T) {
	m := alloc.NewMmap()
	defer m.Close()
	tr := alloc.NewTracker(m)
	s := NewHeap[uint32](tr)

	require.NoError(t, s.Reallocate(8, 0, nil))
	require.NoError(t, s.Reallocate(16, 0, func(dst, src []uint32) { copy(dst, src) }))
	assert.Equal(t, uint64(2), tr.Stats().Allocations)
	assert.Zero(t, tr.Stats().Reallocations)
	assert.Equal(t, 1, m.Live())
}
