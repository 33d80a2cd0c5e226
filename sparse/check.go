package sparse

import (
	"errors"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/internal/assert"
	"github.com/hupe1980/storagekit/internal/bitset"
)

// ErrCorrupt is wrapped by every error returned from Check.
var ErrCorrupt = errors.New("sparse: corrupt")

// Occupancy returns the live slot indices as a roaring bitmap. Slot
// indices must fit in 32 bits.
func (a *Array[T, S]) Occupancy() *roaring.Bitmap {
	assert.That(uint64(a.sparse) <= math.MaxUint32+1, "sparse.Occupancy", "sparse size %d exceeds 32-bit indices", a.sparse)
	rb := roaring.New()
	w := a.words()
	limit := uint64(a.sparse)
	for i, ok := bitset.NextSet(w, 0, limit); ok; i, ok = bitset.NextSet(w, i+1, limit) {
		rb.Add(uint32(i))
	}
	return rb
}

// Check verifies that the free list and the occupancy bits describe the
// same partition of [0, SparseLen). It walks every free slot, so it is
// meant for tests and debugging.
func (a *Array[T, S]) Check() error {
	a.init()
	w := a.words()
	limit := uint64(a.sparse)
	if uint64(len(w))*64 < limit {
		return fmt.Errorf("%w: %d occupancy words cover fewer than %d slots", ErrCorrupt, len(w), limit)
	}
	if i, ok := bitset.NextSet(w, limit, uint64(len(w))*64); ok {
		return fmt.Errorf("%w: slot %d beyond sparse size %d is marked live", ErrCorrupt, i, limit)
	}

	live := a.Occupancy()
	if got := live.GetCardinality(); got != uint64(a.Len()) {
		return fmt.Errorf("%w: %d live bits, want %d", ErrCorrupt, got, a.Len())
	}

	free := roaring.New()
	none := storagekit.Invalid[S]()
	d := a.data()
	prev := none
	i := a.FreeHead()
	for i != none {
		if uint64(i) >= limit {
			return fmt.Errorf("%w: free slot %d beyond sparse size %d", ErrCorrupt, i, limit)
		}
		if !free.CheckedAdd(uint32(i)) {
			return fmt.Errorf("%w: free list revisits slot %d", ErrCorrupt, i)
		}
		if d[i].prev != prev {
			return fmt.Errorf("%w: free slot %d links back to %d, want %d", ErrCorrupt, i, d[i].prev, prev)
		}
		prev, i = i, d[i].next
	}

	if got := free.GetCardinality(); got != uint64(a.holes) {
		return fmt.Errorf("%w: free list has %d slots, want %d holes", ErrCorrupt, got, a.holes)
	}
	if live.Intersects(free) {
		return fmt.Errorf("%w: slot %d is both live and free", ErrCorrupt, roaring.And(live, free).Minimum())
	}
	if limit > 0 && roaring.Or(live, free).GetCardinality() != limit {
		return fmt.Errorf("%w: live and free slots do not cover [0, %d)", ErrCorrupt, limit)
	}
	return nil
}
