// Package growth computes container capacities.
package growth

import (
	"math/bits"

	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/internal/assert"
)

const (
	// MinCapacity is the first capacity handed out for small requests.
	MinCapacity = 4
	// ShrinkSlack is the absolute slack below which Shrink keeps the capacity.
	ShrinkSlack = 64
)

// Grow returns the capacity to allocate for requested elements when current
// is not enough: requested + 3/8 requested + 16, or MinCapacity for the first
// small allocation. The result is clamped to MaxSize[S] on overflow and is
// never below requested or current.
func Grow[S storagekit.Size](requested, current S) S {
	limit := storagekit.MaxSize[S]()
	assert.That(requested > current, "growth.Grow", "requested %d does not exceed capacity %d", requested, current)
	assert.That(requested <= limit, "growth.Grow", "requested %d exceeds max size %d", requested, limit)
	if current == 0 && requested <= MinCapacity {
		return MinCapacity
	}

	r := uint64(requested)
	// floor(3r/8) without forming 3r
	extra := r/8*3 + (r%8)*3/8
	n, c1 := bits.Add64(r, extra, 0)
	n, c2 := bits.Add64(n, 16, 0)
	if c1|c2 != 0 || n > uint64(limit) {
		return limit
	}
	return S(n)
}

// Shrink returns the capacity to keep for size live elements: size when the
// buffer is less than two thirds used and either the slack exceeds
// ShrinkSlack or the container is empty, current otherwise.
func Shrink[S storagekit.Size](size, current S) S {
	assert.That(size <= current, "growth.Shrink", "size %d exceeds capacity %d", size, current)
	if lessThanTwoThirds(uint64(size), uint64(current)) && (current-size > ShrinkSlack || size == 0) {
		return size
	}
	return current
}

// lessThanTwoThirds reports 3*size < 2*current in 128-bit arithmetic.
func lessThanTwoThirds(size, current uint64) bool {
	h1, l1 := bits.Mul64(size, 3)
	h2, l2 := bits.Mul64(current, 2)
	return h1 < h2 || (h1 == h2 && l1 < l2)
}
