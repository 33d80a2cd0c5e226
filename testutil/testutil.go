package testutil

import (
	"math/rand/v2"
	"sync"
)

// RNG is a seeded, reproducible random source safe for concurrent use.
type RNG struct {
	mu   sync.Mutex
	seed int64
	src  *rand.PCG
	rand *rand.Rand
}

// NewRNG returns a source whose sequence depends only on seed.
func NewRNG(seed int64) *RNG {
	src := rand.NewPCG(uint64(seed), 0)
	return &RNG{seed: seed, src: src, rand: rand.New(src)}
}

// Reset rewinds the sequence to its start.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.src.Seed(uint64(r.seed), 0)
}

// Seed returns the seed the source was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a value in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Chance reports true with probability p.
func (r *RNG) Chance(p float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64() < p
}

// Perm returns a permutation of [0, n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}
