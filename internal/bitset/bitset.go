package bitset

import "math/bits"

// WordsFor returns the number of words needed for n bits.
func WordsFor(n uint64) uint64 {
	return n/64 + min(n%64, 1)
}

// Test reports whether bit i is set.
func Test(w []uint64, i uint64) bool {
	return w[i/64]&(1<<(i%64)) != 0
}

// Set sets bit i.
func Set(w []uint64, i uint64) {
	w[i/64] |= 1 << (i % 64)
}

// Unset clears bit i.
func Unset(w []uint64, i uint64) {
	w[i/64] &^= 1 << (i % 64)
}

// TestAndSet sets bit i and reports whether it was already set.
func TestAndSet(w []uint64, i uint64) bool {
	mask := uint64(1) << (i % 64)
	prev := w[i/64]
	w[i/64] = prev | mask
	return prev&mask != 0
}

// NextSet returns the first set bit in [from, limit).
func NextSet(w []uint64, from, limit uint64) (uint64, bool) {
	if from >= limit {
		return 0, false
	}
	wi := from / 64
	word := w[wi] &^ (1<<(from%64) - 1)
	for {
		if word != 0 {
			i := wi*64 + uint64(bits.TrailingZeros64(word))
			return i, i < limit
		}
		wi++
		if wi*64 >= limit {
			return 0, false
		}
		word = w[wi]
	}
}

// PrevSet returns the last set bit in [0, before).
func PrevSet(w []uint64, before uint64) (uint64, bool) {
	if before == 0 {
		return 0, false
	}
	last := before - 1
	wi := last / 64
	word := w[wi]
	if r := last % 64; r != 63 {
		word &= 1<<(r+1) - 1
	}
	for {
		if word != 0 {
			return wi*64 + 63 - uint64(bits.LeadingZeros64(word)), true
		}
		if wi == 0 {
			return 0, false
		}
		wi--
		word = w[wi]
	}
}

// Count returns the number of set bits in [0, limit).
func Count(w []uint64, limit uint64) uint64 {
	full := limit / 64
	var n int
	for _, word := range w[:full] {
		n += bits.OnesCount64(word)
	}
	if r := limit % 64; r != 0 {
		n += bits.OnesCount64(w[full] & (1<<r - 1))
	}
	return uint64(n)
}

// ClearFrom clears every bit at or above from within w.
func ClearFrom(w []uint64, from uint64) {
	wi := from / 64
	if wi >= uint64(len(w)) {
		return
	}
	w[wi] &= 1<<(from%64) - 1
	clear(w[wi+1:])
}
