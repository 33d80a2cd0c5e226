// Package bitset provides occupancy bit operations over plain uint64 word
// slices.
//
// The words are owned by the caller, usually a storage buffer that grows
// alongside the slots it describes. Bit i lives in word i/64 at position
// i%64. Nothing here allocates.
package bitset
