// Package sparse provides an array of slots with O(1) insertion, removal
// and reuse of freed slots.
//
// Each slot is either live, holding an element, or free, holding the
// links of a doubly linked free list. An occupancy bitset is the tag: a set
// bit means live. Indices of live elements are stable until the element is
// removed.
//
// Insert reuses the most recently freed slot before growing. SparseLen is
// one past the highest slot ever used (not reduced by Remove); Len counts
// live slots.
//
// Slots and occupancy words live in two storages built from the same
// strategy, so a Fixed array never allocates and a Hybrid array keeps both
// inline up to N slots.
package sparse
