// Package ring provides a growable circular sequence over any storage
// strategy.
//
// A Buffer keeps two counters, front and back, that only move forward or
// backward by the number of pushed or popped elements. The physical slot of
// logical position p is p mod Cap(). The live window [front, back) may wrap
// past the end of the buffer; such a window is broken and every bulk
// operation handles it as at most two contiguous parts.
//
// Counters are not reduced modulo the capacity on every step. They are
// rebased only when a push would run them past the range of the size type,
// by an amount that keeps every element in its physical slot. When the
// capacity is too large for that to help, the window is rotated to a fixed
// physical position first.
//
// Reallocation renumbers the counters; cursors and pointers obtained before
// a growing or shrinking operation are invalid afterwards.
package ring
