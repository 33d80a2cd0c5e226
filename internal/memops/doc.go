// Package memops implements construct, destruct, copy, move and compare over
// element slices, choosing per call between the element type's own hooks and
// raw memory operations (see package traits).
//
// Raw copies and moves go through Go's typed copy, which is an overlap-safe
// memmove that keeps GC write barriers intact. Raw equality compares bytes and
// is only chosen for layouts where that is exact.
//
// Slots of pointer-holding types are cleared once they are destroyed or moved
// from, so dead referents are not retained by the collector.
//
// The functions assume valid, sufficiently sized slices. Mismatched lengths
// are precondition failures.
package memops
