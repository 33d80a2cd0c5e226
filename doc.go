// Package storagekit provides the allocator-parameterized storage layer that
// backs a family of generic containers.
//
// The layer is split into small packages, leaves first:
//
//   - traits: per-type capability facts (does construction, destruction,
//     copy, move or equality need a per-element call, or is a raw byte
//     operation enough).
//   - alloc: the allocator parameter (Go heap, off-heap mmap, arena) and a
//     tracking decorator with an optional memory budget.
//   - storage: three interchangeable backing strategies (heap-only,
//     fixed-capacity and hybrid inline-then-heap).
//   - vector, ring, sparse: the contiguous vector, the circular sequence and
//     the sparse slot array, each generic over any strategy.
//
// # Quick Start
//
//	v := vector.New[int, uint32](storage.Hybrid(8, nil))
//	v.PushBack(1)
//	v.PushBack(2)
//
//	rb := ring.New[string, uint32](storage.HeapOnly(nil))
//	rb.PushBack("b")
//	rb.PushFront("a")
//
//	arr := sparse.New[Entity, uint32](storage.Fixed(1024))
//	idx, _ := arr.Insert(Entity{})
//	arr.Remove(idx) // slot idx is reused by the next Insert
//
// # Size Types
//
// Containers take a size type parameter S that fixes the integer width of
// indices and counts. Invalid[S]() is the reserved "no index" value returned
// by every lookup that can miss.
//
// # Concurrency
//
// Containers and storages are single-owner and not synchronized. Allocators
// in package alloc are safe for concurrent use.
//
// # Errors
//
// Broken caller contracts (index out of range, popping an empty container,
// overflowing a fixed capacity) panic with a *PreconditionError. Building
// with the storagekit_unchecked tag removes these checks. Allocator failures
// are returned by Reserve and panic from growth operations that have no
// error result.
package storagekit
