// Package storage provides the backing buffers the containers are built on.
//
// A Storage owns a buffer of Cap() element slots and knows how to move the
// first live slots into a buffer of a different size. It never constructs or
// destroys elements; the container that owns it does.
//
// Three strategies are interchangeable:
//
//   - HeapOnly: every buffer comes from an alloc.Allocator. Capacity 0 means
//     no buffer.
//   - Fixed: one buffer of exactly N slots, allocated once (or supplied by the
//     caller with NewFixed). Requesting more than N is a precondition
//     violation.
//   - Hybrid: N inline slots, heap beyond. The storage is in exactly one of
//     two states, inline or heap, and its capacity is never below N.
//
// A Strategy value describes a kind of storage; New builds one. Containers
// keep the Strategy so they can build further storages of the same kind.
package storage
