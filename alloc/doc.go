// Package alloc defines the allocator parameter of the storage layer and
// ships five implementations.
//
// An Allocator hands out blocks of n elements of a runtime type. A block is
// zeroed and suitably aligned; the typed helpers Make, Resize and Release
// turn blocks into slices.
//
// # Implementations
//
//   - Heap: the Go garbage-collected heap. Serves every element type.
//   - Aligned: cache-line aligned blocks on the Go heap for pointer-free
//     types.
//   - Mmap: one anonymous mapping per block, outside the garbage collector.
//     Serves pointer-free types only and resizes in place with mremap(2)
//     on Linux.
//   - Arena: a bump allocator over large mmap chunks. Free is a no-op and
//     Reset reclaims everything at once. The most recent block can grow in
//     place.
//   - Tracker: a decorator that counts allocations and bytes, optionally
//     enforces a byte budget and logs through storagekit.Logger.
//
// # In-place Reallocation
//
// Implementing Reallocator is the "supports in-place reallocation" flag.
// Reallocate may still return ErrUnsupported for a particular block; callers
// then fall back to allocate, move and free.
//
// # Thread Safety
//
// All allocators in this package are safe for concurrent use.
package alloc
