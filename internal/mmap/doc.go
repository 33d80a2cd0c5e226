// Package mmap provides anonymous memory mappings for off-heap allocation.
//
// # Overview
//
// Anonymous mappings give allocators memory outside the Go garbage
// collector's control. Only pointer-free data may live there: the collector
// never scans it.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//
//	// Grow in place (Linux mremap(2)); the contents are preserved but the
//	// address may change.
//	err = m.Remap(2 << 20)
//
// # Platform Support
//
//   - Linux: mmap(2), mremap(2), madvise(2)
//   - Other Unix: mmap(2), madvise(2); Remap returns ErrUnsupported
//   - Elsewhere: every call returns ErrUnsupported
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Remap must not run
// concurrently with any other access to the mapping.
package mmap
