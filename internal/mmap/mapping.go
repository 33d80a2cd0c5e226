package mmap

import (
	"sync/atomic"
	"unsafe"
)

// Mapping represents an anonymous read-write memory mapping.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// MapAnon creates a private anonymous mapping of size bytes. The memory is
// zeroed and page aligned.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	data, unmapFunc, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}
	return &Mapping{data: data, unmap: unmapFunc}, nil
}

// Remap resizes the mapping, preserving the first min(old, new) bytes. The
// base address may change; slices obtained from Bytes before the call are
// invalid afterwards.
func (m *Mapping) Remap(size int) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if size <= 0 {
		return ErrInvalidSize
	}
	data, err := osRemap(m.data, size)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil // Already closed
	}
	if m.unmap != nil && m.data != nil {
		return m.unmap(m.data)
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() or Remap() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Pointer returns the base address of the mapping.
func (m *Mapping) Pointer() unsafe.Pointer {
	if m.closed.Load() || len(m.data) == 0 {
		return nil
	}
	return unsafe.Pointer(&m.data[0])
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}
