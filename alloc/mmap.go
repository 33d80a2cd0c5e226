package alloc

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"

	"github.com/hupe1980/storagekit/internal/mmap"
	"github.com/hupe1980/storagekit/traits"
)

// Mmap backs every block with its own anonymous mapping. Element types must
// be pointer-free. On Linux, Reallocate resizes the mapping with mremap(2),
// which may move it without copying.
type Mmap struct {
	mu   sync.Mutex
	live map[uintptr]*mmap.Mapping
}

// NewMmap returns an empty mmap allocator.
func NewMmap() *Mmap {
	return &Mmap{live: make(map[uintptr]*mmap.Mapping)}
}

// Allocate implements Allocator.
func (m *Mmap) Allocate(t reflect.Type, n int) (unsafe.Pointer, error) {
	size, err := m.check(t, n)
	if err != nil {
		return nil, err
	}
	mp, err := mmap.MapAnon(int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	p := mp.Pointer()

	m.mu.Lock()
	m.live[uintptr(p)] = mp
	m.mu.Unlock()
	return p, nil
}

// Reallocate implements Reallocator.
func (m *Mmap) Reallocate(t reflect.Type, p unsafe.Pointer, oldN, newN int) (unsafe.Pointer, error) {
	size, err := m.check(t, newN)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	mp, ok := m.live[uintptr(p)]
	if !ok {
		return nil, fmt.Errorf("%w: %p", ErrUnknownBlock, p)
	}
	if err := mp.Remap(int(size)); err != nil {
		if errors.Is(err, mmap.ErrUnsupported) {
			return nil, ErrUnsupported
		}
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}
	delete(m.live, uintptr(p))
	np := mp.Pointer()
	m.live[uintptr(np)] = mp
	return np, nil
}

// Free implements Allocator. Unknown pointers are ignored.
func (m *Mmap) Free(_ reflect.Type, p unsafe.Pointer, _ int) {
	m.mu.Lock()
	mp, ok := m.live[uintptr(p)]
	delete(m.live, uintptr(p))
	m.mu.Unlock()
	if ok {
		_ = mp.Close()
	}
}

// Live returns the number of blocks not yet freed.
func (m *Mmap) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

// Close unmaps every live block. Slices over them must not be used again.
func (m *Mmap) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for p, mp := range m.live {
		if err := mp.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(m.live, p)
	}
	return firstErr
}

func (m *Mmap) check(t reflect.Type, n int) (int64, error) {
	if traits.HasPointers(t) {
		return 0, fmt.Errorf("%w: %s", ErrPointerElements, t)
	}
	size, err := BlockBytes(t, n)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, fmt.Errorf("%w: empty block of %s", ErrOutOfMemory, t)
	}
	return size, nil
}
