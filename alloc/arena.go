package alloc

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/hupe1980/storagekit/internal/mmap"
	"github.com/hupe1980/storagekit/traits"
)

// MemoryAcquirer reserves bytes before the arena maps a chunk.
// *resource.Controller satisfies it.
type MemoryAcquirer interface {
	AcquireMemoryContext(ctx context.Context, amount int64) error
	ReleaseMemory(amount int64)
}

var (
	// ErrArenaClosed is returned by allocations after Close.
	ErrArenaClosed = errors.New("alloc: arena is closed")
	// ErrMaxChunksExceeded is returned when the arena would exceed MaxChunks.
	ErrMaxChunksExceeded = errors.New("alloc: arena max chunks exceeded")
)

const (
	// DefaultChunkSize is the default size of an arena chunk (1 MiB).
	DefaultChunkSize = 1 << 20
	// MaxChunks bounds the number of live chunks of one arena.
	MaxChunks = 65536

	defaultAcquireTimeout = 100 * time.Millisecond
)

// ArenaStats tracks arena memory usage.
type ArenaStats struct {
	ChunksAllocated uint64 // total chunks ever mapped
	BytesReserved   uint64 // bytes currently mapped
	BytesUsed       uint64 // bytes handed out since the last Reset
	BytesWasted     uint64 // alignment padding since the last Reset
	ActiveChunks    uint64
	TotalAllocs     uint64
	InPlaceGrows    uint64
}

type arenaStats struct {
	ChunksAllocated atomic.Uint64
	BytesReserved   atomic.Uint64
	BytesUsed       atomic.Uint64
	BytesWasted     atomic.Uint64
	ActiveChunks    atomic.Uint64
	TotalAllocs     atomic.Uint64
	InPlaceGrows    atomic.Uint64
}

type chunk struct {
	data    []byte
	mapping *mmap.Mapping
	offset  atomic.Int64
}

func (c *chunk) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(c.data)))
}

// Arena is a bump allocator over anonymous mmap chunks. Free is a no-op;
// memory comes back all at once with Reset or Close. The most recent block
// of the current chunk can be resized in place.
//
// Allocation is lock-free on the fast path. Reset and Close must not run
// concurrently with allocations.
type Arena struct {
	chunkSize int
	timeout   time.Duration
	acquirer  MemoryAcquirer

	mu      sync.Mutex
	chunks  []*chunk
	current atomic.Pointer[chunk]
	closed  atomic.Bool
	stats   arenaStats
}

// ArenaOption configures an Arena.
type ArenaOption func(*Arena)

// WithArenaChunkSize sets the chunk size. It is rounded up to a power of two.
func WithArenaChunkSize(n int) ArenaOption {
	return func(a *Arena) {
		if n > 0 {
			a.chunkSize = 1 << bits.Len(uint(n-1))
		}
	}
}

// WithMemoryAcquirer makes the arena reserve every chunk with acq.
func WithMemoryAcquirer(acq MemoryAcquirer) ArenaOption {
	return func(a *Arena) {
		a.acquirer = acq
	}
}

// WithAcquireTimeout bounds how long a chunk reservation may wait.
func WithAcquireTimeout(d time.Duration) ArenaOption {
	return func(a *Arena) {
		a.timeout = d
	}
}

// NewArena creates an arena and maps its first chunk.
func NewArena(opts ...ArenaOption) (*Arena, error) {
	a := &Arena{
		chunkSize: DefaultChunkSize,
		timeout:   defaultAcquireTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.addChunkLocked(a.chunkSize); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Arena) addChunkLocked(size int) error {
	if len(a.chunks) >= MaxChunks {
		return ErrMaxChunksExceeded
	}
	if size < a.chunkSize {
		size = a.chunkSize
	}

	if a.acquirer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.acquirer.AcquireMemoryContext(ctx, int64(size))
		cancel()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
	}

	mapping, err := mmap.MapAnon(size)
	if err != nil {
		if a.acquirer != nil {
			a.acquirer.ReleaseMemory(int64(size))
		}
		return fmt.Errorf("%w: map arena chunk: %w", ErrOutOfMemory, err)
	}

	c := &chunk{data: mapping.Bytes(), mapping: mapping}
	a.chunks = append(a.chunks, c)

	a.stats.ChunksAllocated.Add(1)
	a.stats.BytesReserved.Add(uint64(size))
	a.stats.ActiveChunks.Add(1)

	a.current.Store(c)
	return nil
}

// Allocate implements Allocator.
func (a *Arena) Allocate(t reflect.Type, n int) (unsafe.Pointer, error) {
	size, err := a.check(t, n)
	if err != nil {
		return nil, err
	}
	align := int64(t.Align())

	for {
		if a.closed.Load() {
			return nil, ErrArenaClosed
		}
		curr := a.current.Load()
		if curr == nil {
			return nil, ErrArenaClosed
		}
		if p, ok := a.tryAlloc(curr, size, align); ok {
			return p, nil
		}

		a.mu.Lock()
		// Someone else may have added a chunk meanwhile.
		if a.current.Load() != curr {
			a.mu.Unlock()
			continue
		}
		err := a.addChunkLocked(int(size + align - 1))
		a.mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
}

func (a *Arena) tryAlloc(c *chunk, size, align int64) (unsafe.Pointer, bool) {
	base := int64(c.base())
	for {
		old := c.offset.Load()
		start := alignUp(base+old, align) - base
		end := start + size
		if end > int64(len(c.data)) {
			return nil, false
		}
		if c.offset.CompareAndSwap(old, end) {
			a.stats.BytesUsed.Add(uint64(size))
			a.stats.BytesWasted.Add(uint64(start - old))
			a.stats.TotalAllocs.Add(1)
			return unsafe.Pointer(&c.data[start]), true
		}
	}
}

// Reallocate implements Reallocator. Only the most recent block of the
// current chunk can change size; any other block yields ErrUnsupported.
func (a *Arena) Reallocate(t reflect.Type, p unsafe.Pointer, oldN, newN int) (unsafe.Pointer, error) {
	newSize, err := a.check(t, newN)
	if err != nil {
		return nil, err
	}
	oldSize, err := BlockBytes(t, oldN)
	if err != nil {
		return nil, err
	}

	c := a.current.Load()
	if c == nil || a.closed.Load() {
		return nil, ErrArenaClosed
	}
	start := int64(uintptr(p)) - int64(c.base())
	if start < 0 || start >= int64(len(c.data)) {
		return nil, ErrUnsupported
	}
	end := start + newSize
	if end > int64(len(c.data)) {
		return nil, ErrUnsupported
	}
	if !c.offset.CompareAndSwap(start+oldSize, end) {
		return nil, ErrUnsupported
	}
	if newSize < oldSize {
		// Blocks come back zeroed; keep that true for the released tail.
		clear(c.data[end : start+oldSize])
		a.stats.BytesUsed.Add(^uint64(oldSize - newSize - 1))
	} else {
		a.stats.BytesUsed.Add(uint64(newSize - oldSize))
	}
	a.stats.InPlaceGrows.Add(1)
	return p, nil
}

// Free implements Allocator. Arena memory is reclaimed by Reset or Close.
func (a *Arena) Free(reflect.Type, unsafe.Pointer, int) {}

func (a *Arena) check(t reflect.Type, n int) (int64, error) {
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
	if size > int64(MaxChunks)*int64(a.chunkSize) {
		return 0, fmt.Errorf("%w: %d bytes exceeds arena capacity", ErrOutOfMemory, size)
	}
	return size, nil
}

// Stats returns a snapshot of the arena statistics.
func (a *Arena) Stats() ArenaStats {
	return ArenaStats{
		ChunksAllocated: a.stats.ChunksAllocated.Load(),
		BytesReserved:   a.stats.BytesReserved.Load(),
		BytesUsed:       a.stats.BytesUsed.Load(),
		BytesWasted:     a.stats.BytesWasted.Load(),
		ActiveChunks:    a.stats.ActiveChunks.Load(),
		TotalAllocs:     a.stats.TotalAllocs.Load(),
		InPlaceGrows:    a.stats.InPlaceGrows.Load(),
	}
}

// Usage returns the share of reserved bytes handed out, in percent.
func (a *Arena) Usage() float64 {
	s := a.Stats()
	if s.BytesReserved == 0 {
		return 0
	}
	return float64(s.BytesUsed) / float64(s.BytesReserved) * 100
}

// Reset invalidates every block and keeps only the first chunk, zeroed,
// with its pages handed back to the kernel.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.chunks) == 0 {
		return
	}

	first := a.chunks[0]
	var released int64
	for _, c := range a.chunks[1:] {
		released += int64(len(c.data))
		_ = c.mapping.Close()
	}
	if a.acquirer != nil && released > 0 {
		a.acquirer.ReleaseMemory(released)
	}
	clear(first.data[:first.offset.Load()])
	_ = first.mapping.Advise(mmap.AccessDontNeed)
	first.offset.Store(0)

	a.chunks = a.chunks[:1:1]
	a.current.Store(first)

	a.stats.ActiveChunks.Store(1)
	a.stats.BytesReserved.Store(uint64(len(first.data)))
	a.stats.BytesUsed.Store(0)
	a.stats.BytesWasted.Store(0)
}

// Close unmaps every chunk. The arena cannot be used afterwards.
func (a *Arena) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var (
		firstErr error
		released int64
	)
	for _, c := range a.chunks {
		released += int64(len(c.data))
		if err := c.mapping.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.acquirer != nil && released > 0 {
		a.acquirer.ReleaseMemory(released)
	}
	a.chunks = nil
	a.current.Store(nil)

	a.stats.ActiveChunks.Store(0)
	a.stats.BytesReserved.Store(0)
	a.stats.BytesUsed.Store(0)
	a.stats.BytesWasted.Store(0)
	return firstErr
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, usage: %.1f%%, allocs: %d}",
		s.ActiveChunks,
		float64(s.BytesReserved)/(1024*1024),
		float64(s.BytesUsed)/(1024*1024),
		float64(s.BytesWasted)/1024,
		a.Usage(),
		s.TotalAllocs,
	)
}

func alignUp(v, align int64) int64 {
	return (v + align - 1) &^ (align - 1)
}
