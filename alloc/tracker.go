package alloc

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/storagekit"
	"github.com/hupe1980/storagekit/internal/resource"
)

// ErrBudgetExceeded is returned when a Tracker budget refuses a request.
var ErrBudgetExceeded = resource.ErrMemoryLimitExceeded

// TrackerStats is a snapshot of a Tracker's counters.
type TrackerStats struct {
	Allocations   uint64
	Frees         uint64
	Reallocations uint64 // successful in-place reallocations
	Fallbacks     uint64 // reallocations the inner allocator refused
	Rejected      uint64 // requests refused by the budget
	LiveBlocks    int64
	LiveBytes     int64
	PeakBytes     int64
	BudgetBytes   int64 // 0 if unlimited
}

// Tracker decorates an Allocator with accounting, an optional byte budget
// and logging.
type Tracker struct {
	inner  Allocator
	name   string
	logger *storagekit.Logger
	budget *resource.Controller

	allocations   atomic.Uint64
	frees         atomic.Uint64
	reallocations atomic.Uint64
	fallbacks     atomic.Uint64
	rejected      atomic.Uint64
	liveBlocks    atomic.Int64
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithBudget limits the bytes the tracker lets through at any one time.
func WithBudget(bytes int64) TrackerOption {
	return func(t *Tracker) {
		t.budget = resource.NewController(resource.Config{MemoryLimitBytes: bytes})
	}
}

// WithLogger sets the logger.
func WithLogger(l *storagekit.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithName names the tracker in logs and metrics.
func WithName(name string) TrackerOption {
	return func(t *Tracker) {
		t.name = name
	}
}

// NewTracker wraps inner. A nil inner tracks Default.
func NewTracker(inner Allocator, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		inner:  orDefault(inner),
		name:   "default",
		logger: storagekit.NoopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.budget == nil {
		t.budget = resource.NewController(resource.Config{})
	}
	t.logger = t.logger.WithAllocator(t.name)
	return t
}

// Name returns the tracker name.
func (t *Tracker) Name() string {
	return t.name
}

// Allocate implements Allocator.
func (t *Tracker) Allocate(rt reflect.Type, n int) (unsafe.Pointer, error) {
	ctx := context.Background()
	size, err := BlockBytes(rt, n)
	if err != nil {
		t.logger.LogAllocate(ctx, rt.String(), n, 0, err)
		return nil, err
	}
	if err := t.acquire(ctx, size); err != nil {
		return nil, err
	}

	p, err := t.inner.Allocate(rt, n)
	if err != nil {
		t.budget.ReleaseMemory(size)
		t.logger.LogAllocate(ctx, rt.String(), n, size, err)
		return nil, err
	}
	t.allocations.Add(1)
	t.liveBlocks.Add(1)
	t.logger.LogAllocate(ctx, rt.String(), n, size, nil)
	return p, nil
}

// SupportsReallocate implements ReallocateReporter with the capability of
// the wrapped allocator.
func (t *Tracker) SupportsReallocate() bool {
	return SupportsReallocate(t.inner)
}

// Reallocate implements Reallocator. It returns ErrUnsupported when the
// wrapped allocator has no in-place path.
func (t *Tracker) Reallocate(rt reflect.Type, p unsafe.Pointer, oldN, newN int) (unsafe.Pointer, error) {
	ctx := context.Background()
	r, ok := t.inner.(Reallocator)
	if !ok {
		t.fallbacks.Add(1)
		return nil, ErrUnsupported
	}
	oldSize, err := BlockBytes(rt, oldN)
	if err != nil {
		return nil, err
	}
	newSize, err := BlockBytes(rt, newN)
	if err != nil {
		return nil, err
	}

	delta := newSize - oldSize
	if delta > 0 {
		if err := t.acquire(ctx, delta); err != nil {
			return nil, err
		}
	}
	np, err := r.Reallocate(rt, p, oldN, newN)
	if err != nil {
		if delta > 0 {
			t.budget.ReleaseMemory(delta)
		}
		if errors.Is(err, ErrUnsupported) {
			t.fallbacks.Add(1)
			return nil, err
		}
		t.logger.LogReallocate(ctx, rt.String(), oldN, newN, err)
		return nil, err
	}
	if delta < 0 {
		t.budget.ReleaseMemory(-delta)
	}
	t.reallocations.Add(1)
	t.logger.LogReallocate(ctx, rt.String(), oldN, newN, nil)
	return np, nil
}

// Free implements Allocator.
func (t *Tracker) Free(rt reflect.Type, p unsafe.Pointer, n int) {
	t.inner.Free(rt, p, n)
	size, _ := BlockBytes(rt, n)
	t.budget.ReleaseMemory(size)
	t.frees.Add(1)
	t.liveBlocks.Add(-1)
	t.logger.LogFree(context.Background(), rt.String(), n, size)
}

func (t *Tracker) acquire(ctx context.Context, size int64) error {
	if err := t.budget.AcquireMemory(size); err != nil {
		t.rejected.Add(1)
		t.logger.LogRejected(ctx, size, t.budget.MemoryUsage(), t.budget.MemoryLimit())
		return err
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (t *Tracker) Stats() TrackerStats {
	return TrackerStats{
		Allocations:   t.allocations.Load(),
		Frees:         t.frees.Load(),
		Reallocations: t.reallocations.Load(),
		Fallbacks:     t.fallbacks.Load(),
		Rejected:      t.rejected.Load(),
		LiveBlocks:    t.liveBlocks.Load(),
		LiveBytes:     t.budget.MemoryUsage(),
		PeakBytes:     t.budget.PeakMemoryUsage(),
		BudgetBytes:   t.budget.MemoryLimit(),
	}
}
