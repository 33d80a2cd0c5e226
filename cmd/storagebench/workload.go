package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/hupe1980/storagekit/alloc"
	"github.com/hupe1980/storagekit/ring"
	"github.com/hupe1980/storagekit/sparse"
	"github.com/hupe1980/storagekit/storage"
	"github.com/hupe1980/storagekit/testutil"
	"github.com/hupe1980/storagekit/vector"
)

var errDiverged = errors.New("container diverged from model")

// Result summarizes a workload run.
type Result struct {
	Container string
	Strategy  string
	Ops       int
	Pushes    int
	Pops      int
	Verifies  int
	PeakLen   int
	Broken    int // steps that ended with a wrapped ring window
	Duration  time.Duration
}

type runner struct {
	ctx  context.Context
	cfg  Config
	rng  *testutil.RNG
	step int
	res  Result
}

// runWorkload runs cfg against a container on st. Allocator failures that
// surface as panics are returned as errors.
func runWorkload(ctx context.Context, cfg Config, st storage.Strategy) (res Result, err error) {
	r := &runner{
		ctx: ctx,
		cfg: cfg,
		rng: testutil.NewRNG(cfg.Seed),
		res: Result{Container: cfg.Container, Strategy: cfg.Strategy},
	}
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			e, ok := p.(error)
			if !ok {
				panic(p)
			}
			err = fmt.Errorf("step %d: %w", r.step, e)
		}
		r.res.Ops = r.step
		r.res.Duration = time.Since(start)
		res = r.res
	}()

	switch cfg.Container {
	case "vector":
		err = r.runVector(st)
	case "ring":
		err = r.runRing(st)
	case "sparse":
		err = r.runSparse(st)
	default:
		err = fmt.Errorf("unknown container %q", cfg.Container)
	}
	return r.res, err
}

func (r *runner) push(n int) bool {
	return n == 0 || (n < r.cfg.MaxLen && r.rng.Chance(r.cfg.PushRatio))
}

func (r *runner) value() int64 {
	return int64(r.rng.Uint64() >> 1)
}

// verify compares lengths every step and runs full every VerifyEvery steps.
func (r *runner) verify(got, want int, full func() error) error {
	r.res.PeakLen = max(r.res.PeakLen, want)
	if got != want {
		return fmt.Errorf("%w: length %d, want %d", errDiverged, got, want)
	}
	if r.step%1024 == 0 {
		if err := r.ctx.Err(); err != nil {
			return err
		}
	}
	if (r.step+1)%r.cfg.VerifyEvery != 0 {
		return nil
	}
	r.res.Verifies++
	return full()
}

func (r *runner) runVector(st storage.Strategy) error {
	v := vector.New[int64, uint32](st)
	defer v.Release()
	var model []int64

	for r.step = 0; r.step < r.cfg.Ops; r.step++ {
		if r.push(len(model)) {
			x := r.value()
			if len(model) > 0 && r.rng.Chance(0.1) {
				i := r.rng.Intn(len(model) + 1)
				v.Insert(uint32(i), x)
				model = slices.Insert(model, i, x)
			} else {
				v.PushBack(x)
				model = append(model, x)
			}
			r.res.Pushes++
		} else {
			if r.rng.Chance(0.1) {
				i := r.rng.Intn(len(model))
				v.Erase(uint32(i), 1)
				model = slices.Delete(model, i, i+1)
			} else {
				want := model[len(model)-1]
				if got := v.PopBack(); got != want {
					return fmt.Errorf("%w: popped %d, want %d", errDiverged, got, want)
				}
				model = model[:len(model)-1]
			}
			r.res.Pops++
		}

		err := r.verify(v.Len(), len(model), func() error {
			if !slices.Equal(v.Slice(), model) {
				return fmt.Errorf("%w: contents differ", errDiverged)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) runRing(st storage.Strategy) error {
	b := ring.New[int64, uint32](st)
	defer b.Release()
	var model []int64

	for r.step = 0; r.step < r.cfg.Ops; r.step++ {
		front := r.rng.Chance(0.5)
		if r.push(len(model)) {
			x := r.value()
			if front {
				b.PushFront(x)
				model = slices.Insert(model, 0, x)
			} else {
				b.PushBack(x)
				model = append(model, x)
			}
			r.res.Pushes++
		} else {
			var got, want int64
			if front {
				got, want = b.PopFront(), model[0]
				model = model[1:]
			} else {
				got, want = b.PopBack(), model[len(model)-1]
				model = model[:len(model)-1]
			}
			if got != want {
				return fmt.Errorf("%w: popped %d, want %d", errDiverged, got, want)
			}
			r.res.Pops++
		}
		if b.IsBroken() {
			r.res.Broken++
		}

		err := r.verify(b.Len(), len(model), func() error {
			i := 0
			for _, x := range b.All() {
				if x != model[i] {
					return fmt.Errorf("%w: element %d is %d, want %d", errDiverged, i, x, model[i])
				}
				i++
			}
			first, second := b.Window()
			if len(first)+len(second) != len(model) {
				return fmt.Errorf("%w: window covers %d elements", errDiverged, len(first)+len(second))
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) runSparse(st storage.Strategy) error {
	a := sparse.New[int64, uint32](st)
	defer a.Release()
	model := map[uint32]int64{}
	var live []uint32

	for r.step = 0; r.step < r.cfg.Ops; r.step++ {
		if r.push(len(live)) {
			x := r.value()
			i, _ := a.Insert(x)
			model[i] = x
			live = append(live, i)
			r.res.Pushes++
		} else {
			k := r.rng.Intn(len(live))
			i := live[k]
			live[k] = live[len(live)-1]
			live = live[:len(live)-1]
			if got := a.Take(i); got != model[i] {
				return fmt.Errorf("%w: slot %d holds %d, want %d", errDiverged, i, got, model[i])
			}
			delete(model, i)
			r.res.Pops++
		}

		err := r.verify(a.Len(), len(model), func() error {
			if err := a.Check(); err != nil {
				return err
			}
			if !maps.Equal(maps.Collect(a.All()), model) {
				return fmt.Errorf("%w: contents differ", errDiverged)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// newAllocator returns the tracked allocator for cfg and a function that
// releases the underlying allocator.
func newAllocator(cfg Config, opts ...alloc.TrackerOption) (*alloc.Tracker, func() error, error) {
	var (
		inner   alloc.Allocator = alloc.Heap{}
		closeFn                 = func() error { return nil }
	)
	switch cfg.Strategy {
	case "aligned":
		inner = alloc.Aligned{}
	case "mmap":
		m := alloc.NewMmap()
		inner, closeFn = m, m.Close
	case "arena":
		a, err := alloc.NewArena()
		if err != nil {
			return nil, nil, err
		}
		inner, closeFn = a, a.Close
	}

	opts = append([]alloc.TrackerOption{alloc.WithName(cfg.Strategy)}, opts...)
	if cfg.BudgetBytes > 0 {
		opts = append(opts, alloc.WithBudget(cfg.BudgetBytes))
	}
	return alloc.NewTracker(inner, opts...), closeFn, nil
}

func newStrategy(cfg Config, a alloc.Allocator) storage.Strategy {
	switch cfg.Strategy {
	case "fixed":
		return storage.Fixed(cfg.Inline)
	case "hybrid":
		return storage.Hybrid(cfg.Inline, a)
	default:
		return storage.HeapOnly(a)
	}
}
