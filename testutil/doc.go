// Package testutil provides testing utilities for storagekit.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source for workload generation and element
// types whose per-element operations are counted.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	if rng.Chance(0.3) { ... }
//
// # Instrumented Elements
//
//	testutil.ResetCounters()
//	v := vector.New[testutil.Tracked, uint32](storage.HeapOnly(nil))
//	v.PushBackDefault()
//	testutil.Counts().Inits // == 1
package testutil
