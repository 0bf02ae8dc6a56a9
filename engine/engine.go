// Package engine provides the bulk-synchronous parallel execution
// capability that the LBVH builder and query dispatcher run their passes
// on. It generalizes the templated device-parametrization approach of the
// original DataTransferKit sources: every construction phase and query
// pass is a parallel-for over an index range followed by a fence.
//
// The host-side implementation dispatches work across goroutines, the
// same worker fan-out shape used in tracer/opencl/tracer.go (a
// sync.WaitGroup guarding a pool of goroutines) and in
// asset/compiler/bvh/bvh_builder.go (result collection over a channel).
// The gpu package provides an accelerator-backed alternative for the
// heaviest arithmetic passes.
package engine

import (
	"runtime"
	"sync"
)

// Engine executes a parallel-for over [0,n) and provides a fence that
// blocks until all outstanding work has completed. Implementations must
// make writes performed during ParallelFor visible to the caller once
// ParallelFor returns; Fence exists to mirror the explicit
// device-synchronization points required between construction phases
// and between query passes, even when, as on the CPU engine, ParallelFor
// already blocks until its work is done.
type Engine interface {
	// Workers reports the degree of parallelism this engine targets.
	Workers() int

	// ParallelFor invokes body(i) for every i in [0,n). Iterations may
	// run concurrently and must not have order dependencies on each
	// other, matching the data-parallel contract of every LBVH phase.
	ParallelFor(n int, body func(i int))

	// Fence blocks until all previously submitted work is visible.
	Fence()
}

// cpu is the default host execution engine: a fixed pool of workers that
// partition the iteration range into contiguous chunks.
type cpu struct {
	workers int
}

// CPU returns a host engine that spreads work across the given number of
// workers. workers <= 0 is clamped to 1.
func CPU(workers int) Engine {
	if workers <= 0 {
		workers = 1
	}
	return &cpu{workers: workers}
}

// Default returns a host engine sized to the number of available CPUs.
func Default() Engine {
	return CPU(runtime.NumCPU())
}

func (e *cpu) Workers() int { return e.workers }

func (e *cpu) ParallelFor(n int, body func(i int)) {
	if n <= 0 {
		return
	}
	workers := e.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				body(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Fence is a no-op on the CPU engine: ParallelFor already blocks until
// every worker goroutine has returned.
func (e *cpu) Fence() {}
