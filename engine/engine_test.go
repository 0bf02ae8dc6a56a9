package engine

import (
	"sync/atomic"
	"testing"
)

func TestParallelForVisitsEveryIndexExactlyOnce(t *testing.T) {
	const n = 10007
	seen := make([]int32, n)

	eng := CPU(8)
	eng.ParallelFor(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	eng.Fence()

	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times; want 1", i, v)
		}
	}
}

func TestParallelForEmptyRange(t *testing.T) {
	eng := CPU(4)
	called := false
	eng.ParallelFor(0, func(i int) { called = true })
	if called {
		t.Fatal("expected body to never be called for an empty range")
	}
}

func TestCPUClampsNonPositiveWorkers(t *testing.T) {
	eng := CPU(0)
	if eng.Workers() != 1 {
		t.Fatalf("expected Workers() to clamp to 1; got %d", eng.Workers())
	}
}

func TestDefaultReturnsUsableEngine(t *testing.T) {
	eng := Default()
	if eng.Workers() < 1 {
		t.Fatalf("expected Default() to report at least 1 worker; got %d", eng.Workers())
	}
}
