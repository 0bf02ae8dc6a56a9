// Package parallel implements the small set of parallel primitives the
// two-pass CSR query protocol and the hierarchy builder depend on:
// exclusive prefix sum, fill, last-element and bounding-box reduction.
//
// Fill and LastElement follow the type-parameterized style used
// elsewhere in the retrieved corpus (golang.org/x/exp/constraints, as
// used by _examples/other_examples/MrmaderatorYT-FlowyCore__bvh.go and
// the generics-based BVH in _examples/drone115b-gobvh/gobvh.go); geom's
// own minF/maxF helpers use the same constraints package.
package parallel

import (
	"github.com/achilleasa/go-lbvh/engine"
	"github.com/achilleasa/go-lbvh/geom"
)

// Fill sets every element of v to x, dispatched across eng.
func Fill[T any](eng engine.Engine, v []T, x T) {
	eng.ParallelFor(len(v), func(i int) { v[i] = x })
	eng.Fence()
}

// LastElement returns the last element of v; the array may have been
// populated on a device engine, but by the time this is called the
// caller has already fenced, so a host-visible read is safe.
func LastElement[T any](v []T) T {
	return v[len(v)-1]
}

// ExclusivePrefixSum rewrites v in place so that v[0] = 0 and
// v[i] = sum(v_original[0:i]) for i > 0. It is a work-efficient
// three-phase chunked scan: a local scan per chunk run in parallel,
// a sequential scan of the (few) chunk totals, and a parallel add-back
// of each chunk's base offset.
func ExclusivePrefixSum(eng engine.Engine, v []int) {
	n := len(v)
	if n == 0 {
		return
	}

	numChunks := eng.Workers()
	if numChunks > n {
		numChunks = n
	}
	if numChunks < 1 {
		numChunks = 1
	}
	chunkLen := (n + numChunks - 1) / numChunks
	chunkTotal := make([]int, numChunks)

	eng.ParallelFor(numChunks, func(c int) {
		start, end := chunkBounds(c, chunkLen, n)
		if start >= end {
			return
		}
		running := 0
		for i := start; i < end; i++ {
			cur := v[i]
			v[i] = running
			running += cur
		}
		chunkTotal[c] = running
	})
	eng.Fence()

	offset := 0
	for c := 0; c < numChunks; c++ {
		total := chunkTotal[c]
		chunkTotal[c] = offset
		offset += total
	}

	eng.ParallelFor(numChunks, func(c int) {
		start, end := chunkBounds(c, chunkLen, n)
		base := chunkTotal[c]
		if start >= end || base == 0 {
			return
		}
		for i := start; i < end; i++ {
			v[i] += base
		}
	})
	eng.Fence()
}

func chunkBounds(c, chunkLen, n int) (start, end int) {
	start = c * chunkLen
	end = start + chunkLen
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}

// MinMaxReduce returns the box covering every point in pts.
func MinMaxReduce(eng engine.Engine, pts []geom.Point) geom.Box {
	return reduceBoxes(eng, len(pts), func(i int) geom.Box { return geom.BoxFromPoint(pts[i]) })
}

// UnionReduce returns the union of every box in boxes (Phase B1's scene
// bound computation).
func UnionReduce(eng engine.Engine, boxes []geom.Box) geom.Box {
	return reduceBoxes(eng, len(boxes), func(i int) geom.Box { return boxes[i] })
}

func reduceBoxes(eng engine.Engine, n int, at func(i int) geom.Box) geom.Box {
	if n == 0 {
		return geom.EmptyBox()
	}

	numChunks := eng.Workers()
	if numChunks > n {
		numChunks = n
	}
	if numChunks < 1 {
		numChunks = 1
	}
	chunkLen := (n + numChunks - 1) / numChunks
	partials := make([]geom.Box, numChunks)
	for i := range partials {
		partials[i] = geom.EmptyBox()
	}

	eng.ParallelFor(numChunks, func(c int) {
		start, end := chunkBounds(c, chunkLen, n)
		acc := geom.EmptyBox()
		for i := start; i < end; i++ {
			acc = acc.Expand(at(i))
		}
		partials[c] = acc
	})
	eng.Fence()

	result := geom.EmptyBox()
	for _, p := range partials {
		result = result.Expand(p)
	}
	return result
}

