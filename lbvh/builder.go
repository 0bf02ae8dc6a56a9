package lbvh

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/achilleasa/go-lbvh/engine"
	"github.com/achilleasa/go-lbvh/geom"
	"github.com/achilleasa/go-lbvh/log"
	"github.com/achilleasa/go-lbvh/morton"
	"github.com/achilleasa/go-lbvh/parallel"
)

var logger = log.New("lbvh")

// Build constructs a Tree over boxes, dispatching the five construction
// phases (scene bound, Morton codes, sort, Karras linking, bottom-up box
// aggregation) across eng, fencing between each. The input slice is not
// retained.
func Build(eng engine.Engine, boxes []geom.Box) *Tree {
	n := len(boxes)
	if n == 0 {
		logger.Debug("build: 0 boxes, returning empty tree")
		return &Tree{}
	}
	if n == 1 {
		logger.Debug("build: 1 box, single-leaf tree")
		return &Tree{
			leaves:  []Node{{Bounds: boxes[0], Left: nullChild, Right: nullChild}},
			indices: []int32{0},
		}
	}

	start := time.Now()

	// B1 — scene bound.
	scene := parallel.UnionReduce(eng, boxes)
	logger.Debugf("build: B1 scene bound = %+v", scene)

	// B2 — Morton codes.
	codes := make([]uint32, n)
	eng.ParallelFor(n, func(i int) {
		codes[i] = morton.Encode(boxes[i].Centroid(), scene)
	})
	eng.Fence()

	// B3 — stable sort permutation.
	order := make([]int32, n)
	for i := range order {
		order[i] = int32(i)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return codes[order[a]] < codes[order[b]]
	})

	sortedCodes := make([]uint32, n)
	leaves := make([]Node, n)
	for i, idx := range order {
		sortedCodes[i] = codes[idx]
		leaves[i] = Node{Bounds: boxes[idx], Left: nullChild, Right: nullChild}
	}

	numInternal := n - 1
	internal := make([]Node, numInternal)

	// parent is construction-time scratch: written here in B4, read in
	// B5, and discarded once the tree is returned.
	parent := make([]int32, numInternal+n)
	parent[0] = -1

	// B4 — Karras internal-node linking.
	eng.ParallelFor(numInternal, func(i int) {
		first, last := determineRange(sortedCodes, i)
		split := findSplit(sortedCodes, first, last)

		var left, right int32
		if split == first {
			left = leafAddr(numInternal, int32(split))
		} else {
			left = int32(split)
		}
		if split+1 == last {
			right = leafAddr(numInternal, int32(split+1))
		} else {
			right = int32(split + 1)
		}

		internal[i].Left = left
		internal[i].Right = right
		parent[left] = int32(i)
		parent[right] = int32(i)
	})
	eng.Fence()

	// B5 — bottom-up bounding-box aggregation. Each leaf ascends via its
	// parent pointer; the first arrival at a node exits, the second
	// unions the two now-final child boxes and continues upward.
	counters := make([]int32, numInternal)
	boundsAt := func(addr int32) geom.Box {
		if int(addr) >= numInternal {
			return leaves[int(addr)-numInternal].Bounds
		}
		return internal[addr].Bounds
	}
	eng.ParallelFor(n, func(i int) {
		node := leafAddr(numInternal, int32(i))
		for {
			p := parent[node]
			if p < 0 {
				return
			}
			if atomic.AddInt32(&counters[p], 1) < 2 {
				return
			}
			internal[p].Bounds = boundsAt(internal[p].Left).Expand(boundsAt(internal[p].Right))
			node = p
		}
	})
	eng.Fence()

	logger.Debugf(
		"build: %d boxes, %d internal nodes, %d workers, %s",
		n, numInternal, eng.Workers(), time.Since(start),
	)

	return &Tree{
		leaves:   leaves,
		internal: internal,
		indices:  order,
	}
}
