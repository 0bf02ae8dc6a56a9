package lbvh

import (
	"container/heap"
	"sort"

	"github.com/achilleasa/go-lbvh/geom"
)

// traverseSpatial invokes hit(originalIndex) for every leaf whose
// bounding box intersects region, in depth-first, left-child-first
// order. It is stackless in the sense that requires: descent uses a
// fixed 64-deep local array rather than the call stack, matching the
// bound on tree depth (2*ceil(log2 N)).
func (t *Tree) traverseSpatial(region geom.Box, hit func(idx int32)) {
	if t.Empty() {
		return
	}
	if len(t.internal) == 0 {
		if t.leaves[0].Bounds.Intersects(region) {
			hit(t.indices[0])
		}
		return
	}
	if !t.internal[0].Bounds.Intersects(region) {
		return
	}

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		addr := stack[sp]

		if t.isLeafAddr(addr) {
			hit(t.originalIndex(addr))
			continue
		}

		node := t.internal[addr]
		right, left := node.Right, node.Left

		// Right is pushed first so that left, pushed last, is the
		// next one popped: this preserves left-first depth-first
		// order for the resulting descent.
		if t.boundsAt(right).Intersects(region) {
			stack[sp] = right
			sp++
		}
		if t.boundsAt(left).Intersects(region) {
			stack[sp] = left
			sp++
		}
	}
}

type heapItem struct {
	dist float64
	idx  int32
}

// maxHeap is a bounded max-heap ordered by descending distance, with
// ties broken toward evicting the larger original index first so that,
// on final emission, equal-distance survivors are the smallest-index
// ones.
type maxHeap []heapItem

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist > h[j].dist
	}
	return h[i].idx > h[j].idx
}
func (h maxHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) {
	*h = append(*h, x.(heapItem))
}
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// isBetter reports whether a should be preferred over b as a nearest
// candidate: closer distance wins, equal distance is broken by ascending
// original index.
func isBetter(a, b heapItem) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.idx < b.idx
}

func tryInsert(h *maxHeap, k int, item heapItem) {
	if h.Len() < k {
		heap.Push(h, item)
		return
	}
	if k == 0 {
		return
	}
	if isBetter(item, (*h)[0]) {
		(*h)[0] = item
		heap.Fix(h, 0)
	}
}

func prune(h *maxHeap, k int, minDist float64) bool {
	return h.Len() == k && minDist > (*h)[0].dist
}

// traverseNearest invokes hit(distance, originalIndex) for the k leaves
// closest to point, in ascending-distance order (ties broken by
// ascending original index). Descent always visits the closer child
// first and prunes subtrees whose minimum possible distance cannot beat
// the current worst retained candidate.
func (t *Tree) traverseNearest(point geom.Point, k int, hit func(dist float64, idx int32)) {
	if t.Empty() || k == 0 {
		return
	}

	if len(t.internal) == 0 {
		hit(t.leaves[0].Bounds.Distance(point), t.indices[0])
		return
	}

	h := make(maxHeap, 0, k)

	var stack [64]int32
	sp := 0
	stack[sp] = 0
	sp++

	for sp > 0 {
		sp--
		addr := stack[sp]

		if t.isLeafAddr(addr) {
			d := t.boundsAt(addr).Distance(point)
			tryInsert(&h, k, heapItem{dist: d, idx: t.originalIndex(addr)})
			continue
		}

		node := t.internal[addr]
		leftAddr, rightAddr := node.Left, node.Right
		leftDist := t.boundsAt(leftAddr).Distance(point)
		rightDist := t.boundsAt(rightAddr).Distance(point)

		if leftDist > rightDist {
			leftAddr, rightAddr = rightAddr, leftAddr
			leftDist, rightDist = rightDist, leftDist
		}

		if !prune(&h, k, rightDist) {
			stack[sp] = rightAddr
			sp++
		}
		if !prune(&h, k, leftDist) {
			stack[sp] = leftAddr
			sp++
		}
	}

	emitSorted(h, hit)
}

func emitSorted(h maxHeap, hit func(dist float64, idx int32)) {
	items := append(maxHeap(nil), h...)
	sort.Slice(items, func(i, j int) bool {
		return isBetter(items[i], items[j])
	})
	for _, it := range items {
		hit(it.dist, it.idx)
	}
}
