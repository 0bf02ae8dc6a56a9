package lbvh

import (
	"github.com/achilleasa/go-lbvh/engine"
	"github.com/achilleasa/go-lbvh/geom"
)

// BVH is the public facade: it owns the constructed Tree and exposes the
// small surface callers need without leaking node-array internals.
type BVH struct {
	tree *Tree
}

// New builds a BVH over boxes, dispatching construction across eng. The
// input slice is not retained.
func New(eng engine.Engine, boxes []geom.Box) *BVH {
	return &BVH{tree: Build(eng, boxes)}
}

// Size returns the number of indexed boxes.
func (b *BVH) Size() int { return b.tree.Size() }

// Empty reports whether the BVH indexes zero boxes.
func (b *BVH) Empty() bool { return b.tree.Empty() }

// Bounds returns the union of every indexed box, or the empty box.
func (b *BVH) Bounds() geom.Box { return b.tree.Bounds() }

// Indices returns the leaf permutation into the original input slice.
func (b *BVH) Indices() []int32 { return b.tree.Indices() }

// Query runs a batch of queries against the BVH; see Tree.Query.
func (b *BVH) Query(eng engine.Engine, queries []Query) Result {
	return b.tree.Query(eng, queries)
}

// Compact removes the (-1, +Inf) sentinel slots a batch of nearest
// queries leaves behind when a query returns fewer than k hits. It
// returns new, densely-packed indices and distances slices and rewrites
// offset in place to describe the compacted layout; it does not change
// the number of queries offset describes.
func Compact(offset []int, indices []int32, distances []float64) ([]int32, []float64) {
	q := len(offset) - 1
	newIndices := make([]int32, 0, len(indices))
	var newDistances []float64
	if distances != nil {
		newDistances = make([]float64, 0, len(distances))
	}

	newOffset := make([]int, q+1)
	for i := 0; i < q; i++ {
		start, end := offset[i], offset[i+1]
		for j := start; j < end; j++ {
			if indices[j] < 0 {
				continue
			}
			newIndices = append(newIndices, indices[j])
			if distances != nil {
				newDistances = append(newDistances, distances[j])
			}
		}
		newOffset[i+1] = len(newIndices)
	}
	copy(offset, newOffset)

	return newIndices, newDistances
}
