package lbvh

import "github.com/achilleasa/go-lbvh/geom"

// Tree is the immutable node storage produced by Build. Address space:
// a child index c refers to internal[c] when c < len(internal), else to
// leaves[c-len(internal)] — Karras' scheme requires this disjoint
// numbering so a single int32 can name either array without a tag bit.
type Tree struct {
	leaves   []Node
	internal []Node
	indices  []int32
}

// Size returns the number of indexed boxes (N).
func (t *Tree) Size() int { return len(t.leaves) }

// Empty reports whether the tree indexes zero boxes.
func (t *Tree) Empty() bool { return len(t.leaves) == 0 }

// Bounds returns the tight bound of every indexed box, or the empty box
// for an empty tree.
func (t *Tree) Bounds() geom.Box {
	switch {
	case t.Empty():
		return geom.EmptyBox()
	case len(t.leaves) == 1:
		return t.leaves[0].Bounds
	default:
		return t.internal[0].Bounds
	}
}

// Indices returns the leaf permutation: Indices()[i] is the original
// input index of the i-th leaf (leaves are ordered by ascending Morton
// code of their centroid).
func (t *Tree) Indices() []int32 {
	return t.indices
}

func (t *Tree) isLeafAddr(addr int32) bool {
	return int(addr) >= len(t.internal)
}

func (t *Tree) boundsAt(addr int32) geom.Box {
	if t.isLeafAddr(addr) {
		return t.leaves[int(addr)-len(t.internal)].Bounds
	}
	return t.internal[addr].Bounds
}

func (t *Tree) originalIndex(leafAddr int32) int32 {
	return t.indices[int(leafAddr)-len(t.internal)]
}

func leafAddr(numInternal int, local int32) int32 {
	return int32(numInternal) + local
}
