// Package lbvh implements the parallel linear bounding volume hierarchy:
// construction (Karras internal-node linking plus bottom-up bounding-box
// aggregation), stackless traversal, and the two-pass CSR query
// dispatcher described in spec.md §4.4-§4.7.
//
// Traversal is colocated with the tree type rather than routed through
// accessor methods, mirroring the "friend-class access to internals"
// design note: node arrays are unexported fields read directly by the
// traversal code in this same package.
package lbvh

import "github.com/achilleasa/go-lbvh/geom"

// nullChild is the sentinel child index for a leaf node.
const nullChild int32 = -1

// Node is a tagged record used for both leaf and internal nodes. Leaves
// have Left == Right == nullChild; a leaf's original input index is not
// stored here but recovered via the tree's permutation array.
type Node struct {
	Bounds      geom.Box
	Left, Right int32
}

func (n Node) isLeaf() bool {
	return n.Left == nullChild && n.Right == nullChild
}
