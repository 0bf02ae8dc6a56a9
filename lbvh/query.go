package lbvh

import (
	"math"

	"github.com/achilleasa/go-lbvh/engine"
	"github.com/achilleasa/go-lbvh/geom"
	"github.com/achilleasa/go-lbvh/parallel"
)

// PredicateKind selects which traversal a Query dispatches to.
type PredicateKind int

const (
	// SpatialPredicate tests leaf boxes for intersection with Region.
	SpatialPredicate PredicateKind = iota
	// NearestPredicate finds the K leaves nearest to Point.
	NearestPredicate
)

// Query is one entry of a batched query view. Region carries the target
// for a spatial query (a point target is represented as its degenerate
// box); Point and K carry the target for a nearest query.
type Query struct {
	Kind   PredicateKind
	Region geom.Box
	Point  geom.Point
	K      int
}

// SpatialBoxQuery builds a spatial query that hits every leaf box
// intersecting region.
func SpatialBoxQuery(region geom.Box) Query {
	return Query{Kind: SpatialPredicate, Region: region}
}

// SpatialPointQuery builds a spatial query that hits every leaf box
// containing p.
func SpatialPointQuery(p geom.Point) Query {
	return Query{Kind: SpatialPredicate, Region: geom.BoxFromPoint(p)}
}

// NearestQuery builds a query for the k leaves nearest to p. It panics
// if k is negative, a precondition violation per the library's
// construction/query-shape error discipline.
func NearestQuery(p geom.Point, k int) Query {
	if k < 0 {
		panic("lbvh: nearest query k must be >= 0")
	}
	return Query{Kind: NearestPredicate, Point: p, K: k}
}

// Result is the CSR-encoded output of a batched Query call. Offset has
// length len(queries)+1; Indices has length Offset[len(queries)].
// Distances is nil unless the batch contained at least one nearest
// query, in which case it has the same length as Indices and pairs with
// it slot for slot.
type Result struct {
	Offset    []int
	Indices   []int32
	Distances []float64
}

// Query runs the two-pass CSR protocol against t: a count-only pass
// sizes Offset via an exclusive prefix sum, then a second pass
// re-traverses each query and writes its hits into the now-known slots.
// Both passes are dispatched across eng.
func (t *Tree) Query(eng engine.Engine, queries []Query) Result {
	q := len(queries)
	offset := make([]int, q+1)
	if q == 0 {
		return Result{Offset: offset}
	}

	needDistances := false
	for i := range queries {
		if queries[i].Kind == NearestPredicate {
			needDistances = true
			break
		}
	}

	if t.Empty() {
		result := Result{Offset: offset, Indices: []int32{}}
		if needDistances {
			result.Distances = []float64{}
		}
		return result
	}

	// Pass 0 — count only. offset[q] starts at 0 so that the exclusive
	// scan below leaves it holding the grand total of offset[0:q].
	eng.ParallelFor(q, func(i int) {
		offset[i] = t.queryCount(queries[i])
	})
	eng.Fence()

	parallel.ExclusivePrefixSum(eng, offset)
	total := parallel.LastElement(offset)

	indices := make([]int32, total)
	parallel.Fill(eng, indices, int32(-1))

	var distances []float64
	if needDistances {
		distances = make([]float64, total)
		parallel.Fill(eng, distances, math.Inf(1))
	}

	// Pass 1 — write. Query i's hits land in [offset[i], offset[i+1]).
	eng.ParallelFor(q, func(i int) {
		switch queries[i].Kind {
		case NearestPredicate:
			t.queryDispatchNearest(queries[i], offset[i], indices, distances)
		default:
			t.queryDispatchSpatial(queries[i], offset[i], indices)
		}
	})
	eng.Fence()

	return Result{Offset: offset, Indices: indices, Distances: distances}
}

// queryCount sizes q's slot range for pass 0: a nearest query always
// claims exactly K slots, a spatial query claims exactly as many as it
// will hit, found by running the same traversal pass 1 will use.
func (t *Tree) queryCount(q Query) int {
	if q.Kind == NearestPredicate {
		return q.K
	}
	count := 0
	t.traverseSpatial(q.Region, func(int32) { count++ })
	return count
}

// queryDispatchSpatial is pass 1's write path for a spatial query,
// writing hits starting at slot.
func (t *Tree) queryDispatchSpatial(q Query, slot int, indices []int32) {
	t.traverseSpatial(q.Region, func(idx int32) {
		indices[slot] = idx
		slot++
	})
}

// queryDispatchNearest is pass 1's write path for a nearest query,
// writing hits and their distances starting at slot.
func (t *Tree) queryDispatchNearest(q Query, slot int, indices []int32, distances []float64) {
	t.traverseNearest(q.Point, q.K, func(dist float64, idx int32) {
		indices[slot] = idx
		distances[slot] = dist
		slot++
	})
}
