package lbvh

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/achilleasa/go-lbvh/engine"
	"github.com/achilleasa/go-lbvh/geom"
	"github.com/achilleasa/go-lbvh/morton"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) geom.Box {
	return geom.Box{Min: geom.XYZ(minX, minY, minZ), Max: geom.XYZ(maxX, maxY, maxZ)}
}

func cube(cx, cy, cz, half float64) geom.Box {
	return box(cx-half, cy-half, cz-half, cx+half, cy+half, cz+half)
}

// --- S1 — single box ---------------------------------------------------

func TestSingleBox(t *testing.T) {
	boxes := []geom.Box{box(0, 0, 0, 1, 1, 1)}
	bv := New(engine.CPU(2), boxes)

	require.Equal(t, 1, bv.Size())
	require.Equal(t, boxes[0], bv.Bounds())

	res := bv.Query(engine.CPU(2), []Query{SpatialBoxQuery(box(0.5, 0.5, 0.5, 0.6, 0.6, 0.6))})
	require.Equal(t, []int{0, 1}, res.Offset)
	require.Equal(t, []int32{0}, res.Indices)

	res = bv.Query(engine.CPU(2), []Query{SpatialBoxQuery(box(2, 2, 2, 3, 3, 3))})
	require.Equal(t, []int{0, 0}, res.Offset)
	require.Empty(t, res.Indices)
}

// --- S2 — empty tree -----------------------------------------------------

func TestEmptyTree(t *testing.T) {
	bv := New(engine.CPU(2), nil)
	require.Equal(t, 0, bv.Size())
	require.True(t, bv.Empty())
	require.True(t, bv.Bounds().IsEmpty())

	res := bv.Query(engine.CPU(2), []Query{
		SpatialBoxQuery(box(0, 0, 0, 1, 1, 1)),
		NearestQuery(geom.XYZ(0, 0, 0), 3),
		SpatialBoxQuery(box(-1, -1, -1, -0.5, -0.5, -0.5)),
	})
	require.Equal(t, []int{0, 0, 0, 0}, res.Offset)
	require.Empty(t, res.Indices)
}

// --- S3 — four-corner unit grid -----------------------------------------

func TestFourCornerGridNearest(t *testing.T) {
	boxes := []geom.Box{
		cube(0, 0, 0, 0.1),
		cube(1, 0, 0, 0.1),
		cube(0, 1, 0, 0.1),
		cube(1, 1, 0, 0.1),
	}
	bv := New(engine.CPU(2), boxes)

	res := bv.Query(engine.CPU(2), []Query{NearestQuery(geom.XYZ(0.9, 0.1, 0.0), 1)})
	require.Equal(t, []int{0, 1}, res.Offset)
	require.Equal(t, []int32{1}, res.Indices)

	// All four corners are equidistant from (0.5,0.5,0); ties break by
	// ascending original index, so the two closest are 0 and 1.
	res = bv.Query(engine.CPU(2), []Query{NearestQuery(geom.XYZ(0.5, 0.5, 0.0), 2)})
	require.Equal(t, []int{0, 2}, res.Offset)
	require.Equal(t, []int32{0, 1}, res.Indices)
}

// --- S4 — overlapping boxes -----------------------------------------------

func TestOverlappingBoxes(t *testing.T) {
	b := box(0, 0, 0, 1, 1, 1)
	boxes := []geom.Box{b, b, b}
	bv := New(engine.CPU(3), boxes)

	res := bv.Query(engine.CPU(3), []Query{SpatialBoxQuery(b)})
	require.Equal(t, []int{0, 3}, res.Offset)
	require.ElementsMatch(t, []int32{0, 1, 2}, res.Indices)
}

// --- S5 — co-located points (Morton ties) --------------------------------

func TestColocatedPointsWellFormed(t *testing.T) {
	b := box(0, 0, 0, 0, 0, 0)
	boxes := make([]geom.Box, 8)
	for i := range boxes {
		boxes[i] = b
	}
	tr := Build(engine.CPU(4), boxes)

	require.NoError(t, checkInvariants(tr, boxes))

	res := tr.Query(engine.CPU(4), []Query{SpatialPointQuery(geom.XYZ(0, 0, 0))})
	require.Equal(t, []int{0, 8}, res.Offset)
	require.ElementsMatch(t, []int32{0, 1, 2, 3, 4, 5, 6, 7}, res.Indices)
}

func TestKarrasAllEqualMortonCodes(t *testing.T) {
	n := 16
	boxes := make([]geom.Box, n)
	for i := range boxes {
		boxes[i] = box(0, 0, 0, 0, 0, 0)
	}
	tr := Build(engine.CPU(4), boxes)
	require.NoError(t, checkInvariants(tr, boxes))
}

// --- S6 — k larger than N ------------------------------------------------

func TestNearestKLargerThanN(t *testing.T) {
	boxes := []geom.Box{
		cube(0, 0, 0, 0.1),
		cube(5, 0, 0, 0.1),
		cube(0, 5, 0, 0.1),
	}
	bv := New(engine.CPU(2), boxes)

	res := bv.Query(engine.CPU(2), []Query{NearestQuery(geom.XYZ(0, 0, 0), 5)})
	require.Equal(t, []int{0, 5}, res.Offset)
	require.Len(t, res.Indices, 5)

	for i := 0; i < 3; i++ {
		require.GreaterOrEqual(t, res.Indices[i], int32(0))
	}
	for i := 3; i < 5; i++ {
		require.Equal(t, int32(-1), res.Indices[i])
		require.True(t, math.IsInf(res.Distances[i], 1))
	}
}

// --- Property-based invariants --------------------------------------------

func TestInvariantsRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		n := rng.Intn(60) + 1
		boxes := make([]geom.Box, n)
		for i := range boxes {
			cx := rng.Float64()*20 - 10
			cy := rng.Float64()*20 - 10
			cz := rng.Float64()*20 - 10
			boxes[i] = cube(cx, cy, cz, rng.Float64()*0.5+0.01)
		}
		tr := Build(engine.CPU(4), boxes)
		require.NoError(t, checkInvariants(tr, boxes))
	}
}

func TestSpatialQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	boxes := make([]geom.Box, 200)
	for i := range boxes {
		cx := rng.Float64() * 10
		cy := rng.Float64() * 10
		cz := rng.Float64() * 10
		boxes[i] = cube(cx, cy, cz, 0.3)
	}
	bv := New(engine.Default(), boxes)

	queries := make([]Query, 30)
	for i := range queries {
		cx := rng.Float64() * 10
		cy := rng.Float64() * 10
		cz := rng.Float64() * 10
		queries[i] = SpatialBoxQuery(cube(cx, cy, cz, 1.0))
	}

	res := bv.Query(engine.Default(), queries)
	for i, q := range queries {
		want := map[int32]bool{}
		for j, b := range boxes {
			if b.Intersects(q.Region) {
				want[int32(j)] = true
			}
		}
		got := res.Indices[res.Offset[i]:res.Offset[i+1]]
		require.Len(t, got, len(want))
		for _, idx := range got {
			require.True(t, want[idx], "unexpected hit %d for query %d", idx, i)
		}
	}
}

func TestNearestQueryMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	boxes := make([]geom.Box, 150)
	for i := range boxes {
		cx := rng.Float64() * 10
		cy := rng.Float64() * 10
		cz := rng.Float64() * 10
		boxes[i] = cube(cx, cy, cz, 0.2)
	}
	bv := New(engine.Default(), boxes)

	points := make([]geom.Point, 15)
	const k = 5
	queries := make([]Query, len(points))
	for i := range points {
		points[i] = geom.XYZ(rng.Float64()*10, rng.Float64()*10, rng.Float64()*10)
		queries[i] = NearestQuery(points[i], k)
	}

	res := bv.Query(engine.Default(), queries)
	for i, p := range points {
		type cand struct {
			dist float64
			idx  int32
		}
		all := make([]cand, len(boxes))
		for j, b := range boxes {
			all[j] = cand{dist: b.Distance(p), idx: int32(j)}
		}
		sort.Slice(all, func(a, b int) bool {
			if all[a].dist != all[b].dist {
				return all[a].dist < all[b].dist
			}
			return all[a].idx < all[b].idx
		})

		got := res.Indices[res.Offset[i]:res.Offset[i+1]]
		for j := 0; j < k; j++ {
			require.Equal(t, all[j].idx, got[j], "query %d slot %d", i, j)
		}
	}
}

func TestQueryIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	boxes := make([]geom.Box, 80)
	for i := range boxes {
		boxes[i] = cube(rng.Float64()*10, rng.Float64()*10, rng.Float64()*10, 0.25)
	}
	bv := New(engine.CPU(4), boxes)
	queries := []Query{
		SpatialBoxQuery(cube(5, 5, 5, 3)),
		NearestQuery(geom.XYZ(1, 1, 1), 4),
	}

	first := bv.Query(engine.CPU(4), queries)
	second := bv.Query(engine.CPU(4), queries)

	require.Equal(t, first.Offset, second.Offset)
	require.Equal(t, first.Indices, second.Indices)
	require.Equal(t, first.Distances, second.Distances)
}

func TestOffsetTotalsMatchPerQueryCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	boxes := make([]geom.Box, 40)
	for i := range boxes {
		boxes[i] = cube(rng.Float64()*5, rng.Float64()*5, rng.Float64()*5, 0.2)
	}
	bv := New(engine.CPU(4), boxes)
	queries := make([]Query, 10)
	for i := range queries {
		queries[i] = SpatialBoxQuery(cube(rng.Float64()*5, rng.Float64()*5, rng.Float64()*5, 1))
	}

	res := bv.Query(engine.CPU(4), queries)
	sum := 0
	for i := range queries {
		sum += res.Offset[i+1] - res.Offset[i]
	}
	require.Equal(t, sum, res.Offset[len(queries)])
	require.Equal(t, len(res.Indices), res.Offset[len(queries)])
}

func TestCompactRemovesSentinels(t *testing.T) {
	boxes := []geom.Box{cube(0, 0, 0, 0.1), cube(1, 0, 0, 0.1)}
	bv := New(engine.CPU(2), boxes)
	res := bv.Query(engine.CPU(2), []Query{NearestQuery(geom.XYZ(0, 0, 0), 5)})

	offset := append([]int(nil), res.Offset...)
	indices, distances := Compact(offset, res.Indices, res.Distances)

	require.Len(t, indices, 2)
	require.Len(t, distances, 2)
	require.Equal(t, []int{0, 2}, offset)
	for _, d := range distances {
		require.False(t, math.IsInf(d, 1))
	}
}

// checkInvariants verifies, against a freshly built tree, that indices is
// a permutation, that the union of the leaf boxes equals Bounds(), that
// every internal box is the union of its children's boxes, and that leaf
// Morton codes are non-decreasing.
func checkInvariants(tr *Tree, boxes []geom.Box) error {
	n := len(boxes)
	if n == 0 {
		return nil
	}

	seen := make([]bool, n)
	for _, idx := range tr.indices {
		if idx < 0 || int(idx) >= n || seen[idx] {
			return errInvariant("indices is not a permutation")
		}
		seen[idx] = true
	}

	union := geom.EmptyBox()
	for _, leaf := range tr.leaves {
		union = union.Expand(leaf.Bounds)
	}
	if union != tr.Bounds() {
		return errInvariant("union of leaves does not equal bounds()")
	}

	for _, node := range tr.internal {
		want := tr.boundsAt(node.Left).Expand(tr.boundsAt(node.Right))
		if want != node.Bounds {
			return errInvariant("internal node box is not the union of its children")
		}
	}

	if n > 1 {
		scene := tr.Bounds()
		prev := uint32(0)
		for i, leaf := range tr.leaves {
			code := morton.Encode(leaf.Bounds.Centroid(), scene)
			if i > 0 && code < prev {
				return errInvariant("leaf morton codes are not non-decreasing")
			}
			prev = code
		}
	}

	return nil
}

type invariantError string

func (e invariantError) Error() string { return string(e) }

func errInvariant(msg string) error { return invariantError(msg) }
