package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Box is an axis-aligned bounding box. The empty box has Min = +Inf and
// Max = -Inf along every axis so that expanding it with any box yields
// that box unchanged.
type Box struct {
	Min, Max Point
}

// EmptyBox returns the distinguished empty box, the identity element for
// Expand.
func EmptyBox() Box {
	return Box{
		Min: Point{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// BoxFromPoint returns the degenerate box containing only p.
func BoxFromPoint(p Point) Box {
	return Box{Min: p, Max: p}
}

// IsEmpty reports whether b is the empty box.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Expand returns the smallest box containing b ∪ o.
func (b Box) Expand(o Box) Box {
	return Box{
		Min: Point{minF(b.Min.X, o.Min.X), minF(b.Min.Y, o.Min.Y), minF(b.Min.Z, o.Min.Z)},
		Max: Point{maxF(b.Max.X, o.Max.X), maxF(b.Max.Y, o.Max.Y), maxF(b.Max.Z, o.Max.Z)},
	}
}

// ExpandPoint returns the smallest box containing b ∪ {p}.
func (b Box) ExpandPoint(p Point) Box {
	return b.Expand(BoxFromPoint(p))
}

// Centroid returns the midpoint of b.
func (b Box) Centroid() Point {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies within b (inclusive).
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether b and o overlap on every axis.
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// Distance returns the Euclidean distance from p to the nearest point of
// b, or 0 if p is inside b.
func (b Box) Distance(p Point) float64 {
	dx := axisGap(b.Min.X, b.Max.X, p.X)
	dy := axisGap(b.Min.Y, b.Max.Y, p.Y)
	dz := axisGap(b.Min.Z, b.Max.Z, p.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func axisGap(lo, hi, v float64) float64 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

func minF[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxF[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}
