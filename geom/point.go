// Package geom provides the axis-aligned bounding box and point primitives
// shared by the Morton codec and the LBVH builder/traversal.
package geom

import "math"

// Point is a 3-component point in double precision.
type Point struct {
	X, Y, Z float64
}

// XYZ builds a Point from its three components.
func XYZ(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float64) Point {
	return Point{p.X * s, p.Y * s, p.Z * s}
}

// Dot returns the dot product of p and q.
func (p Point) Dot(q Point) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z
}

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 {
	return math.Sqrt(p.Dot(p))
}

// Axis returns the component of p along the given axis (0=x, 1=y, 2=z).
func (p Point) Axis(axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}
