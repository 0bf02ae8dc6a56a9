package geom

import (
	"math"
	"testing"
)

func TestEmptyBoxIsIdentityForExpand(t *testing.T) {
	b := Box{Min: XYZ(1, 2, 3), Max: XYZ(4, 5, 6)}
	got := EmptyBox().Expand(b)
	if got != b {
		t.Fatalf("expected EmptyBox().Expand(b) == b; got %+v", got)
	}
}

func TestExpandUnion(t *testing.T) {
	a := Box{Min: XYZ(0, 0, 0), Max: XYZ(1, 1, 1)}
	b := Box{Min: XYZ(-1, 2, 0.5), Max: XYZ(0.5, 3, 2)}
	got := a.Expand(b)
	want := Box{Min: XYZ(-1, 0, 0), Max: XYZ(1, 3, 2)}
	if got != want {
		t.Fatalf("expected %+v; got %+v", want, got)
	}
}

func TestContains(t *testing.T) {
	b := Box{Min: XYZ(0, 0, 0), Max: XYZ(1, 1, 1)}
	if !b.Contains(XYZ(0.5, 0.5, 0.5)) {
		t.Fatal("expected center point to be contained")
	}
	if b.Contains(XYZ(2, 0, 0)) {
		t.Fatal("expected point outside box to not be contained")
	}
}

func TestIntersects(t *testing.T) {
	a := Box{Min: XYZ(0, 0, 0), Max: XYZ(1, 1, 1)}
	touching := Box{Min: XYZ(1, 1, 1), Max: XYZ(2, 2, 2)}
	if !a.Intersects(touching) {
		t.Fatal("expected boxes sharing a corner to intersect")
	}
	disjoint := Box{Min: XYZ(2, 2, 2), Max: XYZ(3, 3, 3)}
	if a.Intersects(disjoint) {
		t.Fatal("expected disjoint boxes to not intersect")
	}
}

func TestDistance(t *testing.T) {
	b := Box{Min: XYZ(0, 0, 0), Max: XYZ(1, 1, 1)}
	if d := b.Distance(XYZ(0.5, 0.5, 0.5)); d != 0 {
		t.Fatalf("expected 0 distance for interior point; got %v", d)
	}
	got := b.Distance(XYZ(2, 0, 0))
	if math.Abs(got-1) > 1e-12 {
		t.Fatalf("expected distance 1; got %v", got)
	}
	got = b.Distance(XYZ(2, 2, 1))
	want := math.Sqrt(2)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected distance %v; got %v", want, got)
	}
}
