package parallel

import (
	"testing"

	"github.com/achilleasa/go-lbvh/engine"
	"github.com/achilleasa/go-lbvh/geom"
)

func TestExclusivePrefixSum(t *testing.T) {
	eng := engine.CPU(4)
	v := []int{2, 2, 2, 2, 0}
	ExclusivePrefixSum(eng, v)
	want := []int{0, 2, 4, 6, 8}
	for i := range v {
		if v[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d (full: %v)", i, v[i], want[i], v)
		}
	}
}

func TestExclusivePrefixSumSingleElement(t *testing.T) {
	eng := engine.CPU(4)
	v := []int{5}
	ExclusivePrefixSum(eng, v)
	if v[0] != 0 {
		t.Fatalf("expected single-element scan to be [0]; got %v", v)
	}
}

func TestExclusivePrefixSumMatchesSequentialReference(t *testing.T) {
	eng := engine.CPU(6)
	orig := []int{3, 0, 5, 1, 9, 2, 7, 4, 6, 8, 0, 1, 2, 3, 4, 5, 0}
	want := make([]int, len(orig))
	running := 0
	for i, x := range orig {
		want[i] = running
		running += x
	}

	got := append([]int(nil), orig...)
	ExclusivePrefixSum(eng, got)

	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestFill(t *testing.T) {
	eng := engine.CPU(4)
	v := make([]int32, 100)
	Fill(eng, v, int32(-1))
	for i, x := range v {
		if x != -1 {
			t.Fatalf("index %d not filled: got %d", i, x)
		}
	}
}

func TestUnionReduce(t *testing.T) {
	eng := engine.CPU(4)
	boxes := []geom.Box{
		{Min: geom.XYZ(0, 0, 0), Max: geom.XYZ(1, 1, 1)},
		{Min: geom.XYZ(-1, -1, -1), Max: geom.XYZ(0.5, 0.5, 0.5)},
		{Min: geom.XYZ(2, 2, 2), Max: geom.XYZ(3, 3, 3)},
	}
	got := UnionReduce(eng, boxes)
	want := geom.Box{Min: geom.XYZ(-1, -1, -1), Max: geom.XYZ(3, 3, 3)}
	if got != want {
		t.Fatalf("expected %+v; got %+v", want, got)
	}
}

func TestUnionReduceEmpty(t *testing.T) {
	eng := engine.CPU(4)
	got := UnionReduce(eng, nil)
	if !got.IsEmpty() {
		t.Fatalf("expected empty reduce over no boxes to be empty; got %+v", got)
	}
}

func TestMinMaxReduce(t *testing.T) {
	eng := engine.CPU(4)
	pts := []geom.Point{
		geom.XYZ(1, 5, -2),
		geom.XYZ(-3, 0, 4),
		geom.XYZ(2, 2, 2),
	}
	got := MinMaxReduce(eng, pts)
	want := geom.Box{Min: geom.XYZ(-3, 0, -2), Max: geom.XYZ(2, 5, 4)}
	if got != want {
		t.Fatalf("expected %+v; got %+v", want, got)
	}
}

func TestMinMaxReduceEmpty(t *testing.T) {
	eng := engine.CPU(4)
	got := MinMaxReduce(eng, nil)
	if !got.IsEmpty() {
		t.Fatalf("expected empty reduce over no points to be empty; got %+v", got)
	}
}

func TestLastElement(t *testing.T) {
	v := []int{4, 8, 15, 16, 23, 42}
	if got := LastElement(v); got != 42 {
		t.Fatalf("expected 42; got %d", got)
	}
}
