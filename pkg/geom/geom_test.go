package geom

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPointDistance(t *testing.T) {
	tests := []struct {
		name string
		p, q Point
		want float64
	}{
		{"same point", Point{X: 1, Y: 2}, Point{X: 1, Y: 2}, 0},
		{"unit x", Point{}, Point{X: 1}, 1},
		{"pythagorean 2d", Point{}, Point{X: 3, Y: 4}, 5},
		{"pythagorean 3d", Point{}, Point{X: 2, Y: 3, Z: 6}, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.DistanceTo(tt.q); !almostEqual(got, tt.want) {
				t.Errorf("DistanceTo() = %v, want %v", got, tt.want)
			}
			if got := tt.q.DistanceTo(tt.p); !almostEqual(got, tt.want) {
				t.Errorf("DistanceTo() not symmetric: %v", got)
			}
		})
	}
}

func TestVectorNormalize(t *testing.T) {
	v := Vector{X: 0, Y: 3, Z: 4}
	n, ok := v.Normalize()
	if !ok {
		t.Fatal("Normalize() reported zero length for a nonzero vector")
	}
	if !almostEqual(n.Length(), 1) {
		t.Errorf("normalized length = %v, want 1", n.Length())
	}

	if _, ok := (Vector{}).Normalize(); ok {
		t.Error("Normalize() of zero vector reported ok")
	}
}

func TestNewBoundsSwapsInvertedAxes(t *testing.T) {
	b := NewBounds(Point{X: 10, Y: -5, Z: 3}, Point{X: 0, Y: 5, Z: -3})
	want := Bounds{Min: Point{X: 0, Y: -5, Z: -3}, Max: Point{X: 10, Y: 5, Z: 3}}
	if b != want {
		t.Errorf("NewBounds() = %+v, want %+v", b, want)
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Error("BoundsOf(nil) reported ok")
	}

	b, ok := BoundsOf([]Point{{X: 1, Y: 1}, {X: -2, Y: 5}, {X: 3, Y: 0, Z: 7}})
	if !ok {
		t.Fatal("BoundsOf() reported empty for nonempty input")
	}
	want := Bounds{Min: Point{X: -2, Y: 0, Z: 0}, Max: Point{X: 3, Y: 5, Z: 7}}
	if b != want {
		t.Errorf("BoundsOf() = %+v, want %+v", b, want)
	}
}

func TestBoundsContainsAndClamp(t *testing.T) {
	b := NewBounds(Point{}, Point{X: 100, Y: 100})

	tests := []struct {
		name    string
		p       Point
		inside  bool
		clamped Point
	}{
		{"interior", Point{X: 50, Y: 50}, true, Point{X: 50, Y: 50}},
		{"boundary", Point{X: 100, Y: 0}, true, Point{X: 100, Y: 0}},
		{"outside x", Point{X: 150, Y: 50}, false, Point{X: 100, Y: 50}},
		{"outside both", Point{X: -10, Y: 200}, false, Point{X: 0, Y: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.Contains(tt.p); got != tt.inside {
				t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.inside)
			}
			if got := b.Clamp(tt.p); got != tt.clamped {
				t.Errorf("Clamp(%+v) = %+v, want %+v", tt.p, got, tt.clamped)
			}
		})
	}
}

func TestBoundsDistanceSquaredTo(t *testing.T) {
	b := NewBounds(Point{}, Point{X: 10, Y: 10})
	if d := b.DistanceSquaredTo(Point{X: 5, Y: 5}); d != 0 {
		t.Errorf("interior distance = %v, want 0", d)
	}
	if d := b.DistanceSquaredTo(Point{X: 13, Y: 14}); !almostEqual(d, 25) {
		t.Errorf("corner distance = %v, want 25", d)
	}
}

func TestRayNormalizedAndParam(t *testing.T) {
	if _, ok := (Ray{Direction: Vector{}}).Normalized(); ok {
		t.Error("Normalized() of zero-direction ray reported ok")
	}

	r, ok := Ray{Origin: Point{X: 1}, Direction: Vector{X: 2}}.Normalized()
	if !ok {
		t.Fatal("Normalized() failed for a valid ray")
	}
	if !almostEqual(r.Direction.Length(), 1) {
		t.Errorf("direction length = %v, want 1", r.Direction.Length())
	}

	// Point behind the origin projects to t=0, never negative.
	if tm := r.ClosestParam(Point{X: -5}); tm != 0 {
		t.Errorf("ClosestParam behind origin = %v, want 0", tm)
	}
	if tm := r.ClosestParam(Point{X: 4, Y: 3}); !almostEqual(tm, 3) {
		t.Errorf("ClosestParam = %v, want 3", tm)
	}
}
