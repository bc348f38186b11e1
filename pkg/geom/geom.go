// Package geom provides the geometric primitives shared by the layout
// optimizer and the spatial index: points, vectors, axis-aligned bounds,
// and rays.
//
// All types carry three coordinates. Two-dimensional data simply keeps
// Z at zero; components that care about dimensionality track it
// separately and ignore Z where appropriate.
package geom

import "math"

// =============================================================================
// Point
// =============================================================================

// Point is a location in 2D or 3D space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Add returns the point translated by v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Vector {
	return Vector{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// DistanceTo returns the Euclidean distance between p and q.
func (p Point) DistanceTo(q Point) float64 {
	return math.Sqrt(p.DistanceSquaredTo(q))
}

// DistanceSquaredTo returns the squared Euclidean distance between p and q.
// Prefer this over [Point.DistanceTo] in comparisons to skip the square root.
func (p Point) DistanceSquaredTo(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	dz := p.Z - q.Z
	return dx*dx + dy*dy + dz*dz
}

// =============================================================================
// Vector
// =============================================================================

// Vector is a displacement in 2D or 3D space.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// Add returns the component-wise sum of v and w.
func (v Vector) Add(w Vector) Vector {
	return Vector{X: v.X + w.X, Y: v.Y + w.Y, Z: v.Z + w.Z}
}

// Scale returns v multiplied by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product of v and w.
func (v Vector) Dot(w Vector) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Length returns the Euclidean length of v.
func (v Vector) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length. The second return value is
// false when v has zero length, in which case the zero vector is returned.
func (v Vector) Normalize() (Vector, bool) {
	l := v.Length()
	if l == 0 {
		return Vector{}, false
	}
	return v.Scale(1 / l), true
}

// =============================================================================
// Bounds
// =============================================================================

// Bounds is an axis-aligned bounding volume: a rectangle when the Z extent
// is zero, a box otherwise. Min and Max are inclusive.
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// NewBounds returns bounds spanning min and max, swapping any inverted
// axis so the result always satisfies Min <= Max per coordinate.
func NewBounds(min, max Point) Bounds {
	if min.X > max.X {
		min.X, max.X = max.X, min.X
	}
	if min.Y > max.Y {
		min.Y, max.Y = max.Y, min.Y
	}
	if min.Z > max.Z {
		min.Z, max.Z = max.Z, min.Z
	}
	return Bounds{Min: min, Max: max}
}

// BoundsOf returns the tightest bounds covering all points. The second
// return value is false when points is empty.
func BoundsOf(points []Point) (Bounds, bool) {
	if len(points) == 0 {
		return Bounds{}, false
	}
	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		b = b.ExtendedBy(p)
	}
	return b, true
}

// ExtendedBy returns bounds grown just enough to contain p.
func (b Bounds) ExtendedBy(p Point) Bounds {
	return Bounds{
		Min: Point{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Max: Point{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	}
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() Point {
	return Point{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

// Size returns the extent of the bounds per axis.
func (b Bounds) Size() Vector {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside the bounds, boundary inclusive.
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether b and o overlap, boundary inclusive.
func (b Bounds) Intersects(o Bounds) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Clamp returns p moved to the nearest point inside the bounds.
func (b Bounds) Clamp(p Point) Point {
	return Point{
		X: math.Min(math.Max(p.X, b.Min.X), b.Max.X),
		Y: math.Min(math.Max(p.Y, b.Min.Y), b.Max.Y),
		Z: math.Min(math.Max(p.Z, b.Min.Z), b.Max.Z),
	}
}

// DistanceSquaredTo returns the squared distance from p to the nearest
// point of the bounds, zero when p lies inside. Used for query pruning.
func (b Bounds) DistanceSquaredTo(p Point) float64 {
	return p.DistanceSquaredTo(b.Clamp(p))
}

// =============================================================================
// Ray
// =============================================================================

// Ray is a half-line from Origin along Direction. Direction need not be
// unit length; consumers normalize via [Ray.Normalized] before measuring
// parametric distances.
type Ray struct {
	Origin    Point  `json:"origin"`
	Direction Vector `json:"direction"`
}

// Normalized returns a copy of r with a unit-length direction. The second
// return value is false when the direction has zero length.
func (r Ray) Normalized() (Ray, bool) {
	d, ok := r.Direction.Normalize()
	if !ok {
		return Ray{}, false
	}
	return Ray{Origin: r.Origin, Direction: d}, true
}

// At returns the point at parametric distance t along the ray.
func (r Ray) At(t float64) Point {
	return r.Origin.Add(r.Direction.Scale(t))
}

// ClosestParam returns the parametric distance along the (assumed
// unit-length) direction of the point on the ray closest to p, floored
// at zero so the result never lies behind the origin.
func (r Ray) ClosestParam(p Point) float64 {
	t := p.Sub(r.Origin).Dot(r.Direction)
	return math.Max(t, 0)
}
