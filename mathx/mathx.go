// Package mathx holds the scalar and 2D vector primitives shared by the
// collision engine: clamping, basic vector algebra, and the slab/circle
// ray tests the narrowphase and tilemap layers build on.
package mathx

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Epsilon is the near-zero tolerance used by Normalize (zero-length
// vectors) and by RayAABB (a ray parallel to an axis slab).
const Epsilon = 1e-6

// Vec2 is a 2D single-precision vector.
type Vec2 struct {
	X, Y float32
}

func V2(x, y float32) Vec2 { return Vec2{x, y} }

func (a Vec2) Add(b Vec2) Vec2    { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2    { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(s float32) Vec2 { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Neg() Vec2          { return Vec2{-a.X, -a.Y} }
func (a Vec2) Dot(b Vec2) float32 { return a.X*b.X + a.Y*b.Y }

func (a Vec2) LengthSq() float32 { return a.Dot(a) }
func (a Vec2) Length() float32   { return float32(math.Sqrt(float64(a.LengthSq()))) }

// Normalize returns the unit vector along a, or the zero vector if a is
// (near) zero length.
func (a Vec2) Normalize() Vec2 {
	l := a.Length()
	if l <= Epsilon {
		return Vec2{}
	}
	return Vec2{a.X / l, a.Y / l}
}

func (a Vec2) Min(b Vec2) Vec2 { return Vec2{MinF(a.X, b.X), MinF(a.Y, b.Y)} }
func (a Vec2) Max(b Vec2) Vec2 { return Vec2{MaxF(a.X, b.X), MaxF(a.Y, b.Y)} }

// Number is the constraint used by the generic clamp/min/max helpers: any
// ordered scalar the engine clamps, whether frame-unit floats or grid-cell
// integers.
type Number interface {
	constraints.Integer | constraints.Float
}

// Clamp restricts v to [lo, hi].
func Clamp[T Number](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func MinOf[T Number](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func MaxOf[T Number](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// MinF/MaxF are float32-specialized convenience wrappers kept alongside the
// generic forms because Vec2 methods are called far more often than any
// other numeric kind in this package and read better unparameterized.
func MinF(a, b float32) float32 { return MinOf(a, b) }
func MaxF(a, b float32) float32 { return MaxOf(a, b) }

// AABB is an axis-aligned box in world space described by its min/max
// corners (not center/half-extents) — the representation the narrowphase
// slab tests want directly.
type AABB struct {
	Min, Max Vec2
}

// FromCenterHalf builds an AABB from a center and half-extents.
func FromCenterHalf(center, half Vec2) AABB {
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// Expand grows a by half (symmetric Minkowski expansion used to reduce a
// shape-vs-shape sweep to a ray-vs-expanded-shape test).
func (a AABB) Expand(half Vec2) AABB {
	return AABB{Min: a.Min.Sub(half), Max: a.Max.Add(half)}
}

// Overlaps reports whether a and b intersect, inclusive of touching edges.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

// ContainsPoint reports whether p lies within a, inclusive of the boundary.
func (a AABB) ContainsPoint(p Vec2) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X && p.Y >= a.Min.Y && p.Y <= a.Max.Y
}

// RayHit is the result of a ray/segment vs shape slab or quadratic test:
// the normalized hit fraction and the surface normal at that fraction.
type RayHit struct {
	T      float32
	Normal Vec2
}

// RayAABB performs a slab intersection of the ray origin+dir*t against box,
// tracking the entering-axis normal. Returns false when there is no hit for
// t in [0, +inf). A ray that starts inside the box returns t=0 with a zero
// normal (the entering axis is not well defined from inside).
func RayAABB(origin, dir Vec2, box AABB) (RayHit, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	var nEnter Vec2

	if Abs(dir.X) < Epsilon {
		if origin.X < box.Min.X || origin.X > box.Max.X {
			return RayHit{}, false
		}
	} else {
		inv := 1 / dir.X
		t1 := (box.Min.X - origin.X) * inv
		t2 := (box.Max.X - origin.X) * inv
		nx := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			nx = 1
		}
		if t1 > tmin {
			tmin = t1
			nEnter = Vec2{nx, 0}
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RayHit{}, false
		}
	}

	if Abs(dir.Y) < Epsilon {
		if origin.Y < box.Min.Y || origin.Y > box.Max.Y {
			return RayHit{}, false
		}
	} else {
		inv := 1 / dir.Y
		t1 := (box.Min.Y - origin.Y) * inv
		t2 := (box.Max.Y - origin.Y) * inv
		ny := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			ny = 1
		}
		if t1 > tmin {
			tmin = t1
			nEnter = Vec2{0, ny}
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RayHit{}, false
		}
	}

	if tmax < 0 {
		return RayHit{}, false
	}
	toi := tmin
	normal := nEnter
	if tmin < 0 {
		toi = 0
		normal = Vec2{}
	}
	return RayHit{T: toi, Normal: normal}, true
}

// RayCircle solves |origin + t*dir - center|^2 = r^2 for the smallest
// non-negative t.
func RayCircle(origin, dir, center Vec2, r float32) (RayHit, bool) {
	m := origin.Sub(center)
	a := dir.LengthSq()
	if a == 0 {
		return RayHit{}, false
	}
	b := 2 * m.Dot(dir)
	c := m.LengthSq() - r*r
	disc := b*b - 4*a*c
	if disc < 0 {
		return RayHit{}, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	t := t0
	if t < 0 {
		t = t1
	}
	if t < 0 {
		return RayHit{}, false
	}
	contact := origin.Add(dir.Scale(t))
	n := contact.Sub(center)
	normal := n.Normalize()
	return RayHit{T: t, Normal: normal}, true
}

func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
