package engine

import (
	"math"

	"collide/mathx"
)

// This file implements spec §4.D: pairwise overlap and swept TOI tests for
// every AABB/Circle/Point combination. Numeric behavior (axis selection,
// contact normal direction, the Circle/AABB representative-zero result,
// the coincident-center circle convention) is ported from
// original_source/src/narrowphase.rs, the authoritative source for the
// exact arithmetic spec.md only describes in prose.

// overlapAABBAABB returns the minimum-penetration-axis overlap between two
// centered boxes, or false when separated. Normal points from B into A.
func overlapAABBAABB(c0, h0, c1, h1 mathx.Vec2) (Overlap, bool) {
	d := c1.Sub(c0)
	ox := (h0.X + h1.X) - mathx.Abs(d.X)
	oy := (h0.Y + h1.Y) - mathx.Abs(d.Y)
	if ox < 0 || oy < 0 {
		return Overlap{}, false
	}

	var depth float32
	var normal mathx.Vec2
	if ox <= oy {
		nx := float32(-1)
		if d.X < 0 {
			nx = 1
		}
		depth = mathx.MaxF(ox, 0)
		normal = mathx.Vec2{X: nx, Y: 0}
	} else {
		ny := float32(-1)
		if d.Y < 0 {
			ny = 1
		}
		depth = mathx.MaxF(oy, 0)
		normal = mathx.Vec2{X: 0, Y: ny}
	}
	return Overlap{Depth: depth, Normal: normal}, true
}

// overlapCircleCircle returns the penetration between two circles, or
// false when separated. Coincident centers are a degenerate case: the
// normal is undefined so it is reported as zero with depth = r0+r1 (the
// Rust source's convention, carried here verbatim for compatibility).
func overlapCircleCircle(c0 mathx.Vec2, r0 float32, c1 mathx.Vec2, r1 float32) (Overlap, bool) {
	delta := c0.Sub(c1)
	dist2 := delta.LengthSq()
	rsum := r0 + r1
	if dist2 > rsum*rsum {
		return Overlap{}, false
	}
	if dist2 == 0 {
		return Overlap{Normal: mathx.Vec2{}, Depth: rsum}, true
	}
	dist := sqrtf(dist2)
	normal := mathx.Vec2{X: delta.X / dist, Y: delta.Y / dist}
	depth := mathx.MaxF(rsum-dist, 0)
	return Overlap{Depth: depth, Normal: normal}, true
}

// overlapCircleAABB returns the penetration of a circle into a box, or
// false when separated. Normal points from B (the box) into A (the
// circle), matching overlapAABBAABB/overlapCircleCircle's convention. When
// the circle's center lies exactly on or inside the box, the closest-point
// vector is degenerate, so the circle is approximated by its bounding
// square and the result falls back to overlapAABBAABB's minimum-axis rule.
func overlapCircleAABB(circleC mathx.Vec2, r float32, boxC, boxH mathx.Vec2) (Overlap, bool) {
	box := mathx.FromCenterHalf(boxC, boxH)
	closest := mathx.Vec2{
		X: mathx.Clamp(circleC.X, box.Min.X, box.Max.X),
		Y: mathx.Clamp(circleC.Y, box.Min.Y, box.Max.Y),
	}
	delta := circleC.Sub(closest)
	dist2 := delta.LengthSq()
	if dist2 > r*r {
		return Overlap{}, false
	}
	if dist2 > 0 {
		dist := sqrtf(dist2)
		normal := mathx.Vec2{X: delta.X / dist, Y: delta.Y / dist}
		return Overlap{Depth: r - dist, Normal: normal}, true
	}
	return overlapAABBAABB(circleC, mathx.Vec2{X: r, Y: r}, boxC, boxH)
}

func overlapPointAABB(p, c, h mathx.Vec2) bool {
	return mathx.FromCenterHalf(c, h).ContainsPoint(p)
}

func overlapPointCircle(p, c mathx.Vec2, r float32) bool {
	d := p.Sub(c)
	return d.LengthSq() <= r*r
}

// overlapCircleAABBBool is a boolean-only circle/AABB overlap test (no
// contact data), used both for the representative-zero overlapPair result
// and for the boolean gate query_circle_all uses against tiles.
func overlapCircleAABBBool(circleC mathx.Vec2, r float32, boxC, boxH mathx.Vec2) bool {
	box := mathx.FromCenterHalf(boxC, boxH)
	closest := mathx.Vec2{
		X: mathx.Clamp(circleC.X, box.Min.X, box.Max.X),
		Y: mathx.Clamp(circleC.Y, box.Min.Y, box.Max.Y),
	}
	return closest.Sub(circleC).LengthSq() <= r*r
}

// sweepAABBAABB reduces A's motion relative to B (Minkowski trick) to a
// ray test against B expanded by A's half-extents. If A already overlaps B
// at t=0, returns t=0 with the overlap test's best-effort normal and
// hint.start_embedded=true instead of running the ray test (spec §4.D).
func sweepAABBAABB(c0, h0, v0, c1, h1, v1 mathx.Vec2) (SweepHit, bool) {
	if ov, ok := overlapAABBAABB(c0, h0, c1, h1); ok {
		return SweepHit{T: 0, Normal: ov.Normal, Hint: ResolutionHint{StartEmbedded: true}}, true
	}
	vrel := v0.Sub(v1)
	expanded := mathx.FromCenterHalf(c1, h0.Add(h1))
	hit, ok := mathx.RayAABB(c0, vrel, expanded)
	if !ok || hit.T < 0 || hit.T > 1 {
		return SweepHit{}, false
	}
	return SweepHit{T: hit.T, Normal: hit.Normal}, true
}

// sweepCircleAABB reduces a moving circle vs a (possibly moving) box to a
// ray test against the box expanded by the circle's radius. This is an
// approximation at the box corners: the expanded box has square corners,
// not quarter-circle arcs, so near a corner it can report a hit (or an
// earlier TOI) where the circle would pass the corner. The tilemap circle
// sweep (sweptCircleVsTilemap) uses this same test and has the same corner
// behavior.
func sweepCircleAABB(c mathx.Vec2, r float32, v mathx.Vec2, boxC, boxH, boxV mathx.Vec2) (SweepHit, bool) {
	if ov, ok := overlapCircleAABB(c, r, boxC, boxH); ok {
		return SweepHit{T: 0, Normal: ov.Normal, Hint: ResolutionHint{StartEmbedded: true}}, true
	}
	vrel := v.Sub(boxV)
	expanded := mathx.FromCenterHalf(boxC, boxH.Add(mathx.Vec2{X: r, Y: r}))
	hit, ok := mathx.RayAABB(c, vrel, expanded)
	if !ok || hit.T < 0 || hit.T > 1 {
		return SweepHit{}, false
	}
	return SweepHit{T: hit.T, Normal: hit.Normal}, true
}

// sweepCircleCircle reduces two moving circles to a ray test against the
// static circle expanded to r0+r1.
func sweepCircleCircle(c0 mathx.Vec2, r0 float32, v0 mathx.Vec2, c1 mathx.Vec2, r1 float32, v1 mathx.Vec2) (SweepHit, bool) {
	if ov, ok := overlapCircleCircle(c0, r0, c1, r1); ok {
		return SweepHit{T: 0, Normal: ov.Normal, Hint: ResolutionHint{StartEmbedded: true}}, true
	}
	vrel := v0.Sub(v1)
	hit, ok := mathx.RayCircle(c0, vrel, c1, r0+r1)
	if !ok || hit.T < 0 || hit.T > 1 {
		return SweepHit{}, false
	}
	return SweepHit{T: hit.T, Normal: hit.Normal}, true
}

func sqrtf(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// overlapEntries dispatches overlap_pair_idx (spec §4.D) across all nine
// shape-kind combinations. Circle/AABB (either order) and any combination
// touching Point reduce to the representative-zero or point-reduction
// rules narrowphase.rs's overlap_pair_idx defines.
func overlapEntries(a, b *colliderEntry) (Overlap, bool) {
	switch {
	case a.kind == ShapeAABB && b.kind == ShapeAABB:
		return overlapAABBAABB(a.center, a.half, b.center, b.half)

	case a.kind == ShapeCircle && b.kind == ShapeCircle:
		return overlapCircleCircle(a.center, a.radius, b.center, b.radius)

	case a.kind == ShapePoint && b.kind == ShapeAABB:
		if overlapPointAABB(a.center, b.center, b.half) {
			return Overlap{}, true
		}
		return Overlap{}, false
	case a.kind == ShapeAABB && b.kind == ShapePoint:
		if overlapPointAABB(b.center, a.center, a.half) {
			return Overlap{}, true
		}
		return Overlap{}, false

	case a.kind == ShapePoint && b.kind == ShapeCircle:
		if overlapPointCircle(a.center, b.center, b.radius) {
			return Overlap{}, true
		}
		return Overlap{}, false
	case a.kind == ShapeCircle && b.kind == ShapePoint:
		if overlapPointCircle(b.center, a.center, a.radius) {
			return Overlap{}, true
		}
		return Overlap{}, false

	case a.kind == ShapeCircle && b.kind == ShapeAABB:
		if overlapCircleAABBBool(a.center, a.radius, b.center, b.half) {
			return Overlap{}, true
		}
		return Overlap{}, false
	case a.kind == ShapeAABB && b.kind == ShapeCircle:
		if overlapCircleAABBBool(b.center, b.radius, a.center, a.half) {
			return Overlap{}, true
		}
		return Overlap{}, false

	case a.kind == ShapePoint && b.kind == ShapePoint:
		if a.center == b.center {
			return Overlap{}, true
		}
		return Overlap{}, false
	}
	return Overlap{}, false
}

// sweepEntries dispatches sweep_pair_idx across all nine combinations.
// Point reduces to a zero-radius circle. When A is the AABB and B the
// Circle (or Point), the underlying sweepCircleAABB test is run with the
// operands swapped and its normal negated, matching world.rs's
// sweep_pair_idx convention so the returned normal always points from B
// into A regardless of argument order.
func sweepEntries(a, b *colliderEntry, dt float32) (SweepHit, bool) {
	va := a.vel.Scale(dt)
	vb := b.vel.Scale(dt)

	switch {
	case a.kind == ShapeAABB && b.kind == ShapeAABB:
		return sweepAABBAABB(a.center, a.half, va, b.center, b.half, vb)

	case a.kind == ShapeCircle && b.kind == ShapeCircle:
		return sweepCircleCircle(a.center, a.radius, va, b.center, b.radius, vb)

	case a.kind == ShapeCircle && b.kind == ShapeAABB:
		return sweepCircleAABB(a.center, a.radius, va, b.center, b.half, vb)
	case a.kind == ShapeAABB && b.kind == ShapeCircle:
		hit, ok := sweepCircleAABB(b.center, b.radius, vb, a.center, a.half, va)
		if !ok {
			return SweepHit{}, false
		}
		return SweepHit{T: hit.T, Normal: hit.Normal.Neg(), Hint: hit.Hint}, true

	case a.kind == ShapePoint && b.kind == ShapeAABB:
		return sweepCircleAABB(a.center, 0, va, b.center, b.half, vb)
	case a.kind == ShapeAABB && b.kind == ShapePoint:
		hit, ok := sweepCircleAABB(b.center, 0, vb, a.center, a.half, va)
		if !ok {
			return SweepHit{}, false
		}
		return SweepHit{T: hit.T, Normal: hit.Normal.Neg(), Hint: hit.Hint}, true

	case a.kind == ShapePoint && b.kind == ShapeCircle:
		return sweepCircleCircle(a.center, 0, va, b.center, b.radius, vb)
	case a.kind == ShapeCircle && b.kind == ShapePoint:
		hit, ok := sweepCircleCircle(b.center, 0, vb, a.center, a.radius, va)
		if !ok {
			return SweepHit{}, false
		}
		return SweepHit{T: hit.T, Normal: hit.Normal.Neg(), Hint: hit.Hint}, true

	case a.kind == ShapePoint && b.kind == ShapePoint:
		return SweepHit{}, false
	}
	return SweepHit{}, false
}
