package engine

import "collide/mathx"

// colliderEntry is the frame-scoped representation of one pushed collider.
// half is the shape's half-extents for ShapeAABB, {radius,radius} for
// ShapeCircle (kept denormalized so grid/narrowphase code doesn't need a
// type switch just to get a bounding half-extent), and zero for ShapePoint.
type colliderEntry struct {
	kind   ShapeKind
	center mathx.Vec2
	half   mathx.Vec2
	radius float32
	vel    mathx.Vec2
	mask   LayerMask
	key    ColKey
	hasKey bool
}

func (e *colliderEntry) halfExtents() mathx.Vec2 {
	return e.half
}

// pushEntry appends e to the frame arena, assigns it a dense FrameID, and
// — if it carries a user key — updates the key index. A duplicate key
// within the same frame is a debug-time contract violation (spec §7): in
// a debug build (debugAssertions true) it logs; either way the release
// behavior is last-write-wins, matching the teacher's own
// debug_assert!+overwrite pattern in the Rust source this ports from.
func (w *PhysicsWorld) pushEntry(e colliderEntry) FrameID {
	id := FrameID(len(w.entries))
	if e.hasKey {
		if debugAssertions {
			if _, dup := w.keyToID[e.key]; dup {
				debugLogf("collide: duplicate ColKey %d pushed within one frame", e.key)
			}
		}
		w.keyToID[e.key] = id
	}
	w.entries = append(w.entries, e)
	return id
}

// PushAABB inserts an axis-aligned box collider for the current frame.
func (w *PhysicsWorld) PushAABB(center, half, vel mathx.Vec2, mask LayerMask, key ColKey, hasKey bool) FrameID {
	return w.pushEntry(colliderEntry{
		kind: ShapeAABB, center: center, half: half, vel: vel, mask: mask, key: key, hasKey: hasKey,
	})
}

// PushCircle inserts a circle collider for the current frame.
func (w *PhysicsWorld) PushCircle(center mathx.Vec2, radius float32, vel mathx.Vec2, mask LayerMask, key ColKey, hasKey bool) FrameID {
	return w.pushEntry(colliderEntry{
		kind: ShapeCircle, center: center, half: mathx.Vec2{X: radius, Y: radius}, radius: radius,
		vel: vel, mask: mask, key: key, hasKey: hasKey,
	})
}

// PushPoint inserts a zero-size point collider for the current frame.
func (w *PhysicsWorld) PushPoint(pos, vel mathx.Vec2, mask LayerMask, key ColKey, hasKey bool) FrameID {
	return w.pushEntry(colliderEntry{
		kind: ShapePoint, center: pos, vel: vel, mask: mask, key: key, hasKey: hasKey,
	})
}

// computeAABBs derives the static and swept AABB for every entry (spec §3,
// Frame AABB). tighten_swept_aabb is semantically a hint for grid binning
// only: for axis-aligned boxes the union of endpoint AABBs and their outer
// bound are the same set, so the flag is not read here and every entry's
// swept AABB is the union of its start and end AABBs.
func (w *PhysicsWorld) computeAABBs() {
	n := len(w.entries)
	if cap(w.staticAABBs) < n {
		w.staticAABBs = make([]mathx.AABB, n)
		w.sweptAABBs = make([]mathx.AABB, n)
	} else {
		w.staticAABBs = w.staticAABBs[:n]
		w.sweptAABBs = w.sweptAABBs[:n]
	}

	for i := range w.entries {
		e := &w.entries[i]
		half := e.halfExtents()
		static := mathx.FromCenterHalf(e.center, half)
		w.staticAABBs[i] = static

		p1 := e.center.Add(e.vel.Scale(w.cfg.DT))
		end := mathx.FromCenterHalf(p1, half)
		w.sweptAABBs[i] = static.Union(end)
	}
}
