package engine

import (
	"math"
	"sort"

	"collide/mathx"
)

// This file implements spec §4.G: raycast and shape queries against
// colliders, tiles, and the unified *_all surface. Ordering for
// non-raycast queries is stable by FrameId to satisfy spec §8's
// determinism property; raycast walks the grid via the same DDA scheme
// world.rs's raycast uses, generalized from a fixed-size array scan to
// this package's unbounded cellKey map.

// Match names one collider hit returned by a non-unified point/AABB/circle
// query.
type Match struct {
	Frame  FrameID
	Key    ColKey
	HasKey bool
}

// AllMatch names one hit returned by a *_all unified query, naming either
// a collider or a tile.
type AllMatch struct {
	Body   BodyRef
	Key    ColKey
	HasKey bool
}

// RaycastHit is the result of Raycast: the earliest collider intersection
// along the ray.
type RaycastHit struct {
	Frame  FrameID
	Hit    mathx.RayHit
	Key    ColKey
	HasKey bool
}

// RaycastAllHit is the result of RaycastAll: the earliest intersection
// across both colliders and every attached tilemap.
type RaycastAllHit struct {
	Body BodyRef
	Hit  mathx.RayHit
	Key  ColKey
	HasKey bool
}

func rayEntry(e *colliderEntry, origin, dir mathx.Vec2) (mathx.RayHit, bool) {
	switch e.kind {
	case ShapeAABB:
		return mathx.RayAABB(origin, dir, mathx.FromCenterHalf(e.center, e.half))
	case ShapeCircle:
		return mathx.RayCircle(origin, dir, e.center, e.radius)
	default:
		return mathx.RayCircle(origin, dir, e.center, 0)
	}
}

// Raycast returns the closest collider hit along the ray, or false when
// nothing within max_t consents and intersects. Zero-direction rays never
// hit (spec §7).
func (w *PhysicsWorld) Raycast(origin, dir mathx.Vec2, mask LayerMask, maxT float32) (RaycastHit, bool) {
	if dir.LengthSq() == 0 {
		return RaycastHit{}, false
	}
	cs := w.cfg.CellSize

	cx, cy := cellCoord(origin.X, cs), cellCoord(origin.Y, cs)
	stepX, stepY := int32(0), int32(0)
	if dir.X > 0 {
		stepX = 1
	} else if dir.X < 0 {
		stepX = -1
	}
	if dir.Y > 0 {
		stepY = 1
	} else if dir.Y < 0 {
		stepY = -1
	}
	nextBoundary := func(c, step int32) float32 {
		if step > 0 {
			return (float32(c) + 1) * cs
		}
		return float32(c) * cs
	}
	tMaxX, tMaxY := float32(math.Inf(1)), float32(math.Inf(1))
	tDeltaX, tDeltaY := float32(math.Inf(1)), float32(math.Inf(1))
	if stepX != 0 {
		tMaxX = (nextBoundary(cx, stepX) - origin.X) / dir.X
		tDeltaX = cs / mathx.Abs(dir.X)
	}
	if stepY != 0 {
		tMaxY = (nextBoundary(cy, stepY) - origin.Y) / dir.Y
		tDeltaY = cs / mathx.Abs(dir.Y)
	}

	epoch := w.grid.nextEpoch()
	w.grid.ensureDedupCapacity(len(w.entries))

	var best RaycastHit
	haveBest := false
	tCurr := float32(0)
	const safetyCap = 100000
	for i := 0; i < safetyCap; i++ {
		if tCurr > maxT {
			break
		}
		if ids, ok := w.grid.cells[cellKey{cx, cy}]; ok {
			for _, id := range ids {
				if w.grid.visited(id, epoch) {
					continue
				}
				w.grid.markVisited(id, epoch)
				e := &w.entries[id]
				if !consents(mask, e.mask, w.requireMutual()) {
					continue
				}
				hit, ok := rayEntry(e, origin, dir)
				if !ok || hit.T < 0 || hit.T > maxT {
					continue
				}
				if !haveBest || hit.T < best.Hit.T {
					best = RaycastHit{Frame: id, Hit: hit, Key: e.key, HasKey: e.hasKey}
					haveBest = true
				}
			}
		}
		if tMaxX < tMaxY {
			cx += stepX
			tCurr = tMaxX
			tMaxX += tDeltaX
		} else {
			cy += stepY
			tCurr = tMaxY
			tMaxY += tDeltaY
		}
	}
	return best, haveBest
}

// RaycastTiles walks a single attached tilemap's DDA and returns the first
// solid-tile hit, or false if ref is stale or nothing is hit within max_t.
func (w *PhysicsWorld) RaycastTiles(ref TileMapRef, origin, dir mathx.Vec2, maxT float32) (SweepHit, TileRef, bool) {
	slot, ok := w.resolveTilemap(ref)
	if !ok {
		return SweepHit{}, TileRef{}, false
	}
	hit, tile, ok := rayTilemapDDA(&slot.desc, origin, dir, maxT, w.cfg.TileEps)
	if !ok {
		return SweepHit{}, TileRef{}, false
	}
	tile.Map = ref
	return hit, tile, true
}

// RaycastAll returns the globally earliest intersection across colliders
// and every attached tilemap (spec §4.G).
func (w *PhysicsWorld) RaycastAll(origin, dir mathx.Vec2, mask LayerMask, maxT float32) (RaycastAllHit, bool) {
	best := RaycastAllHit{}
	haveBest := false

	if hit, ok := w.Raycast(origin, dir, mask, maxT); ok {
		best = RaycastAllHit{
			Body:   BodyRef{Kind: BodyCollider, Frame: hit.Frame},
			Hit:    hit.Hit,
			Key:    hit.Key,
			HasKey: hit.HasKey,
		}
		haveBest = true
	}

	for i := range w.tilemaps {
		slot := &w.tilemaps[i]
		if !slot.alive {
			continue
		}
		if !consents(mask, slot.desc.Mask, w.requireMutual()) {
			continue
		}
		ref := TileMapRef{index: uint32(i), gen: slot.gen}
		bound := maxT
		if haveBest {
			bound = best.Hit.T
		}
		hit, tile, ok := rayTilemapDDA(&slot.desc, origin, dir, bound, w.cfg.TileEps)
		if !ok {
			continue
		}
		if !haveBest || hit.T < best.Hit.T {
			tile.Map = ref
			best = RaycastAllHit{
				Body:   BodyRef{Kind: BodyTile, Tile: tile},
				Hit:    mathx.RayHit{T: hit.T, Normal: hit.Normal},
				Key:    slot.desc.UserKey,
				HasKey: slot.desc.HasUserKey,
			}
			haveBest = true
		}
	}
	return best, haveBest
}

func sortMatches(out []Match) {
	sort.Slice(out, func(i, j int) bool { return out[i].Frame < out[j].Frame })
}

// QueryPoint returns every collider containing p, ordered by FrameId.
func (w *PhysicsWorld) QueryPoint(p mathx.Vec2, mask LayerMask) []Match {
	var out []Match
	box := mathx.AABB{Min: p, Max: p}
	w.grid.forEachInCells(box, w.cfg.CellSize, func(id FrameID) {
		e := &w.entries[id]
		if !consents(mask, e.mask, w.requireMutual()) {
			return
		}
		var hit bool
		switch e.kind {
		case ShapeAABB:
			hit = overlapPointAABB(p, e.center, e.half)
		case ShapeCircle:
			hit = overlapPointCircle(p, e.center, e.radius)
		default:
			hit = p == e.center
		}
		if hit {
			out = append(out, Match{Frame: id, Key: e.key, HasKey: e.hasKey})
		}
	})
	sortMatches(out)
	return out
}

// QueryAABB returns every collider overlapping the query box, ordered by
// FrameId.
func (w *PhysicsWorld) QueryAABB(center, half mathx.Vec2, mask LayerMask) []Match {
	var out []Match
	box := mathx.FromCenterHalf(center, half)
	w.grid.forEachInCells(box, w.cfg.CellSize, func(id FrameID) {
		e := &w.entries[id]
		if !consents(mask, e.mask, w.requireMutual()) {
			return
		}
		var hit bool
		switch e.kind {
		case ShapeAABB:
			_, hit = overlapAABBAABB(e.center, e.half, center, half)
		case ShapeCircle:
			hit = overlapCircleAABBBool(e.center, e.radius, center, half)
		default:
			hit = overlapPointAABB(e.center, center, half)
		}
		if hit {
			out = append(out, Match{Frame: id, Key: e.key, HasKey: e.hasKey})
		}
	})
	sortMatches(out)
	return out
}

// QueryCircle returns every collider overlapping the query circle, ordered
// by FrameId.
func (w *PhysicsWorld) QueryCircle(center mathx.Vec2, radius float32, mask LayerMask) []Match {
	var out []Match
	box := mathx.FromCenterHalf(center, mathx.Vec2{X: radius, Y: radius})
	w.grid.forEachInCells(box, w.cfg.CellSize, func(id FrameID) {
		e := &w.entries[id]
		if !consents(mask, e.mask, w.requireMutual()) {
			return
		}
		var hit bool
		switch e.kind {
		case ShapeAABB:
			hit = overlapCircleAABBBool(center, radius, e.center, e.half)
		case ShapeCircle:
			_, hit = overlapCircleCircle(center, radius, e.center, e.radius)
		default:
			hit = overlapPointCircle(e.center, center, radius)
		}
		if hit {
			out = append(out, Match{Frame: id, Key: e.key, HasKey: e.hasKey})
		}
	})
	sortMatches(out)
	return out
}

func sortAllMatches(out []AllMatch) {
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Body, out[j].Body
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Kind == BodyCollider {
			return a.Frame < b.Frame
		}
		if a.Tile.Map.index != b.Tile.Map.index {
			return a.Tile.Map.index < b.Tile.Map.index
		}
		if a.Tile.CY != b.Tile.CY {
			return a.Tile.CY < b.Tile.CY
		}
		return a.Tile.CX < b.Tile.CX
	})
}

// QueryPointAll interleaves QueryPoint with every attached tilemap's solid
// cell at p (spec §4.G).
func (w *PhysicsWorld) QueryPointAll(p mathx.Vec2, mask LayerMask) []AllMatch {
	out := make([]AllMatch, 0)
	for _, m := range w.QueryPoint(p, mask) {
		out = append(out, AllMatch{Body: BodyRef{Kind: BodyCollider, Frame: m.Frame}, Key: m.Key, HasKey: m.HasKey})
	}
	for i := range w.tilemaps {
		slot := &w.tilemaps[i]
		if !slot.alive || !consents(mask, slot.desc.Mask, w.requireMutual()) {
			continue
		}
		cx, cy := slot.desc.worldToCell(p)
		if slot.desc.isSolid(cx, cy) {
			ref := TileMapRef{index: uint32(i), gen: slot.gen}
			out = append(out, AllMatch{
				Body:   BodyRef{Kind: BodyTile, Tile: TileRef{Map: ref, CX: cx, CY: cy}},
				Key:    slot.desc.UserKey,
				HasKey: slot.desc.HasUserKey,
			})
		}
	}
	sortAllMatches(out)
	return out
}

// QueryAABBAll interleaves QueryAABB with every solid tile overlapping the
// query box.
func (w *PhysicsWorld) QueryAABBAll(center, half mathx.Vec2, mask LayerMask) []AllMatch {
	out := make([]AllMatch, 0)
	for _, m := range w.QueryAABB(center, half, mask) {
		out = append(out, AllMatch{Body: BodyRef{Kind: BodyCollider, Frame: m.Frame}, Key: m.Key, HasKey: m.HasKey})
	}
	box := mathx.FromCenterHalf(center, half)
	for i := range w.tilemaps {
		slot := &w.tilemaps[i]
		if !slot.alive || !consents(mask, slot.desc.Mask, w.requireMutual()) {
			continue
		}
		ref := TileMapRef{index: uint32(i), gen: slot.gen}
		minX, minY := slot.desc.worldToCell(box.Min)
		maxX, maxY := slot.desc.worldToCell(box.Max)
		for cy := minY; cy <= maxY; cy++ {
			for cx := minX; cx <= maxX; cx++ {
				if !slot.desc.isSolid(cx, cy) {
					continue
				}
				out = append(out, AllMatch{
					Body:   BodyRef{Kind: BodyTile, Tile: TileRef{Map: ref, CX: cx, CY: cy}},
					Key:    slot.desc.UserKey,
					HasKey: slot.desc.HasUserKey,
				})
			}
		}
	}
	sortAllMatches(out)
	return out
}

// QueryCircleAll interleaves QueryCircle with every solid tile overlapping
// the query circle, using a boolean overlap gate against tiles (spec
// §4.G: no signed pushout computation in the query path).
func (w *PhysicsWorld) QueryCircleAll(center mathx.Vec2, radius float32, mask LayerMask) []AllMatch {
	out := make([]AllMatch, 0)
	for _, m := range w.QueryCircle(center, radius, mask) {
		out = append(out, AllMatch{Body: BodyRef{Kind: BodyCollider, Frame: m.Frame}, Key: m.Key, HasKey: m.HasKey})
	}
	box := mathx.FromCenterHalf(center, mathx.Vec2{X: radius, Y: radius})
	for i := range w.tilemaps {
		slot := &w.tilemaps[i]
		if !slot.alive || !consents(mask, slot.desc.Mask, w.requireMutual()) {
			continue
		}
		ref := TileMapRef{index: uint32(i), gen: slot.gen}
		minX, minY := slot.desc.worldToCell(box.Min)
		maxX, maxY := slot.desc.worldToCell(box.Max)
		for cy := minY; cy <= maxY; cy++ {
			for cx := minX; cx <= maxX; cx++ {
				if !slot.desc.isSolid(cx, cy) {
					continue
				}
				cellC, cellH := slot.desc.cellCenterHalf(cx, cy)
				if !overlapCircleAABBBool(center, radius, cellC, cellH) {
					continue
				}
				out = append(out, AllMatch{
					Body:   BodyRef{Kind: BodyTile, Tile: TileRef{Map: ref, CX: cx, CY: cy}},
					Key:    slot.desc.UserKey,
					HasKey: slot.desc.HasUserKey,
				})
			}
		}
	}
	sortAllMatches(out)
	return out
}

// SweepAABBTiles sweeps a moving AABB against a single attached tilemap.
func (w *PhysicsWorld) SweepAABBTiles(ref TileMapRef, center, half, vel mathx.Vec2) (SweepHit, TileRef, bool) {
	slot, ok := w.resolveTilemap(ref)
	if !ok {
		return SweepHit{}, TileRef{}, false
	}
	hit, tile, ok := sweptAABBVsTilemap(&slot.desc, center, half, vel, w.cfg.DT, w.cfg.TileEps)
	if !ok {
		return SweepHit{}, TileRef{}, false
	}
	tile.Map = ref
	return hit, tile, true
}

// SweepCircleTiles sweeps a moving circle against a single attached
// tilemap.
func (w *PhysicsWorld) SweepCircleTiles(ref TileMapRef, center mathx.Vec2, radius float32, vel mathx.Vec2) (SweepHit, TileRef, bool) {
	slot, ok := w.resolveTilemap(ref)
	if !ok {
		return SweepHit{}, TileRef{}, false
	}
	hit, tile, ok := sweptCircleVsTilemap(&slot.desc, center, radius, vel, w.cfg.DT, w.cfg.TileEps)
	if !ok {
		return SweepHit{}, TileRef{}, false
	}
	tile.Map = ref
	return hit, tile, true
}
