package engine

import (
	"math"

	"collide/mathx"
)

// TileMapDesc describes a static solid bitmap attached to the world. It is
// the sole structure that persists across frames (spec §6): BeginFrame
// never clears tilemaps, only the per-frame collider arena.
type TileMapDesc struct {
	Origin        mathx.Vec2 // world coordinate of cell (0,0)'s top-left corner
	Cell          float32    // cell edge length, must be > 0
	Width, Height uint32
	Solids        []uint64 // bitset, bit (cy*Width+cx) set means solid
	Mask          LayerMask
	UserKey       ColKey
	HasUserKey    bool
}

func (d *TileMapDesc) bitIndex(cx, cy int32) (word int, bit uint, ok bool) {
	if cx < 0 || cy < 0 || uint32(cx) >= d.Width || uint32(cy) >= d.Height {
		return 0, 0, false
	}
	idx := int(cy)*int(d.Width) + int(cx)
	return idx / 64, uint(idx % 64), true
}

func (d *TileMapDesc) isSolid(cx, cy int32) bool {
	w, b, ok := d.bitIndex(cx, cy)
	if !ok {
		return false
	}
	if w >= len(d.Solids) {
		return false
	}
	return d.Solids[w]&(1<<b) != 0
}

func (d *TileMapDesc) setSolid(cx, cy int32, solid bool) {
	w, b, ok := d.bitIndex(cx, cy)
	if !ok {
		return
	}
	if solid {
		d.Solids[w] |= 1 << b
	} else {
		d.Solids[w] &^= 1 << b
	}
}

// cellAABB returns the world-space AABB of tile (cx,cy).
func (d *TileMapDesc) cellAABB(cx, cy int32) mathx.AABB {
	min := mathx.Vec2{
		X: d.Origin.X + float32(cx)*d.Cell,
		Y: d.Origin.Y + float32(cy)*d.Cell,
	}
	return mathx.AABB{Min: min, Max: mathx.Vec2{X: min.X + d.Cell, Y: min.Y + d.Cell}}
}

func (d *TileMapDesc) worldToCell(p mathx.Vec2) (int32, int32) {
	return cellCoord(p.X-d.Origin.X, d.Cell), cellCoord(p.Y-d.Origin.Y, d.Cell)
}

type tileMapSlot struct {
	desc  TileMapDesc
	gen   uint32
	alive bool
}

// TileMapRect names an inclusive rectangle of tile coordinates, used by
// UpdateTiles.
type TileMapRect struct {
	CX0, CY0, CX1, CY1 int32
}

// AttachTilemap registers a tilemap and returns a handle that stays valid
// until DetachTilemap, surviving BeginFrame.
func (w *PhysicsWorld) AttachTilemap(desc TileMapDesc) TileMapRef {
	for i := range w.tilemaps {
		if !w.tilemaps[i].alive {
			w.tilemaps[i] = tileMapSlot{desc: desc, gen: w.tilemaps[i].gen + 1, alive: true}
			return TileMapRef{index: uint32(i), gen: w.tilemaps[i].gen}
		}
	}
	w.tilemaps = append(w.tilemaps, tileMapSlot{desc: desc, gen: 1, alive: true})
	return TileMapRef{index: uint32(len(w.tilemaps) - 1), gen: 1}
}

// resolveTilemap returns the live slot backing ref, or false if ref names a
// detached or unknown tilemap.
func (w *PhysicsWorld) resolveTilemap(ref TileMapRef) (*tileMapSlot, bool) {
	if int(ref.index) >= len(w.tilemaps) {
		return nil, false
	}
	slot := &w.tilemaps[ref.index]
	if !slot.alive || slot.gen != ref.gen {
		return nil, false
	}
	return slot, true
}

// UpdateTiles overwrites the solid bit for every cell in rect (inclusive)
// from data, read in row-major order starting at (rect.CX0, rect.CY0).
// Returns false if ref is stale.
func (w *PhysicsWorld) UpdateTiles(ref TileMapRef, rect TileMapRect, data []bool) bool {
	slot, ok := w.resolveTilemap(ref)
	if !ok {
		return false
	}
	i := 0
	for cy := rect.CY0; cy <= rect.CY1; cy++ {
		for cx := rect.CX0; cx <= rect.CX1; cx++ {
			if i >= len(data) {
				return true
			}
			slot.desc.setSolid(cx, cy, data[i])
			i++
		}
	}
	return true
}

// DetachTilemap removes a tilemap. Future lookups by ref (even if the slot
// is reused by a later AttachTilemap) fail because the generation no
// longer matches.
func (w *PhysicsWorld) DetachTilemap(ref TileMapRef) bool {
	slot, ok := w.resolveTilemap(ref)
	if !ok {
		return false
	}
	slot.alive = false
	slot.desc = TileMapDesc{}
	return true
}

// rayTilemapDDA walks grid cells from origin along dir using the standard
// DDA stepping scheme (same t_max/t_delta construction as
// original_source/src/world.rs's collider raycast, generalized here to
// halt on the first *solid tile* rather than scanning a collider-id grid
// cell). Degenerate (zero) directions bail out immediately per spec §7.
func rayTilemapDDA(desc *TileMapDesc, origin, dir mathx.Vec2, maxT, tileEps float32) (SweepHit, TileRef, bool) {
	if dir.LengthSq() == 0 {
		return SweepHit{}, TileRef{}, false
	}
	cs := desc.Cell

	cx, cy := desc.worldToCell(origin)
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

	nextBoundary := func(c int32, step int32, origin float32) float32 {
		if step > 0 {
			return origin + (float32(c)+1)*cs
		}
		return origin + float32(c)*cs
	}

	tMaxX := float32(math.Inf(1))
	tMaxY := float32(math.Inf(1))
	tDeltaX := float32(math.Inf(1))
	tDeltaY := float32(math.Inf(1))
	if stepX != 0 {
		tMaxX = (nextBoundary(cx, stepX, desc.Origin.X) - origin.X) / dir.X
		tDeltaX = cs / mathx.Abs(dir.X)
	}
	if stepY != 0 {
		tMaxY = (nextBoundary(cy, stepY, desc.Origin.Y) - origin.Y) / dir.Y
		tDeltaY = cs / mathx.Abs(dir.Y)
	}

	tCurr := float32(0)
	const safetyCap = 100000
	for i := 0; i < safetyCap; i++ {
		if tCurr > maxT {
			break
		}
		if desc.isSolid(cx, cy) {
			normal := mathx.Vec2{}
			if tMaxX < tMaxY {
				normal = mathx.Vec2{X: -float32(stepX)}
			} else {
				normal = mathx.Vec2{Y: -float32(stepY)}
			}
			if tCurr == 0 {
				normal = mathx.Vec2{}
			}
			hitPos := origin.Add(dir.Scale(tCurr - tileEps))
			return SweepHit{
				T:      tCurr,
				Normal: normal,
				Hint:   ResolutionHint{SafePos: hitPos, HasSafePos: true},
			}, TileRef{CX: cx, CY: cy}, true
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
	return SweepHit{}, TileRef{}, false
}

// cellCenterHalf returns the world-space center and half-extents of tile
// (cx,cy), the form the AABB/circle narrowphase primitives expect.
func (d *TileMapDesc) cellCenterHalf(cx, cy int32) (center, half mathx.Vec2) {
	box := d.cellAABB(cx, cy)
	half = mathx.Vec2{X: (box.Max.X - box.Min.X) / 2, Y: (box.Max.Y - box.Min.Y) / 2}
	center = mathx.Vec2{X: box.Min.X + half.X, Y: box.Min.Y + half.Y}
	return
}

// aabbOverlapsAnySolid reports whether box overlaps any solid cell of desc.
// Cell coordinates are computed via worldToCell (not the grid package's
// cellRange helper, which assumes a grid anchored at world origin) because
// a tilemap carries its own Origin.
func aabbOverlapsAnySolid(desc *TileMapDesc, box mathx.AABB) bool {
	minX, minY := desc.worldToCell(box.Min)
	maxX, maxY := desc.worldToCell(box.Max)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			if desc.isSolid(cx, cy) {
				return true
			}
		}
	}
	return false
}

// sweptAABBVsTilemap enumerates cells overlapping the swept AABB row by
// row (ascending cy, then cx) and returns the earliest TOI among
// solid-cell hits, ties going to the lower (cy,cx) cell (spec §4.E).
func sweptAABBVsTilemap(desc *TileMapDesc, center, half, vel mathx.Vec2, dt, tileEps float32) (SweepHit, TileRef, bool) {
	startBox := mathx.FromCenterHalf(center, half)
	disp := vel.Scale(dt)
	endBox := mathx.FromCenterHalf(center.Add(disp), half)
	swept := startBox.Union(endBox)

	startEmbedded := aabbOverlapsAnySolid(desc, startBox)

	var best SweepHit
	var bestTile TileRef
	haveBest := false

	minX, minY := desc.worldToCell(swept.Min)
	maxX, maxY := desc.worldToCell(swept.Max)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			if !desc.isSolid(cx, cy) {
				continue
			}
			cellCenter, cellHalf := desc.cellCenterHalf(cx, cy)
			hit, ok := sweepAABBAABB(center, half, disp, cellCenter, cellHalf, mathx.Vec2{})
			if !ok {
				continue
			}
			if !haveBest || hit.T < best.T || (hit.T == best.T && tileOrderLess(cx, cy, bestTile.CX, bestTile.CY)) {
				best = SweepHit{T: hit.T, Normal: hit.Normal}
				bestTile = TileRef{CX: cx, CY: cy}
				haveBest = true
			}
		}
	}
	if !haveBest {
		return SweepHit{}, TileRef{}, false
	}
	safePos := center.Add(disp.Scale(mathx.MaxF(0, best.T-tileEps)))
	best.Hint = ResolutionHint{
		SafePos:       safePos,
		HasSafePos:    true,
		StartEmbedded: startEmbedded,
		FullyEmbedded: startEmbedded && fullyEmbeddedAABB(desc, startBox),
	}
	return best, bestTile, true
}

// fullyEmbeddedAABB reports whether box has no separating direction left:
// every axis-aligned neighbor cell of its footprint is also solid, i.e.
// there is no direction box could move one cell and escape solids.
func fullyEmbeddedAABB(desc *TileMapDesc, box mathx.AABB) bool {
	minX, minY := desc.worldToCell(box.Min)
	maxX, maxY := desc.worldToCell(box.Max)
	// A max edge lying exactly on a cell boundary only touches the next
	// cell, so that cell is not part of the footprint.
	if maxX > minX && desc.Origin.X+float32(maxX)*desc.Cell == box.Max.X {
		maxX--
	}
	if maxY > minY && desc.Origin.Y+float32(maxY)*desc.Cell == box.Max.Y {
		maxY--
	}
	// A direction is separating if the cell one step that direction from
	// every footprint cell along the perpendicular span is non-solid.
	left := true
	for cy := minY; cy <= maxY; cy++ {
		if !desc.isSolid(minX-1, cy) {
			left = false
			break
		}
	}
	right := true
	for cy := minY; cy <= maxY; cy++ {
		if !desc.isSolid(maxX+1, cy) {
			right = false
			break
		}
	}
	up := true
	for cx := minX; cx <= maxX; cx++ {
		if !desc.isSolid(cx, minY-1) {
			up = false
			break
		}
	}
	down := true
	for cx := minX; cx <= maxX; cx++ {
		if !desc.isSolid(cx, maxY+1) {
			down = false
			break
		}
	}
	return left && right && up && down
}

func tileOrderLess(cx, cy, bx, by int32) bool {
	if cy != by {
		return cy < by
	}
	return cx < bx
}

// sweptCircleVsTilemap enumerates candidate cells via the circle's swept
// AABB and runs a circle-vs-expanded-box sweep per solid cell, keeping the
// earliest TOI; ties broken by (cy,cx) per spec §9's open-question
// decision.
func sweptCircleVsTilemap(desc *TileMapDesc, center mathx.Vec2, radius float32, vel mathx.Vec2, dt, tileEps float32) (SweepHit, TileRef, bool) {
	half := mathx.Vec2{X: radius, Y: radius}
	startBox := mathx.FromCenterHalf(center, half)
	disp := vel.Scale(dt)
	endBox := mathx.FromCenterHalf(center.Add(disp), half)
	swept := startBox.Union(endBox)

	startEmbedded := false
	{
		minX, minY := desc.worldToCell(startBox.Min)
		maxX, maxY := desc.worldToCell(startBox.Max)
		for cy := minY; cy <= maxY && !startEmbedded; cy++ {
			for cx := minX; cx <= maxX; cx++ {
				if !desc.isSolid(cx, cy) {
					continue
				}
				boxC, boxH := desc.cellCenterHalf(cx, cy)
				if overlapCircleAABBBool(center, radius, boxC, boxH) {
					startEmbedded = true
					break
				}
			}
		}
	}

	var best SweepHit
	var bestTile TileRef
	haveBest := false

	minX, minY := desc.worldToCell(swept.Min)
	maxX, maxY := desc.worldToCell(swept.Max)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			if !desc.isSolid(cx, cy) {
				continue
			}
			cellBox := desc.cellAABB(cx, cy)
			boxC := mathx.Vec2{X: (cellBox.Min.X + cellBox.Max.X) / 2, Y: (cellBox.Min.Y + cellBox.Max.Y) / 2}
			boxH := mathx.Vec2{X: desc.Cell / 2, Y: desc.Cell / 2}
			hit, ok := sweepCircleAABB(center, radius, disp, boxC, boxH, mathx.Vec2{})
			if !ok {
				continue
			}
			if !haveBest || hit.T < best.T || (hit.T == best.T && tileOrderLess(cx, cy, bestTile.CX, bestTile.CY)) {
				best = hit
				bestTile = TileRef{CX: cx, CY: cy}
				haveBest = true
			}
		}
	}
	if !haveBest {
		return SweepHit{}, TileRef{}, false
	}
	safePos := center.Add(disp.Scale(mathx.MaxF(0, best.T-tileEps)))
	best.Hint = ResolutionHint{SafePos: safePos, HasSafePos: true, StartEmbedded: startEmbedded}
	return best, bestTile, true
}

// signedDepthAABBTile returns the signed penetration of an AABB against a
// single solid cell per spec §4.E: positive = overlap depth (min axis),
// negative = separation gap (magnitude), 0 = tangent.
func signedDepthAABBTile(desc *TileMapDesc, center, half mathx.Vec2, cx, cy int32) Overlap {
	cellBox := desc.cellAABB(cx, cy)
	cellHalf := mathx.Vec2{X: (cellBox.Max.X - cellBox.Min.X) / 2, Y: (cellBox.Max.Y - cellBox.Min.Y) / 2}
	cellCenter := mathx.Vec2{X: (cellBox.Min.X + cellBox.Max.X) / 2, Y: (cellBox.Min.Y + cellBox.Max.Y) / 2}

	if ov, ok := overlapAABBAABB(center, half, cellCenter, cellHalf); ok {
		return ov
	}
	d := cellCenter.Sub(center)
	gapX := mathx.Abs(d.X) - (half.X + cellHalf.X)
	gapY := mathx.Abs(d.Y) - (half.Y + cellHalf.Y)
	gap := mathx.MaxF(gapX, gapY)
	normal := mathx.Vec2{}
	if gapX >= gapY {
		if d.X >= 0 {
			normal = mathx.Vec2{X: -1}
		} else {
			normal = mathx.Vec2{X: 1}
		}
	} else {
		if d.Y >= 0 {
			normal = mathx.Vec2{Y: -1}
		} else {
			normal = mathx.Vec2{Y: 1}
		}
	}
	return Overlap{Depth: -gap, Normal: normal}
}

// signedDepthCircleTile returns the signed penetration of a circle
// against a single solid cell: positive = r - nearest distance, negative
// = nearest distance - r. Normal on separation is zero by convention
// (spec §4.E).
func signedDepthCircleTile(desc *TileMapDesc, center mathx.Vec2, radius float32, cx, cy int32) Overlap {
	cellBox := desc.cellAABB(cx, cy)
	closest := mathx.Vec2{
		X: mathx.Clamp(center.X, cellBox.Min.X, cellBox.Max.X),
		Y: mathx.Clamp(center.Y, cellBox.Min.Y, cellBox.Max.Y),
	}
	d := center.Sub(closest)
	dist := d.Length()
	if dist == 0 {
		return Overlap{Depth: radius, Normal: mathx.Vec2{}}
	}
	depth := radius - dist
	if depth >= 0 {
		return Overlap{Depth: depth, Normal: mathx.Vec2{X: d.X / dist, Y: d.Y / dist}}
	}
	return Overlap{Depth: depth, Normal: mathx.Vec2{}}
}
