package engine

import (
	"testing"

	"collide/mathx"
)

func solidRow(bits ...bool) []uint64 {
	var words []uint64
	for i, b := range bits {
		if !b {
			continue
		}
		for len(words) <= i/64 {
			words = append(words, 0)
		}
		words[i/64] |= 1 << uint(i%64)
	}
	if len(words) == 0 {
		words = []uint64{0}
	}
	return words
}

// S4: raycast through tilemap row [0,1,0] at origin=(0,0), cell=1.
func TestScenarioS4RaycastTilemapRow(t *testing.T) {
	desc := TileMapDesc{
		Origin: mathx.Vec2{}, Cell: 1, Width: 3, Height: 1,
		Solids: solidRow(false, true, false),
	}
	hit, tile, ok := rayTilemapDDA(&desc, mathx.Vec2{X: -0.5, Y: 0.5}, mathx.Vec2{X: 1, Y: 0}, 100, 1e-3)
	if !ok {
		t.Fatal("expected a hit")
	}
	if !near(hit.T, 1.5, 1e-5) {
		t.Errorf("t = %v, want 1.5", hit.T)
	}
	if !near(hit.Normal.X, -1, 1e-5) {
		t.Errorf("normal.X = %v, want -1", hit.Normal.X)
	}
	if tile.CX != 1 || tile.CY != 0 {
		t.Errorf("tile = (%d,%d), want (1,0)", tile.CX, tile.CY)
	}
	// safe_pos = origin + dir*(t - tile_eps): the ray position backed off
	// tile_eps short of the solid boundary, i.e. just shy of x=1.
	wantSafeX := float32(-0.5 + (1.5 - 1e-3))
	if !near(hit.Hint.SafePos.X, wantSafeX, 1e-4) {
		t.Errorf("safe_pos.X = %v, want ~%v", hit.Hint.SafePos.X, wantSafeX)
	}
}

// S5: swept AABB into tile wall.
func TestScenarioS5SweptAABBIntoTileWall(t *testing.T) {
	desc := TileMapDesc{
		Origin: mathx.Vec2{}, Cell: 1, Width: 3, Height: 1,
		Solids: solidRow(false, true, false),
	}
	hit, tile, ok := sweptAABBVsTilemap(&desc, mathx.Vec2{X: 0.2, Y: 0.5}, mathx.Vec2{X: 0.3, Y: 0.3}, mathx.Vec2{X: 2, Y: 0}, 1, 1e-4)
	if !ok {
		t.Fatal("expected a sweep hit")
	}
	if !near(hit.T, 0.25, 1e-5) {
		t.Errorf("t = %v, want 0.25", hit.T)
	}
	if !near(hit.Normal.X, -1, 1e-5) {
		t.Errorf("normal.X = %v, want -1", hit.Normal.X)
	}
	if tile.CX != 1 || tile.CY != 0 {
		t.Errorf("tile = (%d,%d), want (1,0)", tile.CX, tile.CY)
	}
}

func TestRayTilemapDDAZeroDirectionMisses(t *testing.T) {
	desc := TileMapDesc{Origin: mathx.Vec2{}, Cell: 1, Width: 1, Height: 1, Solids: solidRow(true)}
	_, _, ok := rayTilemapDDA(&desc, mathx.Vec2{}, mathx.Vec2{}, 10, 1e-3)
	if ok {
		t.Error("zero-direction ray should never hit")
	}
}

func TestAttachUpdateDetachTilemap(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	ref := w.AttachTilemap(TileMapDesc{Origin: mathx.Vec2{}, Cell: 1, Width: 2, Height: 2, Solids: solidRow(false, false, false, false)})

	if ok := w.UpdateTiles(ref, TileMapRect{CX0: 1, CY0: 1, CX1: 1, CY1: 1}, []bool{true}); !ok {
		t.Fatal("UpdateTiles should succeed on a live ref")
	}
	slot, ok := w.resolveTilemap(ref)
	if !ok || !slot.desc.isSolid(1, 1) {
		t.Error("expected cell (1,1) to be solid after UpdateTiles")
	}

	if !w.DetachTilemap(ref) {
		t.Fatal("DetachTilemap should succeed on a live ref")
	}
	if _, ok := w.resolveTilemap(ref); ok {
		t.Error("resolveTilemap should fail for a detached ref")
	}
	if w.UpdateTiles(ref, TileMapRect{}, nil) {
		t.Error("UpdateTiles should fail for a stale ref")
	}
}

func TestAttachTilemapReusesSlotBumpsGeneration(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	first := w.AttachTilemap(TileMapDesc{Cell: 1, Width: 1, Height: 1, Solids: solidRow(false)})
	w.DetachTilemap(first)
	second := w.AttachTilemap(TileMapDesc{Cell: 1, Width: 1, Height: 1, Solids: solidRow(false)})

	if _, ok := w.resolveTilemap(first); ok {
		t.Error("stale ref from before detach should not resolve")
	}
	if _, ok := w.resolveTilemap(second); !ok {
		t.Error("fresh ref after reuse should resolve")
	}
}

func TestFullyEmbeddedAABB(t *testing.T) {
	// 3x3 all-solid tilemap; an AABB centered in the middle cell is fully
	// embedded (no neighbor cell is non-solid in any of the four directions).
	solids := solidRow(true, true, true, true, true, true, true, true, true)
	desc := TileMapDesc{Origin: mathx.Vec2{}, Cell: 1, Width: 3, Height: 3, Solids: solids}
	box := desc.cellAABB(1, 1)
	if !fullyEmbeddedAABB(&desc, box) {
		t.Error("expected fully embedded when surrounded on all sides by solid cells")
	}
}

func TestSignedDepthAABBTileOverlapAndGap(t *testing.T) {
	desc := TileMapDesc{Origin: mathx.Vec2{}, Cell: 1, Width: 1, Height: 1, Solids: solidRow(true)}

	ov := signedDepthAABBTile(&desc, mathx.Vec2{X: 0.5, Y: 0.5}, mathx.Vec2{X: 0.3, Y: 0.3}, 0, 0)
	if ov.Depth < 0 {
		t.Errorf("expected positive depth for overlap, got %v", ov.Depth)
	}

	sep := signedDepthAABBTile(&desc, mathx.Vec2{X: 5, Y: 0.5}, mathx.Vec2{X: 0.3, Y: 0.3}, 0, 0)
	if sep.Depth >= 0 {
		t.Errorf("expected negative depth for separation, got %v", sep.Depth)
	}
}

func TestSignedDepthCircleTileOverlapAndGap(t *testing.T) {
	desc := TileMapDesc{Origin: mathx.Vec2{}, Cell: 1, Width: 1, Height: 1, Solids: solidRow(true)}

	ov := signedDepthCircleTile(&desc, mathx.Vec2{X: 0.5, Y: 0.5}, 0.4, 0, 0)
	if ov.Depth < 0 {
		t.Errorf("expected positive depth for overlap, got %v", ov.Depth)
	}

	sep := signedDepthCircleTile(&desc, mathx.Vec2{X: 5, Y: 0.5}, 0.4, 0, 0)
	if sep.Depth >= 0 {
		t.Errorf("expected negative depth for separation, got %v", sep.Depth)
	}
}
