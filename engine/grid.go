package engine

import "collide/mathx"

// cellKey identifies one uniform-grid cell. Plain comparable struct used
// directly as a map key, the same idiom the teacher's fixed-size
// SpatialGrid used for flat array indexing, generalized here to an
// unbounded map since this engine's grid must support negative coordinates
// and has no configured world extent.
type cellKey struct {
	X, Y int32
}

// grid maps a cell coordinate to the (possibly duplicated across other
// cells, never duplicated within the same cell) list of FrameIDs whose
// swept AABB overlaps that cell.
type grid struct {
	cells map[cellKey][]FrameID

	// dedupStamp/epoch implement the epoch-stamped scratch dedup described
	// in spec §4.C/§9: an O(1) "have I already visited this FrameID in the
	// current scan" test without reallocating or clearing a set every scan.
	dedupStamp []uint32
	epoch      uint32
}

func newGrid() *grid {
	return &grid{cells: make(map[cellKey][]FrameID)}
}

// reset clears cell contents but keeps the map and its per-cell slice
// capacity, mirroring SpatialGrid.Clear()'s "[:0] truncate, don't
// reallocate" behavior.
func (g *grid) reset() {
	for k, v := range g.cells {
		g.cells[k] = v[:0]
	}
}

func cellCoord(v float32, cellSize float32) int32 {
	return int32Floor(v / cellSize)
}

func int32Floor(v float32) int32 {
	i := int32(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}

// cellRange returns the inclusive [min,max] cell coordinate range an AABB
// overlaps.
func cellRange(box mathx.AABB, cellSize float32) (minX, minY, maxX, maxY int32) {
	minX = cellCoord(box.Min.X, cellSize)
	minY = cellCoord(box.Min.Y, cellSize)
	maxX = cellCoord(box.Max.X, cellSize)
	maxY = cellCoord(box.Max.Y, cellSize)
	return
}

// insert appends id to every cell overlapping box. A FrameID may appear in
// more than one cell but never twice within the same cell (each id is
// inserted into a given cell exactly once per call).
func (g *grid) insert(id FrameID, box mathx.AABB, cellSize float32) {
	minX, minY, maxX, maxY := cellRange(box, cellSize)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			k := cellKey{x, y}
			g.cells[k] = append(g.cells[k], id)
		}
	}
}

// ensureDedupCapacity grows the epoch-stamp scratch array to cover n
// entries, preserving existing stamps (new slots start at epoch 0, which
// never matches a live epoch since nextEpoch starts from 1).
func (g *grid) ensureDedupCapacity(n int) {
	if len(g.dedupStamp) >= n {
		return
	}
	grown := make([]uint32, n)
	copy(grown, g.dedupStamp)
	g.dedupStamp = grown
}

// nextEpoch advances the scan epoch, wrapping safely at the uint32 range
// (0 is reserved as "never visited" so a wrap wastes one epoch value,
// never causes a false "already visited").
func (g *grid) nextEpoch() uint32 {
	g.epoch++
	if g.epoch == 0 {
		g.epoch = 1
	}
	return g.epoch
}

// visited reports whether id has already been marked in the given epoch
// scan, without allocating or clearing anything between scans.
func (g *grid) visited(id FrameID, epoch uint32) bool {
	return g.dedupStamp[id] == epoch
}

func (g *grid) markVisited(id FrameID, epoch uint32) {
	g.dedupStamp[id] = epoch
}

// forEachInCells iterates every FrameID found across the cells overlapping
// box, deduplicating ids that occur in more than one cell via the epoch
// scratch array.
func (g *grid) forEachInCells(box mathx.AABB, cellSize float32, fn func(FrameID)) {
	epoch := g.nextEpoch()
	minX, minY, maxX, maxY := cellRange(box, cellSize)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			ids, ok := g.cells[cellKey{x, y}]
			if !ok {
				continue
			}
			for _, id := range ids {
				if g.visited(id, epoch) {
					continue
				}
				g.markVisited(id, epoch)
				fn(id)
			}
		}
	}
}
