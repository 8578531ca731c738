// Command collidedemo exercises the engine end to end: one frame, a ball
// sweeping into a static wall, timing enabled. Mirrors the breakout-style
// smoke test from the original implementation's example programs, in the
// teacher's flag/log idiom rather than a bare fmt.Println script.
package main

import (
	"flag"
	"log"

	"collide/engine"
)

func main() {
	cellSize := flag.Float64("cell-size", 1.0, "broadphase cell edge length")
	timing := flag.Bool("timing", true, "record WorldTiming buckets")
	flag.Parse()

	cfg := engine.DefaultWorldConfig()
	cfg.CellSize = float32(*cellSize)
	cfg.EnableTiming = *timing

	world, err := engine.New(cfg)
	if err != nil {
		log.Fatalf("engine.New: %v", err)
	}

	world.BeginFrame()

	maskDyn := engine.SimpleMask(1, 2)
	maskSta := engine.SimpleMask(2, 1)

	ball := world.PushCircle(engine.Vec2{X: -3, Y: 0}, 0.5, engine.Vec2{X: 5, Y: 0}, maskDyn, 1, true)
	wall := world.PushAABB(engine.Vec2{X: 0, Y: 0}, engine.Vec2{X: 1, Y: 1}, engine.Vec2{}, maskSta, 2, true)
	log.Printf("pushed ball=%d wall=%d", ball, wall)

	world.EndFrame()
	world.GenerateEvents()

	if t, ok := world.Timing(); ok {
		log.Printf("timing: end_frame_aabbs=%.3fms end_frame_grid=%.3fms generate_scan=%.3fms generate_narrowphase=%.3fms",
			t.EndFrameAABBsMS, t.EndFrameGridMS, t.GenerateScanMS, t.GenerateNarrowphaseMS)
	}

	for _, ev := range world.DrainEvents() {
		switch ev.Kind {
		case engine.EventSweep:
			log.Printf("sweep: %v vs %v t=%.3f normal=(%.2f,%.2f)",
				ev.A, ev.B, ev.Sweep.T, ev.Sweep.Normal.X, ev.Sweep.Normal.Y)
		case engine.EventOverlap:
			log.Printf("overlap: %v vs %v depth=%.3f normal=(%.2f,%.2f)",
				ev.A, ev.B, ev.Overlap.Depth, ev.Overlap.Normal.X, ev.Overlap.Normal.Y)
		}
	}

	stats := world.DebugStats()
	log.Printf("stats: entries=%d cells=%d candidate_pairs=%d unique_pairs=%d events_emitted=%d events_dropped=%d",
		stats.Entries, stats.OccupiedCells, stats.CandidatePairs, stats.UniquePairs, stats.EventsEmitted, stats.EventsDropped)
}
