package engine

import (
	"testing"

	"collide/engine/goldentest"
	"collide/mathx"
)

// runOneFrame drives a fixed scenario through a brand-new world and
// returns its drained events plus debug stats, for determinism
// comparison across independent runs (spec §8, property 9).
func runOneFrame(t *testing.T) ([]Event, WorldStats) {
	t.Helper()
	w := newTestWorld(t, basicCfg())
	mask := SimpleMask(1, 1)

	w.AttachTilemap(TileMapDesc{
		Origin: mathx.Vec2{}, Cell: 1, Width: 4, Height: 1,
		Solids: solidRow(false, false, true, false),
		Mask:   mask,
	})

	w.BeginFrame()
	w.PushCircle(mathx.Vec2{X: -3, Y: 0}, 0.5, mathx.Vec2{X: 5, Y: 0}, mask, 1, true)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 2, true)
	w.PushAABB(mathx.Vec2{X: 20, Y: 20}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 3, true)
	w.EndFrame()
	w.GenerateEvents()

	evs := append([]Event(nil), w.DrainEvents()...)
	return evs, w.DebugStats()
}

func TestDeterminismSameInputsProduceByteIdenticalOutput(t *testing.T) {
	evsA, statsA := runOneFrame(t)
	evsB, statsB := runOneFrame(t)

	if !goldentest.SameBytes(evsA, evsB) {
		t.Error("two independent runs of the same scenario produced different encoded events")
	}
	if !goldentest.SameBytes(statsA, statsB) {
		t.Error("two independent runs of the same scenario produced different encoded stats")
	}
}

// Invariant 2 (spec §8): every emitted sweep event has 0 <= t <= 1.
func TestInvariantSweepTimeWithinUnitInterval(t *testing.T) {
	evs, _ := runOneFrame(t)
	found := false
	for _, ev := range evs {
		if ev.Kind != EventSweep {
			continue
		}
		found = true
		if ev.Sweep.T < 0 || ev.Sweep.T > 1 {
			t.Errorf("sweep t = %v, want in [0,1]", ev.Sweep.T)
		}
	}
	if !found {
		t.Fatal("expected at least one sweep event in this scenario")
	}
}

// Invariant 3 (spec §8): a swept pair whose AABBs never touch emits no event.
func TestInvariantDisjointSweptPairsEmitNothing(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	mask := SimpleMask(1, 1)
	w.BeginFrame()
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 0.1, Y: 0.1}, mathx.Vec2{}, mask, 0, false)
	w.PushAABB(mathx.Vec2{X: 100, Y: 100}, mathx.Vec2{X: 0.1, Y: 0.1}, mathx.Vec2{}, mask, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	if evs := w.DrainEvents(); len(evs) != 0 {
		t.Errorf("expected no events for a pair nowhere near each other, got %d", len(evs))
	}
}
