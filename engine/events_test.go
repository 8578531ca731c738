package engine

import (
	"testing"

	"collide/mathx"
)

// S1: circle into static AABB head-on.
func TestScenarioS1CircleIntoStaticAABB(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	w.BeginFrame()
	mask := SimpleMask(1, 1)
	w.PushCircle(mathx.Vec2{X: -3, Y: 0}, 0.5, mathx.Vec2{X: 5, Y: 0}, mask, 0, false)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	evs := w.DrainEvents()

	if len(evs) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.Kind != EventSweep {
		t.Fatalf("expected a Sweep event, got kind %v", ev.Kind)
	}
	if !near(ev.Sweep.T, 0.3, 1e-4) {
		t.Errorf("t = %v, want 0.3", ev.Sweep.T)
	}
	if !near(ev.Sweep.Normal.X, -1, 1e-4) {
		t.Errorf("normal.X = %v, want -1", ev.Sweep.Normal.X)
	}
}

// S2: already-overlapping static pair emits Overlap only, never a t=0 Sweep.
func TestScenarioS2AlreadyOverlappingStaticPair(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	w.BeginFrame()
	mask := SimpleMask(1, 1)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	evs := w.DrainEvents()

	if len(evs) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.Kind != EventOverlap {
		t.Fatalf("expected an Overlap event for a static (non-moving) pair, got kind %v", ev.Kind)
	}
	if ev.Overlap.Depth != 2 {
		t.Errorf("depth = %v, want 2", ev.Overlap.Depth)
	}
	if ev.Overlap.Normal.X != 1 && ev.Overlap.Normal.X != -1 {
		t.Errorf("normal should be unit along x on a tie, got %v", ev.Overlap.Normal)
	}
}

// S3: mask reject — incompatible layers never produce an event regardless
// of how deeply the shapes overlap.
func TestScenarioS3MaskReject(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	w.BeginFrame()
	ball := LayerMask{Layer: 1, CollidesWith: 2}
	block := LayerMask{Layer: 4, CollidesWith: 8}
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, ball, 0, false)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, block, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	evs := w.DrainEvents()
	if len(evs) != 0 {
		t.Fatalf("expected no events on mask mismatch, got %d", len(evs))
	}
}

// S6: event cap — 100 pairwise-overlapping colliders, max_events=10.
func TestScenarioS6EventCap(t *testing.T) {
	cfg := basicCfg()
	cfg.MaxEvents = 10
	w := newTestWorld(t, cfg)
	w.BeginFrame()
	mask := SimpleMask(1, 1)
	for i := 0; i < 100; i++ {
		w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	}
	w.EndFrame()
	w.GenerateEvents()
	evs := w.DrainEvents()

	if len(evs) != 10 {
		t.Fatalf("expected exactly 10 retained events, got %d", len(evs))
	}
	stats := w.DebugStats()
	wantPairs := 100 * 99 / 2
	if stats.EventsEmitted != wantPairs {
		t.Errorf("events_emitted = %d, want %d", stats.EventsEmitted, wantPairs)
	}
	if stats.EventsDropped < 90 {
		t.Errorf("events_dropped = %d, want >= 90", stats.EventsDropped)
	}
}

// A moving pair that already overlaps at t=0 must emit the Overlap event
// only, never an additional start-embedded Sweep for the same contact.
func TestStartEmbeddedSweepEmitsOverlapOnlyWhenOverlapEventsEnabled(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	w.BeginFrame()
	mask := SimpleMask(1, 1)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{X: 1, Y: 0}, mask, 0, false)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	evs := w.DrainEvents()

	if len(evs) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.Kind != EventOverlap {
		t.Fatalf("expected an Overlap event for a start-embedded moving pair, got kind %v", ev.Kind)
	}
	if ev.Overlap.Depth != 2 {
		t.Errorf("depth = %v, want 2", ev.Overlap.Depth)
	}
}

// With overlap events disabled, the same start-embedded pair must fall
// back to the t=0 Sweep since that's the only signal left.
func TestStartEmbeddedSweepFallsBackWhenOverlapEventsDisabled(t *testing.T) {
	cfg := basicCfg()
	cfg.EnableOverlapEvents = false
	w := newTestWorld(t, cfg)
	w.BeginFrame()
	mask := SimpleMask(1, 1)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{X: 1, Y: 0}, mask, 0, false)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	evs := w.DrainEvents()

	if len(evs) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(evs))
	}
	ev := evs[0]
	if ev.Kind != EventSweep {
		t.Fatalf("expected a Sweep event when overlap events are disabled, got kind %v", ev.Kind)
	}
	if ev.Sweep.T != 0 || !ev.Sweep.Hint.StartEmbedded {
		t.Errorf("expected t=0 start_embedded sweep, got %+v", ev.Sweep)
	}
}

func TestMutualConsentIsSymmetric(t *testing.T) {
	a := LayerMask{Layer: 1, CollidesWith: 2}
	b := LayerMask{Layer: 2, CollidesWith: 1}
	if consents(a, b, true) != consents(b, a, true) {
		t.Error("mutual consent must be symmetric under argument swap")
	}
}

func TestPairDedupNoDuplicatePairWithinOneGenerateEventsCall(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	w.BeginFrame()
	mask := SimpleMask(1, 1)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 2, Y: 2}, mathx.Vec2{}, mask, 0, false)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 2, Y: 2}, mathx.Vec2{}, mask, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	evs := w.DrainEvents()

	seen := make(map[[2]FrameID]bool)
	for _, ev := range evs {
		key := [2]FrameID{ev.A.Frame, ev.B.Frame}
		if ev.A.Frame > ev.B.Frame {
			key = [2]FrameID{ev.B.Frame, ev.A.Frame}
		}
		if seen[key] {
			t.Fatalf("duplicate event for pair %v", key)
		}
		seen[key] = true
	}
}

func TestDrainEventsEmptiesBuffer(t *testing.T) {
	w := newTestWorld(t, basicCfg())
	w.BeginFrame()
	mask := SimpleMask(1, 1)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	w.PushAABB(mathx.Vec2{}, mathx.Vec2{X: 1, Y: 1}, mathx.Vec2{}, mask, 0, false)
	w.EndFrame()
	w.GenerateEvents()
	if len(w.DrainEvents()) == 0 {
		t.Fatal("expected at least one event before drain")
	}
	if len(w.DrainEvents()) != 0 {
		t.Error("second drain should be empty")
	}
}
