package engine

import "time"

// WorldTiming carries the wall-clock sub-bucket measurements spec §4.I
// defines, populated only when WorldConfig.EnableTiming is set. Zero value
// when timing is disabled; Timing()'s second return reports whether the
// values are meaningful for the last frame.
type WorldTiming struct {
	EndFrameAABBsMS       float64
	EndFrameGridMS        float64
	GenerateScanMS        float64
	GenerateNarrowphaseMS float64
}

// Timing returns the last frame's timing buckets and whether they were
// actually measured (EnableTiming was set for that frame).
func (w *PhysicsWorld) Timing() (WorldTiming, bool) {
	return w.timing, w.timingValid
}

// WorldStats carries the per-frame counters spec §4.I defines: entries
// pushed, occupied grid cells, candidate pairs seen pre-narrowphase, unique
// pairs after pair dedup, and events actually emitted.
type WorldStats struct {
	Entries        int
	OccupiedCells  int
	CandidatePairs int
	UniquePairs    int
	EventsEmitted  int
	EventsDropped  int
}

// DebugStats reports a snapshot of the current frame's counters. Cell
// occupancy is counted on demand (cheap relative to a full frame); pair
// counters reflect the most recent GenerateEvents call.
func (w *PhysicsWorld) DebugStats() WorldStats {
	occupied := 0
	for _, ids := range w.grid.cells {
		if len(ids) > 0 {
			occupied++
		}
	}
	return WorldStats{
		Entries:        len(w.entries),
		OccupiedCells:  occupied,
		CandidatePairs: w.lastCandidatePairs,
		UniquePairs:    w.lastUniquePairs,
		EventsEmitted:  w.eventsEmitted,
		EventsDropped:  w.eventsDropped,
	}
}

// timer is a minimal wall-clock stopwatch, used only when EnableTiming is
// set so the common case pays no time.Now() cost.
type timer struct {
	start time.Time
}

func startTimer() timer {
	return timer{start: time.Now()}
}

func (t timer) elapsedMS() float64 {
	return float64(time.Since(t.start)) / float64(time.Millisecond)
}
