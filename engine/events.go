package engine

// This file implements spec §4.F: the broadphase scan over grid cells,
// consent filtering, narrowphase dispatch, and the bounded event buffer.
// Ported from original_source/src/world.rs's generate_events. Pair dedup
// uses a map keyed by pairKey, allocated once per GenerateEvents call; the
// epoch-stamped scratch array in grid.go is not used for pairs.

// pairKey symmetrically encodes an unordered FrameId pair for dedup,
// matching the `min*N + max` scheme spec §4.F names.
func pairKey(a, b FrameID, n uint64) uint64 {
	lo, hi := uint64(a), uint64(b)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo*n + hi
}

// GenerateEvents scans every occupied grid cell for unique candidate
// pairs, applies mask consent, runs narrowphase overlap and/or sweep
// tests per WorldConfig, and fills the event buffer up to MaxEvents.
// Idempotent within a frame: each call clears and repopulates the buffer
// (spec §5).
func (w *PhysicsWorld) GenerateEvents() {
	var scanTimer timer
	if w.cfg.EnableTiming {
		scanTimer = startTimer()
	}

	w.events = w.events[:0]
	w.eventsEmitted = 0
	w.eventsDropped = 0
	w.lastCandidatePairs = 0
	w.lastUniquePairs = 0

	n := uint64(len(w.entries))
	if n == 0 {
		if w.cfg.EnableTiming {
			w.timing.GenerateScanMS = scanTimer.elapsedMS()
			w.timingValid = true
		}
		return
	}

	seen := make(map[uint64]struct{})
	var narrowphaseMS float64

	for _, ids := range w.grid.cells {
		for i0 := 0; i0 < len(ids); i0++ {
			for i1 := i0 + 1; i1 < len(ids); i1++ {
				a, b := ids[i0], ids[i1]
				w.lastCandidatePairs++
				key := pairKey(a, b, n)
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				w.lastUniquePairs++

				var npTimer timer
				if w.cfg.EnableTiming {
					npTimer = startTimer()
				}
				w.emitPair(a, b)
				if w.cfg.EnableTiming {
					narrowphaseMS += npTimer.elapsedMS()
				}
			}
		}
	}

	if w.cfg.EnableTiming {
		w.timing.GenerateNarrowphaseMS = narrowphaseMS
		w.timing.GenerateScanMS = scanTimer.elapsedMS() - narrowphaseMS
		w.timingValid = true
	}
}

// emitPair runs the consent-then-narrowphase pipeline for one candidate
// pair and appends at most one event, respecting MaxEvents.
func (w *PhysicsWorld) emitPair(ai, bi FrameID) {
	ea := &w.entries[ai]
	eb := &w.entries[bi]
	if !consents(ea.mask, eb.mask, w.requireMutual()) {
		return
	}

	rel := ea.vel.Sub(eb.vel)
	dynamic := rel.LengthSq() > 1e-12

	if dynamic && w.cfg.EnableSweepEvents {
		if hit, ok := sweepEntries(ea, eb, w.cfg.DT); ok && hit.T >= 0 && hit.T <= 1 {
			startEmbedded := hit.T == 0 && hit.Hint.StartEmbedded
			// A t=0 start-embedded sweep duplicates the Overlap event for
			// the same penetration; emit only the Overlap when it's on
			// (spec §9's documented resolution), otherwise keep the Sweep
			// since it's the only signal left for this pair.
			if !startEmbedded || !w.cfg.EnableOverlapEvents {
				w.pushEvent(Event{
					Kind:    EventSweep,
					A:       BodyRef{Kind: BodyCollider, Frame: ai},
					B:       BodyRef{Kind: BodyCollider, Frame: bi},
					AKey:    ea.key, AHasKey: ea.hasKey,
					BKey: eb.key, BHasKey: eb.hasKey,
					Sweep: hit,
				})
				return
			}
		}
	}
	if w.cfg.EnableOverlapEvents {
		if ov, ok := overlapEntries(ea, eb); ok {
			w.pushEvent(Event{
				Kind:    EventOverlap,
				A:       BodyRef{Kind: BodyCollider, Frame: ai},
				B:       BodyRef{Kind: BodyCollider, Frame: bi},
				AKey:    ea.key, AHasKey: ea.hasKey,
				BKey: eb.key, BHasKey: eb.hasKey,
				Overlap: ov,
			})
		}
	}
}

// pushEvent appends ev unless the buffer is already at MaxEvents, in
// which case the event is dropped and counted (spec §4.F, §7).
func (w *PhysicsWorld) pushEvent(ev Event) {
	w.eventsEmitted++
	if len(w.events) >= w.cfg.MaxEvents {
		w.eventsDropped++
		return
	}
	w.events = append(w.events, ev)
}
