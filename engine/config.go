package engine

// WorldConfig holds the construction-time settings for a PhysicsWorld. All
// fields are documented in spec §6; there is no file or environment-based
// loading — callers build this struct directly, as the engine exposes no
// wire protocol or CLI.
type WorldConfig struct {
	// CellSize is the broadphase cell edge length in world units. Must be > 0.
	CellSize float32
	// DT is the frame duration; velocities are multiplied by DT to obtain
	// the per-frame displacement used for sweeps. Must be > 0.
	DT float32
	// TightenSweptAABB hints the grid binning to use the union of the
	// endpoint AABBs rather than their outer bound. For axis-aligned boxes
	// both produce the same union, so this only matters as documentation
	// of intent (see spec §3, Frame AABB).
	TightenSweptAABB bool
	// EnableOverlapEvents emits Overlap events from GenerateEvents.
	EnableOverlapEvents bool
	// EnableSweepEvents emits Sweep (TOI) events from GenerateEvents.
	EnableSweepEvents bool
	// MaxEvents caps the per-frame event buffer; additional events are
	// silently dropped and counted in DebugStats/events_dropped.
	MaxEvents int
	// EnableTiming populates WorldTiming sub-buckets during EndFrame and
	// GenerateEvents. Adds measurement overhead; off by default.
	EnableTiming bool
	// TileEps is the backoff distance used when computing a tile sweep's
	// ResolutionHint.SafePos.
	TileEps float32
	// RequireMutualConsent requires both directions of the LayerMask
	// predicate to hold; when false, only the first collider's consent is
	// checked.
	RequireMutualConsent bool
}

// DefaultWorldConfig returns sane defaults for a 60Hz game loop: a cell
// size matched to a typical mid-size sprite, one simulation step at
// 1/60s, both event kinds enabled, a generous event cap, and timing off.
// Mirrors the teacher's habit of a small NewX constructor with sane
// non-zero defaults rather than a zero-value struct meaning "default".
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		CellSize:             64,
		DT:                   1.0 / 60.0,
		TightenSweptAABB:     true,
		EnableOverlapEvents:  true,
		EnableSweepEvents:    true,
		MaxEvents:            4096,
		EnableTiming:         false,
		TileEps:              1e-3,
		RequireMutualConsent: true,
	}
}
