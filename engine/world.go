package engine

import "collide/mathx"

// PhysicsWorld is the long-lived owner of every reusable per-frame scratch
// structure: the collider arena, the key index, the broadphase grid, the
// event buffer, and the set of attached tilemaps. Generalizes the
// teacher's Hub/Game pairing (one process-lifetime owner of game state)
// minus all network/session bookkeeping, which is out of scope (spec §1).
//
// Not safe for concurrent use: spec §5 calls for a single-threaded
// cooperative model with no internal locking, so unlike the teacher's
// sync.RWMutex-protected Hub, callers serialize access themselves.
type PhysicsWorld struct {
	cfg WorldConfig

	entries     []colliderEntry
	staticAABBs []mathx.AABB
	sweptAABBs  []mathx.AABB
	keyToID     map[ColKey]FrameID

	grid *grid

	tilemaps []tileMapSlot

	events        []Event
	eventsEmitted int
	eventsDropped int

	lastCandidatePairs int
	lastUniquePairs    int

	timing      WorldTiming
	timingValid bool
}

// New constructs a PhysicsWorld, rejecting an invalid config (spec §7:
// the only error-returning surface in this package).
func New(cfg WorldConfig) (*PhysicsWorld, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &PhysicsWorld{
		cfg:     cfg,
		keyToID: make(map[ColKey]FrameID),
		grid:    newGrid(),
	}, nil
}

// BeginFrame retires the previous frame's collider arena, key index, grid
// contents, event buffer, and timing counters. Attached tilemaps are
// untouched — they survive frame boundaries until DetachTilemap (spec §3,
// Tilemap; spec §5, Shared resources).
func (w *PhysicsWorld) BeginFrame() {
	w.entries = w.entries[:0]
	for k := range w.keyToID {
		delete(w.keyToID, k)
	}
	w.grid.reset()
	w.events = w.events[:0]
	w.eventsEmitted = 0
	w.eventsDropped = 0
	w.lastCandidatePairs = 0
	w.lastUniquePairs = 0
	w.timing = WorldTiming{}
	w.timingValid = false
}

// EndFrame is the per-frame barrier (spec §5): it freezes every collider's
// static and swept AABB and rebuilds the broadphase grid from them. Queries,
// pairwise probes, and GenerateEvents only observe state frozen here.
func (w *PhysicsWorld) EndFrame() {
	var aabbTimer, gridTimer timer
	if w.cfg.EnableTiming {
		aabbTimer = startTimer()
	}
	w.computeAABBs()
	if w.cfg.EnableTiming {
		w.timing.EndFrameAABBsMS = aabbTimer.elapsedMS()
		gridTimer = startTimer()
	}

	w.grid.ensureDedupCapacity(len(w.entries))
	for i, box := range w.sweptAABBs {
		w.grid.insert(FrameID(i), box, w.cfg.CellSize)
	}

	if w.cfg.EnableTiming {
		w.timing.EndFrameGridMS = gridTimer.elapsedMS()
		w.timingValid = true
	}
}

// DrainEvents returns every event pushed since the last drain or
// BeginFrame and empties the buffer (spec §8, property 5). The returned
// slice aliases the world's internal buffer and is only valid until the
// next BeginFrame/GenerateEvents call.
func (w *PhysicsWorld) DrainEvents() []Event {
	out := w.events
	w.events = w.events[:0]
	return out
}

// requireMutual reports whether consent checks (events.go, query.go) must
// hold in both directions per the world's config.
func (w *PhysicsWorld) requireMutual() bool {
	return w.cfg.RequireMutualConsent
}
