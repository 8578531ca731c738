package engine

import (
	"log"
	"os"
)

// debugAssertions gates the one internal contract check this package
// performs (duplicate ColKey within a frame, spec §7). The engine never
// aborts the process over it either way; this only controls whether a
// diagnostic is logged. Mirrors the teacher's preference for a plain bool
// switch over a feature-flag framework — here sourced from an environment
// variable since there is no config file to read it from.
var debugAssertions = os.Getenv("COLLIDE_DEBUG_ASSERTIONS") != ""

func debugLogf(format string, args ...any) {
	log.Printf(format, args...)
}
