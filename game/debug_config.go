package game

import "log"

// Debug flags for engine subsystems
var (
	DebugStrategies = false // Log strategy panics with stack traces
	DebugCombat     = false // Log every hit resolved in the combat phase
)

// debugf logs with a bracketed subsystem tag when the matching flag is set by the caller
func debugf(subsystem, format string, args ...any) {
	log.Printf("["+subsystem+" DEBUG] "+format, args...)
}

// logHit logs a resolved hit when combat debugging is enabled
func logHit(tick int64, shooter, target string, damage, health int) {
	if DebugCombat {
		debugf("COMBAT", "tick=%d %s hit %s for %d (health now %d)", tick, shooter, target, damage, health)
	}
}
