package server

import (
	"log"
	"time"
)

// Debug flags for various subsystems
var (
	DebugTicks = false // Set to true to log the duration of every tick
	DebugHub   = false // Set to true to log every client message
)

// logTickTiming logs tick duration when debugging is enabled, and always
// warns when a tick overran its interval
func logTickTiming(tick int64, took, interval time.Duration) {
	if took > interval {
		log.Printf("Warning: tick %d took %v, longer than the %v interval", tick, took, interval)
		return
	}
	if DebugTicks {
		log.Printf("[TICK DEBUG] tick %d took %v", tick, took)
	}
}

// logClientMessage logs an incoming client message when debugging is enabled
func logClientMessage(clientID int, msgType string) {
	if DebugHub {
		log.Printf("[HUB DEBUG] client %d sent %s", clientID, msgType)
	}
}
