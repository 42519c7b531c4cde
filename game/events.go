package game

import "fmt"

// Event kinds emitted by the engine
const (
	EventKill              = "kill"
	EventFlagChanged       = "flag"
	EventMessage           = "message"
	EventInvocationFailure = "invocation_failure"
	EventRespawn           = "respawn"
)

// Event is a structured record of something that happened during a tick
type Event struct {
	Tick    int64  `json:"tick"`
	Kind    string `json:"kind"`
	Ship    string `json:"ship"`             // Ship that caused the event
	Target  string `json:"target,omitempty"` // Victim of a kill
	Payload string `json:"payload,omitempty"`
}

// String formats the event the way the arena log prints it
func (e Event) String() string {
	switch e.Kind {
	case EventKill:
		return fmt.Sprintf("%s destroyed %s", e.Ship, e.Target)
	case EventFlagChanged:
		return fmt.Sprintf("Flag updated by %s: %s", e.Ship, e.Payload)
	case EventMessage:
		return fmt.Sprintf("Message from %s: %s", e.Ship, e.Payload)
	case EventInvocationFailure:
		return fmt.Sprintf("Strategy of %s failed: %s", e.Ship, e.Payload)
	case EventRespawn:
		return fmt.Sprintf("%s respawned (score %s)", e.Ship, e.Payload)
	default:
		return fmt.Sprintf("%s: %s %s", e.Kind, e.Ship, e.Payload)
	}
}

// EventSink consumes engine events. Emit is called synchronously from
// inside a tick and must not call back into the engine.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink
type SinkFunc func(Event)

// Emit calls f(ev)
func (f SinkFunc) Emit(ev Event) {
	f(ev)
}

// MultiSink fans events out to several sinks in order
type MultiSink []EventSink

// Emit forwards ev to every non-nil sink
func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(ev)
		}
	}
}

type discardSink struct{}

func (discardSink) Emit(Event) {}
