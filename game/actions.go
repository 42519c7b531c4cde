package game

import (
	"math"
	"strconv"
	"unicode/utf8"
)

// resolveActions applies at most one action of each kind, first occurrence
// wins. The first occurrence claims its kind even when it is malformed and
// dropped. Only intent fields, the flag and the outgoing message queue change.
func (e *Engine) resolveActions(s *Ship, actions []Action) {
	var moved, fired, flagged, messaged bool

	for _, a := range actions {
		switch a.Kind {
		case ActionMove:
			if moved {
				continue
			}
			moved = true
			dx, okX := intArg(a.Args, "dx", 0)
			dy, okY := intArg(a.Args, "dy", 0)
			if okX && okY {
				s.setMovement(dx, dy, e.rules.MaxMove)
			}

		case ActionFire:
			if fired {
				continue
			}
			fired = true
			x, okX := numberArg(a.Args, "x")
			y, okY := numberArg(a.Args, "y")
			if okX && okY {
				s.setFireTarget(x, y)
			}

		case ActionFlag:
			if flagged {
				continue
			}
			flagged = true
			value, ok := strictInt(a.Args["value"])
			if !ok {
				continue
			}
			s.Flag = value
			e.emit(Event{Kind: EventFlagChanged, Ship: s.Name, Payload: strconv.Itoa(value)})

		case ActionMessage:
			if messaged {
				continue
			}
			messaged = true
			content, ok := a.Args["content"].(string)
			if !ok || utf8.RuneCountInString(content) > e.rules.MaxMessageLength {
				continue
			}
			e.outbox = append(e.outbox, content)
			s.Messages++
			e.emit(Event{Kind: EventMessage, Ship: s.Name, Payload: content})
		}
	}
}

// intArg reads a movement component. Missing means def; any finite number
// is accepted and truncated toward zero.
func intArg(args map[string]any, key string, def int) (int, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, true
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	// Clamp before converting so huge values cannot overflow int
	f = ClampFloat(math.Trunc(f), -math.MaxInt32, math.MaxInt32)
	return int(f), true
}

// numberArg reads a required finite number
func numberArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false
	}
	return toFloat(v)
}

// strictInt accepts integer types, and floats with no fractional part
// since scripted routines only have one number type.
func strictInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
