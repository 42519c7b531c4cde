package game

import (
	"math/rand"
	"testing"
)

// idle never acts
var idle = StrategyFunc(func(View) ([]Action, error) { return nil, nil })

// scripted returns the same actions every tick
func scripted(actions ...Action) Strategy {
	return StrategyFunc(func(View) ([]Action, error) { return actions, nil })
}

// recorder captures every view handed to it
type recorder struct {
	views []View
	reply []Action
}

func (r *recorder) Decide(v View) ([]Action, error) {
	r.views = append(r.views, v)
	return r.reply, nil
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngineWithRules(t, DefaultRules())
}

func newTestEngineWithRules(t *testing.T, rules Rules) *Engine {
	t.Helper()
	arena, err := NewArena(DefaultWidth, DefaultHeight, DefaultTicksPerSecond)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	e, err := NewEngine(arena, rules, rand.New(rand.NewSource(42)), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// place registers a ship and moves it to a fixed position
func place(t *testing.T, e *Engine, name string, x, y float64, strategy Strategy) *Ship {
	t.Helper()
	if _, err := e.Register(name, strategy); err != nil {
		t.Fatalf("Register(%s): %v", name, err)
	}
	s, _ := e.registry.Get(name)
	s.X = x
	s.Y = y
	return s
}

func eventsOfKind(events []Event, kind string) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
