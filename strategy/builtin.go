// Package strategy provides decision routines for arena ships: built-in
// Go routines and sandboxed Lua scripts.
package strategy

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/lab1702/shiparena/game"
)

// wallMargin is how close to an edge a wandering ship gets before turning back
const wallMargin = 10

// Wanderer bounces off the walls, never stops, and flees the nearest ship it can see
type Wanderer struct {
	rng *rand.Rand
}

// NewWanderer creates a wanderer using rng for its random headings
func NewWanderer(rng *rand.Rand) *Wanderer {
	return &Wanderer{rng: rng}
}

// Decide implements game.Strategy
func (w *Wanderer) Decide(v game.View) ([]game.Action, error) {
	dx, dy := w.wander(v)

	if nearest, ok := nearestContact(v.Visible); ok {
		dx, dy = away(v.X, nearest.X), away(v.Y, nearest.Y)
	}

	return []game.Action{game.Move(dx, dy)}, nil
}

// wander keeps the current heading, turns at the walls and picks a random
// direction on any axis the ship is not moving along
func (w *Wanderer) wander(v game.View) (int, int) {
	dx, dy := v.DX, v.DY

	if v.X < wallMargin {
		dx = 1
	} else if v.X > float64(v.ArenaWidth-wallMargin) {
		dx = -1
	}
	if v.Y < wallMargin {
		dy = 1
	} else if v.Y > float64(v.ArenaHeight-wallMargin) {
		dy = -1
	}

	if v.DX == 0 {
		dx = w.sign()
	}
	if v.DY == 0 {
		dy = w.sign()
	}

	return game.ClampInt(dx, -game.MaxMove, game.MaxMove), game.ClampInt(dy, -game.MaxMove, game.MaxMove)
}

func (w *Wanderer) sign() int {
	if w.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Hunter closes on the nearest ship and shoots at it, signals how many
// ships it sees with its flag, and reports sightings every reportEvery ticks.
type Hunter struct {
	wander      *Wanderer
	rng         *rand.Rand
	standoff    float64
	reportEvery int64
}

// NewHunter creates a hunter using rng for wandering and aim jitter
func NewHunter(rng *rand.Rand) *Hunter {
	return &Hunter{
		wander:      NewWanderer(rng),
		rng:         rng,
		standoff:    30,
		reportEvery: 20,
	}
}

// Decide implements game.Strategy
func (h *Hunter) Decide(v game.View) ([]game.Action, error) {
	nearest, ok := nearestContact(v.Visible)
	if !ok {
		dx, dy := h.wander.wander(v)
		return []game.Action{game.Move(dx, dy), game.SetFlag(0)}, nil
	}

	actions := []game.Action{game.SetFlag(len(v.Visible))}

	// Hold position once inside the standoff distance
	if float64(nearest.Distance) > h.standoff {
		actions = append(actions, game.Move(toward(v.X, nearest.X), toward(v.Y, nearest.Y)))
	} else {
		actions = append(actions, game.Move(0, 0))
	}

	jx, jy := randomJitter(h.rng)
	actions = append(actions, game.Fire(nearest.X+jx, nearest.Y+jy))

	if h.reportEvery > 0 && v.Tick%h.reportEvery == 0 {
		actions = append(actions, game.Broadcast(fmt.Sprintf("contact %.0f,%.0f hp %d", nearest.X, nearest.Y, nearest.Health)))
	}
	return actions, nil
}

// nearestContact returns the closest alive contact
func nearestContact(contacts []game.Contact) (game.Contact, bool) {
	best := game.Contact{Distance: math.MaxInt}
	found := false
	for _, c := range contacts {
		if c.Health > 0 && c.Distance < best.Distance {
			best = c
			found = true
		}
	}
	return best, found
}

// away returns a full-speed component moving from other
func away(self, other float64) int {
	if other > self {
		return -game.MaxMove
	}
	return game.MaxMove
}

// toward returns a full-speed component moving to other, or 0 when aligned
func toward(self, other float64) int {
	switch {
	case other > self:
		return game.MaxMove
	case other < self:
		return -game.MaxMove
	default:
		return 0
	}
}

var builtins = map[string]func(*rand.Rand) game.Strategy{
	"wanderer": func(rng *rand.Rand) game.Strategy { return NewWanderer(rng) },
	"hunter":   func(rng *rand.Rand) game.Strategy { return NewHunter(rng) },
}

// Builtin returns the built-in strategy with the given name
func Builtin(name string, rng *rand.Rand) (game.Strategy, error) {
	ctor, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown built-in strategy %q (have %s)", name, strings.Join(BuiltinNames(), ", "))
	}
	return ctor(rng), nil
}

// BuiltinNames lists the built-in strategies in sorted order
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
