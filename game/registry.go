package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// Registry owns every ship for the lifetime of a session.
// Ships are never removed; iteration order is reshuffled once per tick.
type Registry struct {
	ships  []*Ship
	byName map[string]*Ship
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Ship)}
}

// add places a new ship at a random spawn point
func (r *Registry) add(name string, strategy Strategy, arena Arena, rules Rules, rng *rand.Rand) (*Ship, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	if strategy == nil {
		return nil, fmt.Errorf("register %s: %w", name, ErrNilStrategy)
	}
	if _, ok := r.byName[name]; ok {
		return nil, fmt.Errorf("register %s: %w", name, ErrDuplicateShip)
	}

	x, y := spawnPoint(arena, rules.SpawnMargin, rng)
	s := &Ship{
		Name:     name,
		X:        x,
		Y:        y,
		Health:   rules.InitialHealth,
		strategy: strategy,
	}
	r.ships = append(r.ships, s)
	r.byName[name] = s
	return s, nil
}

// Get looks up a ship by name
func (r *Registry) Get(name string) (*Ship, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Ships returns the ships in this tick's iteration order.
// The slice is shared; callers must not modify it.
func (r *Registry) Ships() []*Ship {
	return r.ships
}

// Len returns the number of registered ships
func (r *Registry) Len() int {
	return len(r.ships)
}

// Shuffle randomizes iteration order
func (r *Registry) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(r.ships), func(i, j int) {
		r.ships[i], r.ships[j] = r.ships[j], r.ships[i]
	})
}
