package game

import (
	"math"
	"math/rand"
)

// Ship represents one registered agent in the arena
type Ship struct {
	Name string `json:"name"`

	// Position
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Status
	Health   int `json:"health"`
	Flag     int `json:"flag"`
	Score    int `json:"score"`
	Messages int `json:"messages"` // Broadcasts sent over the session

	// Intents
	MoveDX     int    `json:"dx"` // Sticky until the next move action
	MoveDY     int    `json:"dy"`
	FireTarget *Point `json:"-"` // Cleared after every combat phase

	strategy Strategy
}

// Alive reports whether the ship has health left
func (s *Ship) Alive() bool {
	return s.Health > 0
}

// Strategy returns the decision routine bound to the ship
func (s *Ship) Strategy() Strategy {
	return s.strategy
}

func (s *Ship) setMovement(dx, dy, limit int) {
	s.MoveDX = ClampInt(dx, -limit, limit)
	s.MoveDY = ClampInt(dy, -limit, limit)
}

func (s *Ship) clearMovement() {
	s.MoveDX = 0
	s.MoveDY = 0
}

func (s *Ship) setFireTarget(x, y float64) {
	s.FireTarget = &Point{X: x, Y: y}
}

func (s *Ship) clearFireTarget() {
	s.FireTarget = nil
}

// takeDamage reduces health, never below zero.
// Returns the amount of health actually removed.
func (s *Ship) takeDamage(damage int) int {
	if damage <= 0 || s.Health <= 0 {
		return 0
	}
	applied := damage
	if applied > s.Health {
		applied = s.Health
	}
	s.Health -= applied
	return applied
}

// respawn resets a destroyed ship. Score is carried over minus the penalty.
func (s *Ship) respawn(arena Arena, rules Rules, rng *rand.Rand) {
	s.X, s.Y = spawnPoint(arena, rules.SpawnMargin, rng)
	s.Health = rules.InitialHealth
	s.Score += rules.RespawnPenalty
	s.clearMovement()
	s.clearFireTarget()
	s.Flag = 0
}

// state copies the externally visible fields
func (s *Ship) state() ShipState {
	return ShipState{
		Name:   s.Name,
		X:      s.X,
		Y:      s.Y,
		Health: s.Health,
		Flag:   s.Flag,
		Score:  s.Score,
		DX:     s.MoveDX,
		DY:     s.MoveDY,
		Alive:  s.Alive(),
	}
}

// spawnPoint picks integer coordinates uniformly inside the inner region of the arena
func spawnPoint(arena Arena, margin float64, rng *rand.Rand) (float64, float64) {
	return spawnCoord(arena.Width, margin, rng), spawnCoord(arena.Height, margin, rng)
}

func spawnCoord(size int, margin float64, rng *rand.Rand) float64 {
	lo := int(math.Ceil(float64(size) * margin))
	hi := int(math.Floor(float64(size) * (1 - margin)))
	if hi < lo {
		// Arenas too small for an integer inside the margin fall back to the centre
		return float64(size) / 2
	}
	return float64(lo + rng.Intn(hi-lo+1))
}
