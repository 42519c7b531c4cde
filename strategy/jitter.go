package strategy

import "math/rand"

// maxJitter is the maximum aim offset in arena units on each axis for hunter shots
const maxJitter = 3.0

// randomJitter returns a random aim offset within ±maxJitter on each axis.
// Shots land inside the hit radius as long as the target holds still.
func randomJitter(rng *rand.Rand) (float64, float64) {
	dx := (rng.Float64()*2 - 1) * maxJitter
	dy := (rng.Float64()*2 - 1) * maxJitter
	return dx, dy
}
