package game

import "strconv"

// applyRespawns resets every destroyed ship before anything else happens in the tick.
// Returns the set of ships that came back this tick.
func (e *Engine) applyRespawns() map[*Ship]bool {
	var respawned map[*Ship]bool
	for _, s := range e.registry.Ships() {
		if s.Health > 0 {
			continue
		}
		s.respawn(e.arena, e.rules, e.rng)
		if respawned == nil {
			respawned = make(map[*Ship]bool)
		}
		respawned[s] = true
		e.emit(Event{Kind: EventRespawn, Ship: s.Name, Payload: strconv.Itoa(s.Score)})
	}
	return respawned
}

// applyRegen restores health on every RegenInterval-th tick, capped at max health
func (e *Engine) applyRegen() {
	if e.rules.RegenInterval <= 0 || e.tick%e.rules.RegenInterval != 0 {
		return
	}
	for _, s := range e.registry.Ships() {
		if s.Alive() && s.Health < e.rules.MaxHealth {
			s.Health = min(s.Health+e.rules.RegenAmount, e.rules.MaxHealth)
		}
	}
}

// applyMovement adds each alive ship's sticky intent to its position and
// keeps it inside the arena
func (e *Engine) applyMovement() {
	w := float64(e.arena.Width)
	h := float64(e.arena.Height)
	for _, s := range e.registry.Ships() {
		if !s.Alive() {
			continue
		}
		s.X = ClampFloat(s.X+float64(s.MoveDX), 0, w)
		s.Y = ClampFloat(s.Y+float64(s.MoveDY), 0, h)
	}
}

// resolveCombat turns pending fire targets into damage. It runs after
// movement, so shots are checked against post-move positions.
func (e *Engine) resolveCombat() {
	ships := e.registry.Ships()
	e.grid.Index(ships)

	for _, shooter := range ships {
		if !shooter.Alive() || shooter.FireTarget == nil {
			continue
		}
		t := *shooter.FireTarget
		for _, j := range e.grid.Nearby(t.X, t.Y) {
			target := ships[j]
			// The grid was built before this phase; targets killed by an
			// earlier shooter are filtered here.
			if target == shooter || !target.Alive() {
				continue
			}
			if Distance(t.X, t.Y, target.X, target.Y) >= e.rules.HitRadius {
				continue
			}
			dealt := target.takeDamage(e.rules.ShotDamage)
			logHit(e.tick, shooter.Name, target.Name, dealt, target.Health)
			if !target.Alive() {
				shooter.Score += e.rules.KillBonus
				e.emit(Event{Kind: EventKill, Ship: shooter.Name, Target: target.Name, Payload: strconv.Itoa(shooter.Score)})
			}
		}
	}

	for _, s := range ships {
		s.clearFireTarget()
	}
}
