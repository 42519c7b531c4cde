package game

// computePerception builds every ship's contact list from the start-of-tick
// world. Entries follow registry order; dead ships neither see nor are seen.
func (e *Engine) computePerception() [][]Contact {
	ships := e.registry.Ships()
	out := make([][]Contact, len(ships))

	e.grid.Index(ships)
	for i, s := range ships {
		if !s.Alive() {
			continue
		}
		for _, j := range e.grid.Nearby(s.X, s.Y) {
			if j == i {
				continue
			}
			o := ships[j]
			dist := Distance(s.X, s.Y, o.X, o.Y)
			if dist > e.rules.SensorRange {
				continue
			}
			out[i] = append(out[i], Contact{
				X:        o.X,
				Y:        o.Y,
				Health:   o.Health,
				Flag:     o.Flag,
				Distance: int(dist),
			})
		}
	}
	return out
}
