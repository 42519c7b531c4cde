package game

import (
	"math"
	"math/rand"
)

// Engine is the simulation context for one arena session. It owns the
// registry and advances the world one tick at a time. It is not safe for
// concurrent use; the scheduler serializes calls.
type Engine struct {
	arena    Arena
	rules    Rules
	rng      *rand.Rand
	sink     EventSink
	registry *Registry
	grid     *SpatialGrid

	tick   int64
	inbox  []string // Broadcasts delivered during the current tick
	outbox []string // Broadcasts queued for the next tick

	events []Event // Events of the tick in progress
}

// NewEngine creates an engine. A nil rng is replaced by one seeded with 1
// and a nil sink discards events.
func NewEngine(arena Arena, rules Rules, rng *rand.Rand, sink EventSink) (*Engine, error) {
	if err := arena.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if sink == nil {
		sink = discardSink{}
	}

	cell := math.Max(rules.SensorRange, rules.HitRadius)
	if cell <= 0 {
		cell = SensorRange
	}

	return &Engine{
		arena:    arena,
		rules:    rules,
		rng:      rng,
		sink:     sink,
		registry: NewRegistry(),
		grid:     NewSpatialGrid(arena, cell),
	}, nil
}

// Arena returns the session arena
func (e *Engine) Arena() Arena {
	return e.arena
}

// Rules returns the session rules
func (e *Engine) Rules() Rules {
	return e.rules
}

// Tick returns the number of the last completed tick
func (e *Engine) Tick() int64 {
	return e.tick
}

// Register adds a ship driven by strategy and returns its name, which is
// the ship's stable identifier.
func (e *Engine) Register(name string, strategy Strategy) (string, error) {
	s, err := e.registry.add(name, strategy, e.arena, e.rules, e.rng)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

// Ship returns a copy of a ship's visible state
func (e *Engine) Ship(name string) (ShipState, bool) {
	s, ok := e.registry.Get(name)
	if !ok {
		return ShipState{}, false
	}
	return s.state(), true
}

// Len returns the number of registered ships
func (e *Engine) Len() int {
	return e.registry.Len()
}

// Step runs one complete tick:
// respawn, regen, perception, decisions, action resolution, movement, combat.
func (e *Engine) Step() TickReport {
	e.tick++
	e.events = nil

	// Last tick's broadcasts become this tick's inbox
	e.inbox = e.outbox
	e.outbox = nil

	e.registry.Shuffle(e.rng)
	ships := e.registry.Ships()

	respawned := e.applyRespawns()
	e.applyRegen()

	perception := e.computePerception()

	// Decide everything against the start-of-tick world, then resolve
	decisions := make([][]Action, len(ships))
	for i, s := range ships {
		if e.rules.SkipDecisionAfterRespawn && respawned[s] {
			continue
		}
		actions, err := invoke(s.strategy, e.view(s, perception[i]))
		if err != nil {
			e.emit(Event{Kind: EventInvocationFailure, Ship: s.Name, Payload: err.Error()})
			continue
		}
		decisions[i] = actions
	}
	for i, s := range ships {
		e.resolveActions(s, decisions[i])
	}

	e.applyMovement()
	e.resolveCombat()

	return TickReport{
		Tick:       e.tick,
		Events:     e.events,
		Scoreboard: e.Scoreboard(),
	}
}

// view builds the decision routine's input for one ship
func (e *Engine) view(s *Ship, visible []Contact) View {
	msgs := make([]string, len(e.inbox))
	copy(msgs, e.inbox)
	return View{
		Tick:        e.tick,
		X:           s.X,
		Y:           s.Y,
		Health:      s.Health,
		Flag:        s.Flag,
		DX:          s.MoveDX,
		DY:          s.MoveDY,
		Visible:     visible,
		Messages:    msgs,
		ArenaWidth:  e.arena.Width,
		ArenaHeight: e.arena.Height,
	}
}

// Snapshot copies the arena state for rendering
func (e *Engine) Snapshot() Snapshot {
	ships := make([]ShipState, 0, e.registry.Len())
	for _, s := range e.registry.Ships() {
		ships = append(ships, s.state())
	}
	msgs := make([]string, len(e.outbox))
	copy(msgs, e.outbox)
	return Snapshot{
		Tick:       e.tick,
		Arena:      e.arena,
		MaxHealth:  e.rules.MaxHealth,
		Ships:      ships,
		Scoreboard: e.Scoreboard(),
		Messages:   msgs,
	}
}

func (e *Engine) emit(ev Event) {
	ev.Tick = e.tick
	e.events = append(e.events, ev)
	e.sink.Emit(ev)
}
