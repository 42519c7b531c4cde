package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Arena defaults (the original arena ran 1000x1000 at 10 ticks per second)
const (
	DefaultWidth          = 1000
	DefaultHeight         = 1000
	DefaultTicksPerSecond = 10
)

// Simulation constants
const (
	SensorRange      = 100 // Ships see other alive ships within this range
	HitRadius        = 10  // Shots hit ships strictly closer than this to the fire point
	ShotDamage       = 4
	InitialHealth    = 100 // Also the regeneration cap
	KillBonus        = 1
	RespawnPenalty   = -1
	RegenInterval    = 3 // Regenerate on ticks where tick % RegenInterval == 0
	RegenAmount      = 1
	MaxMove          = 2 // Movement components are clamped to [-MaxMove, MaxMove]
	MaxMessageLength = 100
	SpawnMargin      = 0.1 // Spawn inside [margin*w, (1-margin)*w]
)

// Action kinds accepted from decision routines
const (
	ActionMove    = "move"
	ActionFire    = "fire"
	ActionFlag    = "flag"
	ActionMessage = "message"
)

var (
	ErrInvalidArena  = errors.New("invalid arena configuration")
	ErrDuplicateShip = errors.New("ship name already registered")
	ErrEmptyName     = errors.New("ship name is empty")
	ErrNilStrategy   = errors.New("ship strategy is nil")
)

// Arena holds the immutable session dimensions and tick rate
type Arena struct {
	Width          int `json:"width"`
	Height         int `json:"height"`
	TicksPerSecond int `json:"ticksPerSecond"`
}

// NewArena validates and returns an arena
func NewArena(width, height, ticksPerSecond int) (Arena, error) {
	a := Arena{Width: width, Height: height, TicksPerSecond: ticksPerSecond}
	if err := a.Validate(); err != nil {
		return Arena{}, err
	}
	return a, nil
}

// Validate rejects non-positive dimensions or tick rate
func (a Arena) Validate() error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrInvalidArena, a.Width, a.Height)
	}
	if a.TicksPerSecond <= 0 {
		return fmt.Errorf("%w: tick rate %d must be positive", ErrInvalidArena, a.TicksPerSecond)
	}
	return nil
}

// TickInterval returns the scheduler period, never shorter than one millisecond
func (a Arena) TickInterval() time.Duration {
	ms := 1000 / a.TicksPerSecond
	if ms <= 0 {
		ms = 1
	}
	return time.Duration(ms) * time.Millisecond
}

// Rules holds the tunable simulation constants for a session
type Rules struct {
	SensorRange      float64
	HitRadius        float64
	ShotDamage       int
	InitialHealth    int
	MaxHealth        int
	KillBonus        int
	RespawnPenalty   int
	RegenInterval    int64
	RegenAmount      int
	MaxMove          int
	MaxMessageLength int
	SpawnMargin      float64

	// SkipDecisionAfterRespawn withholds the decision call from a ship on
	// the tick it respawned. Off by default: a respawned ship acts normally.
	SkipDecisionAfterRespawn bool
}

// DefaultRules returns the rules of the original arena
func DefaultRules() Rules {
	return Rules{
		SensorRange:      SensorRange,
		HitRadius:        HitRadius,
		ShotDamage:       ShotDamage,
		InitialHealth:    InitialHealth,
		MaxHealth:        InitialHealth,
		KillBonus:        KillBonus,
		RespawnPenalty:   RespawnPenalty,
		RegenInterval:    RegenInterval,
		RegenAmount:      RegenAmount,
		MaxMove:          MaxMove,
		MaxMessageLength: MaxMessageLength,
		SpawnMargin:      SpawnMargin,
	}
}

// Point is an arena coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Contact is one entry of a ship's perception: another alive ship in sensor range
type Contact struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Health   int     `json:"health"`
	Flag     int     `json:"flag"`
	Distance int     `json:"distance"` // Truncated toward zero
}

// View is the snapshot handed to a decision routine. It is a copy;
// changing it has no effect on the engine.
type View struct {
	Tick        int64
	X           float64
	Y           float64
	Health      int
	Flag        int
	DX          int
	DY          int
	Visible     []Contact
	Messages    []string
	ArenaWidth  int
	ArenaHeight int
}

// Action is one request returned by a decision routine. Args is loosely
// typed because scripted routines produce dynamically typed values; the
// resolver validates each field.
type Action struct {
	Kind string         `json:"type"`
	Args map[string]any `json:"args,omitempty"`
}

// Move requests a sticky movement intent
func Move(dx, dy int) Action {
	return Action{Kind: ActionMove, Args: map[string]any{"dx": dx, "dy": dy}}
}

// Fire requests a shot at the given coordinate
func Fire(x, y float64) Action {
	return Action{Kind: ActionFire, Args: map[string]any{"x": x, "y": y}}
}

// SetFlag requests a new flag value
func SetFlag(value int) Action {
	return Action{Kind: ActionFlag, Args: map[string]any{"value": value}}
}

// Broadcast requests a message to every ship next tick
func Broadcast(content string) Action {
	return Action{Kind: ActionMessage, Args: map[string]any{"content": content}}
}

// ScoreEntry is one scoreboard line
type ScoreEntry struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Health   int    `json:"health"`
	Alive    bool   `json:"alive"`
	Messages int    `json:"messages"`
}

// ShipState is the externally visible state of a ship, used for rendering
type ShipState struct {
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Health int     `json:"health"`
	Flag   int     `json:"flag"`
	Score  int     `json:"score"`
	DX     int     `json:"dx"`
	DY     int     `json:"dy"`
	Alive  bool    `json:"alive"`
}

// Snapshot is a read-only copy of the whole arena
type Snapshot struct {
	Tick       int64        `json:"tick"`
	Arena      Arena        `json:"arena"`
	MaxHealth  int          `json:"maxHealth"`
	Ships      []ShipState  `json:"ships"`
	Scoreboard []ScoreEntry `json:"scoreboard"`
	Messages   []string     `json:"messages"` // Broadcasts waiting for next tick
}

// TickReport summarizes one completed tick
type TickReport struct {
	Tick       int64        `json:"tick"`
	Events     []Event      `json:"events"`
	Scoreboard []ScoreEntry `json:"scoreboard"`
}

// Distance calculates distance between two points
func Distance(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return math.Sqrt(dx*dx + dy*dy)
}

// ClampInt bounds v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat bounds v to [lo, hi]
func ClampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
