package strategy

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/lab1702/shiparena/game"
)

// entryPoint is the global function every script must define
const entryPoint = "update_strategy"

// ErrNoEntryPoint is returned when a script does not define update_strategy
var ErrNoEntryPoint = errors.New("script does not define " + entryPoint)

// ErrBadReturn is returned when update_strategy returns something other than a table
var ErrBadReturn = errors.New(entryPoint + " must return a list of actions")

// Lua runs a script's update_strategy function each tick
type Lua struct {
	name  string
	mu    sync.Mutex
	state *lua.State
}

// NewLuaFile loads and runs the script at path
func NewLuaFile(name, path string) (*Lua, error) {
	return newLua(name, func(state *lua.State) error {
		return lua.LoadFile(state, path, "")
	})
}

// NewLuaString loads a script from source, mainly for tests and embedded strategies
func NewLuaString(name, source string) (*Lua, error) {
	return newLua(name, func(state *lua.State) error {
		return lua.LoadString(state, source)
	})
}

func newLua(name string, load func(*lua.State) error) (*Lua, error) {
	state := sandbox(name)

	if err := load(state); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}

	state.Global(entryPoint)
	defined := state.IsFunction(-1)
	state.Pop(1)
	if !defined {
		return nil, fmt.Errorf("%s: %w", name, ErrNoEntryPoint)
	}

	return &Lua{name: name, state: state}, nil
}

// sandbox creates a state with only the base, string, table and math libraries
func sandbox(name string) *lua.State {
	state := lua.NewState()
	libs := []lua.RegistryFunction{
		{Name: "_G", Function: lua.BaseOpen},
		{Name: "string", Function: lua.StringOpen},
		{Name: "table", Function: lua.TableOpen},
		{Name: "math", Function: lua.MathOpen},
	}
	for _, lib := range libs {
		lua.Require(state, lib.Name, lib.Function, true)
		state.Pop(1)
	}

	// The base library can still reach the filesystem
	for _, global := range []string{"dofile", "loadfile"} {
		state.PushNil()
		state.SetGlobal(global)
	}

	state.Register("arena_log", func(l *lua.State) int {
		log.Printf("[LUA %s] %s", name, lua.CheckString(l, 1))
		return 0
	})
	return state
}

// Name returns the name the script was loaded under
func (s *Lua) Name() string {
	return s.name
}

// Decide implements game.Strategy
func (s *Lua) Decide(v game.View) ([]game.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.state
	state.SetTop(0)
	defer state.SetTop(0)

	state.Global(entryPoint)
	pushView(state, v)
	if err := state.ProtectedCall(1, 1, 0); err != nil {
		return nil, fmt.Errorf("%s: %w", s.name, err)
	}

	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("%s: %w, got %s", s.name, ErrBadReturn, lua.TypeNameOf(state, -1))
	}
	return tableToActions(state, -1), nil
}

func pushView(state *lua.State, v game.View) {
	state.CreateTable(0, 11)

	state.PushInteger(int(v.Tick))
	state.SetField(-2, "tick")
	state.PushNumber(v.X)
	state.SetField(-2, "x")
	state.PushNumber(v.Y)
	state.SetField(-2, "y")
	state.PushInteger(v.Health)
	state.SetField(-2, "health")
	state.PushInteger(v.Flag)
	state.SetField(-2, "flag")
	state.PushInteger(v.DX)
	state.SetField(-2, "dx")
	state.PushInteger(v.DY)
	state.SetField(-2, "dy")
	state.PushInteger(v.ArenaWidth)
	state.SetField(-2, "arena_width")
	state.PushInteger(v.ArenaHeight)
	state.SetField(-2, "arena_height")

	state.CreateTable(len(v.Visible), 0)
	for i, c := range v.Visible {
		state.CreateTable(0, 5)
		state.PushNumber(c.X)
		state.SetField(-2, "x")
		state.PushNumber(c.Y)
		state.SetField(-2, "y")
		state.PushInteger(c.Health)
		state.SetField(-2, "health")
		state.PushInteger(c.Flag)
		state.SetField(-2, "flag")
		state.PushInteger(c.Distance)
		state.SetField(-2, "distance")
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "visible_ships")

	state.CreateTable(len(v.Messages), 0)
	for i, msg := range v.Messages {
		state.PushString(msg)
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "messages_received")
}

// tableToActions reads the array part of the table at index. Entries that
// are not tables or have no string type are skipped.
func tableToActions(state *lua.State, index int) []game.Action {
	index = state.AbsIndex(index)
	n := state.RawLength(index)
	actions := make([]game.Action, 0, n)
	for i := 1; i <= n; i++ {
		state.RawGetInt(index, i)
		if state.TypeOf(-1) == lua.TypeTable {
			args := tableToMap(state, -1)
			if kind, ok := args["type"].(string); ok {
				delete(args, "type")
				actions = append(actions, game.Action{Kind: kind, Args: args})
			}
		}
		state.Pop(1)
	}
	return actions
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	default:
		return nil
	}
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 && math.Abs(value) <= math.MaxInt32 {
		return int(value)
	}
	return value
}
