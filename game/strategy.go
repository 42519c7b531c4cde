package game

import (
	"fmt"
	"runtime/debug"
)

// Strategy is a ship's decision routine. Decide receives a copy of the
// ship's view of the arena and returns the actions it wants this tick.
type Strategy interface {
	Decide(view View) ([]Action, error)
}

// StrategyFunc adapts a function to Strategy
type StrategyFunc func(View) ([]Action, error)

// Decide calls f(view)
func (f StrategyFunc) Decide(view View) ([]Action, error) {
	return f(view)
}

// invoke calls the ship's routine, converting errors and panics into a
// failure so that one misbehaving routine never aborts the tick.
func invoke(strategy Strategy, view View) (actions []Action, err error) {
	defer func() {
		if r := recover(); r != nil {
			if DebugStrategies {
				debugf("STRATEGY", "panic: %v\n%s", r, debug.Stack())
			}
			actions = nil
			err = fmt.Errorf("strategy panicked: %v", r)
		}
	}()

	actions, err = strategy.Decide(view)
	if err != nil {
		return nil, err
	}
	return actions, nil
}
