package server

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lab1702/shiparena/game"
)

// Observer is notified after every completed tick and on pause changes.
// Calls come from the scheduler goroutine and must not block.
type Observer interface {
	TickCompleted(report game.TickReport, snap game.Snapshot)
	PauseChanged(paused bool)
}

// Scheduler drives an engine at the arena tick rate. Ticks never overlap:
// every Step runs under the scheduler lock, which also guards reads.
type Scheduler struct {
	mu     sync.Mutex
	engine *game.Engine

	interval time.Duration
	maxTicks int64
	paused   atomic.Bool
	tracer   trace.Tracer

	obsMu     sync.RWMutex
	observers []Observer
}

// NewScheduler creates a scheduler for engine. A positive maxTicks stops
// Run after that many ticks.
func NewScheduler(engine *game.Engine, maxTicks int64) *Scheduler {
	return &Scheduler{
		engine:   engine,
		interval: engine.Arena().TickInterval(),
		maxTicks: maxTicks,
		tracer:   otel.Tracer("github.com/lab1702/shiparena/server"),
	}
}

// AddObserver registers o for tick and pause notifications
func (s *Scheduler) AddObserver(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Pause stops ticks from advancing until Resume. The tick counter is kept.
func (s *Scheduler) Pause() {
	if s.paused.CompareAndSwap(false, true) {
		log.Printf("Simulation paused at tick %d", s.Tick())
		s.notifyPause(true)
	}
}

// Resume continues a paused simulation
func (s *Scheduler) Resume() {
	if s.paused.CompareAndSwap(true, false) {
		log.Printf("Simulation resumed at tick %d", s.Tick())
		s.notifyPause(false)
	}
}

// Toggle flips the pause state and returns the new state
func (s *Scheduler) Toggle() bool {
	if s.Paused() {
		s.Resume()
		return false
	}
	s.Pause()
	return true
}

// Paused reports whether the simulation is paused
func (s *Scheduler) Paused() bool {
	return s.paused.Load()
}

// Tick returns the last completed tick
func (s *Scheduler) Tick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Tick()
}

// Snapshot copies the arena state between ticks
func (s *Scheduler) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// Scoreboard returns the current standings
func (s *Scheduler) Scoreboard() []game.ScoreEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Scoreboard()
}

// Run ticks until ctx is cancelled or the tick limit is reached
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("Scheduler running every %v", s.interval)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Scheduler stopped at tick %d", s.Tick())
			return nil
		case <-ticker.C:
			if s.Paused() {
				continue
			}
			report := s.step(ctx)
			if s.maxTicks > 0 && report.Tick >= s.maxTicks {
				log.Printf("Reached tick limit %d", s.maxTicks)
				return nil
			}
		}
	}
}

// step runs one tick and publishes it
func (s *Scheduler) step(ctx context.Context) game.TickReport {
	_, span := s.tracer.Start(ctx, "arena.tick")
	defer span.End()

	start := time.Now()
	s.mu.Lock()
	report := s.engine.Step()
	snap := s.engine.Snapshot()
	s.mu.Unlock()
	logTickTiming(report.Tick, time.Since(start), s.interval)

	span.SetAttributes(
		attribute.Int64("arena.tick", report.Tick),
		attribute.Int("arena.events", len(report.Events)),
		attribute.Int("arena.ships", len(snap.Ships)),
	)

	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	for _, o := range s.observers {
		o.TickCompleted(report, snap)
	}
	return report
}

func (s *Scheduler) notifyPause(paused bool) {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	for _, o := range s.observers {
		o.PauseChanged(paused)
	}
}
