package server

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/lab1702/shiparena/game"
)

// Test helpers to expose private methods for testing purposes
// This file should only be used for testing and not in production

// StepOnce runs a single tick regardless of the pause state
func (s *Scheduler) StepOnce() game.TickReport {
	return s.step(context.Background())
}

// SetInterval overrides the tick period
func (s *Scheduler) SetInterval(interval time.Duration) {
	s.interval = interval
}

// SetTracer replaces the tick tracer
func (s *Scheduler) SetTracer(tracer trace.Tracer) {
	s.tracer = tracer
}
