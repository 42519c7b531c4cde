package server

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/lab1702/shiparena/game"
)

// recordingObserver captures notifications from the scheduler
type recordingObserver struct {
	mu      sync.Mutex
	reports []game.TickReport
	snaps   []game.Snapshot
	pauses  []bool
}

func (o *recordingObserver) TickCompleted(report game.TickReport, snap game.Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, report)
	o.snaps = append(o.snaps, snap)
}

func (o *recordingObserver) PauseChanged(paused bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pauses = append(o.pauses, paused)
}

func newTestScheduler(t *testing.T, maxTicks int64, names ...string) *Scheduler {
	t.Helper()
	arena, err := game.NewArena(400, 400, 10)
	if err != nil {
		t.Fatalf("NewArena: %v", err)
	}
	engine, err := game.NewEngine(arena, game.DefaultRules(), rand.New(rand.NewSource(5)), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	idle := game.StrategyFunc(func(game.View) ([]game.Action, error) { return nil, nil })
	for _, name := range names {
		if _, err := engine.Register(name, idle); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}
	s := NewScheduler(engine, maxTicks)
	s.SetInterval(time.Millisecond)
	return s
}

func TestSchedulerStepNotifiesObservers(t *testing.T) {
	s := newTestScheduler(t, 0, "alpha", "beta")
	obs := &recordingObserver{}
	s.AddObserver(obs)

	report := s.StepOnce()
	s.StepOnce()

	if report.Tick != 1 {
		t.Errorf("first tick = %d, expected 1", report.Tick)
	}
	if len(obs.reports) != 2 {
		t.Fatalf("observer saw %d ticks, expected 2", len(obs.reports))
	}
	for i, r := range obs.reports {
		if obs.snaps[i].Tick != r.Tick {
			t.Errorf("snapshot tick %d does not match report tick %d", obs.snaps[i].Tick, r.Tick)
		}
		if len(obs.snaps[i].Ships) != 2 {
			t.Errorf("snapshot has %d ships, expected 2", len(obs.snaps[i].Ships))
		}
	}
}

func TestSchedulerPauseResume(t *testing.T) {
	s := newTestScheduler(t, 0, "alpha")
	obs := &recordingObserver{}
	s.AddObserver(obs)

	if s.Paused() {
		t.Fatal("scheduler should start running")
	}

	s.Pause()
	s.Pause() // No second notification
	if !s.Paused() {
		t.Error("expected paused after Pause")
	}

	s.Resume()
	s.Resume()
	if s.Paused() {
		t.Error("expected running after Resume")
	}

	if got := s.Toggle(); !got || !s.Paused() {
		t.Errorf("Toggle() = %v, expected to pause", got)
	}

	expected := []bool{true, false, true}
	if len(obs.pauses) != len(expected) {
		t.Fatalf("pause notifications = %v, expected %v", obs.pauses, expected)
	}
	for i := range expected {
		if obs.pauses[i] != expected[i] {
			t.Errorf("notification %d = %v, expected %v", i, obs.pauses[i], expected[i])
		}
	}
}

func TestSchedulerRunStopsAtTickLimit(t *testing.T) {
	s := newTestScheduler(t, 5, "alpha")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := s.Tick(); got != 5 {
		t.Errorf("tick = %d, expected 5", got)
	}
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	s := newTestScheduler(t, 0, "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

// Pausing holds the counter; resuming continues from the held value
func TestSchedulerPauseKeepsCounter(t *testing.T) {
	s := newTestScheduler(t, 3, "alpha")
	obs := &recordingObserver{}
	s.AddObserver(obs)

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s.Pause()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	s.Run(ctx)
	cancel()
	if got := s.Tick(); got != 3 {
		t.Fatalf("tick advanced to %d while paused", got)
	}

	s.Resume()
	s.maxTicks = 6
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, r := range obs.reports {
		if r.Tick != int64(i+1) {
			t.Fatalf("report %d has tick %d, expected a gapless sequence", i, r.Tick)
		}
	}
	if len(obs.reports) != 6 {
		t.Errorf("observed %d ticks, expected 6", len(obs.reports))
	}
}

func TestSchedulerSnapshotAndScoreboard(t *testing.T) {
	s := newTestScheduler(t, 0, "beta", "alpha")
	s.StepOnce()

	snap := s.Snapshot()
	if snap.Tick != 1 || len(snap.Ships) != 2 {
		t.Errorf("snapshot = tick %d with %d ships", snap.Tick, len(snap.Ships))
	}
	board := s.Scoreboard()
	if len(board) != 2 || board[0].Name != "alpha" {
		t.Errorf("scoreboard = %+v, expected alpha first on a name tie", board)
	}
}

func TestSchedulerRecordsTickSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	s := newTestScheduler(t, 0, "alpha", "beta")
	s.SetTracer(tp.Tracer("test"))
	s.StepOnce()
	s.StepOnce()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, expected 2", len(spans))
	}
	for i, span := range spans {
		if span.Name() != "arena.tick" {
			t.Errorf("span name = %q", span.Name())
		}
		found := false
		for _, attr := range span.Attributes() {
			if attr.Key == "arena.tick" {
				found = true
				if attr.Value.AsInt64() != int64(i+1) {
					t.Errorf("span %d tick = %d", i, attr.Value.AsInt64())
				}
			}
		}
		if !found {
			t.Errorf("span %d has no tick attribute", i)
		}
	}
}
