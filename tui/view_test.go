package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lab1702/shiparena/game"
)

type fakeController struct {
	snap    game.Snapshot
	paused  bool
	toggles int
}

func (f *fakeController) Snapshot() game.Snapshot { return f.snap }
func (f *fakeController) Paused() bool            { return f.paused }
func (f *fakeController) Toggle() bool {
	f.toggles++
	f.paused = !f.paused
	return f.paused
}

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)
	return screen
}

func rowText(s tcell.Screen, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _, _, _ := s.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func testSnapshot() game.Snapshot {
	ships := []game.ShipState{
		{Name: "alpha", X: 0, Y: 0, Health: 100, Alive: true, Score: 3},
		{Name: "bravo", X: 1000, Y: 1000, Health: 20, Alive: true},
		{Name: "charlie", X: 500, Y: 500, Health: 0, Alive: false, Score: -1},
	}
	return game.Snapshot{
		Tick:      7,
		Arena:     game.Arena{Width: 1000, Height: 1000, TicksPerSecond: 10},
		MaxHealth: 100,
		Ships:     ships,
		Scoreboard: []game.ScoreEntry{
			{Name: "alpha", Score: 3, Health: 100, Alive: true},
			{Name: "bravo", Score: 0, Health: 20, Alive: true},
			{Name: "charlie", Score: -1, Health: 0, Alive: false},
		},
	}
}

func TestDrawRendersArena(t *testing.T) {
	screen := newTestScreen(t)
	ctrl := &fakeController{snap: testSnapshot()}
	v := New(screen, ctrl)

	v.Draw()

	if status := rowText(screen, 23); !strings.Contains(status, "tick 7") || !strings.Contains(status, "ships 3") {
		t.Errorf("status line = %q", status)
	}
	if header := rowText(screen, 0); !strings.Contains(header, "SCOREBOARD") {
		t.Errorf("header row = %q", header)
	}
	if first := rowText(screen, 2); !strings.Contains(first, "alpha") {
		t.Errorf("first scoreboard row = %q, expected alpha", first)
	}

	// Field is 47x23 with a border, so corners of the arena land inside it
	fieldW := 80 - sidebarWidth - 1
	tests := []struct {
		name  string
		x, y  int
		glyph rune
		style tcell.Style
	}{
		{"alpha top-left", 1, 1, 'A', styleHealthy},
		{"bravo bottom-right", fieldW - 2, 21, 'B', styleDying},
	}
	for _, tt := range tests {
		r, _, style, _ := screen.GetContent(tt.x, tt.y)
		if r != tt.glyph {
			t.Errorf("%s: glyph at (%d,%d) = %q, expected %q", tt.name, tt.x, tt.y, r, tt.glyph)
		}
		if style != tt.style {
			t.Errorf("%s: unexpected style", tt.name)
		}
	}
}

func TestDrawShowsPause(t *testing.T) {
	screen := newTestScreen(t)
	v := New(screen, &fakeController{snap: testSnapshot(), paused: true})

	v.Draw()
	if status := rowText(screen, 23); !strings.Contains(status, "PAUSED") {
		t.Errorf("status line = %q, expected PAUSED", status)
	}

	v.PauseChanged(false)
	v.Draw()
	if status := rowText(screen, 23); strings.Contains(status, "PAUSED") {
		t.Errorf("status line = %q, expected no PAUSED", status)
	}
}

func TestTickCompletedKeepsRecentEvents(t *testing.T) {
	screen := newTestScreen(t)
	v := New(screen, &fakeController{snap: testSnapshot()})

	var events []game.Event
	for i := 0; i < maxLogLines+3; i++ {
		events = append(events, game.Event{Tick: 7, Kind: game.EventMessage, Ship: "alpha", Payload: string(rune('a' + i))})
	}
	v.TickCompleted(game.TickReport{Tick: 7, Events: events}, testSnapshot())

	if len(v.log) != maxLogLines {
		t.Fatalf("log has %d lines, expected %d", len(v.log), maxLogLines)
	}
	if last := v.log[len(v.log)-1]; !strings.HasSuffix(last, "Message from alpha: k") {
		t.Errorf("last log line = %q", last)
	}
}

func TestHandleEventKeys(t *testing.T) {
	tests := []struct {
		name          string
		key           tcell.Key
		r             rune
		expectRunning bool
		expectToggles int
	}{
		{"p toggles pause", tcell.KeyRune, 'p', true, 1},
		{"space toggles pause", tcell.KeyRune, ' ', true, 1},
		{"q quits", tcell.KeyRune, 'q', false, 0},
		{"escape quits", tcell.KeyEscape, 0, false, 0},
		{"ctrl-c quits", tcell.KeyCtrlC, 0, false, 0},
		{"other keys ignored", tcell.KeyRune, 'z', true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{snap: testSnapshot()}
			v := New(newTestScreen(t), ctrl)

			running := v.handleEvent(tcell.NewEventKey(tt.key, tt.r, tcell.ModNone))

			if running != tt.expectRunning {
				t.Errorf("running = %v, expected %v", running, tt.expectRunning)
			}
			if ctrl.toggles != tt.expectToggles {
				t.Errorf("toggles = %d, expected %d", ctrl.toggles, tt.expectToggles)
			}
		})
	}
}

func TestRunQuitsOnKey(t *testing.T) {
	screen := newTestScreen(t)
	v := New(screen, &fakeController{snap: testSnapshot()})

	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background()) }()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	select {
	case err := <-done:
		if !errors.Is(err, ErrQuit) {
			t.Errorf("Run returned %v, expected ErrQuit", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after q")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	v := New(newTestScreen(t), &fakeController{snap: testSnapshot()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Run(ctx) }()
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

func TestProject(t *testing.T) {
	arena := game.Arena{Width: 1000, Height: 500}
	tests := []struct {
		x, y        float64
		expectedCol int
		expectedRow int
	}{
		{0, 0, 0, 0},
		{1000, 500, 99, 49},
		{500, 250, 49, 24},
	}
	for _, tt := range tests {
		col, row := project(tt.x, tt.y, arena, 100, 50)
		if col != tt.expectedCol || row != tt.expectedRow {
			t.Errorf("project(%v,%v) = (%d,%d), expected (%d,%d)", tt.x, tt.y, col, row, tt.expectedCol, tt.expectedRow)
		}
	}
}
