// Package tui draws the arena in a terminal with tcell.
package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/lab1702/shiparena/game"
)

// ErrQuit is returned by Run when the user asks to quit
var ErrQuit = errors.New("quit requested")

const (
	sidebarWidth = 32
	maxLogLines  = 8
)

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleHeader  = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleBorder  = styleDefault.Foreground(tcell.ColorDarkGray)
	styleScore   = styleDefault.Foreground(tcell.ColorLime)
	styleLog     = styleDefault.Foreground(tcell.ColorGray)
	stylePaused  = styleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	styleHealthy = styleDefault.Foreground(tcell.ColorGreen)
	styleHurt    = styleDefault.Foreground(tcell.ColorYellow)
	styleDying   = styleDefault.Foreground(tcell.ColorRed)
	styleDead    = styleDefault.Foreground(tcell.ColorGray)
)

// Controller is the part of the scheduler the view drives
type Controller interface {
	Snapshot() game.Snapshot
	Paused() bool
	Toggle() bool
}

// View renders arena snapshots and handles pause and quit keys
type View struct {
	screen tcell.Screen
	ctrl   Controller

	mu     sync.Mutex
	snap   game.Snapshot
	paused bool
	log    []string

	redraw chan struct{}
}

// New creates a view on an initialised screen
func New(screen tcell.Screen, ctrl Controller) *View {
	return &View{
		screen: screen,
		ctrl:   ctrl,
		snap:   ctrl.Snapshot(),
		paused: ctrl.Paused(),
		redraw: make(chan struct{}, 1),
	}
}

// TickCompleted stores the latest snapshot and schedules a redraw
func (v *View) TickCompleted(report game.TickReport, snap game.Snapshot) {
	v.mu.Lock()
	v.snap = snap
	for _, ev := range report.Events {
		v.log = append(v.log, fmt.Sprintf("%d %s", ev.Tick, ev))
	}
	if over := len(v.log) - maxLogLines; over > 0 {
		v.log = v.log[over:]
	}
	v.mu.Unlock()
	v.requestRedraw()
}

// PauseChanged updates the pause line
func (v *View) PauseChanged(paused bool) {
	v.mu.Lock()
	v.paused = paused
	v.mu.Unlock()
	v.requestRedraw()
}

func (v *View) requestRedraw() {
	select {
	case v.redraw <- struct{}{}:
	default:
	}
}

// Run draws on every tick and handles input until ctx is cancelled or
// the user quits, in which case it returns ErrQuit.
func (v *View) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if !v.handleEvent(ev) {
				return ErrQuit
			}
		case <-v.redraw:
			v.Draw()
		}
	}
}

// handleEvent returns false when the view should close
func (v *View) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 'p', 'P', ' ':
				v.ctrl.Toggle()
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
		v.Draw()
	}
	return true
}

// Draw renders the latest snapshot
func (v *View) Draw() {
	v.mu.Lock()
	snap := v.snap
	paused := v.paused
	logLines := append([]string(nil), v.log...)
	v.mu.Unlock()

	s := v.screen
	s.SetStyle(styleDefault)
	s.Clear()

	w, h := s.Size()
	fieldW := max(w-sidebarWidth-1, 1)
	fieldH := max(h-1, 1)

	DrawBox(s, 0, 0, fieldW, fieldH, styleBorder)
	for _, ship := range snap.Ships {
		col, row := project(ship.X, ship.Y, snap.Arena, fieldW-2, fieldH-2)
		s.SetContent(col+1, row+1, glyph(ship), nil, healthStyle(ship, snap.MaxHealth))
	}

	x := fieldW + 1
	DrawText(s, x, 0, "SCOREBOARD", styleHeader)
	DrawText(s, x, 1, fmt.Sprintf("%-14s %5s %6s", "name", "score", "health"), styleBorder)
	row := 2
	for _, entry := range snap.Scoreboard {
		if row >= fieldH-maxLogLines-1 {
			break
		}
		style := styleScore
		if !entry.Alive {
			style = styleDead
		}
		DrawText(s, x, row, fmt.Sprintf("%-14s %5d %6d", truncate(entry.Name, 14), entry.Score, entry.Health), style)
		row++
	}

	logTop := max(fieldH-maxLogLines, row+1)
	DrawText(s, x, logTop-1, "EVENTS", styleHeader)
	for i, line := range logLines {
		if logTop+i >= fieldH {
			break
		}
		DrawText(s, x, logTop+i, truncate(line, sidebarWidth), styleLog)
	}

	status := fmt.Sprintf(" tick %d  ships %d  p:pause  q:quit ", snap.Tick, len(snap.Ships))
	DrawText(s, 0, h-1, status, styleDefault)
	if paused {
		DrawText(s, len(status), h-1, " PAUSED ", stylePaused)
	}

	s.Show()
}

// project maps an arena position onto a w x h character grid
func project(x, y float64, arena game.Arena, w, h int) (int, int) {
	if arena.Width <= 0 || arena.Height <= 0 || w <= 0 || h <= 0 {
		return 0, 0
	}
	col := int(x / float64(arena.Width) * float64(w-1))
	row := int(y / float64(arena.Height) * float64(h-1))
	return game.ClampInt(col, 0, w-1), game.ClampInt(row, 0, h-1)
}

// glyph is the first letter or digit of the ship's name, or x when dead
func glyph(ship game.ShipState) rune {
	if !ship.Alive {
		return 'x'
	}
	for _, r := range ship.Name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
	}
	return '*'
}

// healthStyle colours a ship from green through yellow to red as it loses health
func healthStyle(ship game.ShipState, maxHealth int) tcell.Style {
	if !ship.Alive {
		return styleDead
	}
	if maxHealth <= 0 {
		maxHealth = game.InitialHealth
	}
	ratio := float64(ship.Health) / float64(maxHealth)
	switch {
	case ratio > 0.66:
		return styleHealthy
	case ratio > 0.33:
		return styleHurt
	default:
		return styleDying
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// DrawText writes text starting at (x, y), clipped to the screen width
func DrawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	w, _ := s.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// DrawBox outlines the rectangle with its top-left corner at (x, y)
func DrawBox(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	if w < 2 || h < 2 {
		return
	}
	for i := x + 1; i < x+w-1; i++ {
		s.SetContent(i, y, tcell.RuneHLine, nil, style)
		s.SetContent(i, y+h-1, tcell.RuneHLine, nil, style)
	}
	for j := y + 1; j < y+h-1; j++ {
		s.SetContent(x, j, tcell.RuneVLine, nil, style)
		s.SetContent(x+w-1, j, tcell.RuneVLine, nil, style)
	}
	s.SetContent(x, y, tcell.RuneULCorner, nil, style)
	s.SetContent(x+w-1, y, tcell.RuneURCorner, nil, style)
	s.SetContent(x, y+h-1, tcell.RuneLLCorner, nil, style)
	s.SetContent(x+w-1, y+h-1, tcell.RuneLRCorner, nil, style)
}

