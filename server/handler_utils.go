package server

import (
	"html"

	"github.com/lab1702/shiparena/game"
)

// sanitizeText escapes HTML special characters to prevent XSS in spectator pages
func sanitizeText(text string) string {
	// Limit length using runes to avoid splitting multi-byte characters
	const maxTextLength = 500
	runes := []rune(text)
	if len(runes) > maxTextLength {
		text = string(runes[:maxTextLength])
	}
	// html.EscapeString escapes <, >, &, ' and "
	return html.EscapeString(text)
}

// sanitizeEvent escapes the strategy-controlled fields of an event
func sanitizeEvent(ev game.Event) game.Event {
	ev.Ship = sanitizeText(ev.Ship)
	ev.Target = sanitizeText(ev.Target)
	ev.Payload = sanitizeText(ev.Payload)
	return ev
}

// sanitizeSnapshot escapes ship names and queued broadcasts. The snapshot
// is a copy, so its slices are rewritten in place.
func sanitizeSnapshot(snap game.Snapshot) game.Snapshot {
	for i := range snap.Ships {
		snap.Ships[i].Name = sanitizeText(snap.Ships[i].Name)
	}
	for i := range snap.Scoreboard {
		snap.Scoreboard[i].Name = sanitizeText(snap.Scoreboard[i].Name)
	}
	for i := range snap.Messages {
		snap.Messages[i] = sanitizeText(snap.Messages[i])
	}
	return snap
}
