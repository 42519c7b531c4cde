package game

import (
	"cmp"
	"slices"
)

// Scoreboard returns every ship ordered by descending score, then ascending name
func (e *Engine) Scoreboard() []ScoreEntry {
	ships := e.registry.Ships()
	board := make([]ScoreEntry, 0, len(ships))
	for _, s := range ships {
		board = append(board, ScoreEntry{
			Name:     s.Name,
			Score:    s.Score,
			Health:   s.Health,
			Alive:    s.Alive(),
			Messages: s.Messages,
		})
	}
	SortScoreboard(board)
	return board
}

// SortScoreboard orders entries by (-score, name)
func SortScoreboard(board []ScoreEntry) {
	slices.SortFunc(board, func(a, b ScoreEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
