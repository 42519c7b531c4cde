package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/lab1702/shiparena/game"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// History is a source of recorded events, newest first
type History interface {
	Recent(ctx context.Context, limit int) ([]game.Event, error)
}

// SetHistory enables the /api/events endpoint
func (s *Server) SetHistory(h History) {
	s.history = h
}

// Routes registers the spectator and control endpoints on mux
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/api/scoreboard", s.HandleScoreboard)
	mux.HandleFunc("/api/pause", s.HandlePause)
	mux.HandleFunc("/api/resume", s.HandleResume)
	mux.HandleFunc("/api/events", s.HandleEvents)
	mux.HandleFunc("/health", HandleHealth)
}

// HandleScoreboard returns the current standings
func (s *Server) HandleScoreboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	board := s.scheduler.Scoreboard()
	for i := range board {
		board[i].Name = sanitizeText(board[i].Name)
	}

	writeJSON(w, map[string]any{
		"tick":       s.scheduler.Tick(),
		"paused":     s.scheduler.Paused(),
		"scoreboard": board,
	})
}

// HandleEvents returns the most recent journaled events
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		http.Error(w, "event journal disabled", http.StatusNotFound)
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(n, maxEventLimit)
	}

	events, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to read event history: %v", err)
		http.Error(w, "failed to read events", http.StatusInternalServerError)
		return
	}
	for i := range events {
		events[i] = sanitizeEvent(events[i])
	}
	writeJSON(w, map[string]any{"events": events})
}

// HandlePause pauses the simulation
func (s *Server) HandlePause(w http.ResponseWriter, r *http.Request) {
	s.handleControl(w, r, s.scheduler.Pause)
}

// HandleResume resumes the simulation
func (s *Server) HandleResume(w http.ResponseWriter, r *http.Request) {
	s.handleControl(w, r, s.scheduler.Resume)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request, action func()) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	action()
	writeJSON(w, map[string]any{
		"tick":   s.scheduler.Tick(),
		"paused": s.scheduler.Paused(),
	})
}

// HandleHealth reports that the process is serving
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, v any) {
	// Enable CORS for cross-origin dashboards
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
