// Package owaretest provides an in-memory stand-in for the remote Oware service,
// speaking the same HTTP contract, for use in tests.
package owaretest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/park285/oware-session/internal/domain"
	"github.com/park285/oware-session/internal/owarefast"
)

// InitialState is the position the fake resets to on /start.
func InitialState() domain.GameState {
	var b domain.Board
	for i := range b {
		b[i] = 6
	}
	return domain.GameState{Board: b, CurrentPlayer: domain.Bottom, Winner: domain.WinnerNone}
}

// Server records every call it receives and applies a naive sowing rule so that
// state visibly changes between fetches. It is not a rules engine.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	state    domain.GameState
	history  []domain.GameState
	calls    []string
	failures map[string]int
	rejectMv bool
}

func NewServer() *Server {
	s := &Server{state: InitialState(), failures: make(map[string]int)}
	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/get_game_state", s.getState)
	r.Post("/start", s.start)
	r.Post("/switch", s.switchTurn)
	r.Post("/undo", s.undo)
	r.Post("/move/{house}", s.move)
	r.Post("/ai_move/{depth}", s.aiMove)
	s.Server = httptest.NewServer(r)
	return s
}

// Calls returns "METHOD /path" entries in arrival order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallCount counts calls whose "METHOD /path" starts with prefix.
func (s *Server) CallCount(prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func (s *Server) SetState(st domain.GameState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Server) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FailPath makes every request whose path starts with prefix answer with status.
func (s *Server) FailPath(prefix string, status int) {
	s.mu.Lock()
	s.failures[prefix] = status
	s.mu.Unlock()
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	s.failures = make(map[string]int)
	s.mu.Unlock()
}

// RejectMoves makes /move answer false without touching the state.
func (s *Server) RejectMoves(v bool) {
	s.mu.Lock()
	s.rejectMv = v
	s.mu.Unlock()
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, r.Method+" "+r.URL.Path)
		status := 0
		for prefix, code := range s.failures {
			if strings.HasPrefix(r.URL.Path, prefix) {
				status = code
				break
			}
		}
		s.mu.Unlock()
		if status != 0 {
			http.Error(w, "injected failure", status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	payload := owarefast.PayloadFromState(s.state)
	payload.HistoryLength = len(s.history)
	s.mu.Unlock()
	writeJSON(w, payload)
}

func (s *Server) start(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.state = InitialState()
	s.history = nil
	s.mu.Unlock()
	writeJSON(w, nil)
}

func (s *Server) switchTurn(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.state.CurrentPlayer = opponent(s.state.CurrentPlayer)
	s.mu.Unlock()
	writeJSON(w, nil)
}

func (s *Server) undo(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	if n := len(s.history); n > 0 {
		s.state = s.history[n-1]
		s.history = s.history[:n-1]
	}
	s.mu.Unlock()
	writeJSON(w, nil)
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	house, err := strconv.Atoi(chi.URLParam(r, "house"))
	if err != nil {
		http.Error(w, "house must be an integer", http.StatusUnprocessableEntity)
		return
	}
	s.mu.Lock()
	ok := !s.rejectMv && s.applyLocked(house)
	s.mu.Unlock()
	writeJSON(w, ok)
}

func (s *Server) aiMove(w http.ResponseWriter, r *http.Request) {
	depth, err := strconv.Atoi(chi.URLParam(r, "depth"))
	if err != nil || depth < 1 {
		http.Error(w, "depth must be a positive integer", http.StatusUnprocessableEntity)
		return
	}
	s.mu.Lock()
	for house := 1; house <= domain.HousesPerSide; house++ {
		if s.applyLocked(house) {
			s.state.CurrentPlayer = opponent(s.state.CurrentPlayer)
			break
		}
	}
	s.mu.Unlock()
	writeJSON(w, nil)
}

func (s *Server) applyLocked(house int) bool {
	if house < 1 || house > domain.HousesPerSide || s.state.Winner != domain.WinnerNone {
		return false
	}
	start := house - 1
	if s.state.CurrentPlayer == domain.Top {
		start = house + domain.HousesPerSide - 1
	}
	seeds := s.state.Board[start]
	if seeds == 0 {
		return false
	}
	s.history = append(s.history, s.state)
	s.state.Board[start] = 0
	idx := start
	for seeds > 0 {
		idx = (idx + 1) % domain.SlotCount
		if idx == start {
			continue
		}
		s.state.Board[idx]++
		seeds--
	}
	return true
}

func opponent(p domain.Player) domain.Player {
	if p == domain.Top {
		return domain.Bottom
	}
	return domain.Top
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
