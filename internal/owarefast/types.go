package owarefast

import (
	"errors"
	"fmt"

	"github.com/park285/oware-session/internal/domain"
)

// StatePayload is the JSON body of GET /get_game_state.
type StatePayload struct {
	Board         []int   `json:"board"`
	Top           int     `json:"top"`
	Bottom        int     `json:"bottom"`
	Player        string  `json:"player"`
	HistoryLength int     `json:"history_length"`
	Winner        *string `json:"winner"`
}

// ToDomain validates the payload and converts it to a snapshot.
func (p StatePayload) ToDomain() (*domain.GameState, error) {
	if len(p.Board) != domain.SlotCount {
		return nil, fmt.Errorf("board has %d slots, want %d", len(p.Board), domain.SlotCount)
	}
	player, err := domain.ParsePlayer(p.Player)
	if err != nil {
		return nil, err
	}
	winner, err := domain.ParseWinner(p.Winner)
	if err != nil {
		return nil, err
	}
	st := &domain.GameState{
		TopScore:      p.Top,
		BottomScore:   p.Bottom,
		CurrentPlayer: player,
		HistoryLength: p.HistoryLength,
		Winner:        winner,
	}
	copy(st.Board[:], p.Board)
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return st, nil
}

// PayloadFromState is the inverse of ToDomain.
func PayloadFromState(s domain.GameState) StatePayload {
	p := StatePayload{
		Board:         append([]int(nil), s.Board[:]...),
		Top:           s.TopScore,
		Bottom:        s.BottomScore,
		Player:        string(s.CurrentPlayer),
		HistoryLength: s.HistoryLength,
	}
	if s.Winner != domain.WinnerNone {
		w := string(s.Winner)
		p.Winner = &w
	}
	return p
}

// ErrTransport matches every *TransportError via errors.Is.
var ErrTransport = errors.New("transport error")

// TransportError reports a non-success status, a failed request, or a malformed body.
type TransportError struct {
	Op     string
	Path   string
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("oware %s %s: status=%d: %v", e.Op, e.Path, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("oware %s %s: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("oware %s %s: status=%d body=%s", e.Op, e.Path, e.Status, e.Body)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
