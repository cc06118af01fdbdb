package domain

import (
	"errors"
	"fmt"
)

const (
	// SlotCount is the number of houses on the board.
	SlotCount = 12
	// HousesPerSide is the number of houses owned by each player.
	HousesPerSide = 6
)

// Player identifies a side of the board. Values match the remote wire tokens.
type Player string

const (
	Bottom Player = "B"
	Top    Player = "T"
)

func (p Player) String() string {
	switch p {
	case Top:
		return "Top"
	case Bottom:
		return "Bottom"
	default:
		return "Unknown"
	}
}

// Valid reports whether p is one of the two sides.
func (p Player) Valid() bool { return p == Top || p == Bottom }

// Winner is the declared result of a game. WinnerNone means the game is still open.
type Winner string

const (
	WinnerNone   Winner = ""
	WinnerTop    Winner = "T"
	WinnerBottom Winner = "B"
	WinnerTie    Winner = "Tie"
)

func (w Winner) String() string {
	switch w {
	case WinnerTop:
		return "Top"
	case WinnerBottom:
		return "Bottom"
	case WinnerTie:
		return "Tie"
	default:
		return "None"
	}
}

var (
	ErrInvalidPlayer = errors.New("invalid player token")
	ErrInvalidWinner = errors.New("invalid winner token")
	ErrInvalidState  = errors.New("invalid game state")
)

// ParsePlayer converts a wire token ("T" or "B") into a Player.
func ParsePlayer(token string) (Player, error) {
	p := Player(token)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlayer, token)
	}
	return p, nil
}

// ParseWinner converts the nullable wire winner into a Winner.
func ParseWinner(token *string) (Winner, error) {
	if token == nil {
		return WinnerNone, nil
	}
	switch w := Winner(*token); w {
	case WinnerTop, WinnerBottom, WinnerTie:
		return w, nil
	default:
		return WinnerNone, fmt.Errorf("%w: %q", ErrInvalidWinner, *token)
	}
}

// Board holds seed counts. Slots 0-5 belong to Bottom, 6-11 to Top.
type Board [SlotCount]int

// GameState is an immutable snapshot of the remote game, valid for one fetch.
type GameState struct {
	Board         Board
	TopScore      int
	BottomScore   int
	CurrentPlayer Player
	HistoryLength int
	Winner        Winner
}

// Finished reports whether a winner has been declared. A finished game accepts no moves.
func (s GameState) Finished() bool { return s.Winner != WinnerNone }

// CanUndo reports whether the remote history has a move to revert and the game is open.
func (s GameState) CanUndo() bool { return s.HistoryLength > 0 && !s.Finished() }

// Validate checks the snapshot's structural invariants.
func (s GameState) Validate() error {
	for i, n := range s.Board {
		if n < 0 {
			return fmt.Errorf("%w: slot %d has negative count %d", ErrInvalidState, i, n)
		}
	}
	if s.TopScore < 0 || s.BottomScore < 0 {
		return fmt.Errorf("%w: negative score %d/%d", ErrInvalidState, s.TopScore, s.BottomScore)
	}
	if s.HistoryLength < 0 {
		return fmt.Errorf("%w: negative history length %d", ErrInvalidState, s.HistoryLength)
	}
	if !s.CurrentPlayer.Valid() {
		return fmt.Errorf("%w: %w", ErrInvalidState, ErrInvalidPlayer)
	}
	return nil
}

// SideOf returns the owner of a slot index.
func SideOf(slot int) (Player, bool) {
	switch {
	case slot >= 0 && slot < HousesPerSide:
		return Bottom, true
	case slot >= HousesPerSide && slot < SlotCount:
		return Top, true
	default:
		return "", false
	}
}
