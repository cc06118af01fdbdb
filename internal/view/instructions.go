package view

import "github.com/park285/oware-session/internal/domain"

const (
	CursorPointer    = "pointer"
	CursorNotAllowed = "not-allowed"
)

// SlotView is the display of one house.
type SlotView struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Clickable bool   `json:"clickable"`
	Cursor    string `json:"cursor"`
}

// Instructions is everything a presentation surface needs to draw one frame.
// It is a value: two renders of the same input compare equal with ==.
type Instructions struct {
	HasState         bool                       `json:"has_state"`
	TopScoreText     string                     `json:"top_score"`
	BottomScoreText  string                     `json:"bottom_score"`
	Slots            [domain.SlotCount]SlotView `json:"slots"`
	Banner           string                     `json:"banner"`
	StatusText       string                     `json:"status"`
	CurrentPlayer    domain.Player              `json:"current_player"`
	Winner           domain.Winner              `json:"winner"`
	Thinking         bool                       `json:"thinking"`
	DisableAll       bool                       `json:"disable_all"`
	UndoEnabled      bool                       `json:"undo_enabled"`
	AIMoveEnabled    bool                       `json:"ai_move_enabled"`
	StartGameEnabled bool                       `json:"start_game_enabled"`
}
