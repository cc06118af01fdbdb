package owaredto

// Outbound frame types.
const (
	FrameRender = "render"
	FrameError  = "error"
)

type Slot struct {
	Index     int    `json:"index"`
	Text      string `json:"text"`
	Clickable bool   `json:"clickable"`
	Cursor    string `json:"cursor"`
}

// Board is the wire form of one rendered frame.
type Board struct {
	TopScore         string `json:"top_score"`
	BottomScore      string `json:"bottom_score"`
	Slots            []Slot `json:"slots"`
	Banner           string `json:"banner"`
	Status           string `json:"status,omitempty"`
	CurrentPlayer    string `json:"current_player,omitempty"`
	Winner           string `json:"winner,omitempty"`
	Thinking         bool   `json:"thinking"`
	DisableAll       bool   `json:"disable_all"`
	UndoEnabled      bool   `json:"undo_enabled"`
	AIMoveEnabled    bool   `json:"ai_move_enabled"`
	StartGameEnabled bool   `json:"start_game_enabled"`
}

// Frame is what viewers receive. Image is a base64 PNG when image frames are enabled.
type Frame struct {
	Type  string `json:"type"`
	Seq   int64  `json:"seq,omitempty"`
	Board *Board `json:"board,omitempty"`
	Image string `json:"image,omitempty"`
	Error *Error `json:"error,omitempty"`
}
