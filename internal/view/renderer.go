package view

import (
	"strconv"

	"github.com/park285/oware-session/internal/domain"
	"github.com/park285/oware-session/internal/msgcat"
)

// Renderer projects a snapshot onto render instructions. It has no side effects.
type Renderer struct {
	cat *msgcat.Catalog
}

// NewRenderer builds a renderer. A nil catalog uses the built-in English texts.
func NewRenderer(cat *msgcat.Catalog) *Renderer {
	return &Renderer{cat: cat}
}

// Render computes the instructions for state. A nil state (nothing fetched yet)
// yields empty texts with the affordances implied by thinking alone.
func (r *Renderer) Render(state *domain.GameState, thinking bool) Instructions {
	var in Instructions
	in.Thinking = thinking

	var winner domain.Winner
	history := 0
	if state != nil {
		winner = state.Winner
		history = state.HistoryLength
	}

	in.DisableAll = thinking || winner != domain.WinnerNone
	in.UndoEnabled = !in.DisableAll && history > 0
	in.AIMoveEnabled = !in.DisableAll
	// Stays enabled on a finished game so a new one can start.
	in.StartGameEnabled = !thinking

	cursor := CursorPointer
	if in.DisableAll {
		cursor = CursorNotAllowed
	}
	// Every slot shares one clickability; turn legality is checked on click.
	for i := range in.Slots {
		in.Slots[i] = SlotView{Index: i, Clickable: !in.DisableAll, Cursor: cursor}
	}

	if thinking {
		in.StatusText = r.text("status.thinking", nil, "AI is thinking...")
	}

	if state == nil {
		return in
	}

	in.HasState = true
	in.TopScoreText = strconv.Itoa(state.TopScore)
	in.BottomScoreText = strconv.Itoa(state.BottomScore)
	in.CurrentPlayer = state.CurrentPlayer
	in.Winner = state.Winner
	for i, n := range state.Board {
		in.Slots[i].Text = strconv.Itoa(n)
	}

	if state.Finished() {
		name := state.Winner.String()
		in.Banner = r.text("banner.game_over", map[string]string{"Winner": name}, "Game Over! Winner is "+name+".")
	} else {
		name := state.CurrentPlayer.String()
		in.Banner = r.text("banner.turn", map[string]string{"Player": name}, "Current Player: "+name)
	}
	return in
}

func (r *Renderer) text(key string, data any, fallback string) string {
	if r == nil || r.cat == nil {
		return fallback
	}
	return r.cat.Text(key, data, fallback)
}
