package wsbridge

import (
	"github.com/park285/oware-session/internal/view"
	"github.com/park285/oware-session/pkg/owaredto"
)

// ToDTOBoard converts render instructions to their wire form.
func ToDTOBoard(in view.Instructions) *owaredto.Board {
	b := &owaredto.Board{
		TopScore:         in.TopScoreText,
		BottomScore:      in.BottomScoreText,
		Slots:            make([]owaredto.Slot, 0, len(in.Slots)),
		Banner:           in.Banner,
		Status:           in.StatusText,
		CurrentPlayer:    string(in.CurrentPlayer),
		Winner:           string(in.Winner),
		Thinking:         in.Thinking,
		DisableAll:       in.DisableAll,
		UndoEnabled:      in.UndoEnabled,
		AIMoveEnabled:    in.AIMoveEnabled,
		StartGameEnabled: in.StartGameEnabled,
	}
	for _, s := range in.Slots {
		b.Slots = append(b.Slots, owaredto.Slot{
			Index:     s.Index,
			Text:      s.Text,
			Clickable: s.Clickable,
			Cursor:    s.Cursor,
		})
	}
	return b
}
