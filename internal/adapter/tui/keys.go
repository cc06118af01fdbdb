package tui

import "github.com/charmbracelet/bubbles/key"

// houseKeys maps keys to board slots in the order houses are drawn:
// the top row reads 11..6 left to right, the bottom row 0..5.
var houseKeys = map[string]int{
	"1": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5,
	"q": 11, "w": 10, "e": 9, "r": 8, "t": 7, "y": 6,
}

type keyMap struct {
	Houses    key.Binding
	NewGame   key.Binding
	Undo      key.Binding
	AIMove    key.Binding
	DepthUp   key.Binding
	DepthDown key.Binding
	Quit      key.Binding
}

func newKeyMap(housesHelp string) keyMap {
	return keyMap{
		Houses:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "q", "w", "e", "r", "t", "y"), key.WithHelp("1-6/q-y", housesHelp)),
		NewGame:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new game")),
		Undo:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		AIMove:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "AI move")),
		DepthUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "depth up")),
		DepthDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "depth down")),
		Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Houses, k.NewGame, k.Undo, k.AIMove, k.DepthUp, k.DepthDown, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Houses}, {k.NewGame, k.Undo, k.AIMove}, {k.DepthUp, k.DepthDown, k.Quit}}
}

// setEnabled greys out bindings the current frame does not allow.
func (k *keyMap) setEnabled(houses, newGame, undo, ai bool) {
	k.Houses.SetEnabled(houses)
	k.NewGame.SetEnabled(newGame)
	k.Undo.SetEnabled(undo)
	k.AIMove.SetEnabled(ai)
}
