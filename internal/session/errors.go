package session

import "errors"

var (
	// ErrBusy is returned when a transaction is already in flight. The attempt is dropped, not queued.
	ErrBusy = errors.New("session: transaction in progress")
	// ErrGameOver is returned for moves and AI moves once a winner stands.
	ErrGameOver = errors.New("session: game is over")
	// ErrUndoUnavailable is returned when the last snapshot has nothing to undo.
	ErrUndoUnavailable = errors.New("session: nothing to undo")
	// ErrIllegalMove is returned when the service refuses a submitted move.
	ErrIllegalMove = errors.New("session: move refused by service")
)
