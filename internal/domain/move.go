package domain

import (
	"errors"
	"fmt"
)

// ErrRejectedMove is the sentinel wrapped by every RejectedMoveError.
var ErrRejectedMove = errors.New("move rejected")

// RejectedMoveError is returned when a clicked slot does not belong to the player to move.
type RejectedMoveError struct {
	Slot   int
	Player Player
	Reason string
}

func (e *RejectedMoveError) Error() string {
	return fmt.Sprintf("move rejected: slot %d for %s: %s", e.Slot, e.Player, e.Reason)
}

func (e *RejectedMoveError) Unwrap() error { return ErrRejectedMove }

// ResolveMove maps a 0-based clicked slot to the 1-based house number the remote
// move endpoint expects. Bottom plays slots 0-5 as 1-6, Top plays 6-11 as 1-6.
func ResolveMove(slot int, current Player) (int, error) {
	owner, ok := SideOf(slot)
	if !ok {
		return 0, &RejectedMoveError{Slot: slot, Player: current, Reason: "slot out of range"}
	}
	if !current.Valid() {
		return 0, &RejectedMoveError{Slot: slot, Player: current, Reason: "unknown current player"}
	}
	if owner != current {
		return 0, &RejectedMoveError{Slot: slot, Player: current, Reason: "not your turn or not your house"}
	}
	if current == Top {
		return slot - (HousesPerSide - 1), nil
	}
	return slot + 1, nil
}
