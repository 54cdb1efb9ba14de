package app

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomNotPlaying   = errors.New("room is not in play")
	ErrStateNotFound    = errors.New("game state not found")
	ErrPlayerNotFound   = errors.New("player not found in room")
	ErrNotOwner         = errors.New("caller does not own this player")
	ErrPassWhileLeading = errors.New("cannot pass while leading the trick")
	ErrInvalidCombo     = errors.New("cards do not form a playable combination")
	ErrComboTooWeak     = errors.New("combination does not beat the current play")
	ErrCardsNotHeld     = errors.New("cards are not all in hand")
	ErrNotDisconnected  = errors.New("player is not disconnected")
	ErrGraceNotElapsed  = errors.New("disconnect grace period has not elapsed")
	ErrDeadlineNotDue   = errors.New("no forced pass is due")
	ErrNotBotSeat       = errors.New("seat to act is not bot-held")
)

// TurnViolationError rejects an action by the wrong seat. It carries both
// indices so the client can resynchronize without another round trip.
type TurnViolationError struct {
	CurrentTurn int32
	YourIndex   int32
}

func (e *TurnViolationError) Error() string {
	return fmt.Sprintf("not your turn: current turn is seat %d, you are seat %d", e.CurrentTurn, e.YourIndex)
}
