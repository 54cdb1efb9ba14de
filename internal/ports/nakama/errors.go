package nakama

import (
	"encoding/json"
	"errors"

	"bigtwo/internal/app"
	"bigtwo/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// In-band rejection codes. Game-rule rejections travel inside a success
// response so clients distinguish "you cannot do that" from transport
// failures.
const (
	failValidation      = "validation"
	failUnauthenticated = "unauthenticated"
	failNotRoomMember   = "not_room_member"
	failNotFound        = "not_found"
	failTurnViolation   = "turn_violation"
	failInternal        = "internal"
)

// failureEnvelope is the in-band rejection payload. CurrentTurn and
// YourIndex are present only on turn violations so the client can
// resynchronize without another round trip.
type failureEnvelope struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	Code        string `json:"code"`
	CurrentTurn *int32 `json:"current_turn,omitempty"`
	YourIndex   *int32 `json:"your_index,omitempty"`
}

func failurePayload(env failureEnvelope) string {
	b, _ := json.Marshal(env)
	return string(b)
}

// domainFailure translates a service error into the RPC response. Known
// game-rule rejections become an in-band failure payload with a nil error;
// anything unrecognized is logged and surfaced as an internal error.
func domainFailure(logger runtime.Logger, err error) (string, error) {
	var violation *app.TurnViolationError
	if errors.As(err, &violation) {
		return failurePayload(failureEnvelope{
			Error:       violation.Error(),
			Code:        failTurnViolation,
			CurrentTurn: &violation.CurrentTurn,
			YourIndex:   &violation.YourIndex,
		}), nil
	}

	switch {
	case errors.Is(err, app.ErrRoomNotFound),
		errors.Is(err, app.ErrStateNotFound),
		errors.Is(err, app.ErrPlayerNotFound),
		errors.Is(err, ports.ErrNotFound):
		return failurePayload(failureEnvelope{Error: err.Error(), Code: failNotFound}), nil

	case errors.Is(err, app.ErrNotOwner):
		return failurePayload(failureEnvelope{Error: err.Error(), Code: failNotRoomMember}), nil

	case errors.Is(err, app.ErrRoomNotPlaying),
		errors.Is(err, app.ErrPassWhileLeading),
		errors.Is(err, app.ErrInvalidCombo),
		errors.Is(err, app.ErrComboTooWeak),
		errors.Is(err, app.ErrCardsNotHeld),
		errors.Is(err, app.ErrNotDisconnected),
		errors.Is(err, app.ErrGraceNotElapsed),
		errors.Is(err, app.ErrDeadlineNotDue),
		errors.Is(err, app.ErrNotBotSeat),
		errors.Is(err, app.ErrSeatCount),
		errors.Is(err, app.ErrDuplicatePlayer),
		errors.Is(err, app.ErrUnknownUser):
		return failurePayload(failureEnvelope{Error: err.Error(), Code: failValidation}), nil
	}

	logger.Error("Unhandled service error: %v", err)
	return "", runtime.NewError("Internal error", 13) // INTERNAL
}
