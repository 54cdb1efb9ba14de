package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"bigtwo/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// notificationCode maps an app event kind to its wire notification code.
func notificationCode(kind app.EventKind) int {
	switch kind {
	case app.EventGameStarted:
		return NotifGameStarted
	case app.EventHandDealt:
		return NotifHandDealt
	case app.EventCardsPlayed:
		return NotifCardsPlayed
	case app.EventTurnPassed:
		return NotifTurnPassed
	case app.EventGameEnded:
		return NotifGameEnded
	case app.EventTrickCleared:
		return NotifTrickCleared
	case app.EventPlayerDisconnected:
		return NotifPlayerDisconnected
	case app.EventPlayerReconnected:
		return NotifPlayerReconnected
	case app.EventBotSeated:
		return NotifBotSeated
	default:
		return 0
	}
}

// notificationContent converts a typed event payload into the generic map
// the notification API requires.
func notificationContent(payload any) (map[string]interface{}, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	var content map[string]interface{}
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("failed to convert event payload: %w", err)
	}
	return content, nil
}

// dispatchEvents fans app events out to their recipients as persistent
// notifications. Delivery is best-effort: the state transition that produced
// the events has already committed, so failures are logged and never
// propagated back to the caller.
func dispatchEvents(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule, events []app.Event) {
	for _, evt := range events {
		code := notificationCode(evt.Kind)
		if code == 0 {
			logger.Warn("Skipping event with unknown kind: %s", evt.Kind)
			continue
		}
		content, err := notificationContent(evt.Payload)
		if err != nil {
			logger.Error("Failed to encode %s event: %v", evt.Kind, err)
			continue
		}
		batch := make([]*runtime.NotificationSend, 0, len(evt.Recipients))
		for _, userID := range evt.Recipients {
			batch = append(batch, &runtime.NotificationSend{
				UserID:     userID,
				Subject:    string(evt.Kind),
				Content:    content,
				Code:       code,
				Persistent: true,
			})
		}
		if len(batch) == 0 {
			continue
		}
		if err := nk.NotificationsSend(ctx, batch); err != nil {
			logger.Error("Failed to send %s notifications: %v", evt.Kind, err)
		}
	}
}
