package nakama

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice is triggered after an account is authenticated.
// New accounts get a generated display name; every sign-in is told about
// playing rooms the user still holds a seat in so the client can offer
// reconnection.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	userID := ""
	if ctxUserID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string); ok {
		userID = ctxUserID
	}
	if userID == "" {
		// Resolve User ID from the session token by parsing the JWT payload manually.
		resolvedID, err := extractUserIDFromToken(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}

	service := onboardingService(nk)

	if out.Created {
		logger.Info("Onboarding new user %s", userID)

		result, err := service.OnboardNewUser(ctx, userID)
		if result.ProfileUpdateErr != nil {
			logger.Warn("AfterAuthenticateDevice: Failed to update profile for user %s: %v", userID, result.ProfileUpdateErr)
		}
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Onboarding failed for user %s: %v", userID, err)
			return err
		}
	}

	candidates, err := service.ActiveRooms(ctx, userID)
	if err != nil {
		// Sign-in succeeds regardless; the client can still reach its rooms
		// by code.
		logger.Warn("AfterAuthenticateDevice: Failed to list active rooms for user %s: %v", userID, err)
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	notification := &runtime.NotificationSend{
		UserID:     userID,
		Subject:    "active_rooms",
		Content:    map[string]interface{}{"rooms": candidates},
		Code:       NotifActiveRooms,
		Persistent: false,
	}
	if err := nk.NotificationsSend(ctx, []*runtime.NotificationSend{notification}); err != nil {
		logger.Warn("AfterAuthenticateDevice: Failed to notify user %s of active rooms: %v", userID, err)
	}
	return nil
}

// sessionEndHandler records a disconnect for every playing room the closing
// session's user occupies. The event callback carries no module handle, so
// the hook closes over the one handed to InitModule.
func sessionEndHandler(nk runtime.NakamaModule) func(ctx context.Context, logger runtime.Logger, evt *api.Event) {
	return func(ctx context.Context, logger runtime.Logger, evt *api.Event) {
		userID := callerID(ctx)
		if userID == "" {
			logger.Warn("Session end event without user context")
			return
		}

		candidates, err := onboardingService(nk).ActiveRooms(ctx, userID)
		if err != nil {
			logger.Error("Session end: failed to list rooms for user %s: %v", userID, err)
			return
		}

		conn := connectionService(nk)
		for _, candidate := range candidates {
			_, events, err := conn.MarkDisconnected(ctx, candidate.RoomID, candidate.PlayerID, "")
			if err != nil {
				logger.Error("Session end: failed to mark %s disconnected in room %s: %v", userID, candidate.RoomID, err)
				continue
			}
			dispatchEvents(ctx, logger, nk, events)
		}
	}
}

func extractUserIDFromToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid token format")
	}

	payload := parts[1]
	// JWT base64 is RawUrlEncoding (no padding)
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode token payload: %w", err)
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(data, &claims); err != nil {
		return "", fmt.Errorf("failed to unmarshal token claims: %w", err)
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return "", fmt.Errorf("token claims missing uid")
	}

	return uid, nil
}
