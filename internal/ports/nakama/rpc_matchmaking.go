package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcJoinMatchmaking enqueues the caller in the pairing queue. Repeated
// calls while already queued are a no-op success.
//
// Payload: none.
// Returns: {"success": true}
func rpcJoinMatchmaking(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}

	if _, err := matchmakingService(nk).Join(ctx, userID); err != nil {
		return domainFailure(logger, err)
	}

	b, _ := json.Marshal(struct {
		Success bool `json:"success"`
	}{Success: true})
	return string(b), nil
}

// rpcCancelMatchmaking withdraws the caller from the pairing queue. Absent
// tickets make the call a no-op success so client retries are safe.
//
// Payload: none.
// Returns: {"success": true}
func rpcCancelMatchmaking(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}

	result, err := matchmakingService(nk).Cancel(ctx, userID)
	if err != nil {
		return domainFailure(logger, err)
	}
	if result.CleanupErr != nil {
		// The ticket is durably cancelled; the leftover row goes away on the
		// next cancel or join.
		logger.Warn("Cancelled ticket row for user %s not removed: %v", userID, result.CleanupErr)
	}

	b, _ := json.Marshal(struct {
		Success bool `json:"success"`
	}{Success: true})
	return string(b), nil
}
