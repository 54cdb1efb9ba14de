package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcMarkDisconnected records a disconnect for the caller's seat. Clients
// call this on intentional backgrounding; the session-end hook covers
// unclean drops.
//
// Payload: {"room_id": "...", "player_id": "..."}
// Returns: {"success": true} or the in-band failure envelope.
func rpcMarkDisconnected(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		RoomID   string `json:"room_id"`
		PlayerID string `json:"player_id"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	_, events, err := connectionService(nk).MarkDisconnected(ctx, req.RoomID, req.PlayerID, userID)
	if err != nil {
		return domainFailure(logger, err)
	}
	dispatchEvents(ctx, logger, nk, events)

	b, _ := json.Marshal(struct {
		Success bool `json:"success"`
	}{Success: true})
	return string(b), nil
}

// rpcReconnectPlayer restores the caller's seat after a disconnect,
// reclaiming it from a bot when one took over in the meantime.
//
// Payload: {"room_id": "...", "player_id": "..."}
// Returns: {"success": true, "was_bot": bool, "username": "..."} or the
// in-band failure envelope.
func rpcReconnectPlayer(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		RoomID   string `json:"room_id"`
		PlayerID string `json:"player_id"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	result, events, err := connectionService(nk).ReconnectPlayer(ctx, req.RoomID, req.PlayerID, userID)
	if err != nil {
		return domainFailure(logger, err)
	}
	dispatchEvents(ctx, logger, nk, events)

	res := struct {
		Success  bool   `json:"success"`
		WasBot   bool   `json:"was_bot"`
		Username string `json:"username"`
	}{
		Success:  true,
		WasBot:   result.WasBot,
		Username: result.Username,
	}
	b, _ := json.Marshal(res)
	return string(b), nil
}
