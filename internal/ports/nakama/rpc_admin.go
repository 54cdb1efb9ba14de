package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcCreateRoom deals a fresh four-player room. Invoked by the pairing
// backend once it has grouped four queued users.
//
// Payload: {"user_ids": [4 ids], "usernames": [4 names, optional]}
// Returns: {"success": true, "room_id", "room_code", "player_ids", "first_turn"}
func rpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if err := requireServer(ctx); err != nil {
		return "", err
	}

	var req struct {
		UserIDs   []string `json:"user_ids"`
		Usernames []string `json:"usernames"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	result, events, err := roomService(nk).CreateRoom(ctx, req.UserIDs, req.Usernames)
	if err != nil {
		return domainFailure(logger, err)
	}
	dispatchEvents(ctx, logger, nk, events)

	playerIDs := make([]string, 0, len(result.Players))
	for _, p := range result.Players {
		playerIDs = append(playerIDs, p.ID)
	}
	logger.Info("Created room %s (code %s)", result.Room.ID, result.Room.Code)

	res := struct {
		Success   bool     `json:"success"`
		RoomID    string   `json:"room_id"`
		RoomCode  string   `json:"room_code"`
		PlayerIDs []string `json:"player_ids"`
		FirstTurn int32    `json:"first_turn"`
	}{
		Success:   true,
		RoomID:    result.Room.ID,
		RoomCode:  result.Room.Code,
		PlayerIDs: playerIDs,
		FirstTurn: result.State.CurrentTurn,
	}
	b, _ := json.Marshal(res)
	return string(b), nil
}

// rpcReplaceWithBot seats a bot on a disconnected seat once the grace
// period has elapsed.
//
// Payload: {"room_id": "...", "player_id": "..."}
// Returns: {"success": true, "seat": n, "username": "Bot ..."} or the
// in-band failure envelope.
func rpcReplaceWithBot(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if err := requireServer(ctx); err != nil {
		return "", err
	}

	var req struct {
		RoomID   string `json:"room_id"`
		PlayerID string `json:"player_id"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	result, events, err := connectionService(nk).ReplaceWithBot(ctx, req.RoomID, req.PlayerID)
	if err != nil {
		return domainFailure(logger, err)
	}
	dispatchEvents(ctx, logger, nk, events)

	res := struct {
		Success  bool   `json:"success"`
		Seat     int32  `json:"seat"`
		Username string `json:"username"`
	}{
		Success:  true,
		Seat:     result.Seat,
		Username: result.Username,
	}
	b, _ := json.Marshal(res)
	return string(b), nil
}

// rpcAutoPassSweep forces the pass in every room whose turn deadline has
// elapsed. The scheduler calls this on a short cadence and nudges bot turns
// in the rooms the sweep touched.
//
// Payload: none.
// Returns: {"success": true, "forced": n, "failed": n, "rooms": [ids]}
func rpcAutoPassSweep(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if err := requireServer(ctx); err != nil {
		return "", err
	}

	outcomes, err := gameService(nk).SweepAutoPass(ctx)
	if err != nil {
		logger.Error("Auto-pass sweep aborted: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	forced, failed := 0, 0
	rooms := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			logger.Warn("Forced pass failed in room %s: %v", outcome.RoomID, outcome.Err)
			continue
		}
		forced++
		rooms = append(rooms, outcome.RoomID)
		dispatchEvents(ctx, logger, nk, outcome.Events)
	}
	if forced > 0 || failed > 0 {
		logger.Info("Auto-pass sweep: %d forced, %d failed", forced, failed)
	}

	res := struct {
		Success bool     `json:"success"`
		Forced  int      `json:"forced"`
		Failed  int      `json:"failed"`
		Rooms   []string `json:"rooms"`
	}{Success: true, Forced: forced, Failed: failed, Rooms: rooms}
	b, _ := json.Marshal(res)
	return string(b), nil
}

// rpcBotSweep seats bots on every seat whose disconnect grace has elapsed.
//
// Payload: none.
// Returns: {"success": true, "seated": n, "failed": n, "rooms": [ids]}
func rpcBotSweep(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if err := requireServer(ctx); err != nil {
		return "", err
	}

	outcomes, err := connectionService(nk).SweepGrace(ctx)
	if err != nil {
		logger.Error("Bot sweep aborted: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	seated, failed := 0, 0
	rooms := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			logger.Warn("Bot takeover failed for player %s in room %s: %v", outcome.PlayerID, outcome.RoomID, outcome.Err)
			continue
		}
		seated++
		rooms = append(rooms, outcome.RoomID)
		dispatchEvents(ctx, logger, nk, outcome.Events)
	}
	if seated > 0 || failed > 0 {
		logger.Info("Bot sweep: %d seated, %d failed", seated, failed)
	}

	res := struct {
		Success bool     `json:"success"`
		Seated  int      `json:"seated"`
		Failed  int      `json:"failed"`
		Rooms   []string `json:"rooms"`
	}{Success: true, Seated: seated, Failed: failed, Rooms: rooms}
	b, _ := json.Marshal(res)
	return string(b), nil
}

// rpcBotTurn executes one move for the bot holding the seat to act.
//
// Payload: {"room_id": "..."}
// Returns: {"success": true, "seat": n, "action": "played" | "passed"} or
// the in-band failure envelope.
func rpcBotTurn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if err := requireServer(ctx); err != nil {
		return "", err
	}

	var req struct {
		RoomID string `json:"room_id"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	result, events, err := gameService(nk).BotTurn(ctx, req.RoomID)
	if err != nil {
		return domainFailure(logger, err)
	}
	dispatchEvents(ctx, logger, nk, events)

	action := "passed"
	if result.Played != nil {
		action = "played"
	}
	res := struct {
		Success bool   `json:"success"`
		Seat    int32  `json:"seat"`
		Action  string `json:"action"`
	}{Success: true, Seat: result.Seat, Action: action}
	b, _ := json.Marshal(res)
	return string(b), nil
}

// rpcCleanupRooms tears down idle rooms and orphaned game states. The
// scheduler calls this daily.
//
// Payload: none.
// Returns: {"success": true, "removed": n, "failed": n}
func rpcCleanupRooms(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	if err := requireServer(ctx); err != nil {
		return "", err
	}

	outcomes, err := roomService(nk).CleanupRooms(ctx)
	if err != nil {
		logger.Error("Room cleanup aborted: %v", err)
		return "", runtime.NewError("Internal error", 13)
	}

	removed, failed := 0, 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			logger.Warn("Cleanup of room %s failed: %v", outcome.RoomID, outcome.Err)
			continue
		}
		removed++
	}
	if removed > 0 || failed > 0 {
		logger.Info("Room cleanup: %d removed, %d failed", removed, failed)
	}

	res := struct {
		Success bool `json:"success"`
		Removed int  `json:"removed"`
		Failed  int  `json:"failed"`
	}{Success: true, Removed: removed, Failed: failed}
	b, _ := json.Marshal(res)
	return string(b), nil
}
