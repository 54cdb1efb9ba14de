package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"bigtwo/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcPassTurn passes for the caller's seat.
//
// Payload: {"room_code": "...", "player_id": "..."}
// Returns: {"success": true, "next_turn": n, "pass_count": n,
// "trick_cleared": bool, "auto_pass_deadline": ms} or the in-band failure
// envelope.
func rpcPassTurn(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		RoomCode string `json:"room_code"`
		PlayerID string `json:"player_id"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	result, events, err := gameService(nk).Pass(ctx, req.RoomCode, req.PlayerID, userID)
	if err != nil {
		return domainFailure(logger, err)
	}
	dispatchEvents(ctx, logger, nk, events)

	res := struct {
		Success          bool  `json:"success"`
		NextTurn         int32 `json:"next_turn"`
		PassCount        int32 `json:"pass_count"`
		TrickCleared     bool  `json:"trick_cleared"`
		AutoPassDeadline int64 `json:"auto_pass_deadline"`
	}{
		Success:          true,
		NextTurn:         result.NextTurn,
		PassCount:        result.PassCount,
		TrickCleared:     result.TrickCleared,
		AutoPassDeadline: result.AutoPassDeadline,
	}
	b, _ := json.Marshal(res)
	return string(b), nil
}

// rpcPlayCards plays a card combination for the caller's seat.
//
// Payload: {"room_code": "...", "player_id": "...", "cards": [{"id", "rank", "suit"}, ...]}
// Returns: {"success": true, "combo": "...", "cards": [...], "next_turn": n,
// "pass_count": n, "cards_left": n, "game_over": bool,
// "auto_pass_deadline": ms} or the in-band failure envelope.
func rpcPlayCards(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		RoomCode string        `json:"room_code"`
		PlayerID string        `json:"player_id"`
		Cards    []domain.Card `json:"cards"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	result, events, err := gameService(nk).Play(ctx, req.RoomCode, req.PlayerID, userID, req.Cards)
	if err != nil {
		return domainFailure(logger, err)
	}
	if result.HandSyncErr != nil {
		logger.Error("Hand sync failed after play in room code %s: %v", req.RoomCode, result.HandSyncErr)
	}
	if result.RoomSyncErr != nil {
		logger.Error("Room finish failed after winning play in room code %s: %v", req.RoomCode, result.RoomSyncErr)
	}
	dispatchEvents(ctx, logger, nk, events)

	res := struct {
		Success          bool             `json:"success"`
		Combo            domain.ComboType `json:"combo"`
		Cards            []domain.Card    `json:"cards"`
		NextTurn         int32            `json:"next_turn"`
		PassCount        int32            `json:"pass_count"`
		CardsLeft        int              `json:"cards_left"`
		GameOver         bool             `json:"game_over"`
		AutoPassDeadline int64            `json:"auto_pass_deadline"`
	}{
		Success:          true,
		Combo:            result.Combo.Type,
		Cards:            result.Combo.Cards,
		NextTurn:         result.NextTurn,
		PassCount:        result.PassCount,
		CardsLeft:        result.CardsLeft,
		GameOver:         result.GameOver,
		AutoPassDeadline: result.AutoPassDeadline,
	}
	b, _ := json.Marshal(res)
	return string(b), nil
}
