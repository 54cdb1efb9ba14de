package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"bigtwo/internal/app"
	"bigtwo/internal/app/onboarding"
	"bigtwo/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	handlers := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcPassTurn:          rpcPassTurn,
		RpcPlayCards:         rpcPlayCards,
		RpcMarkDisconnected:  rpcMarkDisconnected,
		RpcReconnectPlayer:   rpcReconnectPlayer,
		RpcJoinMatchmaking:   rpcJoinMatchmaking,
		RpcCancelMatchmaking: rpcCancelMatchmaking,
		RpcServerTime:        rpcServerTime,
		RpcVoiceToken:        rpcVoiceToken,
		RpcCreateRoom:        rpcCreateRoom,
		RpcReplaceWithBot:    rpcReplaceWithBot,
		RpcAutoPassSweep:     rpcAutoPassSweep,
		RpcBotSweep:          rpcBotSweep,
		RpcBotTurn:           rpcBotTurn,
		RpcCleanupRooms:      rpcCleanupRooms,
	}
	for id, handler := range handlers {
		if err := initializer.RegisterRpc(id, handler); err != nil {
			return err
		}
	}
	return nil
}

// callerID returns the session user id, empty for server-to-server calls.
func callerID(ctx context.Context) string {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	return userID
}

// requireUser rejects calls that arrive without an authenticated session.
func requireUser(ctx context.Context) (string, error) {
	userID := callerID(ctx)
	if userID == "" {
		return "", runtime.NewError("User identity required", 16) // UNAUTHENTICATED
	}
	return userID, nil
}

// requireServer rejects calls that arrive with a user session. Maintenance
// endpoints are for the scheduler and trusted backends only.
func requireServer(ctx context.Context) error {
	if callerID(ctx) != "" {
		return runtime.NewError("Server-to-server only", 7) // PERMISSION_DENIED
	}
	return nil
}

func unmarshalPayload(payload string, v any) error {
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}
	return nil
}

// Services are assembled per call, the same way the runtime hands each RPC
// its own module handle. All state lives in storage, so construction is
// just wiring.

func gameService(nk runtime.NakamaModule) *app.GameService {
	return app.NewGameService(NewNakamaRoomStore(nk), NewNakamaGameStateStore(nk),
		NewNakamaRosterStore(nk), NewNakamaHandStore(nk), SystemClock{}, config.TurnTimeout())
}

func connectionService(nk runtime.NakamaModule) *app.ConnectionService {
	return app.NewConnectionService(NewNakamaRoomStore(nk), NewNakamaRosterStore(nk),
		SystemClock{}, config.DisconnectGrace())
}

func matchmakingService(nk runtime.NakamaModule) *app.MatchmakingService {
	return app.NewMatchmakingService(NewNakamaTicketStore(nk), SystemClock{})
}

func roomService(nk runtime.NakamaModule) *app.RoomService {
	return app.NewRoomService(NewNakamaRoomStore(nk), NewNakamaGameStateStore(nk),
		NewNakamaRosterStore(nk), NewNakamaHandStore(nk), NewNakamaMembershipStore(nk),
		NewNakamaAccountAdapter(nk), SystemClock{}, nil, config.RoomTTL())
}

func onboardingService(nk runtime.NakamaModule) *onboarding.Service {
	return onboarding.NewService(NewNakamaAccountAdapter(nk), NewNakamaMembershipStore(nk),
		NewNakamaRoomStore(nk), nil)
}

// rpcServerTime returns the authoritative wall clock so clients can render
// stored deadlines without trusting their own clock.
//
// Payload: none.
// Returns: {"timestamp": <unix ms>}
func rpcServerTime(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	res := struct {
		Timestamp int64 `json:"timestamp"`
	}{Timestamp: SystemClock{}.Now().UnixMilli()}
	b, _ := json.Marshal(res)
	return string(b), nil
}

// rpcVoiceToken issues a signed voice access token for the caller.
//
// Payload: {"action": "login" | "join", "room_code": "..."}
// Returns: {"token": "..."}
func rpcVoiceToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return "", err
	}

	var req struct {
		Action   string `json:"action"`
		RoomCode string `json:"room_code"`
	}
	if err := unmarshalPayload(payload, &req); err != nil {
		return "", err
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["voice_secret"]
	issuer := env["voice_issuer"]
	domain := env["voice_domain"]
	if secret == "" || issuer == "" || domain == "" {
		secret = "test-secret"
		issuer = "test-issuer"
		domain = "voice.example.com"
		logger.Warn("Voice credentials missing from env, using test defaults.")
	}

	svc := app.NewVoiceService(secret, issuer, domain, voiceTokenTTL)
	token, err := svc.GenerateToken(userID, req.Action, req.RoomCode)
	if err != nil {
		return "", runtime.NewError(err.Error(), 3)
	}

	res := map[string]string{"token": token}
	b, _ := json.Marshal(res)
	return string(b), nil
}

const voiceTokenTTL = 90 * time.Second
