// Command autopassd drives the time-based game transitions from outside the
// Nakama runtime: elapsed turn deadlines become forced passes, elapsed
// disconnect grace periods become bot takeovers, idle rooms get torn down.
// All state changes go through the module's server-to-server RPCs, so the
// daemon itself holds no game state and can be restarted freely.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bigtwo/internal/ports/nakama"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// maxBotMoves caps consecutive bot nudges per room per tick. A room of bots
// keeps progressing across ticks because every bot play arms a fresh
// deadline.
const maxBotMoves = 4

type rpcClient struct {
	baseURL string
	httpKey string
	client  *http.Client
}

// call invokes a server-to-server RPC with the runtime's http key. The
// payload round-trips as JSON; out may be nil when the response is ignored.
func (c *rpcClient) call(id string, payload, out any) error {
	body := []byte("{}")
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", id, err)
		}
	}

	endpoint := fmt.Sprintf("%s/v2/rpc/%s?http_key=%s&unwrap", c.baseURL, id, url.QueryEscape(c.httpKey))
	resp, err := c.client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", id, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", id, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", id, err)
	}
	return nil
}

type sweepResponse struct {
	Success bool     `json:"success"`
	Rooms   []string `json:"rooms"`
}

type botTurnResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

// sweep runs one scheduler tick: force due passes, seat due bots, then
// nudge bot turns in every room either sweep touched.
func sweep(client *rpcClient, logger *zap.Logger) {
	touched := map[string]bool{}

	var autopass sweepResponse
	if err := client.call(nakama.RpcAutoPassSweep, nil, &autopass); err != nil {
		logger.Error("auto-pass sweep failed", zap.Error(err))
	}
	for _, roomID := range autopass.Rooms {
		touched[roomID] = true
	}

	var bots sweepResponse
	if err := client.call(nakama.RpcBotSweep, nil, &bots); err != nil {
		logger.Error("bot sweep failed", zap.Error(err))
	}
	for _, roomID := range bots.Rooms {
		touched[roomID] = true
	}

	for roomID := range touched {
		nudgeBots(client, logger, roomID)
	}
}

// nudgeBots plays bot turns in a room until a human holds the seat to act.
// The module rejects the call in-band once the seat is not bot-held, which
// terminates the loop.
func nudgeBots(client *rpcClient, logger *zap.Logger, roomID string) {
	for i := 0; i < maxBotMoves; i++ {
		var res botTurnResponse
		err := client.call(nakama.RpcBotTurn, map[string]string{"room_id": roomID}, &res)
		if err != nil {
			logger.Error("bot turn failed", zap.String("room_id", roomID), zap.Error(err))
			return
		}
		if !res.Success {
			return
		}
		logger.Info("bot move", zap.String("room_id", roomID), zap.String("action", res.Action))
	}
}

func cleanup(client *rpcClient, logger *zap.Logger) {
	var res struct {
		Removed int `json:"removed"`
		Failed  int `json:"failed"`
	}
	if err := client.call(nakama.RpcCleanupRooms, nil, &res); err != nil {
		logger.Error("room cleanup failed", zap.Error(err))
		return
	}
	logger.Info("room cleanup finished", zap.Int("removed", res.Removed), zap.Int("failed", res.Failed))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	client := &rpcClient{
		baseURL: envOr("NAKAMA_URL", "http://127.0.0.1:7350"),
		httpKey: envOr("NAKAMA_HTTP_KEY", "defaulthttpkey"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	sweepSpec := envOr("SWEEP_SCHEDULE", "@every 5s")
	cleanupSpec := envOr("CLEANUP_SCHEDULE", "0 3 * * *")

	c := cron.New()
	if _, err := c.AddFunc(sweepSpec, func() { sweep(client, logger) }); err != nil {
		logger.Fatal("invalid sweep schedule", zap.String("schedule", sweepSpec), zap.Error(err))
	}
	if _, err := c.AddFunc(cleanupSpec, func() { cleanup(client, logger) }); err != nil {
		logger.Fatal("invalid cleanup schedule", zap.String("schedule", cleanupSpec), zap.Error(err))
	}
	c.Start()
	logger.Info("autopassd started",
		zap.String("nakama_url", client.baseURL),
		zap.String("sweep_schedule", sweepSpec),
		zap.String("cleanup_schedule", cleanupSpec),
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("autopassd stopping")
	<-c.Stop().Done()
}
