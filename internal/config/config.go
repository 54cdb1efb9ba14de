package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// GameConfig carries the deployment-tunable timings. Every getter falls back
// to a safe default when no config file was loaded.
type GameConfig struct {
	TurnTimeoutSeconds int `json:"turn_timeout_seconds"`
	// DisconnectGraceSeconds configures how many seconds a dropped seat stays
	// human before a bot may take it over.
	DisconnectGraceSeconds int `json:"disconnect_grace_seconds"`
	RoomTTLHours           int `json:"room_ttl_hours"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

const (
	defaultTurnTimeout     = 30 * time.Second
	defaultDisconnectGrace = 60 * time.Second
	defaultRoomTTL         = 24 * time.Hour
)

// LoadGameConfig loads the game configuration from the given path. The first
// call wins; repeated calls return the first result.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, nil when unloaded.
func GetGameConfig() *GameConfig {
	return cfg
}

// TurnTimeout returns the auto-pass deadline armed on each play.
func TurnTimeout() time.Duration {
	if cfg == nil || cfg.TurnTimeoutSeconds <= 0 {
		return defaultTurnTimeout
	}
	return time.Duration(cfg.TurnTimeoutSeconds) * time.Second
}

// DisconnectGrace returns how long a disconnected seat is protected from bot
// takeover.
func DisconnectGrace() time.Duration {
	if cfg == nil || cfg.DisconnectGraceSeconds <= 0 {
		return defaultDisconnectGrace
	}
	return time.Duration(cfg.DisconnectGraceSeconds) * time.Second
}

// RoomTTL returns how long a room may sit idle before cleanup tears it down.
func RoomTTL() time.Duration {
	if cfg == nil || cfg.RoomTTLHours <= 0 {
		return defaultRoomTTL
	}
	return time.Duration(cfg.RoomTTLHours) * time.Hour
}
