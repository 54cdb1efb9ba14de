package nakama

import (
	"context"
	"database/sql"

	"bigtwo/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs and lifecycle hooks for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if path := env["game_config_path"]; path != "" {
			if err := config.LoadGameConfig(path); err != nil {
				logger.Warn("Failed to load game config from %s, using defaults: %v", path, err)
			}
		}
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := initializer.RegisterAfterAuthenticateDevice(AfterAuthenticateDevice); err != nil {
		return err
	}

	if err := initializer.RegisterEventSessionEnd(sessionEndHandler(nk)); err != nil {
		return err
	}

	logger.Info("Big Two module loaded.")
	return nil
}
