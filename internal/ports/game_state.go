package ports

import (
	"context"

	"bigtwo/internal/domain"
)

// GameStateStore persists the single authoritative turn-state record per
// room. Every write is conditional on the version read beforehand, which is
// what makes racing transitions lose cleanly instead of overwriting each
// other.
type GameStateStore interface {
	// Get returns the state for a room and its version token.
	Get(ctx context.Context, roomID string) (*domain.GameState, string, error)

	// Put writes the state iff the stored version still matches. An empty
	// version inserts a record that must not exist yet.
	Put(ctx context.Context, state *domain.GameState, version string) error

	// List pages through game states for the deadline sweep.
	List(ctx context.Context, limit int, cursor string) ([]*domain.GameState, string, error)

	// Delete removes a room's state record.
	Delete(ctx context.Context, roomID string) error
}
