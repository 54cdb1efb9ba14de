package ports

import (
	"context"

	"bigtwo/internal/domain"
)

// HandStore persists each player's private cards for a room. Records are
// owned by the player so the runtime exposes them read-only to that player
// and to nobody else.
type HandStore interface {
	// Get returns the player's hand for a room and its version token.
	Get(ctx context.Context, roomID, userID string) (*domain.PlayerHand, string, error)

	// Put writes the hand iff the stored version still matches. An empty
	// version inserts a record that must not exist yet.
	Put(ctx context.Context, userID string, hand *domain.PlayerHand, version string) error

	// Delete removes the hand at room teardown.
	Delete(ctx context.Context, roomID, userID string) error
}
