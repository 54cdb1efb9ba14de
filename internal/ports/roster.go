package ports

import (
	"context"

	"bigtwo/internal/domain"
)

// RosterStore persists per-seat roster records keyed by player id.
// Connection-lifecycle transitions are conditional writes so client retries
// and the grace scheduler can race without clobbering each other.
type RosterStore interface {
	// Get returns the roster record and its version token.
	Get(ctx context.Context, playerID string) (*domain.RoomPlayer, string, error)

	// Put writes the record iff the stored version still matches. An empty
	// version inserts a record that must not exist yet.
	Put(ctx context.Context, player *domain.RoomPlayer, version string) error

	// Delete removes a roster record at room teardown.
	Delete(ctx context.Context, playerID string) error
}

// MembershipStore maintains the user-owned room membership index. Rows are
// derived data written once at deal time, so writes are unconditional.
type MembershipStore interface {
	// List returns every room membership held by the user.
	List(ctx context.Context, userID string) ([]domain.RoomMembership, error)

	// Put records a membership.
	Put(ctx context.Context, m domain.RoomMembership) error

	// Delete removes a membership at room teardown.
	Delete(ctx context.Context, userID, roomID string) error
}
