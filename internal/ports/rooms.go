package ports

import (
	"context"

	"bigtwo/internal/domain"
)

// RoomStore persists room records keyed by room id, with a code index for
// player-facing lookups.
type RoomStore interface {
	// Get returns the room and the version token for conditional writes.
	Get(ctx context.Context, roomID string) (*domain.Room, string, error)

	// GetByCode resolves a player-facing room code.
	GetByCode(ctx context.Context, code string) (*domain.Room, string, error)

	// Put writes the room iff the stored version still matches. An empty
	// version inserts a record that must not exist yet.
	Put(ctx context.Context, room *domain.Room, version string) error

	// List pages through room records for maintenance sweeps. An empty
	// cursor starts the scan; the returned cursor resumes it, empty when
	// exhausted.
	List(ctx context.Context, limit int, cursor string) ([]*domain.Room, string, error)

	// Delete removes the room and its code index.
	Delete(ctx context.Context, room *domain.Room) error
}
