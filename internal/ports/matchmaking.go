package ports

import (
	"context"

	"bigtwo/internal/domain"
)

// TicketStore persists each user's single matchmaking ticket. Cancellation
// is a conditional status write; the row delete afterwards is best-effort.
type TicketStore interface {
	// Get returns the caller's ticket and its version token.
	Get(ctx context.Context, userID string) (*domain.WaitingRoomEntry, string, error)

	// Put writes the ticket iff the stored version still matches. An empty
	// version inserts a ticket that must not exist yet.
	Put(ctx context.Context, entry *domain.WaitingRoomEntry, version string) error

	// Delete removes the caller's ticket row.
	Delete(ctx context.Context, userID string) error
}
