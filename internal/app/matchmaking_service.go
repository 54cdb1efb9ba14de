package app

import (
	"context"
	"errors"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"
)

// MatchmakingService manages the caller's own matchmaking ticket. It never
// touches another user's row; pairing itself happens elsewhere.
type MatchmakingService struct {
	tickets ports.TicketStore
	clock   ports.Clock
}

// NewMatchmakingService constructs the queue lifecycle manager.
func NewMatchmakingService(tickets ports.TicketStore, clock ports.Clock) *MatchmakingService {
	return &MatchmakingService{tickets: tickets, clock: clock}
}

// CancelResult reports a cancel. The cancelled status write is the durable
// signal; CleanupErr records a failed best-effort row delete afterwards and
// is logged by callers, never surfaced.
type CancelResult struct {
	HadTicket  bool
	CleanupErr error
}

// JoinResult reports a queue join.
type JoinResult struct {
	AlreadyQueued bool
}

// Cancel withdraws the caller from matchmaking. Absent and already-cancelled
// tickets make the call a no-op success, so retries are safe.
func (s *MatchmakingService) Cancel(ctx context.Context, userID string) (*CancelResult, error) {
	for attempt := 0; ; attempt++ {
		entry, version, err := s.tickets.Get(ctx, userID)
		if errors.Is(err, ports.ErrNotFound) {
			return &CancelResult{}, nil
		}
		if err != nil {
			return nil, err
		}

		if entry.Status != domain.TicketCancelled {
			entry.Status = domain.TicketCancelled
			err = s.tickets.Put(ctx, entry, version)
			if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
				continue
			}
			if err != nil {
				return nil, err
			}
		}

		res := &CancelResult{HadTicket: true}
		res.CleanupErr = s.tickets.Delete(ctx, userID)
		return res, nil
	}
}

// Join queues the caller for pairing. An existing waiting ticket makes the
// call a no-op success; a cancelled leftover is replaced.
func (s *MatchmakingService) Join(ctx context.Context, userID string) (*JoinResult, error) {
	fresh := &domain.WaitingRoomEntry{
		UserID:     userID,
		Status:     domain.TicketWaiting,
		EnqueuedAt: s.clock.Now().UnixMilli(),
	}

	entry, version, err := s.tickets.Get(ctx, userID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		err = s.tickets.Put(ctx, fresh, "")
		if errors.Is(err, ports.ErrVersionConflict) {
			// A concurrent join created the ticket first.
			return &JoinResult{AlreadyQueued: true}, nil
		}
		if err != nil {
			return nil, err
		}
		return &JoinResult{}, nil
	case err != nil:
		return nil, err
	case entry.Status == domain.TicketWaiting:
		return &JoinResult{AlreadyQueued: true}, nil
	default:
		if err := s.tickets.Put(ctx, fresh, version); err != nil {
			return nil, err
		}
		return &JoinResult{}, nil
	}
}
