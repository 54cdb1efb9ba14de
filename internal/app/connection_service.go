package app

import (
	"context"
	"errors"
	"time"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"
)

// ConnectionService manages the seat connection lifecycle: disconnect, bot
// takeover after the grace period, and reconnect restore. All transitions
// are conditional writes on the roster row and are idempotent, so client
// retries and the grace scheduler can race safely.
type ConnectionService struct {
	rooms  ports.RoomStore
	roster ports.RosterStore
	clock  ports.Clock
	grace  time.Duration
}

// NewConnectionService constructs the lifecycle manager. grace is how long a
// seat stays merely disconnected before a bot may take it over.
func NewConnectionService(rooms ports.RoomStore, roster ports.RosterStore, clock ports.Clock, grace time.Duration) *ConnectionService {
	return &ConnectionService{rooms: rooms, roster: roster, clock: clock, grace: grace}
}

// DisconnectResult reports a disconnect transition.
type DisconnectResult struct {
	Seat                int32
	AlreadyDisconnected bool
}

// ReconnectResult reports a reconnect transition. WasBot tells the client a
// bot held the seat in the meantime.
type ReconnectResult struct {
	Seat             int32
	Username         string
	WasBot           bool
	AlreadyConnected bool
}

// BotReplaceResult reports a bot takeover.
type BotReplaceResult struct {
	Seat       int32
	Username   string
	AlreadyBot bool
}

// MarkDisconnected records that the player dropped. Repeating the call, or
// calling it on a seat already past disconnection, is a no-op success.
// callerID must own the player record; empty marks a trusted runtime path.
func (s *ConnectionService) MarkDisconnected(ctx context.Context, roomID, playerID, callerID string) (*DisconnectResult, []Event, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 0; ; attempt++ {
		player, version, err := s.player(ctx, roomID, playerID, callerID)
		if err != nil {
			return nil, nil, err
		}
		if player.ConnectionStatus != domain.StatusConnected {
			return &DisconnectResult{Seat: player.PlayerIndex, AlreadyDisconnected: true}, nil, nil
		}

		player.ConnectionStatus = domain.StatusDisconnected
		player.DisconnectedAt = s.clock.Now().UnixMilli()

		err = s.roster.Put(ctx, player, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		res := &DisconnectResult{Seat: player.PlayerIndex}
		events := []Event{{
			Kind:       EventPlayerDisconnected,
			Payload:    PlayerDisconnectedPayload{RoomID: roomID, PlayerID: playerID, Seat: player.PlayerIndex},
			Recipients: othersOf(room, player.PlayerIndex),
		}}
		return res, events, nil
	}
}

// ReconnectPlayer returns a seat to its human. A bot-held seat gets its
// original username back; a merely disconnected seat reconnects in place.
// Reconnecting an already connected seat is a no-op success.
func (s *ConnectionService) ReconnectPlayer(ctx context.Context, roomID, playerID, callerID string) (*ReconnectResult, []Event, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 0; ; attempt++ {
		player, version, err := s.player(ctx, roomID, playerID, callerID)
		if err != nil {
			return nil, nil, err
		}
		if player.ConnectionStatus == domain.StatusConnected {
			return &ReconnectResult{
				Seat:             player.PlayerIndex,
				Username:         player.Username,
				AlreadyConnected: true,
			}, nil, nil
		}

		wasBot := player.IsBot || player.ConnectionStatus == domain.StatusReplacedByBot
		if wasBot {
			player.RestoreIdentity()
		}
		player.ConnectionStatus = domain.StatusConnected
		player.DisconnectedAt = 0
		player.LastSeenAt = s.clock.Now().UnixMilli()

		err = s.roster.Put(ctx, player, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		res := &ReconnectResult{Seat: player.PlayerIndex, Username: player.Username, WasBot: wasBot}
		events := []Event{{
			Kind: EventPlayerReconnected,
			Payload: PlayerReconnectedPayload{
				RoomID:   roomID,
				PlayerID: playerID,
				Seat:     player.PlayerIndex,
				Username: player.Username,
				WasBot:   wasBot,
			},
			Recipients: othersOf(room, player.PlayerIndex),
		}}
		return res, events, nil
	}
}

// ReplaceWithBot seats a bot on a disconnected seat once the grace period
// has elapsed. Replacing an already bot-held seat is a no-op success.
func (s *ConnectionService) ReplaceWithBot(ctx context.Context, roomID, playerID string) (*BotReplaceResult, []Event, error) {
	room, err := s.room(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	if room.Status != domain.RoomPlaying {
		return nil, nil, ErrRoomNotPlaying
	}

	for attempt := 0; ; attempt++ {
		player, version, err := s.player(ctx, roomID, playerID, "")
		if err != nil {
			return nil, nil, err
		}
		if player.IsBot || player.ConnectionStatus == domain.StatusReplacedByBot {
			return &BotReplaceResult{Seat: player.PlayerIndex, Username: player.Username, AlreadyBot: true}, nil, nil
		}
		if player.ConnectionStatus != domain.StatusDisconnected {
			return nil, nil, ErrNotDisconnected
		}
		now := s.clock.Now().UnixMilli()
		if now < player.DisconnectedAt+s.grace.Milliseconds() {
			return nil, nil, ErrGraceNotElapsed
		}

		player.TagAsBot()

		err = s.roster.Put(ctx, player, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		res := &BotReplaceResult{Seat: player.PlayerIndex, Username: player.Username}
		events := []Event{{
			Kind: EventBotSeated,
			Payload: BotSeatedPayload{
				RoomID:   roomID,
				PlayerID: playerID,
				Seat:     player.PlayerIndex,
				Username: player.Username,
			},
			Recipients: othersOf(room, player.PlayerIndex),
		}}
		return res, events, nil
	}
}

// GraceOutcome is one seat's result within a grace sweep.
type GraceOutcome struct {
	RoomID   string
	PlayerID string
	Result   *BotReplaceResult
	Events   []Event
	Err      error
}

// SweepGrace walks every playing room and seats bots on seats whose
// disconnect grace has elapsed. Per-seat failures are reported in the
// outcome list and do not stop the sweep.
func (s *ConnectionService) SweepGrace(ctx context.Context) ([]GraceOutcome, error) {
	now := s.clock.Now().UnixMilli()
	var outcomes []GraceOutcome
	cursor := ""
	for {
		page, next, err := s.rooms.List(ctx, sweepPageSize, cursor)
		if err != nil {
			return outcomes, err
		}
		for _, room := range page {
			if room.Status != domain.RoomPlaying {
				continue
			}
			for _, playerID := range room.PlayerIDs {
				player, _, err := s.roster.Get(ctx, playerID)
				if err != nil {
					outcomes = append(outcomes, GraceOutcome{RoomID: room.ID, PlayerID: playerID, Err: err})
					continue
				}
				if player.ConnectionStatus != domain.StatusDisconnected {
					continue
				}
				if now < player.DisconnectedAt+s.grace.Milliseconds() {
					continue
				}
				res, events, err := s.ReplaceWithBot(ctx, room.ID, playerID)
				outcomes = append(outcomes, GraceOutcome{RoomID: room.ID, PlayerID: playerID, Result: res, Events: events, Err: err})
			}
		}
		if next == "" {
			return outcomes, nil
		}
		cursor = next
	}
}

func (s *ConnectionService) room(ctx context.Context, roomID string) (*domain.Room, error) {
	room, _, err := s.rooms.Get(ctx, roomID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (s *ConnectionService) player(ctx context.Context, roomID, playerID, callerID string) (*domain.RoomPlayer, string, error) {
	player, version, err := s.roster.Get(ctx, playerID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, "", ErrPlayerNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if player.RoomID != roomID {
		return nil, "", ErrPlayerNotFound
	}
	if callerID != "" && player.UserID != callerID {
		return nil, "", ErrNotOwner
	}
	return player, version, nil
}
