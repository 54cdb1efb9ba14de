package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"
)

// Room codes avoid glyphs players misread over voice.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	roomCodeLength     = 6
	roomCreateAttempts = 3
	cardsPerHand       = 13
	seatsPerRoom       = 4
)

var (
	ErrSeatCount       = errors.New("exactly four players are required")
	ErrDuplicatePlayer = errors.New("a user cannot hold two seats")
	ErrUnknownUser     = errors.New("user does not exist")
)

// RoomService sets rooms up and tears them down. Creation is invoked by the
// pairing service once it has four users; teardown runs from the cleanup
// sweep.
type RoomService struct {
	rooms       ports.RoomStore
	states      ports.GameStateStore
	roster      ports.RosterStore
	hands       ports.HandStore
	memberships ports.MembershipStore
	accounts    ports.AccountPort
	clock       ports.Clock
	rng         *rand.Rand
	roomTTL     time.Duration
}

// NewRoomService constructs the room lifecycle service with the provided rng
// or a time-seeded default. roomTTL is how long a room may sit idle before
// the cleanup sweep tears it down.
func NewRoomService(rooms ports.RoomStore, states ports.GameStateStore, roster ports.RosterStore,
	hands ports.HandStore, memberships ports.MembershipStore, accounts ports.AccountPort,
	clock ports.Clock, rng *rand.Rand, roomTTL time.Duration) *RoomService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RoomService{
		rooms:       rooms,
		states:      states,
		roster:      roster,
		hands:       hands,
		memberships: memberships,
		accounts:    accounts,
		clock:       clock,
		rng:         rng,
		roomTTL:     roomTTL,
	}
}

// CreateRoomResult carries the newly dealt room.
type CreateRoomResult struct {
	Room    *domain.Room
	State   *domain.GameState
	Players []*domain.RoomPlayer
}

// CreateRoom deals a fresh four-player room: shuffled hands, roster rows,
// membership index rows and the initial turn state. The opening turn belongs
// to the seat holding the three of diamonds. usernames may be empty, in
// which case they are resolved from the account profiles.
func (s *RoomService) CreateRoom(ctx context.Context, userIDs, usernames []string) (*CreateRoomResult, []Event, error) {
	if len(userIDs) != seatsPerRoom {
		return nil, nil, ErrSeatCount
	}
	seen := make(map[string]bool, seatsPerRoom)
	for _, id := range userIDs {
		if id == "" || seen[id] {
			return nil, nil, ErrDuplicatePlayer
		}
		seen[id] = true
	}

	if len(usernames) == 0 {
		resolved, err := s.accounts.GetUsernames(ctx, userIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve usernames: %w", err)
		}
		usernames = make([]string, seatsPerRoom)
		for i, id := range userIDs {
			name, ok := resolved[id]
			if !ok {
				return nil, nil, ErrUnknownUser
			}
			usernames[i] = name
		}
	}
	if len(usernames) != seatsPerRoom {
		return nil, nil, ErrSeatCount
	}

	now := s.clock.Now().UnixMilli()
	deck := domain.ShuffleDeck(domain.NewDeck(), s.rng)

	dealt := make([][]domain.Card, seatsPerRoom)
	for seat := 0; seat < seatsPerRoom; seat++ {
		hand := append([]domain.Card{}, deck[seat*cardsPerHand:(seat+1)*cardsPerHand]...)
		domain.SortCards(hand)
		dealt[seat] = hand
	}

	room := &domain.Room{
		ID:        uuid.NewString(),
		Status:    domain.RoomPlaying,
		CreatedAt: now,
		UpdatedAt: now,
	}
	state := &domain.GameState{
		ID:          uuid.NewString(),
		RoomID:      room.ID,
		CurrentTurn: domain.LowestCardSeat(dealt),
		UpdatedAt:   now,
	}

	players := make([]*domain.RoomPlayer, seatsPerRoom)
	for seat := 0; seat < seatsPerRoom; seat++ {
		players[seat] = &domain.RoomPlayer{
			ID:               uuid.NewString(),
			RoomID:           room.ID,
			UserID:           userIDs[seat],
			PlayerIndex:      int32(seat),
			Username:         usernames[seat],
			ConnectionStatus: domain.StatusConnected,
			LastSeenAt:       now,
		}
		room.PlayerIDs[seat] = players[seat].ID
		room.UserIDs[seat] = userIDs[seat]
	}

	if err := s.persistRoom(ctx, room, state, players, dealt); err != nil {
		return nil, nil, err
	}

	events := make([]Event, 0, seatsPerRoom+1)
	for seat, player := range players {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{RoomID: room.ID, Seat: int32(seat), Cards: dealt[seat]},
			Recipients: []string{player.UserID},
		})
	}
	events = append(events, Event{
		Kind:       EventGameStarted,
		Payload:    GameStartedPayload{RoomID: room.ID, RoomCode: room.Code, FirstTurn: state.CurrentTurn},
		Recipients: allOf(room),
	})

	return &CreateRoomResult{Room: room, State: state, Players: players}, events, nil
}

// persistRoom writes the supporting records first and the room record last,
// so a code lookup only ever lands on a fully dealt room. The room write
// retries with a fresh code when the code index collides.
func (s *RoomService) persistRoom(ctx context.Context, room *domain.Room, state *domain.GameState,
	players []*domain.RoomPlayer, dealt [][]domain.Card) error {
	if err := s.states.Put(ctx, state, ""); err != nil {
		return fmt.Errorf("write game state: %w", err)
	}
	for seat, player := range players {
		if err := s.roster.Put(ctx, player, ""); err != nil {
			return fmt.Errorf("write roster seat %d: %w", seat, err)
		}
		hand := &domain.PlayerHand{RoomID: room.ID, Cards: dealt[seat]}
		if err := s.hands.Put(ctx, player.UserID, hand, ""); err != nil {
			return fmt.Errorf("write hand seat %d: %w", seat, err)
		}
		m := domain.RoomMembership{RoomID: room.ID, PlayerID: player.ID, UserID: player.UserID}
		if err := s.memberships.Put(ctx, m); err != nil {
			return fmt.Errorf("write membership seat %d: %w", seat, err)
		}
	}

	for attempt := 0; attempt < roomCreateAttempts; attempt++ {
		room.Code = s.roomCode()
		err := s.rooms.Put(ctx, room, "")
		if err == nil {
			return nil
		}
		if !errors.Is(err, ports.ErrVersionConflict) {
			return fmt.Errorf("write room: %w", err)
		}
	}
	return fmt.Errorf("write room: %w", ports.ErrVersionConflict)
}

func (s *RoomService) roomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[s.rng.Intn(len(roomCodeAlphabet))]
	}
	return string(code)
}

// CleanupOutcome is one room's result within a cleanup sweep.
type CleanupOutcome struct {
	RoomID string
	Err    error
}

// CleanupRooms tears down rooms idle past the TTL and deletes orphaned game
// states whose room is already gone. Individual delete failures are reported
// in the outcome list and retried by the next sweep; they never stop the
// pass.
func (s *RoomService) CleanupRooms(ctx context.Context) ([]CleanupOutcome, error) {
	now := s.clock.Now().UnixMilli()
	cutoff := now - s.roomTTL.Milliseconds()

	var outcomes []CleanupOutcome
	cursor := ""
	for {
		page, next, err := s.rooms.List(ctx, sweepPageSize, cursor)
		if err != nil {
			return outcomes, fmt.Errorf("list rooms: %w", err)
		}
		for _, room := range page {
			if room.UpdatedAt > cutoff {
				continue
			}
			outcomes = append(outcomes, CleanupOutcome{RoomID: room.ID, Err: s.teardown(ctx, room, now)})
		}
		if next == "" {
			break
		}
		cursor = next
	}

	cursor = ""
	for {
		page, next, err := s.states.List(ctx, sweepPageSize, cursor)
		if err != nil {
			return outcomes, fmt.Errorf("list game states: %w", err)
		}
		for _, state := range page {
			_, _, err := s.rooms.Get(ctx, state.RoomID)
			if errors.Is(err, ports.ErrNotFound) {
				outcomes = append(outcomes, CleanupOutcome{RoomID: state.RoomID, Err: s.states.Delete(ctx, state.RoomID)})
			}
		}
		if next == "" {
			return outcomes, nil
		}
		cursor = next
	}
}

// teardown removes a room's records, the room itself last so a partial
// failure stays visible to the next sweep. A still-playing room is marked
// abandoned first: if any delete fails, the durable status explains the
// leftovers.
func (s *RoomService) teardown(ctx context.Context, room *domain.Room, now int64) error {
	if room.Status == domain.RoomPlaying {
		current, version, err := s.rooms.Get(ctx, room.ID)
		if err != nil {
			return err
		}
		current.Status = domain.RoomAbandoned
		current.UpdatedAt = now
		if err := s.rooms.Put(ctx, current, version); err != nil {
			return err
		}
		room = current
	}

	if err := s.states.Delete(ctx, room.ID); err != nil && !errors.Is(err, ports.ErrNotFound) {
		return err
	}
	for seat, playerID := range room.PlayerIDs {
		if playerID == "" {
			continue
		}
		if err := s.roster.Delete(ctx, playerID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		userID := room.UserIDs[seat]
		if err := s.hands.Delete(ctx, room.ID, userID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
		if err := s.memberships.Delete(ctx, userID, room.ID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			return err
		}
	}
	return s.rooms.Delete(ctx, room)
}
