package app

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"bigtwo/internal/domain"
)

func newRoomService(f *fixture, seed int64, names map[string]string) *RoomService {
	return NewRoomService(fakeRooms{f.stores}, fakeStates{f.stores}, fakeRoster{f.stores},
		fakeHands{f.stores}, fakeMembers{f.stores}, &fakeAccounts{names: names},
		f.clock, rand.New(rand.NewSource(seed)), testRoomTTL)
}

func TestCreateRoom_DealsFourSortedHands(t *testing.T) {
	f := newFixture(t)
	svc := newRoomService(f, 1, nil)

	users := []string{"n0", "n1", "n2", "n3"}
	names := []string{"Alice", "Bobby", "Carol", "Daisy"}
	res, events, err := svc.CreateRoom(context.Background(), users, names)
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	if len(res.Room.Code) != 6 {
		t.Errorf("room code = %q, want six characters", res.Room.Code)
	}
	for _, c := range res.Room.Code {
		if !strings.ContainsRune(roomCodeAlphabet, c) {
			t.Errorf("room code %q contains %q outside the alphabet", res.Room.Code, c)
		}
	}
	if res.Room.Status != domain.RoomPlaying {
		t.Errorf("room status = %q, want playing", res.Room.Status)
	}

	seen := make(map[int32]bool, 52)
	lowestSeat := int32(-1)
	for seat := 0; seat < 4; seat++ {
		player := res.Players[seat]
		if player.PlayerIndex != int32(seat) || player.UserID != users[seat] || player.Username != names[seat] {
			t.Errorf("seat %d player = %+v", seat, player)
		}

		hand, _, err := fakeHands{f.stores}.Get(context.Background(), res.Room.ID, player.UserID)
		if err != nil {
			t.Fatalf("load hand for seat %d: %v", seat, err)
		}
		if len(hand.Cards) != 13 {
			t.Fatalf("seat %d hand has %d cards, want 13", seat, len(hand.Cards))
		}
		for i, card := range hand.Cards {
			if i > 0 && domain.CardPower(hand.Cards[i-1]) >= domain.CardPower(card) {
				t.Errorf("seat %d hand not sorted at %d: %v", seat, i, hand.Cards)
			}
			seen[domain.CardPower(card)] = true
			if card.Rank == domain.RankThree && card.Suit == domain.SuitDiamonds {
				lowestSeat = int32(seat)
			}
		}
	}
	if len(seen) != 52 {
		t.Errorf("dealt %d distinct cards, want the full deck", len(seen))
	}
	if res.State.CurrentTurn != lowestSeat {
		t.Errorf("opening turn = %d, want %d (three of diamonds holder)", res.State.CurrentTurn, lowestSeat)
	}

	if len(events) != 5 {
		t.Fatalf("events = %d, want four hand deals and a game start", len(events))
	}
	for seat := 0; seat < 4; seat++ {
		ev := events[seat]
		if ev.Kind != EventHandDealt || len(ev.Recipients) != 1 || ev.Recipients[0] != users[seat] {
			t.Errorf("event %d = %+v, want private hand_dealt for %s", seat, ev, users[seat])
		}
	}
	started, ok := events[4].Payload.(GameStartedPayload)
	if !ok || events[4].Kind != EventGameStarted {
		t.Fatalf("event 4 = %+v, want game_started", events[4])
	}
	if started.RoomCode != res.Room.Code || started.FirstTurn != res.State.CurrentTurn {
		t.Errorf("game_started payload = %+v", started)
	}
	if len(events[4].Recipients) != 4 {
		t.Errorf("game_started recipients = %v, want every seat", events[4].Recipients)
	}
}

func TestCreateRoom_Validation(t *testing.T) {
	tests := []struct {
		name      string
		userIDs   []string
		usernames []string
		wantErr   error
	}{
		{
			name:    "three users",
			userIDs: []string{"a", "b", "c"},
			wantErr: ErrSeatCount,
		},
		{
			name:    "duplicate user",
			userIDs: []string{"a", "b", "a", "c"},
			wantErr: ErrDuplicatePlayer,
		},
		{
			name:    "empty user id",
			userIDs: []string{"a", "b", "", "c"},
			wantErr: ErrDuplicatePlayer,
		},
		{
			name:      "username count mismatch",
			userIDs:   []string{"a", "b", "c", "d"},
			usernames: []string{"only", "two"},
			wantErr:   ErrSeatCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := newRoomService(f, 1, nil)
			_, _, err := svc.CreateRoom(context.Background(), tt.userIDs, tt.usernames)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateRoom_ResolvesUsernamesFromAccounts(t *testing.T) {
	f := newFixture(t)
	svc := newRoomService(f, 1, map[string]string{
		"n0": "Piper", "n1": "Quinn", "n2": "Rory", "n3": "Sage",
	})

	res, _, err := svc.CreateRoom(context.Background(), []string{"n0", "n1", "n2", "n3"}, nil)
	if err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}
	want := []string{"Piper", "Quinn", "Rory", "Sage"}
	for seat, player := range res.Players {
		if player.Username != want[seat] {
			t.Errorf("seat %d username = %q, want %q", seat, player.Username, want[seat])
		}
	}
}

func TestCreateRoom_UnknownUserRejected(t *testing.T) {
	f := newFixture(t)
	svc := newRoomService(f, 1, map[string]string{"n0": "Piper", "n1": "Quinn", "n2": "Rory"})

	_, _, err := svc.CreateRoom(context.Background(), []string{"n0", "n1", "n2", "n3"}, nil)
	if !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("err = %v, want ErrUnknownUser", err)
	}
}

// Two services seeded identically generate the same code sequence, so the
// second creation collides on its first attempt and must retry with the next
// code.
func TestCreateRoom_RetriesOnCodeCollision(t *testing.T) {
	f := newFixture(t)
	first := newRoomService(f, 42, nil)
	second := newRoomService(f, 42, nil)
	ctx := context.Background()

	resA, _, err := first.CreateRoom(ctx, []string{"n0", "n1", "n2", "n3"},
		[]string{"Alice", "Bobby", "Carol", "Daisy"})
	if err != nil {
		t.Fatalf("first CreateRoom: %v", err)
	}
	resB, _, err := second.CreateRoom(ctx, []string{"n4", "n5", "n6", "n7"},
		[]string{"Evans", "Frost", "Gayle", "Hollis"})
	if err != nil {
		t.Fatalf("second CreateRoom: %v", err)
	}

	if resA.Room.Code == resB.Room.Code {
		t.Errorf("both rooms got code %q", resA.Room.Code)
	}
	if _, _, err := (fakeRooms{f.stores}).GetByCode(ctx, resB.Room.Code); err != nil {
		t.Errorf("second room not reachable by code: %v", err)
	}
}

func TestCleanupRooms_TearsDownIdleRoom(t *testing.T) {
	f := newFixture(t)
	f.clock.advance(testRoomTTL + time.Minute)
	svc := newRoomService(f, 1, nil)

	fresh := &domain.Room{
		ID:        "room-2",
		Code:      "FRESHR",
		Status:    domain.RoomPlaying,
		UpdatedAt: f.clock.Now().UnixMilli(),
	}
	f.stores.rooms[fresh.ID] = fresh
	f.stores.codes[fresh.Code] = fresh.ID
	f.stores.versions["room/"+fresh.ID] = 1

	outcomes, err := svc.CleanupRooms(context.Background())
	if err != nil {
		t.Fatalf("CleanupRooms returned error: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].RoomID != f.room.ID || outcomes[0].Err != nil {
		t.Fatalf("outcomes = %+v, want clean teardown of %s", outcomes, f.room.ID)
	}

	if _, ok := f.stores.rooms[f.room.ID]; ok {
		t.Error("idle room record should be gone")
	}
	if _, ok := f.stores.states[f.room.ID]; ok {
		t.Error("idle room state should be gone")
	}
	for seat := 0; seat < 4; seat++ {
		if _, ok := f.stores.roster[f.room.PlayerIDs[seat]]; ok {
			t.Errorf("roster row for seat %d should be gone", seat)
		}
		if _, ok := f.stores.hands[handKey(f.room.ID, f.room.UserIDs[seat])]; ok {
			t.Errorf("hand for seat %d should be gone", seat)
		}
		if got := len(f.stores.members[f.room.UserIDs[seat]]); got != 0 {
			t.Errorf("memberships for seat %d = %d, want 0", seat, got)
		}
	}

	if _, ok := f.stores.rooms[fresh.ID]; !ok {
		t.Error("a recently touched room must survive the sweep")
	}
}

func TestCleanupRooms_DeletesOrphanedState(t *testing.T) {
	f := newFixture(t)
	svc := newRoomService(f, 1, nil)

	f.stores.states["room-9"] = &domain.GameState{ID: "state-9", RoomID: "room-9"}
	f.stores.versions["state/room-9"] = 1

	outcomes, err := svc.CleanupRooms(context.Background())
	if err != nil {
		t.Fatalf("CleanupRooms returned error: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].RoomID != "room-9" || outcomes[0].Err != nil {
		t.Fatalf("outcomes = %+v, want orphan delete for room-9", outcomes)
	}
	if _, ok := f.stores.states["room-9"]; ok {
		t.Error("orphaned state should be gone")
	}
}
