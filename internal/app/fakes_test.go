package app

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"bigtwo/internal/domain"
	"bigtwo/internal/ports"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) advance(d time.Duration) { f.now = f.now.Add(d) }

// memStores backs every store fake in memory with real version checking, so
// conflict paths behave the way the storage engine's conditional writes do.
type memStores struct {
	mu       sync.Mutex
	rooms    map[string]*domain.Room
	codes    map[string]string
	states   map[string]*domain.GameState
	roster   map[string]*domain.RoomPlayer
	hands    map[string]*domain.PlayerHand
	tickets  map[string]*domain.WaitingRoomEntry
	members  map[string][]domain.RoomMembership
	versions map[string]int

	// beforeStatePut runs once before the next game-state write applies,
	// with the lock released, to interleave a competing transition.
	beforeStatePut func()

	handPutErr      error
	roomPutErr      error
	ticketDeleteErr error
}

func newMemStores() *memStores {
	return &memStores{
		rooms:    make(map[string]*domain.Room),
		codes:    make(map[string]string),
		states:   make(map[string]*domain.GameState),
		roster:   make(map[string]*domain.RoomPlayer),
		hands:    make(map[string]*domain.PlayerHand),
		tickets:  make(map[string]*domain.WaitingRoomEntry),
		members:  make(map[string][]domain.RoomMembership),
		versions: make(map[string]int),
	}
}

func (m *memStores) version(key string) string {
	return strconv.Itoa(m.versions[key])
}

// check enforces conditional-write semantics. The caller holds the lock.
func (m *memStores) check(key, version string) error {
	_, exists := m.versions[key]
	if version == "" {
		if exists {
			return ports.ErrVersionConflict
		}
		return nil
	}
	if !exists || m.version(key) != version {
		return ports.ErrVersionConflict
	}
	return nil
}

type fakeRooms struct{ m *memStores }

var _ ports.RoomStore = fakeRooms{}

func (f fakeRooms) Get(ctx context.Context, roomID string) (*domain.Room, string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	room, ok := f.m.rooms[roomID]
	if !ok {
		return nil, "", ports.ErrNotFound
	}
	cp := *room
	return &cp, f.m.version("room/" + roomID), nil
}

func (f fakeRooms) GetByCode(ctx context.Context, code string) (*domain.Room, string, error) {
	f.m.mu.Lock()
	roomID, ok := f.m.codes[code]
	f.m.mu.Unlock()
	if !ok {
		return nil, "", ports.ErrNotFound
	}
	return f.Get(ctx, roomID)
}

func (f fakeRooms) Put(ctx context.Context, room *domain.Room, version string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.roomPutErr != nil {
		return f.m.roomPutErr
	}
	key := "room/" + room.ID
	if err := f.m.check(key, version); err != nil {
		return err
	}
	if version == "" {
		if _, taken := f.m.codes[room.Code]; taken {
			return ports.ErrVersionConflict
		}
		f.m.codes[room.Code] = room.ID
	}
	cp := *room
	f.m.rooms[room.ID] = &cp
	f.m.versions[key]++
	return nil
}

func (f fakeRooms) List(ctx context.Context, limit int, cursor string) ([]*domain.Room, string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	ids := make([]string, 0, len(f.m.rooms))
	for id := range f.m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*domain.Room, 0, len(ids))
	for _, id := range ids {
		cp := *f.m.rooms[id]
		out = append(out, &cp)
	}
	return out, "", nil
}

func (f fakeRooms) Delete(ctx context.Context, room *domain.Room) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.rooms, room.ID)
	delete(f.m.codes, room.Code)
	delete(f.m.versions, "room/"+room.ID)
	return nil
}

type fakeStates struct{ m *memStores }

var _ ports.GameStateStore = fakeStates{}

func copyState(state *domain.GameState) *domain.GameState {
	cp := *state
	if state.LastPlay != nil {
		lp := *state.LastPlay
		lp.Cards = append([]domain.Card{}, state.LastPlay.Cards...)
		cp.LastPlay = &lp
	}
	return &cp
}

func (f fakeStates) Get(ctx context.Context, roomID string) (*domain.GameState, string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	state, ok := f.m.states[roomID]
	if !ok {
		return nil, "", ports.ErrNotFound
	}
	return copyState(state), f.m.version("state/" + roomID), nil
}

func (f fakeStates) Put(ctx context.Context, state *domain.GameState, version string) error {
	f.m.mu.Lock()
	if h := f.m.beforeStatePut; h != nil {
		f.m.beforeStatePut = nil
		f.m.mu.Unlock()
		h()
		f.m.mu.Lock()
	}
	defer f.m.mu.Unlock()
	key := "state/" + state.RoomID
	if err := f.m.check(key, version); err != nil {
		return err
	}
	f.m.states[state.RoomID] = copyState(state)
	f.m.versions[key]++
	return nil
}

func (f fakeStates) List(ctx context.Context, limit int, cursor string) ([]*domain.GameState, string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	ids := make([]string, 0, len(f.m.states))
	for id := range f.m.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*domain.GameState, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyState(f.m.states[id]))
	}
	return out, "", nil
}

func (f fakeStates) Delete(ctx context.Context, roomID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.states, roomID)
	delete(f.m.versions, "state/"+roomID)
	return nil
}

type fakeRoster struct{ m *memStores }

var _ ports.RosterStore = fakeRoster{}

func (f fakeRoster) Get(ctx context.Context, playerID string) (*domain.RoomPlayer, string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	player, ok := f.m.roster[playerID]
	if !ok {
		return nil, "", ports.ErrNotFound
	}
	cp := *player
	return &cp, f.m.version("player/" + playerID), nil
}

func (f fakeRoster) Put(ctx context.Context, player *domain.RoomPlayer, version string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := "player/" + player.ID
	if err := f.m.check(key, version); err != nil {
		return err
	}
	cp := *player
	f.m.roster[player.ID] = &cp
	f.m.versions[key]++
	return nil
}

func (f fakeRoster) Delete(ctx context.Context, playerID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.roster, playerID)
	delete(f.m.versions, "player/"+playerID)
	return nil
}

type fakeHands struct{ m *memStores }

var _ ports.HandStore = fakeHands{}

func handKey(roomID, userID string) string { return roomID + "/" + userID }

func (f fakeHands) Get(ctx context.Context, roomID, userID string) (*domain.PlayerHand, string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	hand, ok := f.m.hands[handKey(roomID, userID)]
	if !ok {
		return nil, "", ports.ErrNotFound
	}
	cp := *hand
	cp.Cards = append([]domain.Card{}, hand.Cards...)
	return &cp, f.m.version("hand/" + handKey(roomID, userID)), nil
}

func (f fakeHands) Put(ctx context.Context, userID string, hand *domain.PlayerHand, version string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.handPutErr != nil {
		return f.m.handPutErr
	}
	key := "hand/" + handKey(hand.RoomID, userID)
	if err := f.m.check(key, version); err != nil {
		return err
	}
	cp := *hand
	cp.Cards = append([]domain.Card{}, hand.Cards...)
	f.m.hands[handKey(hand.RoomID, userID)] = &cp
	f.m.versions[key]++
	return nil
}

func (f fakeHands) Delete(ctx context.Context, roomID, userID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.hands, handKey(roomID, userID))
	delete(f.m.versions, "hand/"+handKey(roomID, userID))
	return nil
}

type fakeTickets struct{ m *memStores }

var _ ports.TicketStore = fakeTickets{}

func (f fakeTickets) Get(ctx context.Context, userID string) (*domain.WaitingRoomEntry, string, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	entry, ok := f.m.tickets[userID]
	if !ok {
		return nil, "", ports.ErrNotFound
	}
	cp := *entry
	return &cp, f.m.version("ticket/" + userID), nil
}

func (f fakeTickets) Put(ctx context.Context, entry *domain.WaitingRoomEntry, version string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := "ticket/" + entry.UserID
	if err := f.m.check(key, version); err != nil {
		return err
	}
	cp := *entry
	f.m.tickets[entry.UserID] = &cp
	f.m.versions[key]++
	return nil
}

func (f fakeTickets) Delete(ctx context.Context, userID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.ticketDeleteErr != nil {
		return f.m.ticketDeleteErr
	}
	delete(f.m.tickets, userID)
	delete(f.m.versions, "ticket/"+userID)
	return nil
}

type fakeMembers struct{ m *memStores }

var _ ports.MembershipStore = fakeMembers{}

func (f fakeMembers) List(ctx context.Context, userID string) ([]domain.RoomMembership, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return append([]domain.RoomMembership{}, f.m.members[userID]...), nil
}

func (f fakeMembers) Put(ctx context.Context, m domain.RoomMembership) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for i, existing := range f.m.members[m.UserID] {
		if existing.RoomID == m.RoomID {
			f.m.members[m.UserID][i] = m
			return nil
		}
	}
	f.m.members[m.UserID] = append(f.m.members[m.UserID], m)
	return nil
}

func (f fakeMembers) Delete(ctx context.Context, userID, roomID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	kept := f.m.members[userID][:0]
	for _, m := range f.m.members[userID] {
		if m.RoomID != roomID {
			kept = append(kept, m)
		}
	}
	f.m.members[userID] = kept
	return nil
}

type fakeAccounts struct {
	names     map[string]string
	updateErr error
	updates   []string
}

var _ ports.AccountPort = (*fakeAccounts)(nil)

func (f *fakeAccounts) GetUsernames(ctx context.Context, userIDs []string) (map[string]string, error) {
	out := make(map[string]string, len(userIDs))
	for _, id := range userIDs {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, userID, username, displayName string) error {
	f.updates = append(f.updates, userID)
	return f.updateErr
}

// fixture seeds one mid-game room: seat 2 led a single three of diamonds
// and seat 0 is to act.
type fixture struct {
	stores  *memStores
	clock   *fakeClock
	game    *GameService
	conn    *ConnectionService
	queue   *MatchmakingService
	room    *domain.Room
	players [4]*domain.RoomPlayer
}

const (
	testTurnTimeout = 15 * time.Second
	testGrace       = 30 * time.Second
	testRoomTTL     = time.Hour
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := newMemStores()
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}

	f := &fixture{stores: stores, clock: clock}
	f.game = NewGameService(fakeRooms{stores}, fakeStates{stores}, fakeRoster{stores}, fakeHands{stores}, clock, testTurnTimeout)
	f.conn = NewConnectionService(fakeRooms{stores}, fakeRoster{stores}, clock, testGrace)
	f.queue = NewMatchmakingService(fakeTickets{stores}, clock)

	now := clock.now.UnixMilli()
	room := &domain.Room{
		ID:        "room-1",
		Code:      "BTWXYZ",
		Status:    domain.RoomPlaying,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usernames := [4]string{"Alice", "Bobby", "Carol", "Daisy"}
	hands := [4][]domain.Card{
		{domain.NewCard(1, 0), domain.NewCard(4, 1), domain.NewCard(7, 2), domain.NewCard(12, 3)},
		{domain.NewCard(2, 0), domain.NewCard(2, 1), domain.NewCard(5, 2), domain.NewCard(9, 3)},
		{domain.NewCard(3, 0), domain.NewCard(6, 1), domain.NewCard(8, 2), domain.NewCard(10, 3)},
		{domain.NewCard(0, 1), domain.NewCard(0, 2), domain.NewCard(6, 3), domain.NewCard(11, 0)},
	}
	for seat := 0; seat < 4; seat++ {
		player := &domain.RoomPlayer{
			ID:               "p" + strconv.Itoa(seat),
			RoomID:           room.ID,
			UserID:           "u" + strconv.Itoa(seat),
			PlayerIndex:      int32(seat),
			Username:         usernames[seat],
			ConnectionStatus: domain.StatusConnected,
			LastSeenAt:       now,
		}
		room.PlayerIDs[seat] = player.ID
		room.UserIDs[seat] = player.UserID
		f.players[seat] = player
		stores.roster[player.ID] = player
		stores.versions["player/"+player.ID] = 1
		stores.hands[handKey(room.ID, player.UserID)] = &domain.PlayerHand{RoomID: room.ID, Cards: hands[seat]}
		stores.versions["hand/"+handKey(room.ID, player.UserID)] = 1
		stores.members[player.UserID] = []domain.RoomMembership{{RoomID: room.ID, PlayerID: player.ID, UserID: player.UserID}}
	}
	state := &domain.GameState{
		ID:          "state-1",
		RoomID:      room.ID,
		CurrentTurn: 0,
		PassCount:   0,
		LastPlay: &domain.Play{
			Cards: []domain.Card{domain.NewCard(domain.RankThree, domain.SuitDiamonds)},
			Combo: domain.ComboSingle,
		},
		UpdatedAt: now,
	}
	stores.rooms[room.ID] = room
	stores.codes[room.Code] = room.ID
	stores.versions["room/"+room.ID] = 1
	stores.states[room.ID] = state
	stores.versions["state/"+room.ID] = 1

	f.room = room
	return f
}

func (f *fixture) state(t *testing.T) *domain.GameState {
	t.Helper()
	state, _, err := fakeStates{f.stores}.Get(context.Background(), f.room.ID)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return state
}

func (f *fixture) player(t *testing.T, seat int) *domain.RoomPlayer {
	t.Helper()
	player, _, err := fakeRoster{f.stores}.Get(context.Background(), f.room.PlayerIDs[seat])
	if err != nil {
		t.Fatalf("load player: %v", err)
	}
	return player
}
