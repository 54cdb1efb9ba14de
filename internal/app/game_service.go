package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bigtwo/internal/bot"
	"bigtwo/internal/domain"
	"bigtwo/internal/ports"
)

const sweepPageSize = 100

// GameService executes turn transitions against the versioned room state.
// Every transition is read-validate-write: validation runs against the state
// just read and the write is conditional on that read's version. A conflict
// means another transition committed first; the service re-reads once and
// re-validates instead of retrying blindly on top of stale data.
type GameService struct {
	rooms       ports.RoomStore
	states      ports.GameStateStore
	roster      ports.RosterStore
	hands       ports.HandStore
	clock       ports.Clock
	turnTimeout time.Duration
}

// NewGameService constructs the turn engine. turnTimeout is the forced-pass
// deadline armed on each play; zero disables deadlines.
func NewGameService(rooms ports.RoomStore, states ports.GameStateStore, roster ports.RosterStore,
	hands ports.HandStore, clock ports.Clock, turnTimeout time.Duration) *GameService {
	return &GameService{
		rooms:       rooms,
		states:      states,
		roster:      roster,
		hands:       hands,
		clock:       clock,
		turnTimeout: turnTimeout,
	}
}

// PassResult reports a committed pass transition. AutoPassDeadline echoes
// the stored value, changed or not, so caller-side timers stay consistent
// with server truth.
type PassResult struct {
	Seat             int32
	NextTurn         int32
	PassCount        int32
	TrickCleared     bool
	AutoPassDeadline int64
	Forced           bool
}

// PlayResult reports a committed play transition.
type PlayResult struct {
	Seat             int32
	Combo            domain.Combo
	NextTurn         int32
	PassCount        int32
	CardsLeft        int
	GameOver         bool
	AutoPassDeadline int64

	// HandSyncErr and RoomSyncErr record failed follow-up writes. The turn
	// transition has already committed, so callers log these instead of
	// surfacing them.
	HandSyncErr error
	RoomSyncErr error
}

// Pass processes a pass by the given player. callerID must own the player
// record; an empty callerID marks a trusted runtime path.
func (s *GameService) Pass(ctx context.Context, roomCode, playerID, callerID string) (*PassResult, []Event, error) {
	room, err := s.playingRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, nil, err
	}
	player, err := s.roomPlayer(ctx, room, playerID, callerID)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 0; ; attempt++ {
		state, version, err := s.loadState(ctx, room.ID)
		if err != nil {
			return nil, nil, err
		}
		if state.CurrentTurn != player.PlayerIndex {
			return nil, nil, &TurnViolationError{CurrentTurn: state.CurrentTurn, YourIndex: player.PlayerIndex}
		}
		if state.TableClear() {
			return nil, nil, ErrPassWhileLeading
		}

		cleared := applyPass(state, s.clock.Now().UnixMilli())

		err = s.states.Put(ctx, state, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		res := &PassResult{
			Seat:             player.PlayerIndex,
			NextTurn:         state.CurrentTurn,
			PassCount:        state.PassCount,
			TrickCleared:     cleared,
			AutoPassDeadline: state.AutoPassDeadline,
		}
		return res, passEvents(room, res), nil
	}
}

// Play processes a card play by the given player.
func (s *GameService) Play(ctx context.Context, roomCode, playerID, callerID string, cards []domain.Card) (*PlayResult, []Event, error) {
	room, err := s.playingRoomByCode(ctx, roomCode)
	if err != nil {
		return nil, nil, err
	}
	player, err := s.roomPlayer(ctx, room, playerID, callerID)
	if err != nil {
		return nil, nil, err
	}

	combo := domain.Classify(cards)
	if combo.Type == domain.ComboUnknown {
		return nil, nil, ErrInvalidCombo
	}

	hand, _, err := s.hands.Get(ctx, room.ID, player.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("load hand: %w", err)
	}
	if !domain.ContainsAll(hand.Cards, combo.Cards) {
		return nil, nil, ErrCardsNotHeld
	}
	cardsLeft := len(hand.Cards) - len(combo.Cards)

	for attempt := 0; ; attempt++ {
		state, version, err := s.loadState(ctx, room.ID)
		if err != nil {
			return nil, nil, err
		}
		if state.CurrentTurn != player.PlayerIndex {
			return nil, nil, &TurnViolationError{CurrentTurn: state.CurrentTurn, YourIndex: player.PlayerIndex}
		}
		if !state.TableClear() {
			prev := domain.Classify(state.LastPlay.Cards)
			if !domain.Beats(prev, combo) {
				return nil, nil, ErrComboTooWeak
			}
		}

		now := s.clock.Now().UnixMilli()
		// A play that answers the pending combo releases its deadline; a
		// fresh one is armed for the next seat when deadlines are enabled.
		// A winning play arms nothing: no seat owes an answer once the game
		// ends, and a leftover deadline would fail in the sweep on every
		// tick until the room is torn down.
		if state.AutoPassDeadline != 0 {
			state.DisarmAutoPass()
		}
		if s.turnTimeout > 0 && cardsLeft > 0 {
			state.ArmAutoPass(now + s.turnTimeout.Milliseconds())
		}
		state.LastPlay = &domain.Play{Cards: combo.Cards, Combo: combo.Type}
		state.PassCount = 0
		state.CurrentTurn = domain.NextSeat(state.CurrentTurn)
		state.UpdatedAt = now

		err = s.states.Put(ctx, state, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, nil, err
		}

		res := &PlayResult{
			Seat:             player.PlayerIndex,
			Combo:            combo,
			NextTurn:         state.CurrentTurn,
			PassCount:        state.PassCount,
			CardsLeft:        cardsLeft,
			AutoPassDeadline: state.AutoPassDeadline,
		}
		res.GameOver = cardsLeft == 0

		res.HandSyncErr = s.syncHand(ctx, room.ID, player.UserID, combo.Cards)
		if res.GameOver {
			res.RoomSyncErr = s.finishRoom(ctx, room.ID, now)
		}
		return res, playEvents(room, res), nil
	}
}

// ForcePass consumes an elapsed auto-pass deadline by passing on behalf of
// the seat to act, through the same transition an ordinary pass takes. If
// the trick cleared while the deadline was armed, the obligation it enforced
// no longer exists and the deadline is consumed without a pass.
func (s *GameService) ForcePass(ctx context.Context, roomID string) (*PassResult, []Event, error) {
	room, err := s.playingRoomByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}

	for attempt := 0; ; attempt++ {
		state, version, err := s.loadState(ctx, room.ID)
		if err != nil {
			return nil, nil, err
		}
		now := s.clock.Now().UnixMilli()
		if !state.AutoPassDue(now) {
			return nil, nil, ErrDeadlineNotDue
		}

		seat := state.CurrentTurn
		state.DisarmAutoPass()

		res := &PassResult{Seat: seat, Forced: true}
		if state.TableClear() {
			state.UpdatedAt = now
			res.NextTurn = seat
			res.PassCount = state.PassCount
		} else {
			res.TrickCleared = applyPass(state, now)
			res.NextTurn = state.CurrentTurn
			res.PassCount = state.PassCount
		}

		err = s.states.Put(ctx, state, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return res, forcedPassEvents(room, res), nil
	}
}

// SweepOutcome is one room's result within a deadline sweep.
type SweepOutcome struct {
	RoomID string
	Result *PassResult
	Events []Event
	Err    error
}

// SweepAutoPass walks every game state and forces the pass for each armed
// deadline that has elapsed. Per-room failures are reported in the outcome
// list and do not stop the sweep.
func (s *GameService) SweepAutoPass(ctx context.Context) ([]SweepOutcome, error) {
	now := s.clock.Now().UnixMilli()
	var outcomes []SweepOutcome
	cursor := ""
	for {
		page, next, err := s.states.List(ctx, sweepPageSize, cursor)
		if err != nil {
			return outcomes, fmt.Errorf("list game states: %w", err)
		}
		for _, st := range page {
			if !st.AutoPassDue(now) {
				continue
			}
			res, events, err := s.ForcePass(ctx, st.RoomID)
			if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrRoomNotPlaying) {
				// A deadline stranded in a room that already ended; the
				// cleanup sweep collects the record.
				continue
			}
			outcomes = append(outcomes, SweepOutcome{RoomID: st.RoomID, Result: res, Events: events, Err: err})
		}
		if next == "" {
			return outcomes, nil
		}
		cursor = next
	}
}

// BotMoveResult reports the move a bot seat took: exactly one of Played and
// Passed is set.
type BotMoveResult struct {
	Seat   int32
	Played *PlayResult
	Passed *PassResult
}

// BotTurn chooses and executes one move for the bot holding the seat to
// act. The move goes through the ordinary Play/Pass transitions, so all
// turn and ranking validation applies to bots unchanged.
func (s *GameService) BotTurn(ctx context.Context, roomID string) (*BotMoveResult, []Event, error) {
	room, err := s.playingRoomByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	state, _, err := s.loadState(ctx, room.ID)
	if err != nil {
		return nil, nil, err
	}

	seat := state.CurrentTurn
	player, _, err := s.roster.Get(ctx, room.PlayerIDs[seat])
	if errors.Is(err, ports.ErrNotFound) {
		return nil, nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if !player.IsBot {
		return nil, nil, ErrNotBotSeat
	}

	hand, _, err := s.hands.Get(ctx, room.ID, player.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("load hand: %w", err)
	}

	var table *domain.Combo
	if state.LastPlay != nil {
		combo := domain.Classify(state.LastPlay.Cards)
		table = &combo
	}

	cards := bot.ChooseMove(hand.Cards, table)
	if cards == nil {
		res, events, err := s.Pass(ctx, room.Code, player.ID, "")
		if err != nil {
			return nil, nil, err
		}
		return &BotMoveResult{Seat: seat, Passed: res}, events, nil
	}
	res, events, err := s.Play(ctx, room.Code, player.ID, "", cards)
	if err != nil {
		return nil, nil, err
	}
	return &BotMoveResult{Seat: seat, Played: res}, events, nil
}

// applyPass advances the turn by one pass, clearing the trick on the third.
// The auto-pass deadline is copied through untouched in both branches.
func applyPass(state *domain.GameState, now int64) (cleared bool) {
	newCount, cleared := domain.ResolvePass(state.PassCount)
	state.CurrentTurn = domain.NextSeat(state.CurrentTurn)
	state.PassCount = newCount
	if cleared {
		state.LastPlay = nil
	}
	state.UpdatedAt = now
	return cleared
}

func (s *GameService) playingRoomByCode(ctx context.Context, code string) (*domain.Room, error) {
	room, _, err := s.rooms.GetByCode(ctx, code)
	return checkPlaying(room, err)
}

func (s *GameService) playingRoomByID(ctx context.Context, roomID string) (*domain.Room, error) {
	room, _, err := s.rooms.Get(ctx, roomID)
	return checkPlaying(room, err)
}

func checkPlaying(room *domain.Room, err error) (*domain.Room, error) {
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	if room.Status != domain.RoomPlaying {
		return nil, ErrRoomNotPlaying
	}
	return room, nil
}

func (s *GameService) roomPlayer(ctx context.Context, room *domain.Room, playerID, callerID string) (*domain.RoomPlayer, error) {
	player, _, err := s.roster.Get(ctx, playerID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	if player.RoomID != room.ID {
		return nil, ErrPlayerNotFound
	}
	// An empty caller marks a trusted runtime path (scheduler, session hook).
	if callerID != "" && player.UserID != callerID {
		return nil, ErrNotOwner
	}
	return player, nil
}

func (s *GameService) loadState(ctx context.Context, roomID string) (*domain.GameState, string, error) {
	state, version, err := s.states.Get(ctx, roomID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, "", ErrStateNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return state, version, nil
}

// syncHand drops the played cards from the stored hand. It runs after the
// turn transition has committed; one conflict retry covers a racing read.
func (s *GameService) syncHand(ctx context.Context, roomID, userID string, played []domain.Card) error {
	for attempt := 0; ; attempt++ {
		hand, version, err := s.hands.Get(ctx, roomID, userID)
		if err != nil {
			return err
		}
		hand.Cards = domain.RemoveCards(hand.Cards, played)
		err = s.hands.Put(ctx, userID, hand, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		return err
	}
}

func (s *GameService) finishRoom(ctx context.Context, roomID string, now int64) error {
	for attempt := 0; ; attempt++ {
		room, version, err := s.rooms.Get(ctx, roomID)
		if err != nil {
			return err
		}
		if room.Status == domain.RoomFinished {
			return nil
		}
		room.Status = domain.RoomFinished
		room.UpdatedAt = now
		err = s.rooms.Put(ctx, room, version)
		if errors.Is(err, ports.ErrVersionConflict) && attempt == 0 {
			continue
		}
		return err
	}
}

func passEvents(room *domain.Room, res *PassResult) []Event {
	recipients := othersOf(room, res.Seat)
	events := []Event{{
		Kind: EventTurnPassed,
		Payload: TurnPassedPayload{
			RoomID:       room.ID,
			Seat:         res.Seat,
			NextTurn:     res.NextTurn,
			PassCount:    res.PassCount,
			TrickCleared: res.TrickCleared,
			Forced:       res.Forced,
		},
		Recipients: recipients,
	}}
	if res.TrickCleared {
		events = append(events, Event{
			Kind:       EventTrickCleared,
			Payload:    TrickClearedPayload{RoomID: room.ID, NextTurn: res.NextTurn},
			Recipients: recipients,
		})
	}
	return events
}

// forcedPassEvents notifies every seat, the forced one included.
func forcedPassEvents(room *domain.Room, res *PassResult) []Event {
	events := passEvents(room, res)
	for i := range events {
		events[i].Recipients = allOf(room)
	}
	return events
}

func playEvents(room *domain.Room, res *PlayResult) []Event {
	events := []Event{{
		Kind: EventCardsPlayed,
		Payload: CardsPlayedPayload{
			RoomID:    room.ID,
			Seat:      res.Seat,
			Cards:     res.Combo.Cards,
			Combo:     res.Combo.Type,
			NextTurn:  res.NextTurn,
			CardsLeft: res.CardsLeft,
		},
		Recipients: othersOf(room, res.Seat),
	}}
	if res.GameOver {
		events = append(events, Event{
			Kind: EventGameEnded,
			Payload: GameEndedPayload{
				RoomID:     room.ID,
				WinnerSeat: res.Seat,
				WinnerID:   room.UserIDs[res.Seat],
			},
			Recipients: allOf(room),
		})
	}
	return events
}

func othersOf(room *domain.Room, seat int32) []string {
	out := make([]string, 0, 3)
	for i, uid := range room.UserIDs {
		if int32(i) == seat || uid == "" {
			continue
		}
		out = append(out, uid)
	}
	return out
}

func allOf(room *domain.Room) []string {
	out := make([]string, 0, 4)
	for _, uid := range room.UserIDs {
		if uid != "" {
			out = append(out, uid)
		}
	}
	return out
}
