package app

import "bigtwo/internal/domain"

// EventKind identifies emitted state-change events for runtime dispatch.
type EventKind string

const (
	EventHandDealt          EventKind = "hand_dealt"
	EventGameStarted        EventKind = "game_started"
	EventTurnPassed         EventKind = "turn_passed"
	EventTrickCleared       EventKind = "trick_cleared"
	EventCardsPlayed        EventKind = "cards_played"
	EventGameEnded          EventKind = "game_ended"
	EventPlayerDisconnected EventKind = "player_disconnected"
	EventPlayerReconnected  EventKind = "player_reconnected"
	EventBotSeated          EventKind = "bot_seated"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs
}

type HandDealtPayload struct {
	RoomID string        `json:"room_id"`
	Seat   int32         `json:"seat"`
	Cards  []domain.Card `json:"cards"`
}

type GameStartedPayload struct {
	RoomID    string `json:"room_id"`
	RoomCode  string `json:"room_code"`
	FirstTurn int32  `json:"first_turn"`
}

type TurnPassedPayload struct {
	RoomID       string `json:"room_id"`
	Seat         int32  `json:"seat"`
	NextTurn     int32  `json:"next_turn"`
	PassCount    int32  `json:"pass_count"`
	TrickCleared bool   `json:"trick_cleared"`
	Forced       bool   `json:"forced"`
}

type TrickClearedPayload struct {
	RoomID   string `json:"room_id"`
	NextTurn int32  `json:"next_turn"`
}

type CardsPlayedPayload struct {
	RoomID    string           `json:"room_id"`
	Seat      int32            `json:"seat"`
	Cards     []domain.Card    `json:"cards"`
	Combo     domain.ComboType `json:"combo"`
	NextTurn  int32            `json:"next_turn"`
	CardsLeft int              `json:"cards_left"`
}

type GameEndedPayload struct {
	RoomID     string `json:"room_id"`
	WinnerSeat int32  `json:"winner_seat"`
	WinnerID   string `json:"winner_id"`
}

type PlayerDisconnectedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Seat     int32  `json:"seat"`
}

type PlayerReconnectedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Seat     int32  `json:"seat"`
	Username string `json:"username"`
	WasBot   bool   `json:"was_bot"`
}

type BotSeatedPayload struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	Seat     int32  `json:"seat"`
	Username string `json:"username"`
}
