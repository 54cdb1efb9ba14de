package domain

// RoomStatus is the lifecycle stage of a room.
type RoomStatus string

const (
	// RoomPlaying is the active game state.
	RoomPlaying RoomStatus = "playing"
	// RoomFinished is the state after a game concludes.
	RoomFinished RoomStatus = "finished"
	// RoomAbandoned marks a room torn down before its game concluded.
	RoomAbandoned RoomStatus = "abandoned"
)

// Room is the top-level record for one table of four players. The
// seat-indexed id arrays are fixed at deal time; bot takeover never changes
// which user owns a seat.
type Room struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Status    RoomStatus `json:"status"`
	PlayerIDs [4]string  `json:"player_ids"`
	UserIDs   [4]string  `json:"user_ids"`
	CreatedAt int64      `json:"created_at"`
	UpdatedAt int64      `json:"updated_at"`
}

// Play is the combination currently on the table.
type Play struct {
	Cards []Card    `json:"cards"`
	Combo ComboType `json:"combo"`
}

// GameState is the authoritative turn state for one room. It is stored as a
// single versioned record and every mutation is a conditional write against
// the version read beforehand.
type GameState struct {
	ID          string `json:"id"`
	RoomID      string `json:"room_id"`
	CurrentTurn int32  `json:"current_turn"`
	PassCount   int32  `json:"pass_count"`
	LastPlay    *Play  `json:"last_play"`
	// AutoPassDeadline is the epoch-millisecond instant after which the seat
	// to act is force-passed. Zero means no deadline is armed.
	AutoPassDeadline int64 `json:"auto_pass_deadline"`
	UpdatedAt        int64 `json:"updated_at"`
}

// TableClear reports whether the current leader owes nothing.
func (s *GameState) TableClear() bool {
	return s.LastPlay == nil
}

// ArmAutoPass sets the forced-pass deadline. Deadline mutation is its own
// operation: pass and trick-clear transitions copy the field through
// untouched.
func (s *GameState) ArmAutoPass(deadline int64) {
	s.AutoPassDeadline = deadline
}

// DisarmAutoPass clears the deadline. Only expiry and a play that answers
// the pending combo reach this.
func (s *GameState) DisarmAutoPass() {
	s.AutoPassDeadline = 0
}

// AutoPassDue reports whether an armed deadline has elapsed at the given
// instant.
func (s *GameState) AutoPassDue(now int64) bool {
	return s.AutoPassDeadline != 0 && now >= s.AutoPassDeadline
}

// PlayerHand holds one player's private cards for a room.
type PlayerHand struct {
	RoomID string `json:"room_id"`
	Cards  []Card `json:"cards"`
}

// TicketStatus is the lifecycle stage of a matchmaking ticket.
type TicketStatus string

const (
	TicketWaiting   TicketStatus = "waiting"
	TicketCancelled TicketStatus = "cancelled"
)

// WaitingRoomEntry is a user's matchmaking ticket. Cancelled is the durable
// signal; row deletion afterwards is best-effort cleanup.
type WaitingRoomEntry struct {
	UserID     string       `json:"user_id"`
	Status     TicketStatus `json:"status"`
	EnqueuedAt int64        `json:"enqueued_at"`
}
