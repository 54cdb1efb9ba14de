package domain

import "strings"

// ConnectionStatus tracks a seat's connection lifecycle.
type ConnectionStatus string

const (
	// StatusConnected means a human is present at the seat.
	StatusConnected ConnectionStatus = "connected"
	// StatusDisconnected means the human dropped and the grace period runs.
	StatusDisconnected ConnectionStatus = "disconnected"
	// StatusReplacedByBot means a bot holds the seat until the human returns.
	StatusReplacedByBot ConnectionStatus = "bot"
)

// BotNamePrefix tags the username of a seat a bot has taken over.
const BotNamePrefix = "Bot "

// RoomPlayer is one seat's roster record. PlayerIndex is fixed for the room
// lifetime regardless of join order.
type RoomPlayer struct {
	ID               string           `json:"id"`
	RoomID           string           `json:"room_id"`
	UserID           string           `json:"user_id"`
	PlayerIndex      int32            `json:"player_index"`
	Username         string           `json:"username"`
	OriginalUsername string           `json:"original_username,omitempty"`
	ConnectionStatus ConnectionStatus `json:"connection_status"`
	IsBot            bool             `json:"is_bot"`
	DisconnectedAt   int64            `json:"disconnected_at,omitempty"`
	LastSeenAt       int64            `json:"last_seen_at"`
}

// RoomMembership is a user-owned index row pointing at the user's seat in a
// room, so session events can find the rooms a user occupies without
// scanning rosters.
type RoomMembership struct {
	RoomID   string `json:"room_id"`
	PlayerID string `json:"player_id"`
	UserID   string `json:"user_id"`
}

// TagAsBot marks the seat as bot-held: the username gains the bot prefix and
// the untagged name is kept in OriginalUsername for restoration. Calling it
// on an already bot-held seat changes nothing.
func (p *RoomPlayer) TagAsBot() {
	if p.IsBot {
		return
	}
	p.OriginalUsername = p.Username
	p.Username = BotNamePrefix + p.Username
	p.IsBot = true
	p.ConnectionStatus = StatusReplacedByBot
}

// RestoreIdentity reverses TagAsBot. OriginalUsername wins when present;
// records persisted before that field existed fall back to stripping the
// literal prefix, and a name that never carried the tag keeps its exact
// bytes.
func (p *RoomPlayer) RestoreIdentity() {
	if p.OriginalUsername != "" {
		p.Username = p.OriginalUsername
	} else {
		p.Username = strings.TrimPrefix(p.Username, BotNamePrefix)
	}
	p.OriginalUsername = ""
	p.IsBot = false
}
