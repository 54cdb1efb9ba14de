package nakama

// Storage collections. Room, code-index, state and roster records are
// server-owned; hands, memberships and tickets belong to the user they
// concern so the runtime scopes reads to that user.
const (
	collectionRooms       = "rooms"
	collectionRoomCodes   = "room_codes"
	collectionGameStates  = "game_states"
	collectionRoomPlayers = "room_players"
	collectionPlayerHands = "player_hands"
	collectionMemberships = "room_memberships"
	collectionMatchmaking = "matchmaking"

	// ticketKey is the single matchmaking record key per user.
	ticketKey = "ticket"
)

// Client-callable RPC ids.
const (
	RpcPassTurn          = "pass_turn"
	RpcPlayCards         = "play_cards"
	RpcMarkDisconnected  = "mark_disconnected"
	RpcReconnectPlayer   = "reconnect_player"
	RpcJoinMatchmaking   = "join_matchmaking"
	RpcCancelMatchmaking = "cancel_matchmaking"
	RpcServerTime        = "server_time"
	RpcVoiceToken        = "voice_token"
)

// Server-to-server RPC ids, driven by the scheduler sidecar and the pairing
// service. Calls carrying a user identity are rejected.
const (
	RpcCreateRoom     = "create_room"
	RpcReplaceWithBot = "replace_with_bot"
	RpcAutoPassSweep  = "autopass_sweep"
	RpcBotSweep       = "bot_sweep"
	RpcBotTurn        = "bot_turn"
	RpcCleanupRooms   = "cleanup_rooms"
)

// Notification codes for server -> client events.
const (
	NotifGameStarted        = 103
	NotifHandDealt          = 104 // sent privately
	NotifCardsPlayed        = 105
	NotifTurnPassed         = 106
	NotifGameEnded          = 107
	NotifTrickCleared       = 108
	NotifPlayerDisconnected = 109
	NotifPlayerReconnected  = 110
	NotifBotSeated          = 111
	NotifActiveRooms        = 112
)
