package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeFindMatch  MessageType = "find_match"
	MessageTypeHit        MessageType = "hit"
	MessageTypeStand      MessageType = "stand"
	MessageTypePlayAgain  MessageType = "play_again"
	MessageTypeCreateRoom MessageType = "create_room"
	MessageTypeJoinRoom   MessageType = "join_room"
	MessageTypeLeaveRoom  MessageType = "leave_room"

	// Server to client messages
	MessageTypeWelcome              MessageType = "welcome"
	MessageTypeWaiting              MessageType = "waiting"
	MessageTypeRoomCreated          MessageType = "room_created"
	MessageTypeGameStart            MessageType = "game_start"
	MessageTypeUpdateHand           MessageType = "update_hand"
	MessageTypeOpponentUpdate       MessageType = "opponent_update"
	MessageTypeOpponentStand        MessageType = "opponent_stand"
	MessageTypeRoundOver            MessageType = "round_over"
	MessageTypePlayAgainWait        MessageType = "play_again_wait"
	MessageTypeOpponentDisconnected MessageType = "opponent_disconnected"
	MessageTypeRoomClosed           MessageType = "room_closed"
	MessageTypeError                MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Error codes carried in error messages
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeUnknownType    = "unknown_message_type"
	ErrorCodeRoomNotFound   = "room_not_found"
	ErrorCodeRoomFull       = "room_full"
	ErrorCodeNotParticipant = "not_participant"
	ErrorCodeMatchOver      = "match_over"
	ErrorCodeMatchNotOver   = "match_not_over"
	ErrorCodeIllegalAction  = "illegal_action"
	ErrorCodeAlreadySeated  = "already_seated"
	ErrorCodeShuttingDown   = "shutting_down"
	ErrorCodeInternal       = "internal_error"
)
