package game

import (
	"github.com/tayfyvz/BlackJack/internal/deck"
	"github.com/tayfyvz/BlackJack/internal/hand"
)

// EventType identifies an outbound notification.
type EventType string

// Notification kinds sent from the coordinator to participants
const (
	EventTypeWaiting        EventType = "waiting"
	EventTypeRoomCreated    EventType = "room_created"
	EventTypeRoundStart     EventType = "game_start"
	EventTypeHandUpdate     EventType = "update_hand"
	EventTypeOpponentUpdate EventType = "opponent_update"
	EventTypeOpponentStand  EventType = "opponent_stand"
	EventTypeRoundOver      EventType = "round_over"
	EventTypeRematchWaiting EventType = "play_again_wait"
	EventTypeOpponentLeft   EventType = "opponent_disconnected"
	EventTypeRoomClosed     EventType = "room_closed"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is a notification addressed to a single participant. Events only ever
// carry what the recipient is allowed to see.
type Event interface {
	EventType() EventType
}

// Notifier delivers events to participants. Implementations must not block
// and must not call back into the Coordinator.
type Notifier interface {
	Notify(to ParticipantID, event Event)
}

// Scores are win counts from the recipient's point of view.
type Scores struct {
	You      int
	Opponent int
}

// WaitingEvent tells a participant they are queued for an opponent.
type WaitingEvent struct{}

func (WaitingEvent) EventType() EventType { return EventTypeWaiting }

// RoomCreatedEvent gives a private room host the code to share.
type RoomCreatedEvent struct {
	RoomID RoomID
}

func (RoomCreatedEvent) EventType() EventType { return EventTypeRoomCreated }

// RoundStartEvent is sent to each participant when a round is dealt. Only the
// opponent's first card is included.
type RoundStartEvent struct {
	RoomID            RoomID
	Round             int
	Hand              hand.Hand
	OpponentFirstCard deck.Card
	Total             int
	Scores            Scores
	WinThreshold      int
}

func (RoundStartEvent) EventType() EventType { return EventTypeRoundStart }

// HandUpdateEvent is sent to the participant who hit.
type HandUpdateEvent struct {
	RoomID RoomID
	Hand   hand.Hand
	Total  int
	Busted bool
}

func (HandUpdateEvent) EventType() EventType { return EventTypeHandUpdate }

// OpponentUpdateEvent is sent to the other participant after a hit. It never
// carries card identities.
type OpponentUpdateEvent struct {
	RoomID     RoomID
	HandLength int
	Busted     bool
}

func (OpponentUpdateEvent) EventType() EventType { return EventTypeOpponentUpdate }

// OpponentStandEvent tells a participant their opponent stood.
type OpponentStandEvent struct {
	RoomID RoomID
}

func (OpponentStandEvent) EventType() EventType { return EventTypeOpponentStand }

// RoundOverEvent reveals both hands once a round resolves.
type RoundOverEvent struct {
	RoomID         RoomID
	Round          int
	Hand           hand.Hand
	OpponentHand   hand.Hand
	Total          int
	OpponentTotal  int
	Winner         Outcome
	OpponentBusted bool
	Scores         Scores
	MatchOver      bool
	// MatchWinner is empty unless MatchOver is set.
	MatchWinner Outcome
}

func (RoundOverEvent) EventType() EventType { return EventTypeRoundOver }

// RematchWaitingEvent acknowledges a rematch request while the opponent has not asked yet.
type RematchWaitingEvent struct {
	RoomID RoomID
}

func (RematchWaitingEvent) EventType() EventType { return EventTypeRematchWaiting }

// OpponentLeftEvent tells the remaining participant the room was torn down
// because the opponent departed.
type OpponentLeftEvent struct {
	RoomID RoomID
}

func (OpponentLeftEvent) EventType() EventType { return EventTypeOpponentLeft }

// RoomClosedEvent tells both participants the room was torn down by the server.
type RoomClosedEvent struct {
	RoomID RoomID
	Reason string
}

func (RoomClosedEvent) EventType() EventType { return EventTypeRoomClosed }
