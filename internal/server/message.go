package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tayfyvz/BlackJack/internal/deck"
	"github.com/tayfyvz/BlackJack/internal/game"
	"github.com/tayfyvz/BlackJack/internal/hand"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (m *Message) Decode(v any) error {
	if len(m.Data) == 0 || string(m.Data) == "null" {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Client → Server Messages

// RoomData names the room an action applies to. For join_room it is the
// private room code. When empty, the connection's current room is used.
type RoomData struct {
	RoomID string `json:"roomId,omitempty"`
}

// Server → Client Messages

type WelcomeData struct {
	ParticipantID string `json:"participantId"`
}

type WaitingData struct{}

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
}

// CardData is a card as rendered to players.
type CardData struct {
	Suit  string `json:"suit"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

// ScoresData are match scores relative to the recipient.
type ScoresData struct {
	You      int `json:"you"`
	Opponent int `json:"opponent"`
}

type GameStartData struct {
	RoomID            string     `json:"roomId"`
	Round             int        `json:"round"`
	YourHand          []CardData `json:"yourHand"`
	OpponentFirstCard CardData   `json:"opponentFirstCard"`
	YourSum           int        `json:"yourSum"`
	Scores            ScoresData `json:"scores"`
	WinThreshold      int        `json:"winThreshold"`
}

type UpdateHandData struct {
	RoomID   string     `json:"roomId"`
	YourHand []CardData `json:"yourHand"`
	YourSum  int        `json:"yourSum"`
	Busted   bool       `json:"busted"`
}

type OpponentUpdateData struct {
	RoomID             string `json:"roomId"`
	OpponentHandLength int    `json:"opponentHandLength"`
	OpponentBusted     bool   `json:"opponentBusted"`
}

type OpponentStandData struct {
	RoomID string `json:"roomId"`
}

type RoundOverData struct {
	RoomID         string     `json:"roomId"`
	Round          int        `json:"round"`
	YourHand       []CardData `json:"yourHand"`
	OpponentHand   []CardData `json:"opponentHand"`
	YourSum        int        `json:"yourSum"`
	OpponentSum    int        `json:"opponentSum"`
	Winner         string     `json:"winner"`
	OpponentBusted bool       `json:"opponentBusted"`
	Scores         ScoresData `json:"scores"`
	MatchOver      bool       `json:"matchOver"`
	MatchWinner    string     `json:"matchWinner,omitempty"`
}

type PlayAgainWaitData struct {
	RoomID string `json:"roomId"`
}

type OpponentDisconnectedData struct {
	RoomID string `json:"roomId"`
}

type RoomClosedData struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatsData is served from /stats.
type StatsData struct {
	Rooms       int      `json:"rooms"`
	OpenRooms   int      `json:"openRooms"`
	Waiting     bool     `json:"waiting"`
	Connections int      `json:"connections"`
	RoomIDs     []string `json:"roomIds,omitempty"`
}

// Helper functions to convert between internal types and message types

func CardDataFromDeck(c deck.Card) CardData {
	return CardData{
		Suit:  c.Suit.String(),
		Label: c.Label(),
		Value: c.Value(),
	}
}

func HandDataFromGame(h hand.Hand) []CardData {
	cards := make([]CardData, len(h))
	for i, c := range h {
		cards[i] = CardDataFromDeck(c)
	}
	return cards
}

func ScoresDataFromGame(s game.Scores) ScoresData {
	return ScoresData{You: s.You, Opponent: s.Opponent}
}

// MessageFromEvent converts a coordinator notification into its wire message.
func MessageFromEvent(event game.Event) (*Message, error) {
	switch e := event.(type) {
	case game.WaitingEvent:
		return NewMessage(MessageTypeWaiting, WaitingData{})

	case game.RoomCreatedEvent:
		return NewMessage(MessageTypeRoomCreated, RoomCreatedData{RoomID: string(e.RoomID)})

	case game.RoundStartEvent:
		return NewMessage(MessageTypeGameStart, GameStartData{
			RoomID:            string(e.RoomID),
			Round:             e.Round,
			YourHand:          HandDataFromGame(e.Hand),
			OpponentFirstCard: CardDataFromDeck(e.OpponentFirstCard),
			YourSum:           e.Total,
			Scores:            ScoresDataFromGame(e.Scores),
			WinThreshold:      e.WinThreshold,
		})

	case game.HandUpdateEvent:
		return NewMessage(MessageTypeUpdateHand, UpdateHandData{
			RoomID:   string(e.RoomID),
			YourHand: HandDataFromGame(e.Hand),
			YourSum:  e.Total,
			Busted:   e.Busted,
		})

	case game.OpponentUpdateEvent:
		return NewMessage(MessageTypeOpponentUpdate, OpponentUpdateData{
			RoomID:             string(e.RoomID),
			OpponentHandLength: e.HandLength,
			OpponentBusted:     e.Busted,
		})

	case game.OpponentStandEvent:
		return NewMessage(MessageTypeOpponentStand, OpponentStandData{RoomID: string(e.RoomID)})

	case game.RoundOverEvent:
		return NewMessage(MessageTypeRoundOver, RoundOverData{
			RoomID:         string(e.RoomID),
			Round:          e.Round,
			YourHand:       HandDataFromGame(e.Hand),
			OpponentHand:   HandDataFromGame(e.OpponentHand),
			YourSum:        e.Total,
			OpponentSum:    e.OpponentTotal,
			Winner:         string(e.Winner),
			OpponentBusted: e.OpponentBusted,
			Scores:         ScoresDataFromGame(e.Scores),
			MatchOver:      e.MatchOver,
			MatchWinner:    string(e.MatchWinner),
		})

	case game.RematchWaitingEvent:
		return NewMessage(MessageTypePlayAgainWait, PlayAgainWaitData{RoomID: string(e.RoomID)})

	case game.OpponentLeftEvent:
		return NewMessage(MessageTypeOpponentDisconnected, OpponentDisconnectedData{RoomID: string(e.RoomID)})

	case game.RoomClosedEvent:
		return NewMessage(MessageTypeRoomClosed, RoomClosedData{RoomID: string(e.RoomID), Reason: e.Reason})

	default:
		return nil, fmt.Errorf("unsupported event %T", event)
	}
}

// ErrorCode maps a coordinator error to the code sent to clients.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrRoomNotFound):
		return ErrorCodeRoomNotFound
	case errors.Is(err, game.ErrRoomFull):
		return ErrorCodeRoomFull
	case errors.Is(err, game.ErrNotParticipant):
		return ErrorCodeNotParticipant
	case errors.Is(err, game.ErrMatchOver):
		return ErrorCodeMatchOver
	case errors.Is(err, game.ErrMatchNotOver):
		return ErrorCodeMatchNotOver
	case errors.Is(err, game.ErrIllegalAction):
		return ErrorCodeIllegalAction
	case errors.Is(err, game.ErrAlreadySeated):
		return ErrorCodeAlreadySeated
	case errors.Is(err, game.ErrCoordinatorClosed):
		return ErrorCodeShuttingDown
	default:
		return ErrorCodeInternal
	}
}
