package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tayfyvz/BlackJack/internal/game"
)

// Connection represents a WebSocket connection to a participant
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	participant game.ParticipantID
	autoQueue   bool
	ready       chan struct{}
	coordinator *game.Coordinator
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc

	mu     sync.RWMutex
	roomID game.RoomID
	closed bool

	closeOnce sync.Once
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound messages buffered per connection before it is dropped
	sendBufferSize = 64
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
)

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, participant game.ParticipantID, coordinator *game.Coordinator, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, sendBufferSize),
		participant: participant,
		autoQueue:   true,
		ready:       make(chan struct{}),
		coordinator: coordinator,
		logger:      logger.WithPrefix("conn").With("participant", participant),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the participant without blocking. A
// participant that cannot keep up is disconnected.
func (c *Connection) SendMessage(msg *Message) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		c.mu.RUnlock()
		return nil
	default:
	}
	c.mu.RUnlock()

	c.logger.Warn("Connection send buffer full, closing connection")
	_ = c.Close()
	return ErrSendBufferFull
}

// Participant returns the participant id assigned at upgrade.
func (c *Connection) Participant() game.ParticipantID {
	return c.participant
}

// SetRoom records the room the participant is currently in.
func (c *Connection) SetRoom(id game.RoomID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = id
}

// Room returns the participant's current room.
func (c *Connection) Room() game.RoomID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

type roomAction func(game.ParticipantID, game.RoomID) (game.Status, error)

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeHit:
		c.applyRoomAction(msg, c.coordinator.Hit)
	case MessageTypeStand:
		c.applyRoomAction(msg, c.coordinator.Stand)
	case MessageTypePlayAgain:
		c.applyRoomAction(msg, c.coordinator.PlayAgain)
	case MessageTypeJoinRoom:
		c.applyRoomAction(msg, c.coordinator.JoinRoom)
	case MessageTypeLeaveRoom:
		c.applyRoomAction(msg, c.leaveRoom)

	case MessageTypeFindMatch:
		if _, err := c.coordinator.Connect(c.participant); err != nil {
			c.sendGameError(err)
		}

	case MessageTypeCreateRoom:
		if _, err := c.coordinator.CreateRoom(c.participant); err != nil {
			c.sendGameError(err)
		}

	default:
		c.sendError(ErrorCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) applyRoomAction(msg *Message, action roomAction) {
	var data RoomData
	if err := msg.Decode(&data); err != nil {
		c.sendError(ErrorCodeInvalidMessage, "Failed to parse "+msg.Type.String()+" data")
		return
	}

	room := game.RoomID(data.RoomID)
	if room == "" {
		room = c.Room()
	}

	status, err := action(c.participant, room)
	switch status {
	case game.StatusApplied:
	case game.StatusNoOp:
		c.logger.Debug("Action had no effect", "type", msg.Type, "room", room, "reason", err)
	default:
		c.logger.Info("Action rejected", "type", msg.Type, "room", room, "error", err)
		c.sendGameError(err)
	}
}

func (c *Connection) leaveRoom(p game.ParticipantID, room game.RoomID) (game.Status, error) {
	status, err := c.coordinator.Leave(p, room)
	if status == game.StatusApplied {
		c.SetRoom("")
	}
	return status, err
}

func (c *Connection) sendGameError(err error) {
	c.sendError(ErrorCode(err), err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}
