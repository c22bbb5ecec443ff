package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tayfyvz/BlackJack/internal/server" // Reuse message types
)

// Client represents a WebSocket client for the Blackjack server
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once

	participantID string
	roomID        string

	// Event handlers
	eventHandlers  map[server.MessageType][]EventHandler
	globalHandlers []EventHandler
}

// EventHandler is a function that handles incoming events. Handlers run on
// the client's read goroutine in arrival order and must not block.
type EventHandler func(*server.Message)

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL:     serverURL,
		send:          make(chan *server.Message, 64),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		eventHandlers: make(map[server.MessageType][]EventHandler),
	}
}

// Connect establishes a WebSocket connection to the server. Private
// connections are not matchmade until FindMatch is called.
func (c *Client) Connect(ctx context.Context, private bool) error {
	c.logger.Info("Connecting to server", "url", c.serverURL, "private", private)

	wsURL, err := server.WebSocketURL(c.serverURL, private)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = c.conn.Close()
			c.connected = false
		}

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Done is closed once the client has disconnected.
func (c *Client) Done() <-chan struct{} {
	return c.ctx.Done()
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage sends a message to the server
func (c *Client) SendMessage(msg *server.Message) error {
	if err := c.ctx.Err(); err != nil {
		return err
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		c.cancel()
	}()

	for {
		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer ticker.Stop()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage tracks session state and dispatches to handlers
func (c *Client) handleMessage(msg *server.Message) {
	c.track(msg)

	c.mu.RLock()
	handlers := append([]EventHandler(nil), c.eventHandlers[msg.Type]...)
	handlers = append(handlers, c.globalHandlers...)
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
		return
	}
	for _, handler := range handlers {
		handler(msg)
	}
}

func (c *Client) track(msg *server.Message) {
	switch msg.Type {
	case server.MessageTypeWelcome:
		var data server.WelcomeData
		if err := msg.Decode(&data); err == nil {
			c.mu.Lock()
			c.participantID = data.ParticipantID
			c.mu.Unlock()
		}

	case server.MessageTypeGameStart, server.MessageTypeRoomCreated:
		var data server.RoomData
		if err := msg.Decode(&data); err == nil {
			c.SetRoomID(data.RoomID)
		}

	case server.MessageTypeOpponentDisconnected, server.MessageTypeRoomClosed:
		c.SetRoomID("")
	}
}

// AddEventHandler adds an event handler for a specific message type
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handler)
}

// AddGlobalHandler adds a handler that receives every message
func (c *Client) AddGlobalHandler(handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.globalHandlers = append(c.globalHandlers, handler)
}

func (c *Client) sendRoomAction(messageType server.MessageType, roomID string) error {
	msg, err := server.NewMessage(messageType, server.RoomData{RoomID: roomID})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Hit asks for another card in the current room
func (c *Client) Hit() error {
	return c.sendRoomAction(server.MessageTypeHit, c.GetRoomID())
}

// Stand ends this participant's turn in the current room
func (c *Client) Stand() error {
	return c.sendRoomAction(server.MessageTypeStand, c.GetRoomID())
}

// PlayAgain requests a rematch once the match is over
func (c *Client) PlayAgain() error {
	return c.sendRoomAction(server.MessageTypePlayAgain, c.GetRoomID())
}

// LeaveRoom leaves the current room without disconnecting
func (c *Client) LeaveRoom() error {
	roomID := c.GetRoomID()
	c.SetRoomID("")
	return c.sendRoomAction(server.MessageTypeLeaveRoom, roomID)
}

// FindMatch enters the matchmaking queue
func (c *Client) FindMatch() error {
	return c.sendRoomAction(server.MessageTypeFindMatch, "")
}

// CreateRoom opens a private room; the code arrives as room_created
func (c *Client) CreateRoom() error {
	return c.sendRoomAction(server.MessageTypeCreateRoom, "")
}

// JoinRoom joins a private room by code
func (c *Client) JoinRoom(code string) error {
	return c.sendRoomAction(server.MessageTypeJoinRoom, code)
}

// SetRoomID sets the current room ID
func (c *Client) SetRoomID(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoomID returns the current room ID
func (c *Client) GetRoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// GetParticipantID returns the id the server assigned on connect
func (c *Client) GetParticipantID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.participantID
}

// WaitForMessage waits for a specific message type with timeout
func (c *Client) WaitForMessage(messageType server.MessageType, timeout time.Duration) (*server.Message, error) {
	responseChan := make(chan *server.Message, 1)

	handler := func(msg *server.Message) {
		select {
		case responseChan <- msg:
		default:
		}
	}

	c.AddEventHandler(messageType, handler)

	select {
	case msg := <-responseChan:
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for %s", messageType)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}
