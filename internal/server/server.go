package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/tayfyvz/BlackJack/internal/game"
	"github.com/tayfyvz/BlackJack/internal/sessionid"
)

// Server represents the WebSocket server. It owns the connection set and
// implements game.Notifier so coordinator events reach the right socket.
type Server struct {
	config      *ServerConfig
	upgrader    websocket.Upgrader
	connections map[game.ParticipantID]*Connection
	register    chan *Connection
	unregister  chan *Connection
	coordinator *game.Coordinator
	ids         *sessionid.Generator
	clock       quartz.Clock
	router      chi.Router
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	stopOnce    sync.Once
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithConfig sets the server configuration
func WithConfig(cfg *ServerConfig) ServerOption {
	return func(s *Server) { s.config = cfg }
}

// WithClock sets the clock driving inter-round delays
func WithClock(clock quartz.Clock) ServerOption {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a new WebSocket server. rng seeds every shuffle and room
// code; nil uses the global source.
func NewServer(logger *log.Logger, rng *rand.Rand, opts ...ServerOption) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:      DefaultServerConfig(),
		connections: make(map[game.ParticipantID]*Connection),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		ids:         sessionid.NewGenerator(rng),
		clock:       quartz.NewReal(),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		CheckOrigin:     s.config.CheckOrigin(),
		ReadBufferSize:  s.config.Server.ReadBuffer,
		WriteBufferSize: s.config.Server.WriteBuffer,
	}
	s.coordinator = game.NewCoordinator(logger, s,
		game.WithConfig(s.config.MatchConfig()),
		game.WithClock(s.clock),
		game.WithRNG(rng),
	)
	s.router = s.routes()

	go s.run()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.GetServerAddress(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Stop closes every room and connection and stops the connection loop.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.coordinator.Shutdown()
		s.cancel()

		s.mu.Lock()
		conns := make([]*Connection, 0, len(s.connections))
		for _, conn := range s.connections {
			conns = append(conns, conn)
		}
		s.connections = make(map[game.ParticipantID]*Connection)
		s.mu.Unlock()

		for _, conn := range conns {
			_ = conn.Close()
		}
	})
}

// run handles connection lifecycle. The coordinator is never called while
// s.mu is held because it notifies back through Notify.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn.Participant()] = conn
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "participant", conn.Participant(), "total", total)

			welcome, _ := NewMessage(MessageTypeWelcome, WelcomeData{ParticipantID: string(conn.Participant())})
			_ = conn.SendMessage(welcome)

			if conn.autoQueue {
				if _, err := s.coordinator.Connect(conn.Participant()); err != nil {
					conn.sendGameError(err)
				}
			}
			close(conn.ready)

		case conn := <-s.unregister:
			s.mu.Lock()
			current, ok := s.connections[conn.Participant()]
			if ok && current == conn {
				delete(s.connections, conn.Participant())
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok && current == conn {
				s.coordinator.Disconnect(conn.Participant())
			}
			_ = conn.Close()
			s.logger.Info("Client disconnected", "participant", conn.Participant(), "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	participant := game.ParticipantID(s.ids.Participant())
	conn := NewConnection(ws, participant, s.coordinator, s.logger)
	conn.autoQueue = r.URL.Query().Get("mode") != "private"

	// Pumps start only once the participant is in the connection set.
	select {
	case s.register <- conn:
	case <-s.ctx.Done():
		_ = conn.Close()
		return
	}
	select {
	case <-conn.ready:
	case <-s.ctx.Done():
		_ = conn.Close()
		return
	}
	conn.Start()

	go func() {
		<-conn.Done()
		select {
		case s.unregister <- conn:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleStats reports registry and connection counts as JSON
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Stats()); err != nil {
		s.logger.Error("Failed to encode stats", "error", err)
	}
}

// Stats summarizes rooms, the waiting slot and live connections.
func (s *Server) Stats() StatsData {
	reg := s.coordinator.Stats()

	s.mu.RLock()
	connections := len(s.connections)
	s.mu.RUnlock()

	ids := make([]string, len(reg.RoomIDs))
	for i, id := range reg.RoomIDs {
		ids[i] = string(id)
	}
	return StatsData{
		Rooms:       reg.Rooms,
		OpenRooms:   reg.OpenRooms,
		Waiting:     reg.Waiting,
		Connections: connections,
		RoomIDs:     ids,
	}
}

// Notify delivers a coordinator event to the participant's connection. It is
// called with the coordinator lock held and never blocks.
func (s *Server) Notify(to game.ParticipantID, event game.Event) {
	msg, err := MessageFromEvent(event)
	if err != nil {
		s.logger.Error("Failed to encode event", "participant", to, "type", event.EventType(), "error", err)
		return
	}

	s.mu.RLock()
	conn, ok := s.connections[to]
	s.mu.RUnlock()
	if !ok {
		s.logger.Debug("Dropping event for absent participant", "participant", to, "type", event.EventType())
		return
	}

	switch e := event.(type) {
	case game.RoundStartEvent:
		conn.SetRoom(e.RoomID)
	case game.RoomCreatedEvent:
		conn.SetRoom(e.RoomID)
	case game.OpponentLeftEvent, game.RoomClosedEvent:
		conn.SetRoom("")
	}

	if err := conn.SendMessage(msg); err != nil {
		s.logger.Debug("Failed to deliver event", "participant", to, "type", event.EventType(), "error", err)
	}
}
