package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/tayfyvz/BlackJack/internal/deck"
	"github.com/tayfyvz/BlackJack/internal/sessionid"
)

// DefaultRedealDelay is how long a resolved round stays on screen before the
// next one is dealt.
const DefaultRedealDelay = 2 * time.Second

// Status is the explicit outcome of an inbound action.
type Status int

const (
	// StatusApplied means the action changed room state.
	StatusApplied Status = iota
	// StatusNoOp means the action was legal to send but had no effect, such as
	// hitting after standing or acting while the next round is being dealt.
	StatusNoOp
	// StatusRejected means the action was refused; the returned error says why.
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusApplied:
		return "applied"
	case StatusNoOp:
		return "noop"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// statusOf classifies an action error.
func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusApplied
	case errors.Is(err, ErrAlreadyStanding), errors.Is(err, ErrRoundNotInProgress):
		return StatusNoOp
	default:
		return StatusRejected
	}
}

// Config holds the match rules.
type Config struct {
	WinThreshold int
	RedealDelay  time.Duration
}

// DefaultConfig returns the standard rules: first to 10, two second pause between rounds.
func DefaultConfig() Config {
	return Config{
		WinThreshold: DefaultWinThreshold,
		RedealDelay:  DefaultRedealDelay,
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithConfig sets the match rules.
func WithConfig(cfg Config) Option {
	return func(c *Coordinator) { c.config = cfg }
}

// WithClock sets the clock used for inter-round delays.
func WithClock(clock quartz.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithRNG sets the random source used to shuffle every deck and pick room codes.
func WithRNG(rng *rand.Rand) Option {
	return func(c *Coordinator) { c.rng = rng }
}

// WithDeckSource overrides deck construction, e.g. to deal stacked decks in tests.
func WithDeckSource(fn func() *deck.Deck) Option {
	return func(c *Coordinator) { c.newDeck = fn }
}

// WithRoomCodes overrides private room code generation.
func WithRoomCodes(fn func() RoomID) Option {
	return func(c *Coordinator) { c.newCode = fn }
}

// Coordinator owns the registry and drives every room's rounds and matches.
// All mutations happen under one lock so hit, stand, resolve and redeal for a
// room never interleave. Events are delivered through the Notifier while the
// lock is held, which keeps per-participant delivery in mutation order.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	notifier Notifier
	clock    quartz.Clock
	rng      *rand.Rand
	newDeck  func() *deck.Deck
	newCode  func() RoomID
	config   Config
	logger   *log.Logger
	closed   bool
}

// NewCoordinator creates a coordinator that reports to notifier.
func NewCoordinator(logger *log.Logger, notifier Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry: NewRegistry(),
		notifier: notifier,
		clock:    quartz.NewReal(),
		config:   DefaultConfig(),
		logger:   logger.WithPrefix("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.config.WinThreshold <= 0 {
		c.config.WinThreshold = DefaultWinThreshold
	}
	if c.config.RedealDelay < 0 {
		c.config.RedealDelay = 0
	}
	if c.newDeck == nil {
		c.newDeck = func() *deck.Deck { return deck.New(c.rng) }
	}
	if c.newCode == nil {
		codes := sessionid.NewGenerator(c.rng)
		c.newCode = func() RoomID { return RoomID(codes.RoomCode()) }
	}
	return c
}

// Connect puts p in the matchmaking queue, pairing it with the waiting
// participant if there is one. The returned room id is empty while p waits.
func (c *Coordinator) Connect(p ParticipantID) (RoomID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrCoordinatorClosed
	}

	opponent, paired, err := c.registry.Enqueue(p)
	if err != nil {
		return "", err
	}
	if !paired {
		c.logger.Info("Participant waiting for opponent", "participant", p)
		c.notify(p, WaitingEvent{})
		return "", nil
	}

	room := newRoom(PairRoomID(opponent, p), opponent, p, c.config.WinThreshold)
	if err := c.seat(room); err != nil {
		return "", err
	}
	return room.id, nil
}

// CreateRoom opens a private room hosted by p and returns its code.
func (c *Coordinator) CreateRoom(p ParticipantID) (RoomID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", ErrCoordinatorClosed
	}

	id := c.newCode()
	for c.registry.Taken(id) {
		id = c.newCode()
	}
	if err := c.registry.Open(p, id); err != nil {
		return "", err
	}

	c.logger.Info("Private room opened", "room", id, "participant", p)
	c.notify(p, RoomCreatedEvent{RoomID: id})
	return id, nil
}

// JoinRoom seats p with the host of private room id and deals the first round.
func (c *Coordinator) JoinRoom(p ParticipantID, id RoomID) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return StatusRejected, ErrCoordinatorClosed
	}

	host, err := c.registry.Claim(p, id)
	if err != nil {
		c.logger.Debug("Join rejected", "room", id, "participant", p, "error", err)
		return StatusRejected, err
	}

	if err := c.seat(newRoom(id, host, p, c.config.WinThreshold)); err != nil {
		return StatusRejected, err
	}
	return StatusApplied, nil
}

// Hit draws a card for p in room id.
func (c *Coordinator) Hit(p ParticipantID, id RoomID) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, seat, err := c.lookup(p, id)
	if err != nil {
		return StatusRejected, err
	}
	if err := room.checkPlay(); err != nil {
		return statusOf(err), err
	}

	res, err := room.round.Hit(seat)
	if err != nil {
		if errors.Is(err, deck.ErrDeckExhausted) {
			c.abort(room, err)
			return StatusRejected, err
		}
		return statusOf(err), err
	}

	c.logger.Debug("Hit", "room", room.id, "participant", p, "card", res.Card, "total", res.Total, "soft", res.Hand.IsSoft(), "busted", res.Busted)

	opponent := room.Participant(seat.Other())
	c.notify(p, HandUpdateEvent{RoomID: room.id, Hand: res.Hand, Total: res.Total, Busted: res.Busted})
	c.notify(opponent, OpponentUpdateEvent{RoomID: room.id, HandLength: len(res.Hand), Busted: res.Busted})

	c.resolveIfDone(room)
	return StatusApplied, nil
}

// Stand ends p's turn in room id.
func (c *Coordinator) Stand(p ParticipantID, id RoomID) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, seat, err := c.lookup(p, id)
	if err != nil {
		return StatusRejected, err
	}
	if err := room.checkPlay(); err != nil {
		return statusOf(err), err
	}
	if err := room.round.Stand(seat); err != nil {
		return statusOf(err), err
	}

	c.logger.Debug("Stand", "room", room.id, "participant", p, "total", room.round.Total(seat))
	c.notify(room.Participant(seat.Other()), OpponentStandEvent{RoomID: room.id})

	c.resolveIfDone(room)
	return StatusApplied, nil
}

// PlayAgain records p's rematch request. Once both participants have asked,
// scores reset and a new round is dealt.
func (c *Coordinator) PlayAgain(p ParticipantID, id RoomID) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, seat, err := c.lookup(p, id)
	if err != nil {
		return StatusRejected, err
	}

	ready, err := room.match.RequestRematch(seat)
	if err != nil {
		return StatusRejected, err
	}
	if !ready {
		c.logger.Info("Rematch requested", "room", room.id, "participant", p)
		c.notify(p, RematchWaitingEvent{RoomID: room.id})
		return StatusApplied, nil
	}

	c.logger.Info("Rematch accepted, starting new match", "room", room.id)
	c.deal(room)
	return StatusApplied, nil
}

// Leave removes p from room id without dropping their connection. Hosts of
// an unclaimed private room and participants in the queue (empty id) are
// withdrawn instead.
func (c *Coordinator) Leave(p ParticipantID, id RoomID) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, seated := c.registry.Room(id); !seated && c.registry.Withdraw(p, id) {
		c.logger.Info("Participant withdrew", "room", id, "participant", p)
		return StatusApplied, nil
	}

	room, _, err := c.lookup(p, id)
	if err != nil {
		return StatusRejected, err
	}

	c.registry.Remove(room.id)
	c.depart(room, p)
	return StatusApplied, nil
}

// Disconnect forgets p entirely. If p was seated the room is torn down,
// including any pending redeal, and the opponent is told.
func (c *Coordinator) Disconnect(p ParticipantID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.registry.Depart(p)
	if !ok {
		c.logger.Debug("Participant left without a room", "participant", p)
		return
	}
	c.depart(room, p)
}

// Shutdown stops every pending redeal and closes all rooms.
func (c *Coordinator) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	for _, id := range c.registry.Stats().RoomIDs {
		room, _ := c.registry.Remove(id)
		c.close(room)
		for _, p := range room.participants {
			c.notify(p, RoomClosedEvent{RoomID: room.id, Reason: "server shutting down"})
		}
	}
	c.logger.Info("Coordinator shut down")
}

// Stats summarizes the registry.
func (c *Coordinator) Stats() RegistryStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Stats()
}

// RoomState returns the state of room id.
func (c *Coordinator) RoomState(id RoomID) (RoomState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room, ok := c.registry.Room(id)
	if !ok {
		return RoomStateClosed, false
	}
	return room.State(), true
}

func (c *Coordinator) lookup(p ParticipantID, id RoomID) (*Room, Seat, error) {
	room, ok := c.registry.Room(id)
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", id, ErrRoomNotFound)
	}
	seat, ok := room.SeatOf(p)
	if !ok {
		return nil, 0, fmt.Errorf("%s in %s: %w", p, id, ErrNotParticipant)
	}
	return room, seat, nil
}

// seat registers a freshly paired room and deals its first round.
func (c *Coordinator) seat(room *Room) error {
	if err := c.registry.Insert(room); err != nil {
		return err
	}
	c.logger.Info("Participants paired", "room", room.id, "first", room.participants[SeatFirst], "second", room.participants[SeatSecond])
	c.deal(room)
	return nil
}

// deal starts a new round with a fresh deck.
func (c *Coordinator) deal(room *Room) {
	room.rounds++
	round, err := DealRound(room.rounds, c.newDeck())
	if err != nil {
		c.abort(room, err)
		return
	}
	room.round = round

	c.logger.Debug("Round dealt", "room", room.id, "round", round.Number())
	for _, seat := range Seats {
		if round.Hand(seat).IsBlackjack() {
			c.logger.Debug("Natural blackjack", "room", room.id, "round", round.Number(), "participant", room.Participant(seat))
		}
		c.notify(room.Participant(seat), RoundStartEvent{
			RoomID:            room.id,
			Round:             round.Number(),
			Hand:              round.Hand(seat),
			OpponentFirstCard: round.FirstCard(seat.Other()),
			Total:             round.Total(seat),
			Scores:            room.relativeScores(seat),
			WinThreshold:      room.match.Threshold(),
		})
	}
}

// resolveIfDone resolves the round once both seats stand, updates the match
// and schedules the next deal unless the match ended.
func (c *Coordinator) resolveIfDone(room *Room) {
	if room.round.Phase() != PhaseResolving {
		return
	}

	result, err := room.round.Resolve()
	if err != nil {
		c.logger.Error("Failed to resolve round", "room", room.id, "error", err)
		return
	}
	matchOver := room.match.Record(result.Winner)

	c.logger.Info("Round resolved",
		"room", room.id,
		"round", result.Number,
		"totals", result.Totals,
		"winner", result.Winner,
		"scores", room.match.Scores(),
		"matchOver", matchOver)

	for _, seat := range Seats {
		other := seat.Other()
		event := RoundOverEvent{
			RoomID:         room.id,
			Round:          result.Number,
			Hand:           result.Hands[seat],
			OpponentHand:   result.Hands[other],
			Total:          result.Totals[seat],
			OpponentTotal:  result.Totals[other],
			Winner:         result.Winner.RelativeTo(seat),
			OpponentBusted: result.Busted(other),
			Scores:         room.relativeScores(seat),
			MatchOver:      matchOver,
		}
		if winner, ok := room.match.Winner(); ok {
			event.MatchWinner = winnerFor(winner).RelativeTo(seat)
		}
		c.notify(room.Participant(seat), event)
	}

	if !matchOver {
		c.scheduleRedeal(room)
	}
}

// scheduleRedeal arms the inter-round timer. The callback re-checks that the
// room is still registered and that its timer was not replaced or stopped.
func (c *Coordinator) scheduleRedeal(room *Room) {
	room.stopRedeal()

	var timer *quartz.Timer
	timer = c.clock.AfterFunc(c.config.RedealDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		current, ok := c.registry.Room(room.id)
		if !ok || current != room || room.closed || room.redeal != timer {
			c.logger.Debug("Skipping redeal for closed room", "room", room.id)
			return
		}
		room.redeal = nil
		c.deal(room)
	}, "redeal", string(room.id))
	room.redeal = timer
}

// depart tears down room after p left and tells the other participant.
func (c *Coordinator) depart(room *Room, p ParticipantID) {
	c.close(room)
	c.logger.Info("Participant departed, room closed", "room", room.id, "participant", p)

	for _, other := range room.participants {
		if other != p {
			c.notify(other, OpponentLeftEvent{RoomID: room.id})
		}
	}
}

// abort tears down a room that can no longer be played.
func (c *Coordinator) abort(room *Room, cause error) {
	c.logger.Error("Closing room after failure", "room", room.id, "error", cause)
	c.registry.Remove(room.id)
	c.close(room)
	for _, p := range room.participants {
		c.notify(p, RoomClosedEvent{RoomID: room.id, Reason: cause.Error()})
	}
}

func (c *Coordinator) close(room *Room) {
	room.closed = true
	if room.stopRedeal() {
		c.logger.Debug("Cancelled pending redeal", "room", room.id)
	}
}

func (c *Coordinator) notify(to ParticipantID, event Event) {
	if c.notifier == nil {
		return
	}
	c.notifier.Notify(to, event)
}
