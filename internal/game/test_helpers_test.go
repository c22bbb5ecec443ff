package game

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/tayfyvz/BlackJack/internal/deck"
	"github.com/tayfyvz/BlackJack/internal/randutil"
)

const (
	alice ParticipantID = "alice"
	bob   ParticipantID = "bob"
	carol ParticipantID = "carol"
)

var aliceBob = PairRoomID(alice, bob)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// recorder is a Notifier that keeps every event per participant.
type recorder struct {
	mu     sync.Mutex
	events map[ParticipantID][]Event
}

func newRecorder() *recorder {
	return &recorder{events: make(map[ParticipantID][]Event)}
}

func (r *recorder) Notify(to ParticipantID, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[to] = append(r.events[to], event)
}

func (r *recorder) all(p ParticipantID) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events[p]))
	copy(out, r.events[p])
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[ParticipantID][]Event)
}

// eventsOf returns every event of type T sent to p, in order.
func eventsOf[T Event](r *recorder, p ParticipantID) []T {
	var out []T
	for _, e := range r.all(p) {
		if typed, ok := e.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

// lastOf returns the most recent event of type T sent to p.
func lastOf[T Event](t *testing.T, r *recorder, p ParticipantID) T {
	t.Helper()
	events := eventsOf[T](r, p)
	require.NotEmpty(t, events, "no %T sent to %s", *new(T), p)
	return events[len(events)-1]
}

// stackedDecks deals the given card lists as successive round decks, then
// falls back to seeded shuffles.
func stackedDecks(rounds ...string) func() *deck.Deck {
	var mu sync.Mutex
	next := 0
	return func() *deck.Deck {
		mu.Lock()
		defer mu.Unlock()
		defer func() { next++ }()
		if next < len(rounds) {
			return deck.FromCards(deck.MustParseCards(rounds[next]))
		}
		return deck.New(randutil.New(int64(next)))
	}
}

type harness struct {
	*Coordinator
	clock  *quartz.Mock
	events *recorder
}

func newHarness(t *testing.T, rounds ...string) *harness {
	t.Helper()
	return newLoggedHarness(t, testLogger(), rounds...)
}

func newLoggedHarness(t *testing.T, logger *log.Logger, rounds ...string) *harness {
	t.Helper()
	clock := quartz.NewMock(t)
	events := newRecorder()
	c := NewCoordinator(logger, events,
		WithClock(clock),
		WithDeckSource(stackedDecks(rounds...)),
		WithRNG(randutil.New(1)),
		WithConfig(DefaultConfig()),
	)
	t.Cleanup(c.Shutdown)
	return &harness{Coordinator: c, clock: clock, events: events}
}

// pair connects alice then bob so alice holds the first seat.
func (h *harness) pair(t *testing.T) RoomID {
	t.Helper()
	id, err := h.Connect(alice)
	require.NoError(t, err)
	require.Empty(t, id)

	id, err = h.Connect(bob)
	require.NoError(t, err)
	require.Equal(t, aliceBob, id)
	return id
}

func (h *harness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	h.clock.Advance(d).MustWait(ctx)
}

func (h *harness) room(t *testing.T, id RoomID) *Room {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.registry.Room(id)
	require.True(t, ok, "room %s not registered", id)
	return room
}

func mustApply(t *testing.T) func(Status, error) {
	return func(status Status, err error) {
		t.Helper()
		require.NoError(t, err)
		require.Equal(t, StatusApplied, status)
	}
}
