// Package game implements two-player Blackjack rooms: matchmaking, the
// per-round state machine and first-to-N match scoring.
//
// The main type is Coordinator, which owns the Registry of rooms and applies
// every participant action under a single lock. Outbound notifications are
// delivered through a Notifier and only ever carry what the recipient may see:
// an opponent's first card while a round is in progress, both hands once it
// resolves.
//
// # Basic Usage
//
//	c := game.NewCoordinator(logger, notifier)
//	c.Connect("alice")            // alice waits
//	room, _ := c.Connect("bob")  // paired, round 1 dealt
//	c.Hit("alice", room)
//	c.Stand("alice", room)
//	c.Stand("bob", room)          // round resolves, next deal is scheduled
//
// # Deterministic Testing
//
// Inject a seeded RNG, a mock clock and stacked decks:
//
//	clock := quartz.NewMock(t)
//	c := game.NewCoordinator(logger, notifier,
//	    game.WithClock(clock),
//	    game.WithRNG(randutil.New(42)),
//	    game.WithDeckSource(func() *deck.Deck { return deck.FromCards(cards) }),
//	)
package game
