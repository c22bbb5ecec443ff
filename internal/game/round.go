package game

import (
	"fmt"

	"github.com/tayfyvz/BlackJack/internal/deck"
	"github.com/tayfyvz/BlackJack/internal/hand"
)

// Seat is a participant's fixed position in a room: 0 for the first
// participant paired, 1 for the second.
type Seat int

const (
	SeatFirst Seat = iota
	SeatSecond
)

// Seats lists both seats in order.
var Seats = [2]Seat{SeatFirst, SeatSecond}

// Other returns the opposing seat.
func (s Seat) Other() Seat { return 1 - s }

func (s Seat) String() string {
	switch s {
	case SeatFirst:
		return "first"
	case SeatSecond:
		return "second"
	default:
		return fmt.Sprintf("seat(%d)", int(s))
	}
}

// Phase is the lifecycle state of a single round.
type Phase int

const (
	PhaseDealing Phase = iota
	PhaseInProgress
	PhaseResolving
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseDealing:
		return "dealing"
	case PhaseInProgress:
		return "in_progress"
	case PhaseResolving:
		return "resolving"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Winner is the outcome of a resolved round in absolute seat terms.
type Winner int

const (
	WinnerDraw Winner = iota
	WinnerFirst
	WinnerSecond
)

// Seat returns the winning seat, or false for a draw.
func (w Winner) Seat() (Seat, bool) {
	switch w {
	case WinnerFirst:
		return SeatFirst, true
	case WinnerSecond:
		return SeatSecond, true
	default:
		return 0, false
	}
}

// RelativeTo converts the winner into the tag seen by seat.
func (w Winner) RelativeTo(seat Seat) Outcome {
	winner, ok := w.Seat()
	switch {
	case !ok:
		return OutcomeDraw
	case winner == seat:
		return OutcomeYou
	default:
		return OutcomeOpponent
	}
}

func (w Winner) String() string {
	switch w {
	case WinnerFirst:
		return "first"
	case WinnerSecond:
		return "second"
	default:
		return "draw"
	}
}

func winnerFor(seat Seat) Winner {
	if seat == SeatFirst {
		return WinnerFirst
	}
	return WinnerSecond
}

// Outcome is a winner tag relative to the recipient of a notification.
type Outcome string

const (
	OutcomeYou      Outcome = "you"
	OutcomeOpponent Outcome = "opponent"
	OutcomeDraw     Outcome = "draw"
)

// DetermineWinner compares two final totals. Both busted is a draw, equal
// totals are a draw, a single bust loses, otherwise the higher total wins.
func DetermineWinner(first, second int) Winner {
	firstBust, secondBust := first > hand.Limit, second > hand.Limit
	switch {
	case firstBust && secondBust:
		return WinnerDraw
	case first == second:
		return WinnerDraw
	case firstBust:
		return WinnerSecond
	case secondBust:
		return WinnerFirst
	case first > second:
		return WinnerFirst
	default:
		return WinnerSecond
	}
}

// HitResult is what the acting participant learns after a hit.
type HitResult struct {
	Card   deck.Card
	Hand   hand.Hand
	Total  int
	Busted bool
}

// RoundResult is the full reveal of a resolved round.
type RoundResult struct {
	Number int
	Hands  [2]hand.Hand
	Totals [2]int
	Winner Winner
}

// Busted reports whether seat's final total exceeded the limit.
func (r RoundResult) Busted(seat Seat) bool {
	return r.Totals[seat] > hand.Limit
}

// Round is one deal-to-resolution cycle. It owns the deck for its lifetime
// and is discarded once resolved. Both participants act independently; a
// round leaves PhaseInProgress only when both are standing.
type Round struct {
	number   int
	phase    Phase
	deck     *deck.Deck
	hands    [2]hand.Hand
	standing [2]bool
	result   *RoundResult
}

// DealRound deals two cards to each seat from d, first seat first.
func DealRound(number int, d *deck.Deck) (*Round, error) {
	r := &Round{number: number, phase: PhaseDealing, deck: d}

	for _, seat := range Seats {
		cards, err := d.Draw(2)
		if err != nil {
			return nil, fmt.Errorf("deal round %d: %w", number, err)
		}
		r.hands[seat] = hand.New(cards...)
	}

	r.phase = PhaseInProgress
	return r, nil
}

// Number returns the round's position within its room, starting at 1.
func (r *Round) Number() int { return r.number }

// Phase returns the current phase.
func (r *Round) Phase() Phase { return r.phase }

// Hand returns a copy of seat's hand.
func (r *Round) Hand(seat Seat) hand.Hand { return r.hands[seat].Clone() }

// HandLength returns the number of cards seat holds.
func (r *Round) HandLength(seat Seat) int { return len(r.hands[seat]) }

// FirstCard returns seat's first card, the only one the opponent may see
// before the round resolves.
func (r *Round) FirstCard(seat Seat) deck.Card { return r.hands[seat][0] }

// Total returns seat's current total.
func (r *Round) Total(seat Seat) int { return r.hands[seat].Value() }

// Standing reports whether seat has stood or busted.
func (r *Round) Standing(seat Seat) bool { return r.standing[seat] }

// Result returns the resolved result, if any.
func (r *Round) Result() (RoundResult, bool) {
	if r.result == nil {
		return RoundResult{}, false
	}
	return *r.result, true
}

// Hit draws one card for seat. A bust forces the seat to stand.
func (r *Round) Hit(seat Seat) (HitResult, error) {
	if r.phase != PhaseInProgress {
		return HitResult{}, ErrRoundNotInProgress
	}
	if r.standing[seat] {
		return HitResult{}, ErrAlreadyStanding
	}

	card, err := r.deck.DrawOne()
	if err != nil {
		return HitResult{}, fmt.Errorf("hit in round %d: %w", r.number, err)
	}
	r.hands[seat] = append(r.hands[seat], card)

	total := r.hands[seat].Value()
	busted := total > hand.Limit
	if busted {
		r.standing[seat] = true
	}
	r.advance()

	return HitResult{
		Card:   card,
		Hand:   r.hands[seat].Clone(),
		Total:  total,
		Busted: busted,
	}, nil
}

// Stand marks seat as done for the round. Standing twice returns
// ErrAlreadyStanding, which the coordinator reports as a no-op without
// notifying the opponent again.
func (r *Round) Stand(seat Seat) error {
	if r.phase != PhaseInProgress {
		return ErrRoundNotInProgress
	}
	if r.standing[seat] {
		return ErrAlreadyStanding
	}

	r.standing[seat] = true
	r.advance()
	return nil
}

func (r *Round) advance() {
	if r.phase == PhaseInProgress && r.standing[SeatFirst] && r.standing[SeatSecond] {
		r.phase = PhaseResolving
	}
}

// Resolve computes the winner once both seats are standing.
func (r *Round) Resolve() (RoundResult, error) {
	if r.phase != PhaseResolving {
		return RoundResult{}, fmt.Errorf("resolve round %d in phase %s: %w", r.number, r.phase, ErrRoundNotInProgress)
	}

	result := RoundResult{Number: r.number}
	for _, seat := range Seats {
		result.Hands[seat] = r.hands[seat].Clone()
		result.Totals[seat] = r.hands[seat].Value()
	}
	result.Winner = DetermineWinner(result.Totals[SeatFirst], result.Totals[SeatSecond])

	r.result = &result
	r.phase = PhaseResolved
	return result, nil
}
