// Package hand evaluates Blackjack hands.
package hand

import (
	"strings"

	"github.com/tayfyvz/BlackJack/internal/deck"
)

// Limit is the highest total that is not a bust.
const Limit = 21

// Hand is the ordered sequence of cards dealt to one participant in a round.
type Hand []deck.Card

// New returns a hand holding a copy of cards.
func New(cards ...deck.Card) Hand {
	h := make(Hand, len(cards))
	copy(h, cards)
	return h
}

// Value returns the Blackjack total of cards. Aces start at 11 and are
// demoted to 1, one at a time, while the total exceeds Limit. The result may
// exceed Limit; interpreting that as a bust is up to the caller.
func Value(cards []deck.Card) int {
	total, _ := evaluate(cards)
	return total
}

func evaluate(cards []deck.Card) (total, softAces int) {
	for _, c := range cards {
		total += c.Value()
		if c.IsAce() {
			softAces++
		}
	}

	for total > Limit && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Value returns the hand total.
func (h Hand) Value() int {
	return Value(h)
}

// IsBust reports whether the hand total exceeds Limit.
func (h Hand) IsBust() bool {
	return h.Value() > Limit
}

// IsSoft reports whether at least one Ace is still counted as 11.
func (h Hand) IsSoft() bool {
	_, soft := evaluate(h)
	return soft > 0
}

// IsBlackjack reports a two-card 21.
func (h Hand) IsBlackjack() bool {
	return len(h) == 2 && h.Value() == Limit
}

// Clone returns an independent copy of the hand.
func (h Hand) Clone() Hand {
	return New(h...)
}

// String renders the hand as space separated cards.
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
