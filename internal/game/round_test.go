package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tayfyvz/BlackJack/internal/deck"
	"github.com/tayfyvz/BlackJack/internal/randutil"
)

func dealStacked(t *testing.T, cards string) *Round {
	t.Helper()
	r, err := DealRound(1, deck.FromCards(deck.MustParseCards(cards)))
	require.NoError(t, err)
	return r
}

func TestDealRoundOrder(t *testing.T) {
	t.Parallel()

	r := dealStacked(t, "As Kh 9s 9h 2c")

	assert.Equal(t, PhaseInProgress, r.Phase())
	assert.Equal(t, 1, r.Number())
	assert.Equal(t, "A♠ K♥", r.Hand(SeatFirst).String())
	assert.Equal(t, "9♠ 9♥", r.Hand(SeatSecond).String())
	assert.Equal(t, deck.MustParseCards("As")[0], r.FirstCard(SeatFirst))
	assert.Equal(t, 21, r.Total(SeatFirst))
	assert.Equal(t, 18, r.Total(SeatSecond))
	assert.False(t, r.Standing(SeatFirst))
	assert.False(t, r.Standing(SeatSecond))
}

func TestDealRoundShortDeck(t *testing.T) {
	t.Parallel()

	_, err := DealRound(1, deck.FromCards(deck.MustParseCards("As Kh 9s")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, deck.ErrDeckExhausted))
}

func TestRoundHandIsCopy(t *testing.T) {
	t.Parallel()

	r := dealStacked(t, "As Kh 9s 9h")
	h := r.Hand(SeatFirst)
	h[0] = deck.MustParseCards("2c")[0]

	assert.Equal(t, "A♠ K♥", r.Hand(SeatFirst).String())
}

func TestRoundHit(t *testing.T) {
	t.Parallel()

	r := dealStacked(t, "5s 6h 9s 9h 4c")

	res, err := r.Hit(SeatFirst)
	require.NoError(t, err)
	assert.Equal(t, "4♣", res.Card.String())
	assert.Equal(t, 15, res.Total)
	assert.False(t, res.Busted)
	assert.Len(t, res.Hand, 3)
	assert.Equal(t, 3, r.HandLength(SeatFirst))
	assert.False(t, r.Standing(SeatFirst))
	assert.Equal(t, PhaseInProgress, r.Phase())
}

func TestRoundBustForcesStand(t *testing.T) {
	t.Parallel()

	r := dealStacked(t, "10s 10h 10d 9c 5s")

	res, err := r.Hit(SeatFirst)
	require.NoError(t, err)
	assert.Equal(t, 25, res.Total)
	assert.True(t, res.Busted)
	assert.True(t, r.Standing(SeatFirst))

	_, err = r.Hit(SeatFirst)
	assert.ErrorIs(t, err, ErrAlreadyStanding)
	assert.ErrorIs(t, err, ErrIllegalAction)
	assert.Equal(t, 3, r.HandLength(SeatFirst), "rejected hit must not draw")
}

func TestRoundStand(t *testing.T) {
	t.Parallel()

	r := dealStacked(t, "As Kh 9s 9h")

	require.NoError(t, r.Stand(SeatSecond))
	assert.ErrorIs(t, r.Stand(SeatSecond), ErrAlreadyStanding)
	assert.Equal(t, PhaseInProgress, r.Phase(), "one seat standing keeps the round open")

	_, err := r.Resolve()
	assert.ErrorIs(t, err, ErrRoundNotInProgress)

	require.NoError(t, r.Stand(SeatFirst))
	assert.Equal(t, PhaseResolving, r.Phase())

	_, err = r.Hit(SeatFirst)
	assert.ErrorIs(t, err, ErrRoundNotInProgress)
}

func TestRoundResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cards  string
		hits   []Seat
		winner Winner
		totals [2]int
		busted [2]bool
	}{
		{
			name:   "blackjack beats eighteen",
			cards:  "As Kh 9s 9h",
			winner: WinnerFirst,
			totals: [2]int{21, 18},
		},
		{
			name:   "bust loses to nineteen",
			cards:  "10s 10h 10d 9c 5s",
			hits:   []Seat{SeatFirst},
			winner: WinnerSecond,
			totals: [2]int{25, 19},
			busted: [2]bool{true, false},
		},
		{
			name:   "equal totals draw",
			cards:  "10s Qh Kd Jc",
			winner: WinnerDraw,
			totals: [2]int{20, 20},
		},
		{
			name:   "both bust draw",
			cards:  "10s 10h 10d 10c 5s 9h",
			hits:   []Seat{SeatFirst, SeatSecond},
			winner: WinnerDraw,
			totals: [2]int{25, 29},
			busted: [2]bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := dealStacked(t, tt.cards)
			for _, seat := range tt.hits {
				_, err := r.Hit(seat)
				require.NoError(t, err)
			}
			for _, seat := range Seats {
				if !r.Standing(seat) {
					require.NoError(t, r.Stand(seat))
				}
			}

			result, err := r.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.winner, result.Winner)
			assert.Equal(t, tt.totals, result.Totals)
			for _, seat := range Seats {
				assert.Equal(t, tt.busted[seat], result.Busted(seat), "seat %s", seat)
			}
			assert.Equal(t, PhaseResolved, r.Phase())

			stored, ok := r.Result()
			require.True(t, ok)
			assert.Equal(t, result, stored)
		})
	}
}

func TestDetermineWinner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		first, second int
		want          Winner
	}{
		{21, 18, WinnerFirst},
		{18, 21, WinnerSecond},
		{20, 20, WinnerDraw},
		{22, 19, WinnerSecond},
		{19, 22, WinnerFirst},
		{22, 25, WinnerDraw},
		{22, 22, WinnerDraw},
		{4, 3, WinnerFirst},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetermineWinner(tt.first, tt.second), "%d vs %d", tt.first, tt.second)
	}
}

// Swapping seats must swap the outcome.
func TestDetermineWinnerMirrored(t *testing.T) {
	t.Parallel()

	mirror := map[Winner]Winner{
		WinnerFirst:  WinnerSecond,
		WinnerSecond: WinnerFirst,
		WinnerDraw:   WinnerDraw,
	}
	for a := 4; a <= 30; a++ {
		for b := 4; b <= 30; b++ {
			assert.Equal(t, mirror[DetermineWinner(a, b)], DetermineWinner(b, a), "%d vs %d", a, b)
		}
	}
}

func TestWinnerRelativeTo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, OutcomeYou, WinnerFirst.RelativeTo(SeatFirst))
	assert.Equal(t, OutcomeOpponent, WinnerFirst.RelativeTo(SeatSecond))
	assert.Equal(t, OutcomeOpponent, WinnerSecond.RelativeTo(SeatFirst))
	assert.Equal(t, OutcomeYou, WinnerSecond.RelativeTo(SeatSecond))
	assert.Equal(t, OutcomeDraw, WinnerDraw.RelativeTo(SeatFirst))
	assert.Equal(t, OutcomeDraw, WinnerDraw.RelativeTo(SeatSecond))
}

// Random play never leaves the four card deal or produces duplicate cards.
func TestRoundRandomPlay(t *testing.T) {
	t.Parallel()

	rng := randutil.New(7)
	for i := 0; i < 200; i++ {
		r, err := DealRound(i+1, deck.New(rng))
		require.NoError(t, err)

		for r.Phase() == PhaseInProgress {
			seat := Seats[rng.IntN(2)]
			if r.Standing(seat) {
				continue
			}
			if rng.IntN(2) == 0 {
				_, err = r.Hit(seat)
			} else {
				err = r.Stand(seat)
			}
			require.NoError(t, err)
		}

		result, err := r.Resolve()
		require.NoError(t, err)

		seen := make(map[deck.Card]bool)
		for _, seat := range Seats {
			assert.GreaterOrEqual(t, len(result.Hands[seat]), 2)
			for _, c := range result.Hands[seat] {
				assert.False(t, seen[c], "duplicate card %s", c)
				seen[c] = true
			}
		}
		assert.Equal(t, DetermineWinner(result.Totals[0], result.Totals[1]), result.Winner)
	}
}
