package deck

import "testing"

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "blackjack",
			input: "As Kh",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
			},
		},
		{
			name:  "tens in both notations",
			input: "10d Tc",
			expected: []Card{
				{Suit: Diamonds, Rank: Ten},
				{Suit: Clubs, Rank: Ten},
			},
		},
		{
			name:  "suit symbols",
			input: "Q♠ 9♥ 2♦ J♣",
			expected: []Card{
				{Suit: Spades, Rank: Queen},
				{Suit: Hearts, Rank: Nine},
				{Suit: Diamonds, Rank: Two},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{
			name:  "case insensitive",
			input: "aS kH",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
			},
		},
		{
			name:    "invalid rank",
			input:   "Xs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "Ax",
			wantErr: true,
		},
		{
			name:    "rank one is not a card",
			input:   "1s",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("ParseCards() returned %d cards, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("card %d = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestCardValue(t *testing.T) {
	tests := []struct {
		rank  Rank
		label string
		value int
	}{
		{Ace, "A", 11},
		{Two, "2", 2},
		{Seven, "7", 7},
		{Ten, "10", 10},
		{Jack, "J", 10},
		{Queen, "Q", 10},
		{King, "K", 10},
	}

	for _, tt := range tests {
		c := NewCard(Hearts, tt.rank)
		if c.Label() != tt.label {
			t.Errorf("%v label = %q, want %q", tt.rank, c.Label(), tt.label)
		}
		if c.Value() != tt.value {
			t.Errorf("%v value = %d, want %d", tt.rank, c.Value(), tt.value)
		}
	}
}

func TestCardString(t *testing.T) {
	if got := NewCard(Spades, Ace).String(); got != "A♠" {
		t.Errorf("String() = %q, want A♠", got)
	}
	if got := NewCard(Diamonds, Ten).String(); got != "10♦" {
		t.Errorf("String() = %q, want 10♦", got)
	}
	if !NewCard(Hearts, Two).IsRed() || NewCard(Clubs, Two).IsRed() {
		t.Error("IsRed() mismatch")
	}
}
