// Package sessionid generates participant identifiers and private room codes.
package sessionid

import (
	"encoding/base32"
	"fmt"
	rand "math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of an encoded participant id (128 bits, 5 bits per character)
const Length = 26

// CodeLength is the length of a private room code
const CodeLength = 6

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator hands out identifiers. The random source only drives room codes;
// participant ids are UUIDv7 so they sort by connection time.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil rng uses the runtime's global source.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Participant returns a UUIDv7 encoded as a 26-character base32 string.
func (g *Generator) Participant() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the system entropy source does
		id = uuid.New()
	}
	return encoding.EncodeToString(id[:])
}

// RoomCode returns a short, human-shareable private room code.
func (g *Generator) RoomCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	intN := rand.IntN
	if g.rng != nil {
		intN = g.rng.IntN
	}

	var b strings.Builder
	b.Grow(CodeLength)
	for range CodeLength {
		b.WriteByte(alphabet[intN(len(alphabet))])
	}
	return b.String()
}

// Validate checks that id is a well formed participant id.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("participant ID must be exactly %d characters, got %d", Length, len(id))
	}

	raw, err := encoding.DecodeString(id)
	if err != nil {
		return fmt.Errorf("participant ID is not base32: %w", err)
	}
	if _, err := uuid.FromBytes(raw); err != nil {
		return fmt.Errorf("participant ID is not a UUID: %w", err)
	}
	return nil
}
