package game

import (
	"fmt"

	"github.com/coder/quartz"
)

// ParticipantID identifies a connected player for the lifetime of their connection.
type ParticipantID string

// RoomID identifies a room in the registry.
type RoomID string

// PairRoomID derives the room identifier for a matchmade pair. Participant ids
// are unique per process so the derived id cannot collide.
func PairRoomID(first, second ParticipantID) RoomID {
	return RoomID(fmt.Sprintf("room_%s_%s", first, second))
}

// RoomState is the room-level view of where a match stands.
type RoomState int

const (
	// RoomStatePlaying means a round is in progress and accepts hit/stand.
	RoomStatePlaying RoomState = iota
	// RoomStateBetweenRounds means the last round resolved and the next deal is scheduled.
	RoomStateBetweenRounds
	// RoomStateMatchOver means a seat reached the threshold; only rematch requests apply.
	RoomStateMatchOver
	// RoomStateClosed means the room was torn down.
	RoomStateClosed
)

func (s RoomState) String() string {
	switch s {
	case RoomStatePlaying:
		return "playing"
	case RoomStateBetweenRounds:
		return "between_rounds"
	case RoomStateMatchOver:
		return "match_over"
	case RoomStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Room is the shared state for exactly two participants across the rounds of
// one or more matches. Rooms are only touched by the Coordinator while it holds
// its lock.
type Room struct {
	id           RoomID
	participants [2]ParticipantID
	match        *Match
	round        *Round
	rounds       int
	redeal       *quartz.Timer
	closed       bool
}

func newRoom(id RoomID, first, second ParticipantID, threshold int) *Room {
	return &Room{
		id:           id,
		participants: [2]ParticipantID{first, second},
		match:        NewMatch(threshold),
	}
}

// ID returns the room identifier.
func (r *Room) ID() RoomID { return r.id }

// Participant returns who sits in seat.
func (r *Room) Participant(seat Seat) ParticipantID { return r.participants[seat] }

// SeatOf returns p's seat.
func (r *Room) SeatOf(p ParticipantID) (Seat, bool) {
	for _, seat := range Seats {
		if r.participants[seat] == p {
			return seat, true
		}
	}
	return 0, false
}

// State derives the room state from the round phase and match status.
func (r *Room) State() RoomState {
	switch {
	case r.closed:
		return RoomStateClosed
	case r.match.Over():
		return RoomStateMatchOver
	case r.round == nil || r.round.Phase() == PhaseResolved:
		return RoomStateBetweenRounds
	default:
		return RoomStatePlaying
	}
}

// checkPlay validates that hit/stand may be applied in the current state.
func (r *Room) checkPlay() error {
	switch r.State() {
	case RoomStatePlaying:
		return nil
	case RoomStateMatchOver:
		return ErrMatchOver
	case RoomStateClosed:
		return ErrRoomNotFound
	default:
		return ErrRoundNotInProgress
	}
}

// relativeScores returns the scores as seen from seat.
func (r *Room) relativeScores(seat Seat) Scores {
	s := r.match.Scores()
	return Scores{You: s[seat], Opponent: s[seat.Other()]}
}

// stopRedeal cancels a pending redeal timer.
func (r *Room) stopRedeal() bool {
	if r.redeal == nil {
		return false
	}
	stopped := r.redeal.Stop()
	r.redeal = nil
	return stopped
}
