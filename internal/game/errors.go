package game

import "errors"

var (
	// ErrRoomNotFound is returned when an action names a room the registry does not hold.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when joining a room that already seats two participants.
	ErrRoomFull = errors.New("room is full")
	// ErrIllegalAction is the parent of every action that is not allowed in the
	// room's current state.
	ErrIllegalAction = errors.New("illegal action")

	ErrNotParticipant     = illegal("participant is not seated in this room")
	ErrAlreadyStanding    = illegal("participant is already standing")
	ErrRoundNotInProgress = illegal("round is not in progress")
	ErrMatchOver          = illegal("match is over, waiting for rematch")
	ErrMatchNotOver       = illegal("match is still in progress")

	// ErrAlreadySeated is returned when a participant who is waiting, hosting or
	// playing asks to be matched again.
	ErrAlreadySeated = errors.New("participant is already waiting or seated")
	// ErrCoordinatorClosed is returned after Shutdown.
	ErrCoordinatorClosed = errors.New("coordinator is shut down")
)

type illegalError struct {
	msg string
}

func illegal(msg string) error { return &illegalError{msg: msg} }

func (e *illegalError) Error() string { return e.msg }

func (e *illegalError) Unwrap() error { return ErrIllegalAction }
