package apperror

import "errors"

// Caller errors: bad input or an illegal state transition. They are
// reported verbatim and never retried.
var (
	ErrGameNotInProgress  = errors.New("game is not in progress")
	ErrNotYourTurn        = errors.New("it's not your turn")
	ErrOutOfBounds        = errors.New("coordinate is out of bounds")
	ErrCellOccupied       = errors.New("cell is already occupied")
	ErrNotAParticipant    = errors.New("player is not a participant of this session")
	ErrSessionNotJoinable = errors.New("session is not joinable")
	ErrSessionNotFound    = errors.New("session not found")
)

// Capacity errors: eligible for a bounded local retry before they are
// surfaced. Never fatal to the process.
var (
	ErrCodeSpaceExhausted = errors.New("join code space exhausted")
	ErrStorageConflict    = errors.New("session was modified concurrently")
)
