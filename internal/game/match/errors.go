package match

import (
	"errors"

	"pickleball/internal/game/shot"
)

var (
	ErrSelfChallenge      = errors.New("cannot challenge yourself")
	ErrAlreadyInMatch     = errors.New("player already in a match")
	ErrNoPendingChallenge = errors.New("no pending challenge")
	ErrNotInMatch         = errors.New("player not in a match")
	ErrMatchNotActive     = errors.New("match not active")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrUnknownMatch       = errors.New("match not found")

	// ErrInvalidShot is shared with the rule table so errors.Is works on either.
	ErrInvalidShot = shot.ErrInvalidShot
)

// Code maps an engine error to a stable identifier for transports.
// Unknown errors map to "INTERNAL".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSelfChallenge):
		return "SELF_CHALLENGE"
	case errors.Is(err, ErrAlreadyInMatch):
		return "ALREADY_IN_MATCH"
	case errors.Is(err, ErrNoPendingChallenge):
		return "NO_PENDING_CHALLENGE"
	case errors.Is(err, ErrNotInMatch):
		return "NOT_IN_MATCH"
	case errors.Is(err, ErrMatchNotActive):
		return "MATCH_NOT_ACTIVE"
	case errors.Is(err, ErrNotYourTurn):
		return "NOT_YOUR_TURN"
	case errors.Is(err, ErrInvalidShot):
		return "INVALID_SHOT"
	case errors.Is(err, ErrUnknownMatch):
		return "UNKNOWN_MATCH"
	default:
		return "INTERNAL"
	}
}
