// shot/shot.go
package shot

import (
	"errors"
	"fmt"
	"strings"
)

// Shot is a symbolic move a player submits each round.
type Shot string

const (
	Drive Shot = "drive"
	Lob   Shot = "lob"
	Dink  Shot = "dink"
	Drop  Shot = "drop"
	Smash Shot = "smash"
)

// ErrInvalidShot is returned for any value outside the active rule table.
var ErrInvalidShot = errors.New("invalid shot")

func (s Shot) String() string { return string(s) }

// normalize mirrors what players type in chat: "  Drive" is the same as "drive".
func normalize(raw string) Shot {
	return Shot(strings.ToLower(strings.TrimSpace(raw)))
}

// invalidShotError keeps the rejected value and the valid set for the caller's message.
func invalidShotError(raw string, valid []Shot) error {
	names := make([]string, len(valid))
	for i, s := range valid {
		names[i] = string(s)
	}
	return fmt.Errorf("%w: %q (valid shots: %s)", ErrInvalidShot, raw, strings.Join(names, ", "))
}
