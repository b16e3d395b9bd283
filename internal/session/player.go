package session

import (
	"pickleball/internal/game/match"
	"pickleball/internal/network"
)

// Session states reported to the client with every response.
const (
	state_ANONYMOUS = "anonymous" // connected, not yet identified
	state_LOBBY     = "lobby"     // identified, not in a match
	state_PENDING   = "pending"   // challenge sent or received
	state_IN_MATCH  = "in-match"
)

// PlayerSession is one connected client and, after IDENTIFY, the player it speaks for.
type PlayerSession struct {
	Client *network.Client
	Player match.PlayerID
	Name   string
}

func NewPlayerSession(client *network.Client) *PlayerSession {
	return &PlayerSession{Client: client}
}

func (s *PlayerSession) identified() bool {
	return s.Player != ""
}

// stateOf derives the session state from the player's current match, if any.
func stateOf(snap match.Snapshot) string {
	switch snap.Status {
	case match.StatusPending:
		return state_PENDING
	case match.StatusActive:
		return state_IN_MATCH
	default:
		return state_LOBBY
	}
}
