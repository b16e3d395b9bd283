// Package events turns engine results into lifecycle events and ships them
// to subscribers. Publishing always happens after the registry call returned.
package events

import (
	"context"
	"time"

	"pickleball/internal/game/match"
)

type Type string

const (
	ChallengeCreated  Type = "challenge_created"
	ChallengeAccepted Type = "challenge_accepted"
	ChallengeExpired  Type = "challenge_expired"
	ShotRecorded      Type = "shot_recorded"
	RoundResolved     Type = "round_resolved"
	GameOver          Type = "game_over"
	MatchForfeited    Type = "match_forfeited"
)

// Event is the wire form published to subscribers. Shots are only ever
// included once a round has been resolved.
type Event struct {
	Type  Type                `json:"type"`
	At    time.Time           `json:"at"`
	Actor match.PlayerID      `json:"actor,omitempty"`
	Match match.Snapshot      `json:"match"`
	Round *match.RoundOutcome `json:"round,omitempty"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

func newEvent(t Type, actor match.PlayerID, snap match.Snapshot) Event {
	return Event{Type: t, At: time.Now().UTC(), Actor: actor, Match: snap}
}

func Challenged(snap match.Snapshot) Event {
	return newEvent(ChallengeCreated, snap.Challenger, snap)
}

func Accepted(snap match.Snapshot) Event {
	return newEvent(ChallengeAccepted, snap.Opponent, snap)
}

func Forfeited(snap match.Snapshot) Event {
	return newEvent(MatchForfeited, snap.ForfeitedBy, snap)
}

func Expired(snap match.Snapshot) Event {
	return newEvent(ChallengeExpired, "", snap)
}

// FromShot expands a SubmitShot result. A finishing shot yields both the
// round result and the game over event.
func FromShot(res match.ShotResult) []Event {
	switch res.Kind {
	case match.ShotRecorded:
		return []Event{newEvent(ShotRecorded, res.Player, res.Match)}
	case match.RoundResolved, match.GameOver:
		round := newEvent(RoundResolved, res.Player, res.Match)
		round.Round = res.Round
		if res.Kind == match.RoundResolved {
			return []Event{round}
		}
		over := newEvent(GameOver, res.Player, res.Match)
		over.Round = res.Round
		return []Event{round, over}
	}
	return nil
}

// PublishAll sends evs in order and stops at the first failure.
func PublishAll(ctx context.Context, p Publisher, evs ...Event) error {
	for _, ev := range evs {
		if err := p.Publish(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
