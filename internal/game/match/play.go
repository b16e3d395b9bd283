package match

import (
	"time"

	"pickleball/internal/game/shot"
)

// ResultKind says how far a shot submission got.
type ResultKind string

const (
	ShotRecorded  ResultKind = "shot_recorded" // waiting for the opponent
	RoundResolved ResultKind = "round_resolved"
	GameOver      ResultKind = "game_over"
)

// RoundOutcome describes one resolved exchange.
type RoundOutcome struct {
	Number         int          `json:"number"`
	ChallengerShot shot.Shot    `json:"challengerShot"`
	OpponentShot   shot.Shot    `json:"opponentShot"`
	Outcome        shot.Outcome `json:"outcome"`
	Winner         PlayerID     `json:"winner,omitempty"` // empty on a tie
}

// WinningShot and LosingShot are empty on a tie.
func (o RoundOutcome) WinningShot() shot.Shot {
	switch o.Outcome {
	case shot.AWins:
		return o.ChallengerShot
	case shot.BWins:
		return o.OpponentShot
	}
	return ""
}

func (o RoundOutcome) LosingShot() shot.Shot {
	switch o.Outcome {
	case shot.AWins:
		return o.OpponentShot
	case shot.BWins:
		return o.ChallengerShot
	}
	return ""
}

// ShotResult is returned by SubmitShot. Round is nil for ShotRecorded.
type ShotResult struct {
	Kind   ResultKind    `json:"kind"`
	Player PlayerID      `json:"player"`
	Round  *RoundOutcome `json:"round,omitempty"`
	Match  Snapshot      `json:"match"`
}

// SubmitShot records player's shot for the current round. The turn passes
// to the other player on every accepted shot, whether or not it completes
// the round. Once both shots are in, the round is resolved in the same call.
func (r *Registry) SubmitShot(player PlayerID, raw string) (ShotResult, error) {
	r.mu.Lock()
	m := r.lookupLocked(player)
	if m == nil {
		r.mu.Unlock()
		return ShotResult{}, ErrNotInMatch
	}
	if m.status != StatusActive {
		r.mu.Unlock()
		return ShotResult{}, ErrMatchNotActive
	}
	seat := m.seatOf(player)
	if m.turn != seat {
		r.mu.Unlock()
		return ShotResult{}, ErrNotYourTurn
	}
	s, err := r.rules.Parse(raw)
	if err != nil {
		r.mu.Unlock()
		return ShotResult{}, err
	}

	m.pending[seat] = s
	m.turn = seat.other()

	res := ShotResult{Kind: ShotRecorded, Player: player}
	if m.bothShot() {
		outcome := r.resolveRoundLocked(m, r.now())
		res.Round = &outcome
		res.Kind = RoundResolved
		if m.status == StatusCompleted {
			res.Kind = GameOver
			r.unindexLocked(m)
		}
	}
	res.Match = m.snapshot()
	r.mu.Unlock()

	switch res.Kind {
	case ShotRecorded:
		r.log.Debug("shot recorded", "match", res.Match.ID, "player", player, "round", res.Match.Round)
	case RoundResolved:
		r.log.Debug("round resolved", "match", res.Match.ID, "round", res.Round.Number,
			"outcome", res.Round.Outcome, "score", res.Match.Score)
	case GameOver:
		r.log.Info("game over", "match", res.Match.ID, "winner", res.Match.Winner, "score", res.Match.Score)
	}
	return res, nil
}

// resolveRoundLocked scores the pending shots in seat order, advances the
// round and clears both slots.
func (r *Registry) resolveRoundLocked(m *Match, now time.Time) RoundOutcome {
	a, b := m.pending[SeatA], m.pending[SeatB]
	outcome := RoundOutcome{
		Number:         m.round,
		ChallengerShot: a,
		OpponentShot:   b,
		Outcome:        r.rules.Resolve(a, b),
	}
	switch outcome.Outcome {
	case shot.AWins:
		m.score[SeatA]++
		outcome.Winner = m.players[SeatA]
	case shot.BWins:
		m.score[SeatB]++
		outcome.Winner = m.players[SeatB]
	}
	m.round++
	m.pending = [2]shot.Shot{}

	if winner := r.winnerLocked(m); winner != noSeat {
		m.complete(winner, now)
	}
	return outcome
}

// winnerLocked checks both seats for score >= threshold with the required lead.
func (r *Registry) winnerLocked(m *Match) Seat {
	for _, seat := range []Seat{SeatA, SeatB} {
		own, other := m.score[seat], m.score[seat.other()]
		if own >= r.settings.WinningScore && own-other >= r.settings.WinMargin {
			return seat
		}
	}
	return noSeat
}
