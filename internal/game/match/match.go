// match/match.go
package match

import (
	"time"

	"pickleball/internal/game/shot"
)

// PlayerID is an opaque identifier supplied by the calling platform.
type PlayerID string

// Status is the lifecycle stage of a match.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Seat indexes the two fixed player slots. SeatA is always the challenger.
type Seat int

const (
	SeatA  Seat = 0
	SeatB  Seat = 1
	noSeat Seat = -1
)

func (s Seat) other() Seat { return 1 - s }

// Score is a fixed-shape view of both players' points.
type Score struct {
	Challenger int `json:"challenger"`
	Opponent   int `json:"opponent"`
}

// Match is the mutable state of one game. It is only touched while the
// owning Registry holds its lock; callers only ever see Snapshots.
type Match struct {
	id          string
	players     [2]PlayerID
	pending     [2]shot.Shot // "" means no shot this round
	score       [2]int
	turn        Seat
	round       int
	status      Status
	winner      Seat
	forfeitedBy Seat
	createdAt   time.Time
	acceptedAt  time.Time
	completedAt time.Time
}

func newMatch(id string, challenger, opponent PlayerID, now time.Time) *Match {
	return &Match{
		id:          id,
		players:     [2]PlayerID{challenger, opponent},
		turn:        SeatA,
		round:       1,
		status:      StatusPending,
		winner:      noSeat,
		forfeitedBy: noSeat,
		createdAt:   now,
	}
}

// seatOf returns the seat held by player, or noSeat.
func (m *Match) seatOf(player PlayerID) Seat {
	switch player {
	case m.players[SeatA]:
		return SeatA
	case m.players[SeatB]:
		return SeatB
	default:
		return noSeat
	}
}

func (m *Match) bothShot() bool {
	return m.pending[SeatA] != "" && m.pending[SeatB] != ""
}

func (m *Match) complete(winner Seat, now time.Time) {
	m.status = StatusCompleted
	m.winner = winner
	m.completedAt = now
}

// Snapshot is a read-only copy of a match. It shares no memory with the registry.
type Snapshot struct {
	ID          string    `json:"id"`
	Challenger  PlayerID  `json:"challenger"`
	Opponent    PlayerID  `json:"opponent"`
	Score       Score     `json:"score"`
	Round       int       `json:"round"`
	Status      Status    `json:"status"`
	CurrentTurn PlayerID  `json:"currentTurn,omitempty"` // only set while active
	Winner      PlayerID  `json:"winner,omitempty"`
	ForfeitedBy PlayerID  `json:"forfeitedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	AcceptedAt  time.Time `json:"acceptedAt,omitzero"`
	CompletedAt time.Time `json:"completedAt,omitzero"`
}

func (m *Match) snapshot() Snapshot {
	s := Snapshot{
		ID:          m.id,
		Challenger:  m.players[SeatA],
		Opponent:    m.players[SeatB],
		Score:       Score{Challenger: m.score[SeatA], Opponent: m.score[SeatB]},
		Round:       m.round,
		Status:      m.status,
		CreatedAt:   m.createdAt,
		AcceptedAt:  m.acceptedAt,
		CompletedAt: m.completedAt,
	}
	if m.status == StatusActive {
		s.CurrentTurn = m.players[m.turn]
	}
	if m.winner != noSeat {
		s.Winner = m.players[m.winner]
	}
	if m.forfeitedBy != noSeat {
		s.ForfeitedBy = m.players[m.forfeitedBy]
	}
	return s
}

// OpponentOf returns the other participant, or "" if player is not in the match.
func (s Snapshot) OpponentOf(player PlayerID) PlayerID {
	switch player {
	case s.Challenger:
		return s.Opponent
	case s.Opponent:
		return s.Challenger
	default:
		return ""
	}
}

// ScoreOf returns player's points, or 0 for a non-participant.
func (s Snapshot) ScoreOf(player PlayerID) int {
	switch player {
	case s.Challenger:
		return s.Score.Challenger
	case s.Opponent:
		return s.Score.Opponent
	default:
		return 0
	}
}
