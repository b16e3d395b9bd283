//START OF FILE pickleball/internal/session/handlers_match.go
package session

import (
	"encoding/json"
	"fmt"
	"strings"

	"pickleball/internal/events"
	"pickleball/internal/game/match"
	"pickleball/internal/session/message"
)

const (
	cmd_IDENTIFY  = "IDENTIFY"
	cmd_CHALLENGE = "CHALLENGE"
	cmd_ACCEPT    = "ACCEPT"
	cmd_SHOT      = "SHOT"
	cmd_FORFEIT   = "FORFEIT"
	cmd_STATUS    = "STATUS"
	cmd_RULES     = "RULES"
)

// maxNameLength counts runes, not bytes.
const maxNameLength = 32

func truncateName(name string) string {
	n := 0
	for i := range name {
		if n == maxNameLength {
			return name[:i]
		}
		n++
	}
	return name
}

func (h *GameHandler) registerMatchHandlers() {
	h.router[cmd_CHALLENGE] = handleChallenge
	h.router[cmd_ACCEPT] = handleAccept
	h.router[cmd_SHOT] = handleShot
	h.router[cmd_FORFEIT] = handleForfeit
	h.router[cmd_STATUS] = handleStatus
	h.router[cmd_RULES] = handleRules
}

// decode unmarshals payload into req, answering BAD_PAYLOAD on failure.
func decode(session *PlayerSession, payload json.RawMessage, req any) bool {
	if len(payload) == 0 {
		return true
	}
	if err := json.Unmarshal(payload, req); err != nil {
		message.SendError(session.Client, "BAD_PAYLOAD", "Invalid payload: %v", err)
		return false
	}
	return true
}

func handleIdentify(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		PlayerID string `json:"playerId"`
		Name     string `json:"name"`
	}
	if !decode(session, payload, &req) {
		return
	}
	id := match.PlayerID(strings.TrimSpace(req.PlayerID))
	if id == "" {
		message.SendError(session.Client, "BAD_PAYLOAD", "Invalid payload: 'playerId' is required.")
		return
	}
	if session.identified() && session.Player != id {
		message.SendError(session.Client, "ALREADY_IDENTIFIED", "This connection already speaks for %s.", session.Player)
		return
	}
	if other := h.players[id]; other != nil && other != session {
		message.SendError(session.Client, "PLAYER_CONNECTED", "Player %s is already connected.", id)
		return
	}

	name := truncateName(strings.TrimSpace(req.Name))
	session.Player = id
	session.Name = name
	h.players[id] = session
	h.log.Info("player identified", "player", id, "name", name, "client", session.Client.RemoteAddr())

	// Reconnecting players get their match state straight away.
	snap, err := h.registry.Status(id)
	if err != nil {
		message.SendSuccess(session.Client, state_LOBBY,
			fmt.Sprintf("Hello %s. Challenge someone with CHALLENGE.", h.nameOf(id)), nil)
		return
	}
	message.SendSuccess(session.Client, stateOf(snap),
		fmt.Sprintf("Welcome back %s. %s", h.nameOf(id), h.describe(id, snap)), snap)
}

func handleChallenge(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		Opponent string `json:"opponent"`
	}
	if !decode(session, payload, &req) {
		return
	}
	opponent := match.PlayerID(strings.TrimSpace(req.Opponent))
	if opponent == "" {
		message.SendError(session.Client, "BAD_PAYLOAD", "Invalid payload: 'opponent' is required.")
		return
	}

	snap, err := h.registry.Challenge(session.Player, opponent)
	if err != nil {
		fail(session, err)
		return
	}
	h.publish(events.Challenged(snap))

	message.SendSuccess(session.Client, state_PENDING,
		fmt.Sprintf("Challenge sent to %s. Waiting for them to accept.", h.nameOf(opponent)), snap)
	h.push(opponent, message.TypeChallengeReceived, state_PENDING,
		fmt.Sprintf("%s challenged you to pickleball! Send ACCEPT to play.", h.nameOf(session.Player)), snap)
}

func handleAccept(h *GameHandler, session *PlayerSession, _ json.RawMessage) {
	snap, err := h.registry.Accept(session.Player)
	if err != nil {
		fail(session, err)
		return
	}
	h.publish(events.Accepted(snap))

	first := h.nameOf(snap.CurrentTurn)
	message.SendSuccess(session.Client, state_IN_MATCH,
		fmt.Sprintf("Match on against %s. %s serves first.", h.nameOf(snap.Challenger), first), snap)
	h.push(snap.Challenger, message.TypeMatchStarted, state_IN_MATCH,
		fmt.Sprintf("%s accepted your challenge. You serve first.", h.nameOf(session.Player)), snap)
}

func handleShot(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		Shot string `json:"shot"`
	}
	if !decode(session, payload, &req) {
		return
	}

	res, err := h.registry.SubmitShot(session.Player, req.Shot)
	if err != nil {
		fail(session, err)
		return
	}
	h.publish(events.FromShot(res)...)

	opponent := res.Match.OpponentOf(session.Player)
	switch res.Kind {
	case match.ShotRecorded:
		// The shot itself stays private until the round resolves.
		message.SendSuccess(session.Client, state_IN_MATCH,
			fmt.Sprintf("You played %s. Waiting for %s.", strings.ToLower(strings.TrimSpace(req.Shot)), h.nameOf(opponent)), res)
		h.push(opponent, message.TypeOpponentShot, state_IN_MATCH,
			fmt.Sprintf("%s has played. Your shot!", h.nameOf(session.Player)), res.Match)

	case match.RoundResolved:
		text := h.roundText(*res.Round, res.Match)
		message.SendSuccess(session.Client, state_IN_MATCH, text, res)
		h.push(opponent, message.TypeRoundResult, state_IN_MATCH, text, res)

	case match.GameOver:
		text := fmt.Sprintf("%s %s wins the game!", h.roundText(*res.Round, res.Match), h.nameOf(res.Match.Winner))
		message.SendSuccess(session.Client, state_LOBBY, text, res)
		h.push(opponent, message.TypeGameOver, state_LOBBY, text, res)
	}
}

func handleForfeit(h *GameHandler, session *PlayerSession, _ json.RawMessage) {
	snap, err := h.registry.Forfeit(session.Player)
	if err != nil {
		fail(session, err)
		return
	}
	h.publish(events.Forfeited(snap))

	opponent := snap.OpponentOf(session.Player)
	message.SendSuccess(session.Client, state_LOBBY,
		fmt.Sprintf("You forfeited. %s wins.", h.nameOf(opponent)), snap)
	h.push(opponent, message.TypeGameOver, state_LOBBY,
		fmt.Sprintf("%s forfeited. You win!", h.nameOf(session.Player)), snap)
}

func handleStatus(h *GameHandler, session *PlayerSession, _ json.RawMessage) {
	snap, err := h.registry.Status(session.Player)
	if err != nil {
		fail(session, err)
		return
	}
	message.SendSuccess(session.Client, stateOf(snap), h.describe(session.Player, snap), snap)
}

func handleRules(h *GameHandler, session *PlayerSession, _ json.RawMessage) {
	sheet := h.registry.RuleSheet()
	state := state_LOBBY
	if snap, err := h.registry.Status(session.Player); err == nil {
		state = stateOf(snap)
	}
	message.SendSuccess(session.Client, state, sheet.String(), sheet)
}

// describe summarises snap from player's point of view.
func (h *GameHandler) describe(player match.PlayerID, snap match.Snapshot) string {
	opponent := h.nameOf(snap.OpponentOf(player))
	switch snap.Status {
	case match.StatusPending:
		if player == snap.Challenger {
			return fmt.Sprintf("Waiting for %s to accept your challenge.", opponent)
		}
		return fmt.Sprintf("%s challenged you. Send ACCEPT to play.", opponent)
	case match.StatusActive:
		turn := "your"
		if snap.CurrentTurn != player {
			turn = h.nameOf(snap.CurrentTurn) + "'s"
		}
		return fmt.Sprintf("Playing %s, round %d, %s. It is %s turn.", opponent, snap.Round, h.scoreText(snap), turn)
	default:
		return fmt.Sprintf("Match against %s is over, %s.", opponent, h.scoreText(snap))
	}
}

func (h *GameHandler) scoreText(snap match.Snapshot) string {
	return fmt.Sprintf("%s %d - %d %s",
		h.nameOf(snap.Challenger), snap.Score.Challenger, snap.Score.Opponent, h.nameOf(snap.Opponent))
}

func (h *GameHandler) roundText(round match.RoundOutcome, snap match.Snapshot) string {
	if round.Winner == "" {
		return fmt.Sprintf("Round %d: %s against %s is a let, no point. %s.",
			round.Number, round.ChallengerShot, round.OpponentShot, h.scoreText(snap))
	}
	return fmt.Sprintf("Round %d: %s's %s beats %s. Point to %s, %s.",
		round.Number, h.nameOf(round.Winner), round.WinningShot(), round.LosingShot(),
		h.nameOf(round.Winner), h.scoreText(snap))
}

//END OF FILE pickleball/internal/session/handlers_match.go
