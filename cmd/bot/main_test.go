package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickleball/internal/game/match"
	"pickleball/internal/network"
	"pickleball/internal/session/message"
)

func types(msgs []network.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Type
	}
	return out
}

func TestBotAcceptsChallenges(t *testing.T) {
	b := newBot("bot", func(int) int { return 0 })
	b.shots = []string{"lob"}

	out := b.react(message.CreatePush(message.TypeChallengeReceived, "pending", "alice challenged you",
		match.Snapshot{Challenger: "alice", Opponent: "bot", Status: match.StatusPending}))
	assert.Equal(t, []string{"ACCEPT"}, types(out))
}

func TestBotPlaysOnItsTurn(t *testing.T) {
	b := newBot("bot", func(n int) int { return n - 1 })

	rules := message.CreateSuccessResponse("lobby", "rules", match.RuleSheet{Shots: []string{"drive", "smash"}})
	assert.Empty(t, b.react(rules))
	assert.Equal(t, []string{"drive", "smash"}, b.shots)

	out := b.react(message.CreatePush(message.TypeOpponentShot, "in-match", "alice has played",
		match.Snapshot{CurrentTurn: "bot", Status: match.StatusActive}))
	require.Equal(t, []string{"SHOT"}, types(out))
	var p struct{ Shot string }
	require.NoError(t, out[0].Decode(&p))
	assert.Equal(t, "smash", p.Shot)

	// Results of its own shot hand the turn back, so nothing is sent.
	res := match.ShotResult{Kind: match.ShotRecorded, Match: match.Snapshot{CurrentTurn: "alice"}}
	assert.Empty(t, b.react(message.CreateSuccessResponse("in-match", "You played smash.", res)))
}

func TestBotAsksForRulesAfterIdentify(t *testing.T) {
	b := newBot("bot", func(int) int { return 0 })
	assert.Empty(t, b.react(message.CreateSuccessResponse("anonymous", "Welcome", nil)))
	assert.Equal(t, []string{"RULES"}, types(b.react(message.CreateSuccessResponse("lobby", "Hello", nil))))
	assert.Empty(t, b.react(message.CreateErrorResponse("NOT_YOUR_TURN", "not your turn")))
}
