package session

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickleball/internal/events"
	"pickleball/internal/game/match"
	"pickleball/internal/network"
	"pickleball/internal/session/message"
)

type testEnv struct {
	url      string
	registry *match.Registry
	recorder *events.Recorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	registry := match.NewRegistry(nil, match.DefaultSettings(), nil)
	recorder := events.NewRecorder(64)

	ctx, cancel := context.WithCancel(context.Background())
	srv := network.NewServer(NewGameHandler(registry, recorder, nil), nil)
	srv.Start(ctx)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})

	return &testEnv{
		url:      "ws" + strings.TrimPrefix(ts.URL, "http"),
		registry: registry,
		recorder: recorder,
	}
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

// connect dials the server and consumes the welcome message.
func (e *testEnv) connect(t *testing.T) *testClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(e.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := &testClient{t: t, conn: conn}
	welcome := c.expectSuccess(message.TypeSuccess)
	assert.Equal(t, state_ANONYMOUS, welcome.State)
	return c
}

// identified connects and identifies as player.
func (e *testEnv) identified(t *testing.T, player string) *testClient {
	t.Helper()
	c := e.connect(t)
	c.send(cmd_IDENTIFY, map[string]string{"playerId": player, "name": strings.ToUpper(player)})
	c.expectSuccess(message.TypeSuccess)
	return c
}

func (c *testClient) send(msgType string, payload any) {
	c.t.Helper()
	msg, err := network.NewMessage(msgType, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) read() network.Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg network.Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return msg
}

func (c *testClient) expectSuccess(msgType string) message.SuccessClientPayload {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, msgType, msg.Type, "payload: %s", msg.Payload)
	var p message.SuccessClientPayload
	require.NoError(c.t, msg.Decode(&p))
	return p
}

func (c *testClient) expectError(code string) message.ErrorClientPayload {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, message.TypeError, msg.Type, "payload: %s", msg.Payload)
	var p message.ErrorClientPayload
	require.NoError(c.t, msg.Decode(&p))
	require.Equal(c.t, code, p.Code, p.Error)
	return p
}

func eventTypes(evs []events.Event) []events.Type {
	out := make([]events.Type, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

func TestCommandsRequireIdentify(t *testing.T) {
	env := newTestEnv(t)
	c := env.connect(t)

	c.send(cmd_STATUS, nil)
	c.expectError("NOT_IDENTIFIED")

	c.send("DANCE", nil)
	c.expectError("UNKNOWN_COMMAND")

	c.send(cmd_IDENTIFY, map[string]string{"playerId": "  "})
	c.expectError("BAD_PAYLOAD")

	c.send(cmd_IDENTIFY, map[string]string{"playerId": "alice"})
	hello := c.expectSuccess(message.TypeSuccess)
	assert.Equal(t, state_LOBBY, hello.State)

	c.send(cmd_IDENTIFY, map[string]string{"playerId": "bob"})
	c.expectError("ALREADY_IDENTIFIED")
}

func TestDuplicatePlayerRejected(t *testing.T) {
	env := newTestEnv(t)
	env.identified(t, "alice")

	other := env.connect(t)
	other.send(cmd_IDENTIFY, map[string]string{"playerId": "alice"})
	other.expectError("PLAYER_CONNECTED")
}

func TestFullRoundOverWebsocket(t *testing.T) {
	env := newTestEnv(t)
	alice := env.identified(t, "alice")
	bob := env.identified(t, "bob")

	alice.send(cmd_CHALLENGE, map[string]string{"opponent": "bob"})
	sent := alice.expectSuccess(message.TypeSuccess)
	assert.Equal(t, state_PENDING, sent.State)
	received := bob.expectSuccess(message.TypeChallengeReceived)
	assert.Contains(t, received.Message, "ALICE challenged you")

	bob.send(cmd_ACCEPT, nil)
	accepted := bob.expectSuccess(message.TypeSuccess)
	assert.Equal(t, state_IN_MATCH, accepted.State)
	started := alice.expectSuccess(message.TypeMatchStarted)
	assert.Contains(t, started.Message, "You serve first")

	alice.send(cmd_SHOT, map[string]string{"shot": "DRIVE"})
	confirm := alice.expectSuccess(message.TypeSuccess)
	assert.Contains(t, confirm.Message, "You played drive")

	// The opponent learns a shot was made but not which one.
	raw := bob.read()
	require.Equal(t, message.TypeOpponentShot, raw.Type)
	assert.NotContains(t, string(raw.Payload), "drive")

	bob.send(cmd_SHOT, map[string]string{"shot": "dink"})
	result := bob.expectSuccess(message.TypeSuccess)
	assert.Contains(t, result.Message, "ALICE's drive beats dink")
	pushed := alice.expectSuccess(message.TypeRoundResult)
	assert.Equal(t, result.Message, pushed.Message)

	snap, err := env.registry.Status("alice")
	require.NoError(t, err)
	assert.Equal(t, match.Score{Challenger: 1, Opponent: 0}, snap.Score)

	assert.Equal(t, []events.Type{
		events.ChallengeCreated,
		events.ChallengeAccepted,
		events.ShotRecorded,
		events.RoundResolved,
	}, eventTypes(env.recorder.Events()))
}

func TestEngineErrorsCarryCodes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.identified(t, "alice")
	env.identified(t, "bob")

	alice.send(cmd_SHOT, map[string]string{"shot": "drive"})
	alice.expectError("NOT_IN_MATCH")

	alice.send(cmd_CHALLENGE, map[string]string{"opponent": "alice"})
	alice.expectError("SELF_CHALLENGE")

	alice.send(cmd_ACCEPT, nil)
	alice.expectError("NO_PENDING_CHALLENGE")

	alice.send(cmd_CHALLENGE, json.RawMessage(`{"opponent": 7}`))
	alice.expectError("BAD_PAYLOAD")

	_, err := env.registry.Challenge("alice", "bob")
	require.NoError(t, err)
	_, err = env.registry.Accept("bob")
	require.NoError(t, err)

	alice.send(cmd_SHOT, map[string]string{"shot": "volley"})
	e := alice.expectError("INVALID_SHOT")
	assert.Contains(t, e.Error, "smash")
}

func TestForfeitNotifiesOpponent(t *testing.T) {
	env := newTestEnv(t)
	alice := env.identified(t, "alice")
	bob := env.identified(t, "bob")

	alice.send(cmd_CHALLENGE, map[string]string{"opponent": "bob"})
	alice.expectSuccess(message.TypeSuccess)
	bob.expectSuccess(message.TypeChallengeReceived)

	bob.send(cmd_FORFEIT, nil)
	done := bob.expectSuccess(message.TypeSuccess)
	assert.Equal(t, state_LOBBY, done.State)
	over := alice.expectSuccess(message.TypeGameOver)
	assert.Contains(t, over.Message, "BOB forfeited")

	alice.send(cmd_STATUS, nil)
	alice.expectError("NOT_IN_MATCH")
}

func TestRulesAndStatus(t *testing.T) {
	env := newTestEnv(t)
	alice := env.identified(t, "alice")
	env.identified(t, "bob")

	alice.send(cmd_RULES, nil)
	rules := alice.expectSuccess(message.TypeSuccess)
	assert.Equal(t, state_LOBBY, rules.State)
	assert.Contains(t, rules.Message, "smash  beats lob, dink")
	assert.Contains(t, rules.Message, "First to 11 points")

	_, err := env.registry.Challenge("bob", "alice")
	require.NoError(t, err)

	alice.send(cmd_STATUS, nil)
	status := alice.expectSuccess(message.TypeSuccess)
	assert.Equal(t, state_PENDING, status.State)
	assert.Contains(t, status.Message, "BOB challenged you")
}

func TestTruncateNameKeepsRunesWhole(t *testing.T) {
	long := strings.Repeat("é", maxNameLength+5)
	got := truncateName(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, maxNameLength, utf8.RuneCountInString(got))

	assert.Equal(t, "Zoë", truncateName("Zoë"))
	exact := strings.Repeat("ü", maxNameLength)
	assert.Equal(t, exact, truncateName(exact))
}
