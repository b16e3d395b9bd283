package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pickleball/internal/events"
	"pickleball/internal/game/match"
)

func newTestAPI(t *testing.T) (*httptest.Server, *match.Registry, *events.Recorder) {
	t.Helper()
	registry := match.NewRegistry(nil, match.DefaultSettings(), nil)
	recorder := events.NewRecorder(64)
	mux := http.NewServeMux()
	RegisterHandlers(mux, registry, recorder, nil)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, registry, recorder
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestMatchFlow(t *testing.T) {
	ts, _, recorder := newTestAPI(t)

	var snap match.Snapshot
	status := do(t, http.MethodPost, ts.URL+"/matches", ChallengeRequest{Challenger: "alice", Opponent: "bob"}, &snap)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, match.StatusPending, snap.Status)
	id := snap.ID

	status = do(t, http.MethodPost, ts.URL+"/matches/accept", PlayerRequest{Player: "bob"}, &snap)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, match.StatusActive, snap.Status)
	assert.Equal(t, match.PlayerID("alice"), snap.CurrentTurn)

	var res match.ShotResult
	status = do(t, http.MethodPost, ts.URL+"/matches/shots", ShotRequest{Player: "alice", Shot: "drive"}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, match.ShotRecorded, res.Kind)

	status = do(t, http.MethodPost, ts.URL+"/matches/shots", ShotRequest{Player: "bob", Shot: "dink"}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, match.RoundResolved, res.Kind)
	require.NotNil(t, res.Round)
	assert.Equal(t, match.PlayerID("alice"), res.Round.Winner)

	status = do(t, http.MethodGet, ts.URL+"/players/bob/match", nil, &snap)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, match.Score{Challenger: 1, Opponent: 0}, snap.Score)

	status = do(t, http.MethodPost, ts.URL+"/matches/forfeit", PlayerRequest{Player: "alice"}, &snap)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, match.PlayerID("bob"), snap.Winner)

	// Finished matches stay reachable by id.
	status = do(t, http.MethodGet, ts.URL+"/matches/"+id, nil, &snap)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, match.StatusCompleted, snap.Status)

	types := make([]events.Type, 0)
	for _, ev := range recorder.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []events.Type{
		events.ChallengeCreated, events.ChallengeAccepted,
		events.ShotRecorded, events.RoundResolved, events.MatchForfeited,
	}, types)
}

func TestPlayerIDsAreTrimmed(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	var snap match.Snapshot
	status := do(t, http.MethodPost, ts.URL+"/matches", ChallengeRequest{Challenger: " alice ", Opponent: "\tbob "}, &snap)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, match.PlayerID("alice"), snap.Challenger)
	assert.Equal(t, match.PlayerID("bob"), snap.Opponent)

	status = do(t, http.MethodPost, ts.URL+"/matches/accept", PlayerRequest{Player: "bob"}, &snap)
	require.Equal(t, http.StatusOK, status)

	var res match.ShotResult
	status = do(t, http.MethodPost, ts.URL+"/matches/shots", ShotRequest{Player: " alice ", Shot: "drive"}, &res)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, match.ShotRecorded, res.Kind)

	var e ErrorResponse
	status = do(t, http.MethodPost, ts.URL+"/matches/shots", ShotRequest{Player: "   ", Shot: "drive"}, &e)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "BAD_PAYLOAD", e.Code)
}

func TestRoundOutcomeIsNamedInJSON(t *testing.T) {
	ts, registry, _ := newTestAPI(t)
	_, err := registry.Challenge("alice", "bob")
	require.NoError(t, err)
	_, err = registry.Accept("bob")
	require.NoError(t, err)
	_, err = registry.SubmitShot("alice", "drive")
	require.NoError(t, err)

	var raw struct {
		Round struct {
			Outcome string `json:"outcome"`
		} `json:"round"`
	}
	status := do(t, http.MethodPost, ts.URL+"/matches/shots", ShotRequest{Player: "bob", Shot: "dink"}, &raw)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a_wins", raw.Round.Outcome)
}

func TestErrorStatuses(t *testing.T) {
	ts, registry, _ := newTestAPI(t)
	_, err := registry.Challenge("alice", "bob")
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"self challenge", http.MethodPost, "/matches", ChallengeRequest{Challenger: "carol", Opponent: "carol"}, http.StatusBadRequest, "SELF_CHALLENGE"},
		{"missing opponent", http.MethodPost, "/matches", ChallengeRequest{Challenger: "carol"}, http.StatusBadRequest, "BAD_PAYLOAD"},
		{"already in match", http.MethodPost, "/matches", ChallengeRequest{Challenger: "carol", Opponent: "bob"}, http.StatusConflict, "ALREADY_IN_MATCH"},
		{"challenger accepts", http.MethodPost, "/matches/accept", PlayerRequest{Player: "alice"}, http.StatusNotFound, "NO_PENDING_CHALLENGE"},
		{"shot while pending", http.MethodPost, "/matches/shots", ShotRequest{Player: "alice", Shot: "drive"}, http.StatusConflict, "MATCH_NOT_ACTIVE"},
		{"shot outside match", http.MethodPost, "/matches/shots", ShotRequest{Player: "carol", Shot: "drive"}, http.StatusNotFound, "NOT_IN_MATCH"},
		{"unknown match", http.MethodGet, "/matches/nope", nil, http.StatusNotFound, "UNKNOWN_MATCH"},
		{"idle player", http.MethodGet, "/players/carol/match", nil, http.StatusNotFound, "NOT_IN_MATCH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out ErrorResponse
			status := do(t, tt.method, ts.URL+tt.path, tt.body, &out)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, out.Code, out.Error)
		})
	}
}

func TestTurnAndShotErrors(t *testing.T) {
	ts, registry, _ := newTestAPI(t)
	_, err := registry.Challenge("alice", "bob")
	require.NoError(t, err)
	_, err = registry.Accept("bob")
	require.NoError(t, err)

	var out ErrorResponse
	status := do(t, http.MethodPost, ts.URL+"/matches/shots", ShotRequest{Player: "bob", Shot: "lob"}, &out)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "NOT_YOUR_TURN", out.Code)

	status = do(t, http.MethodPost, ts.URL+"/matches/shots", ShotRequest{Player: "alice", Shot: "volley"}, &out)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_SHOT", out.Code)

	snap, err := registry.Status("alice")
	require.NoError(t, err)
	assert.Equal(t, match.PlayerID("alice"), snap.CurrentTurn, "rejected shots must not move the turn")
}

func TestMalformedBody(t *testing.T) {
	ts, _, _ := newTestAPI(t)
	resp, err := http.Post(ts.URL+"/matches", "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRules(t *testing.T) {
	ts, _, _ := newTestAPI(t)
	var sheet match.RuleSheet
	status := do(t, http.MethodGet, ts.URL+"/rules", nil, &sheet)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, sheet.Shots, 5)
	assert.Equal(t, []string{"drive", "smash"}, sheet.Beats["drop"])
	assert.Equal(t, 11, sheet.WinningScore)
	assert.Equal(t, 2, sheet.WinMargin)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusFor(fmt.Errorf("boom")))
	assert.Equal(t, http.StatusConflict, StatusFor(fmt.Errorf("wrapped: %w", match.ErrNotYourTurn)))
}
