// START OF FILE pickleball/internal/api/matches.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"pickleball/internal/events"
	"pickleball/internal/game/match"
)

const publishTimeout = 2 * time.Second

// ============================================================================
// DTOs
// ============================================================================

type ChallengeRequest struct {
	Challenger match.PlayerID `json:"challenger"`
	Opponent   match.PlayerID `json:"opponent"`
}

type PlayerRequest struct {
	Player match.PlayerID `json:"player"`
}

type ShotRequest struct {
	Player match.PlayerID `json:"player"`
	Shot   string         `json:"shot"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ============================================================================
// Routes
// ============================================================================

type handlers struct {
	registry  *match.Registry
	publisher events.Publisher
	log       hclog.Logger
}

// RegisterHandlers mounts the match API on mux. publisher may be nil.
func RegisterHandlers(mux *http.ServeMux, registry *match.Registry, publisher events.Publisher, logger hclog.Logger) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	h := &handlers{registry: registry, publisher: publisher, log: logger}

	mux.HandleFunc("POST /matches", h.handleChallenge)
	mux.HandleFunc("POST /matches/accept", h.handleAccept)
	mux.HandleFunc("POST /matches/shots", h.handleShot)
	mux.HandleFunc("POST /matches/forfeit", h.handleForfeit)
	mux.HandleFunc("GET /matches/{id}", h.handleGetMatch)
	mux.HandleFunc("GET /players/{player}/match", h.handlePlayerMatch)
	mux.HandleFunc("GET /rules", h.handleRules)
}

// ============================================================================
// Handlers
// ============================================================================

func (h *handlers) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Challenger, req.Opponent = trimPlayer(req.Challenger), trimPlayer(req.Opponent)
	if req.Challenger == "" || req.Opponent == "" {
		writeBadPayload(w, "'challenger' and 'opponent' are required")
		return
	}

	snap, err := h.registry.Challenge(req.Challenger, req.Opponent)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.publish(events.Challenged(snap))
	writeJSON(w, http.StatusCreated, snap)
}

func (h *handlers) handleAccept(w http.ResponseWriter, r *http.Request) {
	var req PlayerRequest
	if !decodePlayer(w, r, &req) {
		return
	}
	snap, err := h.registry.Accept(req.Player)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.publish(events.Accepted(snap))
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) handleShot(w http.ResponseWriter, r *http.Request) {
	var req ShotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Player = trimPlayer(req.Player)
	if req.Player == "" {
		writeBadPayload(w, "'player' is required")
		return
	}
	res, err := h.registry.SubmitShot(req.Player, req.Shot)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.publish(events.FromShot(res)...)
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) handleForfeit(w http.ResponseWriter, r *http.Request) {
	var req PlayerRequest
	if !decodePlayer(w, r, &req) {
		return
	}
	snap, err := h.registry.Forfeit(req.Player)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	h.publish(events.Forfeited(snap))
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	snap, err := h.registry.Get(r.PathValue("id"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) handlePlayerMatch(w http.ResponseWriter, r *http.Request) {
	snap, err := h.registry.Status(trimPlayer(match.PlayerID(r.PathValue("player"))))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *handlers) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.RuleSheet())
}

func (h *handlers) publish(evs ...events.Event) {
	if h.publisher == nil || len(evs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := events.PublishAll(ctx, h.publisher, evs...); err != nil {
		h.log.Warn("failed to publish events", "type", evs[0].Type, "match", evs[0].Match.ID, "error", err)
	}
}

// ============================================================================
// Helpers
// ============================================================================

// StatusFor maps engine errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, match.ErrSelfChallenge), errors.Is(err, match.ErrInvalidShot):
		return http.StatusBadRequest
	case errors.Is(err, match.ErrNoPendingChallenge), errors.Is(err, match.ErrNotInMatch),
		errors.Is(err, match.ErrUnknownMatch):
		return http.StatusNotFound
	case errors.Is(err, match.ErrAlreadyInMatch), errors.Is(err, match.ErrMatchNotActive),
		errors.Is(err, match.ErrNotYourTurn):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024))
	if err := dec.Decode(v); err != nil {
		writeBadPayload(w, err.Error())
		return false
	}
	return true
}

func decodePlayer(w http.ResponseWriter, r *http.Request, req *PlayerRequest) bool {
	if !decodeBody(w, r, req) {
		return false
	}
	req.Player = trimPlayer(req.Player)
	if req.Player == "" {
		writeBadPayload(w, "'player' is required")
		return false
	}
	return true
}

func trimPlayer(id match.PlayerID) match.PlayerID {
	return match.PlayerID(strings.TrimSpace(string(id)))
}

func writeBadPayload(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid payload: " + detail, Code: "BAD_PAYLOAD"})
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), ErrorResponse{Error: err.Error(), Code: match.Code(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// END OF FILE pickleball/internal/api/matches.go
