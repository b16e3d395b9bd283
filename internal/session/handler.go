//START OF FILE pickleball/internal/session/handler.go
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/go-hclog"

	"pickleball/internal/events"
	"pickleball/internal/game/match"
	"pickleball/internal/network"
	"pickleball/internal/session/message"
)

const publishTimeout = 2 * time.Second

// CommandHandlerFunc handles one client command for an identified session.
type CommandHandlerFunc func(h *GameHandler, session *PlayerSession, payload json.RawMessage)

// GameHandler is the network.EventHandler that turns websocket commands into
// registry calls. Every method runs on the hub goroutine, so the session
// maps need no lock of their own.
type GameHandler struct {
	sessions map[*network.Client]*PlayerSession
	players  map[match.PlayerID]*PlayerSession

	registry  *match.Registry
	publisher events.Publisher
	log       hclog.Logger

	router map[string]CommandHandlerFunc
}

func NewGameHandler(registry *match.Registry, publisher events.Publisher, logger hclog.Logger) *GameHandler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	h := &GameHandler{
		sessions:  make(map[*network.Client]*PlayerSession),
		players:   make(map[match.PlayerID]*PlayerSession),
		registry:  registry,
		publisher: publisher,
		log:       logger,
		router:    make(map[string]CommandHandlerFunc),
	}
	h.registerMatchHandlers()
	return h
}

func (h *GameHandler) OnConnect(c *network.Client) {
	h.sessions[c] = NewPlayerSession(c)
	h.log.Debug("session created", "client", c.RemoteAddr(), "sessions", len(h.sessions))

	message.SendSuccess(c, state_ANONYMOUS,
		"Welcome to pickleball! Send IDENTIFY with your player id to begin.", nil)
}

// OnDisconnect drops the session only. A match in progress stays in the
// registry so the player can reconnect under the same id and carry on.
func (h *GameHandler) OnDisconnect(c *network.Client) {
	session, ok := h.sessions[c]
	if !ok {
		return
	}
	delete(h.sessions, c)
	if session.identified() && h.players[session.Player] == session {
		delete(h.players, session.Player)
	}
	h.log.Debug("session removed", "client", c.RemoteAddr(), "player", session.Player, "sessions", len(h.sessions))
}

func (h *GameHandler) OnMessage(c *network.Client, msg network.Message) {
	session, ok := h.sessions[c]
	if !ok {
		return
	}

	if msg.Type == cmd_IDENTIFY {
		handleIdentify(h, session, msg.Payload)
		return
	}

	handler, found := h.router[msg.Type]
	if !found {
		message.SendError(c, "UNKNOWN_COMMAND", "Unknown command: %s", msg.Type)
		return
	}
	if !session.identified() {
		message.SendError(c, "NOT_IDENTIFIED", "Send IDENTIFY before %s.", msg.Type)
		return
	}
	handler(h, session, msg.Payload)
}

// sessionOf returns the connected session of player, or nil.
func (h *GameHandler) sessionOf(player match.PlayerID) *PlayerSession {
	return h.players[player]
}

// nameOf prefers the display name a connected player chose.
func (h *GameHandler) nameOf(player match.PlayerID) string {
	if s := h.sessionOf(player); s != nil && s.Name != "" {
		return s.Name
	}
	return string(player)
}

// push notifies player if connected. Offline players simply miss the push.
func (h *GameHandler) push(player match.PlayerID, msgType, state, text string, data any) {
	if s := h.sessionOf(player); s != nil {
		message.SendPush(s.Client, msgType, state, text, data)
	}
}

// publish ships events after the registry call has returned.
func (h *GameHandler) publish(evs ...events.Event) {
	if h.publisher == nil || len(evs) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := events.PublishAll(ctx, h.publisher, evs...); err != nil {
		h.log.Warn("failed to publish events", "type", evs[0].Type, "match", evs[0].Match.ID, "error", err)
	}
}

// fail reports an engine or payload error to the caller.
func fail(session *PlayerSession, err error) {
	message.SendError(session.Client, match.Code(err), "%s", err.Error())
}

//END OF FILE pickleball/internal/session/handler.go
