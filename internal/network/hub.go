//START OF FILE pickleball/internal/network/hub.go
package network

import (
	"context"

	"github.com/hashicorp/go-hclog"
)

// clientMessage pairs an inbound message with the client that sent it.
type clientMessage struct {
	client *Client
	msg    Message
}

// Hub keeps the set of live clients and feeds their events to the handler
// from a single goroutine.
type Hub struct {
	// Only touched by the Run goroutine.
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage
	done       chan struct{}

	handler EventHandler
	log     hclog.Logger
}

func NewHub(handler EventHandler, logger hclog.Logger) *Hub {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		done:       make(chan struct{}),
		handler:    handler,
		log:        logger,
	}
}

// Run serves hub events until ctx is cancelled, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			h.drop(client)

		case cm := <-h.incoming:
			if h.clients[cm.client] {
				h.handler.OnMessage(cm.client, cm.msg)
			}

		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// drop unregisters client. Closing send is what stops its writeLoop.
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	h.handler.OnDisconnect(client)
}

//END OF FILE pickleball/internal/network/hub.go
