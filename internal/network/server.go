//START OF FILE pickleball/internal/network/server.go
package network

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"
)

// Server upgrades HTTP requests to websocket clients of one Hub.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      hclog.Logger
}

func NewServer(handler EventHandler, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Server{
		hub: NewHub(handler, logger),
		upgrader: websocket.Upgrader{
			// Identity and origin checks belong to the platform in front of us.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logger,
	}
}

// Start runs the hub in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
}

// ServeHTTP is the /ws endpoint.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := &Client{
		conn: conn,
		hub:  s.hub,
		send: make(chan Message, sendBuffer),
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	go client.writeLoop()
	go client.readLoop()
}

//END OF FILE pickleball/internal/network/server.go
