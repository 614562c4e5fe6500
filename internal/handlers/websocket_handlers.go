package handlers

import (
	"log"
	"net/http"

	ws "captain-smart/internal/websocket"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin policy is handled by the CORS middleware.
		return true
	},
}

// HandleEngagementFeed upgrades the connection and attaches the client to the
// engagement hub. The feed is broadcast-only.
func (s *Server) HandleEngagementFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Failed to upgrade engagement connection: %v", err)
			return
		}

		client := &ws.Client{
			Hub:  s.Hub,
			Conn: conn,
			Send: make(chan []byte, 256),
		}
		s.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
