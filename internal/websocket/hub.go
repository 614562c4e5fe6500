package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// EngagementEvent is pushed to every connected client whenever an expose's
// counters change.
type EngagementEvent struct {
	ExposeID string `json:"exposeId"`
	Kind     string `json:"kind"` // view, upvote, downvote, share or comment
	Value    int    `json:"value"`
}

// Event kinds.
const (
	EventView     = "view"
	EventUpvote   = "upvote"
	EventDownvote = "downvote"
	EventShare    = "share"
	EventComment  = "comment"
)

// Hub maintains the set of active clients and broadcasts engagement events.
type Hub struct {
	// Registered clients.
	Clients map[*Client]bool

	// Outbound engagement events for all clients.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("Engagement hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			log.Printf("Engagement client registered. Total connections: %d", len(h.Clients))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				log.Printf("Engagement client unregistered. Remaining connections: %d", len(h.Clients))
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			for client := range h.Clients {
				select {
				case client.Send <- message:
				default:
					// Slow consumer; drop the event for this client.
					log.Printf("Engagement send buffer full, event dropped for one client")
				}
			}
			h.mu.RUnlock()
		}
	}
}

// PublishEngagement lets the actors push a counter change to all connected
// clients. Delivery is best effort; a busy hub drops the event.
func (h *Hub) PublishEngagement(exposeID, kind string, value int) {
	payload, err := json.Marshal(EngagementEvent{
		ExposeID: exposeID,
		Kind:     kind,
		Value:    value,
	})
	if err != nil {
		log.Printf("Failed to marshal engagement event: %v", err)
		return
	}

	select {
	case h.Broadcast <- payload:
	case <-time.After(time.Second):
		log.Printf("Timeout queuing engagement event for expose %s. Hub might be busy or blocked.", exposeID)
	}
}
