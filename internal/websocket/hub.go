package websocket

import (
	"context"

	"github.com/rs/zerolog/log"
)

type delivery struct {
	userID  int64
	message []byte
}

// Hub maintains the set of active clients per user and pushes messages to them.
// All bookkeeping happens on the Run goroutine.
type Hub struct {
	// Connected clients grouped by user id.
	clients map[int64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	publish    chan delivery
	done       chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		publish:    make(chan delivery),
		done:       make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop and returns when ctx is done.
// Remaining clients have their Send channels closed.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for _, subs := range h.clients {
			for client := range subs {
				close(client.Send)
			}
		}
		h.clients = nil
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			log.Info().Int64("user_id", client.UserID).Str("client_id", client.ID).Msg("Client connected")
		case client := <-h.unregister:
			if h.remove(client) {
				log.Info().Int64("user_id", client.UserID).Str("client_id", client.ID).Msg("Client disconnected")
			}
		case d := <-h.publish:
			for client := range h.clients[d.userID] {
				select {
				case client.Send <- d.message:
				default:
					log.Warn().Str("client_id", client.ID).Msg("Dropping slow websocket client")
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) bool {
	subs, ok := h.clients[client.UserID]
	if !ok || !subs[client] {
		return false
	}
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.Send)
	return true
}

// Register adds a client. It is a no-op once the hub has stopped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish sends an action to every connection of the user.
func (h *Hub) Publish(userID int64, action string, payload any) {
	msg, err := NewMessage(action, payload)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("Failed to encode websocket message")
		return
	}
	select {
	case h.publish <- delivery{userID: userID, message: msg}:
	case <-h.done:
	}
}
