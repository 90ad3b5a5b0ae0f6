// Package websocket is the mutation command channel: connected clients
// send album and photo commands over a websocket, targeted failures go
// back to the sender only, and successful mutation events are broadcast
// to every connection.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/msomdec/photocat/internal/service"
)

// Hub tracks active clients and relays catalog events to them. Client
// registration and event fan-out both happen on the Run goroutine, so the
// client set needs no locking.
type Hub struct {
	gallery *service.Gallery
	events  *service.Broadcaster
	limiter *service.TokenBucket

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub dispatching commands to the given gallery and
// broadcasting events from the given broadcaster.
func NewHub(gallery *service.Gallery, events *service.Broadcaster, limiter *service.TokenBucket) *Hub {
	return &Hub{
		gallery:    gallery,
		events:     events,
		limiter:    limiter,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes registrations and event broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	sub := h.events.Subscribe()
	defer h.events.Unsubscribe(sub)

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if h.clients[client] {
				delete(h.clients, client)
				close(client.send)
			}

		case ev := <-sub:
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("marshal event", "event", ev.Name, "error", err)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow client: drop it rather than block the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
