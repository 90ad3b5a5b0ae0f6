package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/photocat/internal/service"
)

// EventsHandler streams catalog mutation events to browser clients over
// server-sent events.
type EventsHandler struct {
	events *service.Broadcaster
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.Broadcaster) *EventsHandler {
	return &EventsHandler{events: events}
}

// HandleEvents subscribes the connection to the broadcaster and pushes
// each event as a datastar signal patch until the client disconnects.
// GET /events
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sub := h.events.Subscribe()
	defer h.events.Unsubscribe(sub)

	sse := datastar.NewSSE(w, r)
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(map[string]any{"lastEvent": ev})
			if err != nil {
				slog.Error("marshal event signal", "event", ev.Name, "error", err)
				continue
			}
			if err := sse.PatchSignals(data); err != nil {
				return
			}
		}
	}
}
