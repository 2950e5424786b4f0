package order_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-topup/internal/logger"
	"ms-topup/internal/sse"

	"github.com/go-chi/chi/v5"
)

// SSEHandler streams order_status events to room subscribers. Opening
// the stream for a room key is the register step; membership ends when
// the connection closes.
type SSEHandler struct {
	Logger *logger.Logger
	Hub    *sse.RoomHub
}

func NewSSEHandler(hub *sse.RoomHub, log *logger.Logger) *SSEHandler {
	return &SSEHandler{Logger: log, Hub: hub}
}

// HandleRoomEvents subscribes the connection to a room (an order ID or
// user identifier) and streams its status events.
func (h *SSEHandler) HandleRoomEvents(w http.ResponseWriter, r *http.Request) {
	room := chi.URLParam(r, "room")
	if room == "" {
		writeError(w, http.StatusBadRequest, "Room is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	setupSSEHeaders(w)

	// Cancelled when the client disconnects; the hub uses it to clean
	// up membership.
	ctx := r.Context()
	eventChan := h.Hub.Subscribe(ctx, room)

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"room\":\"%s\"}\n\n", room)
	flusher.Flush()

	h.Logger.Info("SSE", fmt.Sprintf("Client joined room: %s", room))

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				h.Logger.Debug("SSE", fmt.Sprintf("Channel closed for room: %s", room))
				return
			}

			jsonData, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize status event: %v", err))
				continue
			}

			fmt.Fprintf(w, "event: order_status\ndata: %s\n\n", jsonData)
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", fmt.Sprintf("Client left room: %s", room))
			return
		}
	}
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream;charset=UTF-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Content-Type-Options", "nosniff")
}
