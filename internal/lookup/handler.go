package lookup

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-topup/internal/logger"
)

type Handler struct {
	Client *Client
	Logger *logger.Logger
}

func NewHandler(client *Client, log *logger.Logger) *Handler {
	return &Handler{Client: client, Logger: log}
}

// Validate proxies the player-ID validation lookup.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	serverID := r.URL.Query().Get("serverid")
	if id == "" || serverID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	info, err := h.Client.Validate(r.Context(), id, serverID)
	if err != nil {
		h.Logger.Error("LOOKUP", fmt.Sprintf("Validate: %v", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Lookup failed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(info)
}
