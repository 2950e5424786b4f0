package sse

import (
	"context"
	"sync"

	"ms-topup/internal/models"
)

// RoomHub manages SSE subscriber channels grouped by room key. A room
// key is an order ID (order tracking) or a user identifier. Membership
// is process-local; clients re-subscribe after a reconnect.
type RoomHub struct {
	mu    sync.RWMutex
	rooms map[string][]chan models.StatusEvent
}

func NewRoomHub() *RoomHub {
	return &RoomHub{
		rooms: make(map[string][]chan models.StatusEvent),
	}
}

// Subscribe adds a client channel to the room. The channel is removed
// and closed when ctx is done, so connection close owns cleanup.
func (h *RoomHub) Subscribe(ctx context.Context, room string) chan models.StatusEvent {
	clientChan := make(chan models.StatusEvent, 10)

	h.mu.Lock()
	h.rooms[room] = append(h.rooms[room], clientChan)
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(room, clientChan)
	}()

	return clientChan
}

// Publish sends the event to every current member of the room. A room
// with no members is a silent no-op. Sends are non-blocking so a slow
// subscriber never stalls the publisher. The read lock is held across
// the sends: remove closes channels under the write lock, so a send
// can never hit a closed channel.
func (h *RoomHub) Publish(room string, event models.StatusEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, clientChan := range h.rooms[room] {
		select {
		case clientChan <- event:
		default:
			// Channel buffer full, skip this client for now
		}
	}
}

func (h *RoomHub) remove(room string, clientChan chan models.StatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.rooms[room]
	for i, ch := range clients {
		if ch == clientChan {
			h.rooms[room] = append(clients[:i], clients[i+1:]...)
			close(clientChan)
			break
		}
	}

	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

// ClientCount returns the number of subscribers currently in a room.
func (h *RoomHub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
