package auth

import (
	"sync"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/ports"
)

// Hub fans session events out to per-user subscribers. Handlers run on the
// emitting goroutine.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[string]map[int]ports.SessionHandler
}

func NewHub() *Hub {
	return &Hub{subs: map[string]map[int]ports.SessionHandler{}}
}

func (h *Hub) Subscribe(userID string, handler ports.SessionHandler) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	if h.subs[userID] == nil {
		h.subs[userID] = map[int]ports.SessionHandler{}
	}
	h.subs[userID][id] = handler
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
		})
	}
}

func (h *Hub) Emit(ev model.SessionEvent) {
	h.mu.RLock()
	handlers := make([]ports.SessionHandler, 0, len(h.subs[ev.UserID]))
	for _, fn := range h.subs[ev.UserID] {
		handlers = append(handlers, fn)
	}
	h.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

// Subscribers reports how many handlers are registered for a user.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
