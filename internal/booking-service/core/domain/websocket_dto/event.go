package websocketdto

import (
	"encoding/json"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
)

const (
	TypeAuth          = "auth"
	TypeSessionUpdate = "session_update"
	TypeError         = "error"
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type AuthMessage struct {
	Token string `json:"token"`
}

// SessionUpdate is pushed whenever the connection's session store changes.
type SessionUpdate struct {
	Event     string          `json:"event"`
	User      *model.Identity `json:"user"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	Loading   bool            `json:"loading"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}
