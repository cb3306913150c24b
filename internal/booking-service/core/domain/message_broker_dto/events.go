package messagebrokerdto

import "time"

// routing keys on the booking topic exchange
const (
	BookingCreated          = "booking.created"
	BookingCancelled        = "booking.cancelled"
	BookingRated            = "booking.rated"
	DriverApplicationQueued = "driver.application.submitted"
	PasswordResetRequested  = "auth.password_reset"

	// inbound; bound by the status consumer
	BookingStatusPattern = "booking.status.*"
)

type BookingEvent struct {
	BookingID   string    `json:"booking_id"`
	UserID      string    `json:"user_id"`
	DriverID    string    `json:"driver_id"`
	Status      string    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	Rating      *int      `json:"rating,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type DriverApplicationEvent struct {
	DriverProfileID string    `json:"driver_profile_id"`
	UserID          string    `json:"user_id"`
	Email           string    `json:"email"`
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
}

// PasswordResetEvent is consumed by the mailer that delivers the link.
type PasswordResetEvent struct {
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	RedirectTo string    `json:"redirect_to"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// BookingStatusUpdate arrives from the dispatch side when a trip finishes.
type BookingStatusUpdate struct {
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
