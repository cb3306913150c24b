package dto

import (
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
)

type StartCheckoutRequest struct {
	DriverID string `json:"driver_id"`
}

type DurationRequest struct {
	Hours int `json:"hours"`
}

type TripRequest struct {
	PickupDateTime *time.Time `json:"pickup_datetime"`
	PickupLocation string     `json:"pickup_location"`
	DropLocation   string     `json:"drop_location"`
	Notes          string     `json:"notes"`
}

type PaymentRequest struct {
	Method     model.PaymentMethod `json:"payment_method"`
	CardNumber string              `json:"card_number"`
	CardName   string              `json:"card_name"`
	ExpiryDate string              `json:"expiry_date"`
	CVV        string              `json:"cvv"`
	UPIID      string              `json:"upi_id"`
	BankName   string              `json:"bank_name"`
}

// CheckoutView is the client-facing projection of a wizard draft. Card
// number and CVV are never echoed back.
type CheckoutView struct {
	ID              string              `json:"id"`
	Step            int                 `json:"step"`
	StepName        string              `json:"step_name"`
	Phase           string              `json:"phase"`
	Driver          model.Driver        `json:"driver"`
	DurationHours   int                 `json:"duration_hours"`
	DurationOptions []int               `json:"duration_options"`
	PickupDateTime  *time.Time          `json:"pickup_datetime"`
	PickupLocation  string              `json:"pickup_location"`
	DropLocation    string              `json:"drop_location"`
	Notes           string              `json:"notes"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	PaymentName     string              `json:"payment_method_name"`
	CardLast4       string              `json:"card_last4,omitempty"`
	TotalAmount     float64             `json:"total_amount"`
	Error           string              `json:"error,omitempty"`
	ErrorField      string              `json:"error_field,omitempty"`
	BookingID       string              `json:"booking_id,omitempty"`
	RedirectTo      string              `json:"redirect_to,omitempty"`
	RedirectAfterMs int64               `json:"redirect_after_ms,omitempty"`
}
