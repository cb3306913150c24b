package model

import "time"

type CheckoutStep int

const (
	StepSelectingDriver CheckoutStep = iota
	StepTripDetails
	StepPayment
	StepReview
)

func (s CheckoutStep) String() string {
	switch s {
	case StepSelectingDriver:
		return "Driver Selection"
	case StepTripDetails:
		return "Booking Details"
	case StepPayment:
		return "Payment Information"
	case StepReview:
		return "Confirmation"
	default:
		return "Unknown"
	}
}

type CheckoutPhase string

const (
	PhaseEditing    CheckoutPhase = "editing"
	PhaseSubmitting CheckoutPhase = "submitting"
	PhaseSubmitted  CheckoutPhase = "submitted"
)

type PaymentDetails struct {
	Method     PaymentMethod `json:"method"`
	CardNumber string        `json:"card_number"`
	CardName   string        `json:"card_name"`
	ExpiryDate string        `json:"expiry_date"`
	CVV        string        `json:"cvv"`
	UPIID      string        `json:"upi_id"`
	BankName   string        `json:"bank_name"`
}

// Checkout is the persisted state of one booking wizard. BookingID is fixed
// at creation so a repeated submit cannot produce a second booking row.
type Checkout struct {
	ID             string         `json:"id"`
	UserID         string         `json:"user_id"`
	BookingID      string         `json:"booking_id"`
	Driver         Driver         `json:"driver"`
	Step           CheckoutStep   `json:"step"`
	Phase          CheckoutPhase  `json:"phase"`
	DurationHours  int            `json:"duration_hours"`
	PickupDateTime *time.Time     `json:"pickup_datetime"`
	PickupLocation string         `json:"pickup_location"`
	DropLocation   string         `json:"drop_location"`
	Notes          string         `json:"notes"`
	Payment        PaymentDetails `json:"payment"`
	LastError      string         `json:"last_error,omitempty"`
	LastErrorField string         `json:"last_error_field,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
