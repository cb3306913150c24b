package model

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "Confirmed"
	StatusOngoing   BookingStatus = "Ongoing"
	StatusCompleted BookingStatus = "Completed"
	StatusCancelled BookingStatus = "Cancelled"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit_card"
	PaymentDebitCard  PaymentMethod = "debit_card"
	PaymentUPI        PaymentMethod = "upi"
	PaymentNetBanking PaymentMethod = "netbanking"
	PaymentCash       PaymentMethod = "cod"
)

var PaymentMethods = []PaymentMethod{
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentUPI,
	PaymentNetBanking,
	PaymentCash,
}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

func (m PaymentMethod) IsCard() bool {
	return m == PaymentCreditCard || m == PaymentDebitCard
}

func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentCreditCard:
		return "Credit Card"
	case PaymentDebitCard:
		return "Debit Card"
	case PaymentUPI:
		return "UPI Payment"
	case PaymentNetBanking:
		return "Net Banking"
	case PaymentCash:
		return "Cash on Delivery"
	default:
		return string(m)
	}
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
)

// PaymentStatusFor: cash is collected later, everything else is paid up front.
func PaymentStatusFor(m PaymentMethod) PaymentStatus {
	if m == PaymentCash {
		return PaymentPending
	}
	return PaymentPaid
}

type Booking struct {
	ID             string        `json:"id"`
	UserID         string        `json:"user_id"`
	DriverID       string        `json:"driver_id"`
	DriverName     string        `json:"driver_name"`
	PickupLocation string        `json:"pickup_location"`
	DropLocation   string        `json:"drop_location"`
	PickupDateTime time.Time     `json:"pickup_datetime"`
	DurationHours  int           `json:"duration_hours"`
	Notes          string        `json:"notes"`
	Status         BookingStatus `json:"status"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	TotalAmount    float64       `json:"total_amount"`
	Rating         *int          `json:"rating,omitempty"`
	Review         *string       `json:"review,omitempty"`
	Rated          bool          `json:"rated"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (b Booking) CanCancel() bool {
	return b.Status == StatusConfirmed
}

func (b Booking) CanRate() bool {
	return b.Status == StatusCompleted && !b.Rated
}

// MatchesSearch is a case-insensitive substring match on driver name,
// pickup or drop location.
func (b Booking) MatchesSearch(q string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(b.DriverName), q) ||
		strings.Contains(strings.ToLower(b.PickupLocation), q) ||
		strings.Contains(strings.ToLower(b.DropLocation), q)
}

// StatusColor maps a status to the badge color the front-end renders.
func StatusColor(s BookingStatus) string {
	switch strings.ToLower(string(s)) {
	case "confirmed":
		return "primary"
	case "completed":
		return "success"
	case "cancelled":
		return "error"
	case "ongoing":
		return "info"
	default:
		return "default"
	}
}
