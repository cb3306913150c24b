package services

import (
	"errors"
	"strings"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
)

const (
	DefaultDurationHours = 4
	MinPickupLead        = time.Hour
)

var (
	DurationOptions = []int{1, 2, 4, 6, 8, 12, 24}

	Banks = []string{"sbi", "hdfc", "icici", "axis", "kotak"}
)

// Wizard is the checkout state machine:
//
//	SelectingDriver -> TripDetails -> Payment -> Review -> Submitting -> Submitted
//
// Next validates the current step before advancing. Back steps down from
// 1..3. Submitting and Submitted are only reachable from Review.
type Wizard struct {
	c   model.Checkout
	now func() time.Time
}

// NewWizard opens a wizard for driver. An invalid driver cannot enter the
// flow.
func NewWizard(id, userID, bookingID string, driver model.Driver, now func() time.Time) (*Wizard, error) {
	if !driver.IsValid() {
		return nil, myerrors.ErrDriverRequired
	}
	t := now()
	pickup := defaultPickup(t)
	return &Wizard{
		now: now,
		c: model.Checkout{
			ID:             id,
			UserID:         userID,
			BookingID:      bookingID,
			Driver:         driver,
			Step:           model.StepSelectingDriver,
			Phase:          model.PhaseEditing,
			DurationHours:  DefaultDurationHours,
			PickupDateTime: &pickup,
			Payment:        model.PaymentDetails{Method: model.PaymentCreditCard},
			CreatedAt:      t,
		},
	}, nil
}

// WizardFrom resumes a stored checkout.
func WizardFrom(c model.Checkout, now func() time.Time) *Wizard {
	return &Wizard{c: c, now: now}
}

// defaultPickup is the first quarter hour at least one hour ahead.
func defaultPickup(now time.Time) time.Time {
	t := now.Add(MinPickupLead)
	if r := t.Truncate(15 * time.Minute); !r.Equal(t) {
		t = r.Add(15 * time.Minute)
	}
	return t
}

func (w *Wizard) State() model.Checkout {
	return w.c
}

func (w *Wizard) TotalCost() float64 {
	return w.c.Driver.Price * float64(w.c.DurationHours)
}

func (w *Wizard) editable(step model.CheckoutStep) error {
	switch w.c.Phase {
	case model.PhaseSubmitted:
		return myerrors.ErrAlreadySubmitted
	case model.PhaseSubmitting:
		return myerrors.ErrInvalidState
	}
	if w.c.Step != step {
		return myerrors.ErrInvalidState
	}
	return nil
}

func (w *Wizard) SetDuration(hours int) error {
	if err := w.editable(model.StepSelectingDriver); err != nil {
		return err
	}
	if !validDuration(hours) {
		return w.fail(myerrors.Invalid("duration_hours", "Please choose a supported duration"))
	}
	w.c.DurationHours = hours
	w.clearError()
	return nil
}

func (w *Wizard) SetTrip(pickup *time.Time, pickupLocation, dropLocation, notes string) error {
	if err := w.editable(model.StepTripDetails); err != nil {
		return err
	}
	w.c.PickupDateTime = pickup
	w.c.PickupLocation = strings.TrimSpace(pickupLocation)
	w.c.DropLocation = strings.TrimSpace(dropLocation)
	w.c.Notes = notes
	return nil
}

func (w *Wizard) SetPayment(p model.PaymentDetails) error {
	if err := w.editable(model.StepPayment); err != nil {
		return err
	}
	if !p.Method.Valid() {
		return w.fail(myerrors.Invalid("payment_method", "Please choose a payment method"))
	}
	w.c.Payment = p
	return nil
}

func (w *Wizard) Next() error {
	if err := w.editable(w.c.Step); err != nil {
		return err
	}

	var err error
	switch w.c.Step {
	case model.StepSelectingDriver:
		err = w.validateDriver()
	case model.StepTripDetails:
		err = w.validateTrip()
	case model.StepPayment:
		err = w.validatePayment()
	default:
		return myerrors.ErrInvalidState
	}
	if err != nil {
		return w.fail(err)
	}

	w.c.Step++
	w.clearError()
	return nil
}

func (w *Wizard) Back() error {
	if err := w.editable(w.c.Step); err != nil {
		return err
	}
	if w.c.Step == model.StepSelectingDriver {
		return myerrors.ErrInvalidState
	}
	w.c.Step--
	w.clearError()
	return nil
}

// BeginSubmit moves Review to Submitting after re-checking every step,
// since time has passed since the trip details were accepted.
func (w *Wizard) BeginSubmit() error {
	if err := w.editable(model.StepReview); err != nil {
		return err
	}
	for _, check := range []func() error{w.validateDriver, w.validateTrip, w.validatePayment} {
		if err := check(); err != nil {
			return w.fail(err)
		}
	}
	w.c.Phase = model.PhaseSubmitting
	w.clearError()
	return nil
}

// Booking builds the row written on submission. Amount and status are
// fixed here.
func (w *Wizard) Booking() model.Booking {
	b := model.Booking{
		ID:             w.c.BookingID,
		UserID:         w.c.UserID,
		DriverID:       w.c.Driver.ID,
		DriverName:     w.c.Driver.Name,
		PickupLocation: w.c.PickupLocation,
		DropLocation:   w.c.DropLocation,
		DurationHours:  w.c.DurationHours,
		Notes:          w.c.Notes,
		Status:         model.StatusConfirmed,
		PaymentMethod:  w.c.Payment.Method,
		PaymentStatus:  model.PaymentStatusFor(w.c.Payment.Method),
		TotalAmount:    w.TotalCost(),
		CreatedAt:      w.now(),
	}
	if w.c.PickupDateTime != nil {
		b.PickupDateTime = *w.c.PickupDateTime
	}
	return b
}

func (w *Wizard) CompleteSubmit() {
	w.c.Phase = model.PhaseSubmitted
	w.clearError()
}

// FailSubmit returns to Review with the error recorded for a manual retry.
func (w *Wizard) FailSubmit(err error) {
	w.c.Phase = model.PhaseEditing
	w.c.Step = model.StepReview
	w.c.LastError = messageOf(err)
	w.c.LastErrorField = myerrors.FieldOf(err)
}

func (w *Wizard) validateDriver() error {
	if !w.c.Driver.IsValid() {
		return myerrors.Invalid("driver", myerrors.ErrDriverRequired.Error())
	}
	if !validDuration(w.c.DurationHours) {
		return myerrors.Invalid("duration_hours", "Please choose a supported duration")
	}
	return nil
}

func (w *Wizard) validateTrip() error {
	if w.c.PickupDateTime == nil || w.c.PickupDateTime.IsZero() {
		return myerrors.Invalid("pickup_datetime", "Please select pickup date and time")
	}
	if w.c.PickupLocation == "" {
		return myerrors.Invalid("pickup_location", "Please enter pickup location")
	}
	if w.c.DropLocation == "" {
		return myerrors.Invalid("drop_location", "Please enter drop location")
	}
	if w.c.PickupDateTime.Before(w.now().Add(MinPickupLead)) {
		return myerrors.Invalid("pickup_datetime", "Pickup time must be at least one hour from now")
	}
	return nil
}

func (w *Wizard) validatePayment() error {
	p := w.c.Payment
	switch {
	case p.Method.IsCard():
		if blank(p.CardNumber) || blank(p.CardName) || blank(p.ExpiryDate) || blank(p.CVV) {
			return myerrors.Invalid("card", "Please fill in all card details")
		}
	case p.Method == model.PaymentUPI:
		if blank(p.UPIID) {
			return myerrors.Invalid("upi_id", "Please enter UPI ID")
		}
	case p.Method == model.PaymentNetBanking:
		if !contains(Banks, p.BankName) {
			return myerrors.Invalid("bank_name", "Please select your bank")
		}
	case p.Method == model.PaymentCash:
	default:
		return myerrors.Invalid("payment_method", "Please choose a payment method")
	}
	return nil
}

func (w *Wizard) fail(err error) error {
	w.c.LastError = messageOf(err)
	w.c.LastErrorField = myerrors.FieldOf(err)
	return err
}

func (w *Wizard) clearError() {
	w.c.LastError = ""
	w.c.LastErrorField = ""
}

func validDuration(h int) bool {
	for _, d := range DurationOptions {
		if d == h {
			return true
		}
	}
	return false
}

func messageOf(err error) string {
	var ve *myerrors.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
