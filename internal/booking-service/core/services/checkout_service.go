package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"driver-booking/internal/booking-service/core/domain/dto"
	messagebrokerdto "driver-booking/internal/booking-service/core/domain/message_broker_dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"

	"github.com/google/uuid"
)

const BookingsPath = "/bookings"

type CheckoutService struct {
	mylog         mylogger.Logger
	catalog       ports.ICatalogRepo
	store         ports.ICheckoutStore
	bookings      ports.IBookingRepo
	events        ports.IEventPublisher
	ttl           time.Duration
	redirectDelay time.Duration
	now           func() time.Time
}

func NewCheckoutService(
	mylog mylogger.Logger,
	catalog ports.ICatalogRepo,
	store ports.ICheckoutStore,
	bookings ports.IBookingRepo,
	events ports.IEventPublisher,
	ttl, redirectDelay time.Duration,
) *CheckoutService {
	return &CheckoutService{
		mylog:         mylog,
		catalog:       catalog,
		store:         store,
		bookings:      bookings,
		events:        events,
		ttl:           ttl,
		redirectDelay: redirectDelay,
		now:           time.Now,
	}
}

// Start opens a wizard for a catalog driver. Unknown or invalid drivers are
// rejected with ErrDriverRequired so the caller can send the user back to
// the catalog.
func (cs *CheckoutService) Start(ctx context.Context, ident *model.Identity, driverID string) (dto.CheckoutView, error) {
	if ident == nil {
		return dto.CheckoutView{}, myerrors.ErrUnauthenticated
	}
	log := cs.mylog.Action("StartCheckout").With("user_id", ident.ID, "driver_id", driverID)

	if driverID == "" {
		return dto.CheckoutView{}, myerrors.ErrDriverRequired
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	driver, err := cs.catalog.GetByID(lookupCtx, driverID)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			log.Warn("driver not in catalog")
			return dto.CheckoutView{}, myerrors.ErrDriverRequired
		}
		log.Error("cannot load driver", err)
		return dto.CheckoutView{}, err
	}

	w, err := NewWizard(uuid.NewString(), ident.ID, uuid.NewString(), driver, cs.now)
	if err != nil {
		log.Warn("driver is not bookable")
		return dto.CheckoutView{}, err
	}
	if err := cs.save(ctx, w); err != nil {
		log.Error("cannot save checkout", err)
		return dto.CheckoutView{}, err
	}

	log.Info("checkout started", "checkout_id", w.c.ID)
	return cs.view(w), nil
}

func (cs *CheckoutService) Get(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error) {
	w, err := cs.load(ctx, ident, id)
	if err != nil {
		return dto.CheckoutView{}, err
	}
	return cs.view(w), nil
}

func (cs *CheckoutService) SetDuration(ctx context.Context, ident *model.Identity, id string, hours int) (dto.CheckoutView, error) {
	return cs.mutate(ctx, ident, id, "SetDuration", func(w *Wizard) error {
		return w.SetDuration(hours)
	})
}

func (cs *CheckoutService) SetTrip(ctx context.Context, ident *model.Identity, id string, req dto.TripRequest) (dto.CheckoutView, error) {
	return cs.mutate(ctx, ident, id, "SetTrip", func(w *Wizard) error {
		return w.SetTrip(req.PickupDateTime, req.PickupLocation, req.DropLocation, req.Notes)
	})
}

func (cs *CheckoutService) SetPayment(ctx context.Context, ident *model.Identity, id string, req dto.PaymentRequest) (dto.CheckoutView, error) {
	return cs.mutate(ctx, ident, id, "SetPayment", func(w *Wizard) error {
		return w.SetPayment(model.PaymentDetails{
			Method:     req.Method,
			CardNumber: req.CardNumber,
			CardName:   req.CardName,
			ExpiryDate: req.ExpiryDate,
			CVV:        req.CVV,
			UPIID:      req.UPIID,
			BankName:   req.BankName,
		})
	})
}

func (cs *CheckoutService) Next(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error) {
	return cs.mutate(ctx, ident, id, "CheckoutNext", func(w *Wizard) error { return w.Next() })
}

func (cs *CheckoutService) Back(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error) {
	return cs.mutate(ctx, ident, id, "CheckoutBack", func(w *Wizard) error { return w.Back() })
}

// Submit writes the booking. A failed insert returns the wizard to Review
// with the error recorded; nothing is retried automatically.
func (cs *CheckoutService) Submit(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error) {
	w, err := cs.load(ctx, ident, id)
	if err != nil {
		return dto.CheckoutView{}, err
	}
	log := cs.mylog.Action("SubmitCheckout").With("user_id", ident.ID, "checkout_id", id)

	if err := w.BeginSubmit(); err != nil {
		if errors.Is(err, myerrors.ErrValidation) {
			cs.saveQuiet(ctx, w, log)
		}
		return cs.view(w), err
	}

	booking := w.Booking()
	insertCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = cs.bookings.Create(insertCtx, booking)
	cancel()

	switch {
	case errors.Is(err, myerrors.ErrDuplicate):
		w.CompleteSubmit()
		cs.saveQuiet(ctx, w, log)
		log.Warn("booking already written for this checkout", "booking_id", booking.ID)
		return cs.view(w), myerrors.ErrAlreadySubmitted
	case err != nil:
		log.Error("cannot create booking", err)
		w.FailSubmit(err)
		cs.saveQuiet(ctx, w, log)
		return cs.view(w), fmt.Errorf("create booking: %w", err)
	}

	w.CompleteSubmit()
	cs.saveQuiet(ctx, w, log)
	log.Info("booking created", "booking_id", booking.ID, "total_amount", booking.TotalAmount)

	publish(ctx, log, cs.events, messagebrokerdto.BookingCreated, messagebrokerdto.BookingEvent{
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		DriverID:    booking.DriverID,
		Status:      string(booking.Status),
		TotalAmount: booking.TotalAmount,
		Timestamp:   booking.CreatedAt,
	})

	return cs.view(w), nil
}

func (cs *CheckoutService) mutate(ctx context.Context, ident *model.Identity, id, action string, fn func(*Wizard) error) (dto.CheckoutView, error) {
	w, err := cs.load(ctx, ident, id)
	if err != nil {
		return dto.CheckoutView{}, err
	}
	log := cs.mylog.Action(action).With("user_id", ident.ID, "checkout_id", id)

	ferr := fn(w)
	if ferr != nil && !errors.Is(ferr, myerrors.ErrValidation) {
		log.Warn("checkout transition rejected", "step", int(w.c.Step), "error", ferr.Error())
		return cs.view(w), ferr
	}
	if err := cs.save(ctx, w); err != nil {
		log.Error("cannot save checkout", err)
		return dto.CheckoutView{}, err
	}
	if ferr != nil {
		log.Debug("checkout validation failed", "field", myerrors.FieldOf(ferr))
	}
	return cs.view(w), ferr
}

// load returns the caller's draft. Drafts of other users look expired.
func (cs *CheckoutService) load(ctx context.Context, ident *model.Identity, id string) (*Wizard, error) {
	if ident == nil {
		return nil, myerrors.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := cs.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != ident.ID {
		return nil, myerrors.ErrCheckoutExpired
	}
	return WizardFrom(c, cs.now), nil
}

func (cs *CheckoutService) save(ctx context.Context, w *Wizard) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return cs.store.Save(ctx, w.State(), cs.ttl)
}

func (cs *CheckoutService) saveQuiet(ctx context.Context, w *Wizard, log mylogger.Logger) {
	if err := cs.save(ctx, w); err != nil {
		log.Error("cannot save checkout", err)
	}
}

func (cs *CheckoutService) view(w *Wizard) dto.CheckoutView {
	c := w.State()
	v := dto.CheckoutView{
		ID:              c.ID,
		Step:            int(c.Step),
		StepName:        c.Step.String(),
		Phase:           string(c.Phase),
		Driver:          c.Driver,
		DurationHours:   c.DurationHours,
		DurationOptions: DurationOptions,
		PickupDateTime:  c.PickupDateTime,
		PickupLocation:  c.PickupLocation,
		DropLocation:    c.DropLocation,
		Notes:           c.Notes,
		PaymentMethod:   c.Payment.Method,
		PaymentName:     c.Payment.Method.DisplayName(),
		TotalAmount:     w.TotalCost(),
		Error:           c.LastError,
		ErrorField:      c.LastErrorField,
	}
	if c.Payment.Method.IsCard() && len(c.Payment.CardNumber) >= 4 {
		v.CardLast4 = c.Payment.CardNumber[len(c.Payment.CardNumber)-4:]
	}
	if c.Phase == model.PhaseSubmitted {
		v.BookingID = c.BookingID
		v.RedirectTo = BookingsPath
		v.RedirectAfterMs = cs.redirectDelay.Milliseconds()
	}
	return v
}
