package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"driver-booking/internal/booking-service/core/domain/dto"
	messagebrokerdto "driver-booking/internal/booking-service/core/domain/message_broker_dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

const (
	MinRating = 1
	MaxRating = 5
)

type BookingService struct {
	mylog  mylogger.Logger
	repo   ports.IBookingRepo
	events ports.IEventPublisher
	now    func() time.Time
}

func NewBookingService(mylog mylogger.Logger, repo ports.IBookingRepo, events ports.IEventPublisher) *BookingService {
	return &BookingService{
		mylog:  mylog,
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// List returns one page of the caller's bookings, newest first, after the
// search filter. Page is zero based.
func (bs *BookingService) List(ctx context.Context, ident *model.Identity, q dto.ListQuery) (dto.BookingPage, error) {
	if ident == nil {
		return dto.BookingPage{}, myerrors.ErrUnauthenticated
	}
	log := bs.mylog.Action("ListBookings").With("user_id", ident.ID)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	all, err := bs.repo.ListByUser(ctx, ident.ID)
	if err != nil {
		log.Error("cannot list bookings", err)
		return dto.BookingPage{}, fmt.Errorf("list bookings: %w", err)
	}

	search := strings.TrimSpace(q.Search)
	matched := make([]model.Booking, 0, len(all))
	for _, b := range all {
		if b.MatchesSearch(search) {
			matched = append(matched, b)
		}
	}

	rows := q.RowsPerPage
	if !containsInt(dto.RowsPerPageOptions, rows) {
		rows = dto.DefaultRowsPerPage
	}
	page := q.Page
	if page < 0 {
		page = 0
	}

	start := page * rows
	if start > len(matched) {
		start = len(matched)
	}
	end := start + rows
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]dto.BookingItem, 0, end-start)
	for _, b := range matched[start:end] {
		items = append(items, dto.NewBookingItem(b))
	}

	return dto.BookingPage{
		Items:       items,
		Total:       len(matched),
		Page:        page,
		RowsPerPage: rows,
	}, nil
}

// Get rejects a malformed id before any lookup.
func (bs *BookingService) Get(ctx context.Context, ident *model.Identity, id string) (model.Booking, error) {
	if ident == nil {
		return model.Booking{}, myerrors.ErrUnauthenticated
	}
	if !IsValidUUID(id) {
		return model.Booking{}, myerrors.Invalid("id", myerrors.ErrInvalidBookingID.Error())
	}
	log := bs.mylog.Action("GetBooking").With("user_id", ident.ID, "booking_id", id)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b, err := bs.repo.GetForUser(ctx, id, ident.ID)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			log.Debug("booking not found")
		} else {
			log.Error("cannot get booking", err)
		}
		return model.Booking{}, err
	}
	return b, nil
}

// Cancel is only allowed while the booking is Confirmed. The remote write
// must succeed before the cancelled copy is returned.
func (bs *BookingService) Cancel(ctx context.Context, ident *model.Identity, id string) (model.Booking, error) {
	b, err := bs.Get(ctx, ident, id)
	if err != nil {
		return model.Booking{}, err
	}
	log := bs.mylog.Action("CancelBooking").With("user_id", ident.ID, "booking_id", id)

	if !b.CanCancel() {
		log.Warn("booking is not cancellable", "status", string(b.Status))
		return b, myerrors.ErrNotCancellable
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := bs.repo.Cancel(ctx, id, ident.ID); err != nil {
		log.Error("cannot cancel booking", err)
		return b, fmt.Errorf("cancel booking: %w", err)
	}

	b.Status = model.StatusCancelled
	log.Info("booking cancelled")
	publish(ctx, log, bs.events, messagebrokerdto.BookingCancelled, messagebrokerdto.BookingEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		DriverID:    b.DriverID,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		Timestamp:   bs.now(),
	})
	return b, nil
}

// Rate stores the one review a completed booking may receive.
func (bs *BookingService) Rate(ctx context.Context, ident *model.Identity, id string, rating int, review string) (model.Booking, error) {
	if rating < MinRating || rating > MaxRating {
		return model.Booking{}, myerrors.Invalid("rating", "Please provide a rating between 1 and 5")
	}
	b, err := bs.Get(ctx, ident, id)
	if err != nil {
		return model.Booking{}, err
	}
	log := bs.mylog.Action("RateBooking").With("user_id", ident.ID, "booking_id", id)

	if !b.CanRate() {
		log.Warn("booking is not rateable", "status", string(b.Status), "rated", b.Rated)
		return b, myerrors.ErrNotRateable
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	review = strings.TrimSpace(review)
	if err := bs.repo.SaveReview(ctx, id, ident.ID, rating, review); err != nil {
		if !errors.Is(err, myerrors.ErrNotRateable) {
			log.Error("cannot save review", err)
		}
		return b, err
	}

	b.Rating = &rating
	b.Review = &review
	b.Rated = true
	log.Info("booking rated", "rating", rating)
	publish(ctx, log, bs.events, messagebrokerdto.BookingRated, messagebrokerdto.BookingEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		DriverID:    b.DriverID,
		Status:      string(b.Status),
		TotalAmount: b.TotalAmount,
		Rating:      &rating,
		Timestamp:   bs.now(),
	})
	return b, nil
}

// MarkCompleted applies the external trip-finished transition.
func (bs *BookingService) MarkCompleted(ctx context.Context, id string) error {
	log := bs.mylog.Action("MarkCompleted").With("booking_id", id)

	if !IsValidUUID(id) {
		return myerrors.Invalid("booking_id", myerrors.ErrInvalidBookingID.Error())
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b, err := bs.repo.GetByID(ctx, id)
	if err != nil {
		log.Error("cannot load booking", err)
		return err
	}
	switch b.Status {
	case model.StatusCompleted:
		return nil
	case model.StatusConfirmed, model.StatusOngoing:
	default:
		log.Warn("booking cannot complete", "status", string(b.Status))
		return myerrors.ErrInvalidState
	}

	if err := bs.repo.SetStatus(ctx, id, model.StatusCompleted); err != nil {
		log.Error("cannot complete booking", err)
		return err
	}
	log.Info("booking completed")
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
