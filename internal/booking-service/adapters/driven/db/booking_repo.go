package db

import (
	"context"
	"fmt"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"

	"github.com/jackc/pgx/v5"
)

// BookingRepo scopes every user-facing statement by user_id.
type BookingRepo struct {
	db *DB
}

func NewBookingRepo(db *DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `
	id,
	user_id,
	driver_id,
	driver_name,
	pickup_location,
	drop_location,
	pickup_datetime,
	duration_hours,
	notes,
	status,
	payment_method,
	payment_status,
	total_amount,
	rating,
	review,
	rated,
	created_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.DriverID,
		&b.DriverName,
		&b.PickupLocation,
		&b.DropLocation,
		&b.PickupDateTime,
		&b.DurationHours,
		&b.Notes,
		&b.Status,
		&b.PaymentMethod,
		&b.PaymentStatus,
		&b.TotalAmount,
		&b.Rating,
		&b.Review,
		&b.Rated,
		&b.CreatedAt,
	)
	return b, err
}

// Create inserts a booking with its pre-assigned id. A second insert with
// the same id returns ErrDuplicate.
func (br *BookingRepo) Create(ctx context.Context, b model.Booking) error {
	q := `
		INSERT INTO bookings (
			id,
			user_id,
			driver_id,
			driver_name,
			pickup_location,
			drop_location,
			pickup_datetime,
			duration_hours,
			notes,
			status,
			payment_method,
			payment_status,
			total_amount,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := br.db.Pool().Exec(ctx, q,
		b.ID,
		b.UserID,
		b.DriverID,
		b.DriverName,
		b.PickupLocation,
		b.DropLocation,
		b.PickupDateTime,
		b.DurationHours,
		b.Notes,
		b.Status,
		b.PaymentMethod,
		b.PaymentStatus,
		b.TotalAmount,
		b.CreatedAt,
	)
	return mapErr(err, myerrors.ErrBookingNotFound, myerrors.ErrDuplicate, "insert booking")
}

func (br *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := br.db.Pool().Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (br *BookingRepo) GetForUser(ctx context.Context, id, userID string) (model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 AND user_id = $2`

	b, err := scanBooking(br.db.Pool().QueryRow(ctx, q, id, userID))
	if err != nil {
		return model.Booking{}, mapErr(err, myerrors.ErrBookingNotFound, nil, "get booking")
	}
	return b, nil
}

func (br *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	b, err := scanBooking(br.db.Pool().QueryRow(ctx, q, id))
	if err != nil {
		return model.Booking{}, mapErr(err, myerrors.ErrBookingNotFound, nil, "get booking")
	}
	return b, nil
}

// Cancel only moves a Confirmed booking; anything else is ErrNotCancellable.
func (br *BookingRepo) Cancel(ctx context.Context, id, userID string) error {
	q := `
		UPDATE bookings
		SET status = $3
		WHERE id = $1 AND user_id = $2 AND status = $4`

	cmd, err := br.db.Pool().Exec(ctx, q, id, userID, model.StatusCancelled, model.StatusConfirmed)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return myerrors.ErrNotCancellable
	}
	return nil
}

func (br *BookingRepo) SetStatus(ctx context.Context, id string, status model.BookingStatus) error {
	cmd, err := br.db.Pool().Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set booking status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return myerrors.ErrBookingNotFound
	}
	return nil
}

// SaveReview writes the single review of a completed booking. The rated
// guard keeps a second review from overwriting the first.
func (br *BookingRepo) SaveReview(ctx context.Context, id, userID string, rating int, review string) error {
	q := `
		UPDATE bookings
		SET
			rating = $3,
			review = $4,
			rated = TRUE
		WHERE id = $1 AND user_id = $2 AND status = $5 AND rated = FALSE`

	cmd, err := br.db.Pool().Exec(ctx, q, id, userID, rating, review, model.StatusCompleted)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return myerrors.ErrNotRateable
	}
	return nil
}
