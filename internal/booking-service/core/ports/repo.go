package ports

import (
	"context"
	"io"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
)

type IDriverProfileRepo interface {
	GetByUserID(ctx context.Context, userID string) (*model.DriverProfile, error)
	Create(ctx context.Context, p model.DriverProfile) (string, error)
	UpdateContact(ctx context.Context, userID string, p model.DriverProfile) error
}

type IRiderProfileRepo interface {
	GetByEmail(ctx context.Context, email string) (*model.RiderProfile, error)
	Create(ctx context.Context, p model.RiderProfile) (string, error)
	Update(ctx context.Context, id string, p model.RiderProfile) error
}

type ICatalogRepo interface {
	List(ctx context.Context) ([]model.Driver, error)
	GetByID(ctx context.Context, id string) (model.Driver, error)
	Upsert(ctx context.Context, d model.Driver) error
}

type IBookingRepo interface {
	Create(ctx context.Context, b model.Booking) error
	// ListByUser is ordered by created_at descending.
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	GetForUser(ctx context.Context, id, userID string) (model.Booking, error)
	GetByID(ctx context.Context, id string) (model.Booking, error)
	Cancel(ctx context.Context, id, userID string) error
	SetStatus(ctx context.Context, id string, status model.BookingStatus) error
	SaveReview(ctx context.Context, id, userID string, rating int, review string) error
}

type IObjectStorage interface {
	Upload(ctx context.Context, bucket, path string, body io.Reader, contentType string) error
	PublicURL(bucket, path string) string
}

type ICheckoutStore interface {
	Save(ctx context.Context, c model.Checkout, ttl time.Duration) error
	Load(ctx context.Context, id string) (model.Checkout, error)
}
