package ports

import (
	"context"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/domain/model"
)

type IAuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*model.Session, error)
	Login(ctx context.Context, req dto.LoginRequest) (*model.Session, error)
	OAuthURL(provider, redirectTo string) (dto.OAuthURLResponse, error)
	Callback(ctx context.Context, provider, idToken string) (*model.Session, error)
	Logout(ctx context.Context, accessToken string) error
	Session(ctx context.Context, accessToken string) (*model.Session, error)
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error
	ChangePassword(ctx context.Context, sess *model.Session, req dto.ChangePasswordRequest) error
}

type IProfileService interface {
	ResolveProfile(ctx context.Context, ident *model.Identity) (*model.Profile, error)
	UpdateProfile(ctx context.Context, sess *model.Session, patch model.ProfilePatch) (*model.Profile, error)
}

type ICatalogService interface {
	List(ctx context.Context, q dto.CatalogQuery) (dto.CatalogResponse, error)
	Get(ctx context.Context, id string) (model.Driver, error)
}

type ICheckoutService interface {
	Start(ctx context.Context, ident *model.Identity, driverID string) (dto.CheckoutView, error)
	Get(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error)
	SetDuration(ctx context.Context, ident *model.Identity, id string, hours int) (dto.CheckoutView, error)
	SetTrip(ctx context.Context, ident *model.Identity, id string, req dto.TripRequest) (dto.CheckoutView, error)
	SetPayment(ctx context.Context, ident *model.Identity, id string, req dto.PaymentRequest) (dto.CheckoutView, error)
	Next(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error)
	Back(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error)
	Submit(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error)
}

type IBookingService interface {
	List(ctx context.Context, ident *model.Identity, q dto.ListQuery) (dto.BookingPage, error)
	Get(ctx context.Context, ident *model.Identity, id string) (model.Booking, error)
	Cancel(ctx context.Context, ident *model.Identity, id string) (model.Booking, error)
	Rate(ctx context.Context, ident *model.Identity, id string, rating int, review string) (model.Booking, error)
	MarkCompleted(ctx context.Context, id string) error
}

type IRegistrationService interface {
	CreateAccount(ctx context.Context, req dto.AccountRequest) (*model.Session, error)
	Prefill(ident *model.Identity) dto.PrefillResponse
	SubmitDriverDetails(ctx context.Context, sess *model.Session, app dto.DriverApplication, upload *dto.Upload) (dto.RegistrationResponse, error)
}
