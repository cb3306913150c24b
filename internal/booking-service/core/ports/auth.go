package ports

import (
	"context"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
)

type SessionHandler func(model.SessionEvent)

// IAuthProvider is the auth collaborator.
type IAuthProvider interface {
	// GetSession returns (nil, nil) when the token carries no live session.
	GetSession(ctx context.Context, accessToken string) (*model.Session, error)
	// OnSessionChange subscribes to events for one user until the returned
	// func is called.
	OnSessionChange(userID string, handler SessionHandler) (unsubscribe func())

	SignUp(ctx context.Context, email, password string, attrs map[string]any) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignInWithOAuth(provider, redirectTo string) (string, error)
	ExchangeOAuth(ctx context.Context, provider, idToken string) (*model.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	SendPasswordReset(ctx context.Context, email, redirectTo string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	UpdateCurrentUser(ctx context.Context, accessToken string, patch model.UserPatch) (*model.Identity, error)
}

// IAuthUserRepo stores identities for the local auth provider.
type IAuthUserRepo interface {
	Create(ctx context.Context, user model.Identity, passwordHash []byte) (model.Identity, error)
	GetByEmail(ctx context.Context, email string) (model.Identity, []byte, error)
	GetByID(ctx context.Context, id string) (model.Identity, error)
	UpdateMetadata(ctx context.Context, id string, metadata map[string]any) (model.Identity, error)
	UpdatePassword(ctx context.Context, id string, passwordHash []byte) error
}

// ITokenStore keeps short-lived auth state: revoked token ids and
// password-reset tokens.
type ITokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	SaveResetToken(ctx context.Context, token, userID string, ttl time.Duration) error
	// ConsumeResetToken returns the owner and deletes the token.
	ConsumeResetToken(ctx context.Context, token string) (string, error)
}
