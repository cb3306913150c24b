package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	messagebrokerdto "driver-booking/internal/booking-service/core/domain/message_broker_dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/config"
	"driver-booking/internal/mylogger"

	"github.com/google/uuid"
)

// Provider is the local identity provider: identities in Postgres,
// bcrypt hashes, HS256 access tokens, and revocation/reset state in Redis.
type Provider struct {
	mylog  mylogger.Logger
	users  ports.IAuthUserRepo
	tokens ports.ITokenStore
	bus    ports.IEventPublisher
	hub    *Hub

	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
	oauth      config.OAuthconfig
	now        func() time.Time
}

func New(
	mylog mylogger.Logger,
	appCfg *config.Appconfig,
	oauthCfg *config.OAuthconfig,
	users ports.IAuthUserRepo,
	tokens ports.ITokenStore,
	bus ports.IEventPublisher,
) *Provider {
	p := &Provider{
		mylog:      mylog,
		users:      users,
		tokens:     tokens,
		bus:        bus,
		hub:        NewHub(),
		secret:     []byte(appCfg.JwtSecret),
		sessionTTL: appCfg.SessionTTL,
		resetTTL:   appCfg.ResetTTL,
		now:        time.Now,
	}
	if oauthCfg != nil {
		p.oauth = *oauthCfg
	}
	return p
}

func (p *Provider) OnSessionChange(userID string, handler ports.SessionHandler) func() {
	return p.hub.Subscribe(userID, handler)
}

// ======================= SignUp =======================
func (p *Provider) SignUp(ctx context.Context, email, password string, attrs map[string]any) (*model.Session, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := p.users.Create(ctx, model.Identity{
		Email:        strings.ToLower(email),
		Provider:     model.ProviderEmail,
		UserMetadata: attrs,
		AppMetadata:  map[string]any{"provider": model.ProviderEmail},
	}, hash)
	if err != nil {
		return nil, err
	}
	return p.signIn(user)
}

// ======================= SignIn =======================
func (p *Provider) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	user, hash, err := p.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return nil, myerrors.ErrInvalidCreds
		}
		return nil, err
	}
	if !checkPassword(hash, password) {
		return nil, myerrors.ErrInvalidCreds
	}
	return p.signIn(user)
}

// GetSession returns (nil, nil) for tokens that are malformed, expired,
// revoked or whose user is gone.
func (p *Provider) GetSession(ctx context.Context, accessToken string) (*model.Session, error) {
	if accessToken == "" {
		return nil, nil
	}
	c, err := parseAccessToken(p.secret, accessToken)
	if err != nil {
		p.mylog.Action("GetSession").Debug("rejected access token", "error", err.Error())
		return nil, nil
	}

	revoked, err := p.tokens.IsRevoked(ctx, c.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, nil
	}

	user, err := p.users.GetByID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &model.Session{
		AccessToken: accessToken,
		TokenID:     c.TokenID,
		ExpiresAt:   c.ExpiresAt,
		User:        user,
	}, nil
}

// SignOut revokes the token for the rest of its lifetime. Signing out an
// invalid token is a no-op.
func (p *Provider) SignOut(ctx context.Context, accessToken string) error {
	c, err := parseAccessToken(p.secret, accessToken)
	if err != nil {
		return nil
	}
	if err := p.tokens.Revoke(ctx, c.TokenID, c.ExpiresAt.Sub(p.now())); err != nil {
		return err
	}
	p.hub.Emit(model.SessionEvent{Type: model.EventSignedOut, UserID: c.UserID, TokenID: c.TokenID})
	return nil
}

// SignInWithOAuth returns the provider's authorize URL.
func (p *Provider) SignInWithOAuth(provider, redirectTo string) (string, error) {
	if !p.knownProvider(provider) {
		return "", myerrors.ErrUnknownProvider
	}
	q := url.Values{}
	q.Set("client_id", p.oauth.ClientID)
	q.Set("redirect_uri", redirectTo)
	q.Set("response_type", "id_token")
	q.Set("scope", "openid email profile")
	q.Set("nonce", uuid.NewString())
	return p.oauth.AuthorizeURL + "?" + q.Encode(), nil
}

// ExchangeOAuth verifies a provider id token and signs its owner in,
// creating the identity on first use.
func (p *Provider) ExchangeOAuth(ctx context.Context, provider, idToken string) (*model.Session, error) {
	if !p.knownProvider(provider) || p.oauth.IDTokenSecret == "" {
		return nil, myerrors.ErrUnknownProvider
	}
	claims, err := parseHS256([]byte(p.oauth.IDTokenSecret), idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", myerrors.ErrInvalidToken, err)
	}
	if p.oauth.ClientID != "" && !claims.VerifyAudience(p.oauth.ClientID, true) {
		return nil, fmt.Errorf("%w: audience mismatch", myerrors.ErrInvalidToken)
	}
	email := strings.ToLower(claimString(claims, "email"))
	if email == "" {
		return nil, fmt.Errorf("%w: no email claim", myerrors.ErrInvalidToken)
	}

	user, _, err := p.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, myerrors.ErrNotFound):
		meta := map[string]any{}
		for claim, key := range map[string]string{
			"name":        "full_name",
			"given_name":  "given_name",
			"family_name": "family_name",
			"picture":     "avatar_url",
		} {
			if v := claimString(claims, claim); v != "" {
				meta[key] = v
			}
		}
		user, err = p.users.Create(ctx, model.Identity{
			Email:        email,
			Provider:     provider,
			UserMetadata: meta,
			AppMetadata:  map[string]any{"provider": provider},
		}, nil)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return p.signIn(user)
}

// SendPasswordReset stores a one-time token and hands it to the mailer.
// Unknown addresses succeed silently.
func (p *Provider) SendPasswordReset(ctx context.Context, email, redirectTo string) error {
	log := p.mylog.Action("SendPasswordReset")

	user, _, err := p.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, myerrors.ErrNotFound) {
			log.Debug("reset requested for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := p.tokens.SaveResetToken(ctx, token, user.ID, p.resetTTL); err != nil {
		return err
	}
	if p.bus == nil {
		log.Warn("no event bus, reset link not delivered", "user_id", user.ID)
		return nil
	}
	return p.bus.Publish(ctx, messagebrokerdto.PasswordResetRequested, messagebrokerdto.PasswordResetEvent{
		Email:      user.Email,
		Token:      token,
		RedirectTo: redirectTo,
		ExpiresAt:  p.now().Add(p.resetTTL),
	})
}

func (p *Provider) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := p.tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}
	hash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := p.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	p.hub.Emit(model.SessionEvent{Type: model.EventPasswordRecovery, UserID: userID})
	return nil
}

// UpdateCurrentUser applies a password and/or metadata change for the
// token's owner.
func (p *Provider) UpdateCurrentUser(ctx context.Context, accessToken string, patch model.UserPatch) (*model.Identity, error) {
	sess, err := p.GetSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, myerrors.ErrUnauthenticated
	}

	if patch.Password != "" {
		hash, err := hashPassword(patch.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := p.users.UpdatePassword(ctx, sess.User.ID, hash); err != nil {
			return nil, err
		}
	}

	user := sess.User
	if len(patch.Metadata) > 0 {
		if user, err = p.users.UpdateMetadata(ctx, sess.User.ID, patch.Metadata); err != nil {
			return nil, err
		}
	}

	sess.User = user
	p.hub.Emit(model.SessionEvent{Type: model.EventUserUpdated, UserID: user.ID, Session: sess})
	return &user, nil
}

func (p *Provider) knownProvider(provider string) bool {
	return provider != "" && provider != model.ProviderEmail && provider == p.oauth.Provider
}

func (p *Provider) signIn(user model.Identity) (*model.Session, error) {
	token, c, err := signAccessToken(p.secret, user.ID, user.Email, p.now(), p.sessionTTL)
	if err != nil {
		return nil, err
	}
	sess := &model.Session{
		AccessToken: token,
		TokenID:     c.TokenID,
		ExpiresAt:   c.ExpiresAt,
		User:        user,
	}
	p.hub.Emit(model.SessionEvent{Type: model.EventSignedIn, UserID: user.ID, TokenID: c.TokenID, Session: sess})
	return sess, nil
}
