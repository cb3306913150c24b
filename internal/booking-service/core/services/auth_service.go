package services

import (
	"context"
	"errors"
	"strings"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

// AuthService validates auth requests locally and passes them through to
// the auth provider.
type AuthService struct {
	mylog    mylogger.Logger
	auth     ports.IAuthProvider
	profiles *ProfileService
}

func NewAuthService(mylog mylogger.Logger, auth ports.IAuthProvider, profiles *ProfileService) *AuthService {
	return &AuthService{
		mylog:    mylog,
		auth:     auth,
		profiles: profiles,
	}
}

// ======================= Register =======================
func (as *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*model.Session, error) {
	log := as.mylog.Action("Register")

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	fullName := firstNonEmpty(req.FullName, joinName(req.FirstName, req.LastName))
	if err := validateName("full_name", fullName); err != nil {
		return nil, err
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}
	if err := validateConfirm(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	sess, err := as.auth.SignUp(ctx, req.Email, req.Password, map[string]any{
		"full_name":  fullName,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"phone":      req.Phone,
	})
	if err != nil {
		if errors.Is(err, myerrors.ErrEmailRegistered) {
			log.Warn("Failed to register, email already registered")
			return nil, err
		}
		log.Error("Failed to sign up", err)
		return nil, err
	}

	log.Info("User registered successfully", "user_id", sess.User.ID)
	return sess, nil
}

// ======================= Login =======================
func (as *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*model.Session, error) {
	log := as.mylog.Action("Login")

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, myerrors.Invalid("password", "is required")
	}

	sess, err := as.auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, myerrors.ErrInvalidCreds) {
			log.Debug("Failed to login, invalid credentials")
			return nil, err
		}
		log.Error("Failed to sign in", err)
		return nil, err
	}
	return sess, nil
}

func (as *AuthService) OAuthURL(provider, redirectTo string) (dto.OAuthURLResponse, error) {
	url, err := as.auth.SignInWithOAuth(provider, redirectTo)
	if err != nil {
		as.mylog.Action("OAuthURL").Warn("cannot build authorize url", "provider", provider, "error", err.Error())
		return dto.OAuthURLResponse{}, err
	}
	return dto.OAuthURLResponse{Provider: provider, URL: url}, nil
}

// Callback completes an OAuth sign-in and makes sure a profile row exists
// for the identity. Profile failures do not fail the sign-in.
func (as *AuthService) Callback(ctx context.Context, provider, idToken string) (*model.Session, error) {
	log := as.mylog.Action("OAuthCallback").With("provider", provider)

	if idToken == "" {
		return nil, myerrors.Invalid("id_token", "is required")
	}
	sess, err := as.auth.ExchangeOAuth(ctx, provider, idToken)
	if err != nil {
		log.Warn("Authentication failed", "error", err.Error())
		return nil, err
	}

	u := sess.User
	full, first, last := u.MetaString("full_name"), u.MetaString("given_name"), u.MetaString("family_name")
	if err := as.profiles.UpsertProfile(ctx, &u, model.ProfilePatch{
		FullName:  optional(full),
		FirstName: optional(first),
		LastName:  optional(last),
	}); err != nil {
		log.Error("cannot create profile after oauth sign in", err, "user_id", u.ID)
	}
	return sess, nil
}

func (as *AuthService) Logout(ctx context.Context, accessToken string) error {
	if err := as.auth.SignOut(ctx, accessToken); err != nil {
		as.mylog.Action("Logout").Error("cannot sign out", err)
		return err
	}
	return nil
}

// Session returns the live session behind a token.
func (as *AuthService) Session(ctx context.Context, accessToken string) (*model.Session, error) {
	if accessToken == "" {
		return nil, myerrors.ErrUnauthenticated
	}
	sess, err := as.auth.GetSession(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, myerrors.ErrUnauthenticated
	}
	return sess, nil
}

// ForgotPassword never reveals whether the address is registered.
func (as *AuthService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) error {
	log := as.mylog.Action("ForgotPassword")

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if err := validateEmail(email); err != nil {
		return err
	}
	redirect := firstNonEmpty(req.RedirectTo, "/reset-password")
	if err := as.auth.SendPasswordReset(ctx, email, redirect); err != nil {
		log.Error("cannot send password reset", err)
		return err
	}
	return nil
}

func (as *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) error {
	log := as.mylog.Action("ResetPassword")

	if req.Token == "" {
		return myerrors.Invalid("token", "is required")
	}
	if err := validatePassword("password", req.Password); err != nil {
		return err
	}
	if err := validateConfirm(req.Password, req.ConfirmPassword); err != nil {
		return err
	}
	if err := as.auth.ResetPassword(ctx, req.Token, req.Password); err != nil {
		log.Warn("cannot reset password", "error", err.Error())
		return err
	}
	return nil
}

// ChangePassword re-verifies the current password before replacing it.
func (as *AuthService) ChangePassword(ctx context.Context, sess *model.Session, req dto.ChangePasswordRequest) error {
	if sess == nil {
		return myerrors.ErrUnauthenticated
	}
	log := as.mylog.Action("ChangePassword").With("user_id", sess.User.ID)

	if req.NewPassword != req.ConfirmPassword {
		return myerrors.Invalid("confirm_password", "New passwords do not match")
	}
	if err := validatePassword("new_password", req.NewPassword); err != nil {
		return err
	}

	if _, err := as.auth.SignIn(ctx, sess.User.Email, req.CurrentPassword); err != nil {
		if errors.Is(err, myerrors.ErrInvalidCreds) {
			return myerrors.Invalid("current_password", "Current password is incorrect")
		}
		log.Error("cannot verify current password", err)
		return err
	}

	if _, err := as.auth.UpdateCurrentUser(ctx, sess.AccessToken, model.UserPatch{Password: req.NewPassword}); err != nil {
		log.Error("cannot update password", err)
		return err
	}
	log.Info("password changed")
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
