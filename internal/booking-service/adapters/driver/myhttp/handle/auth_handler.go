package handle

import (
	"net/http"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService ports.IAuthService
	log         mylogger.Logger
}

func NewAuthHandler(as ports.IAuthService, log mylogger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: as,
		log:         log,
	}
}

func (ah *AuthHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.RegisterRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}

		sess, err := ah.authService.Register(r.Context(), req)
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, dto.NewSessionResponse(sess))
	}
}

func (ah *AuthHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.LoginRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}

		sess, err := ah.authService.Login(r.Context(), req)
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewSessionResponse(sess))
	}
}

// OAuthURL returns the provider's authorize URL for the front-end to follow.
func (ah *AuthHandler) OAuthURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := ah.authService.OAuthURL(chi.URLParam(r, "provider"), r.URL.Query().Get("redirect_to"))
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, res)
	}
}

func (ah *AuthHandler) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		provider := q.Get("provider")
		if provider == "" {
			provider = "google"
		}

		sess, err := ah.authService.Callback(r.Context(), provider, q.Get("id_token"))
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewSessionResponse(sess))
	}
}

func (ah *AuthHandler) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ah.authService.Logout(r.Context(), BearerToken(r)); err != nil {
			JsonError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (ah *AuthHandler) Session() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := ah.authService.Session(r.Context(), BearerToken(r))
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewSessionResponse(sess))
	}
}

func (ah *AuthHandler) ForgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.ForgotPasswordRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}
		if err := ah.authService.ForgotPassword(r.Context(), req); err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusAccepted, map[string]string{
			"message": "If that email is registered, a reset link is on its way.",
		})
	}
}

func (ah *AuthHandler) ResetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.ResetPasswordRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}
		if err := ah.authService.ResetPassword(r.Context(), req); err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated"})
	}
}

func (ah *AuthHandler) ChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.ChangePasswordRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}
		if err := ah.authService.ChangePassword(r.Context(), SessionFrom(r.Context()), req); err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
	}
}
