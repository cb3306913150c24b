package middleware

import (
	"context"
	"errors"
	"net/http"

	"driver-booking/internal/booking-service/adapters/driver/myhttp/handle"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/mylogger"
)

type SessionResolver interface {
	Session(ctx context.Context, accessToken string) (*model.Session, error)
}

type AuthMiddleware struct {
	sessions SessionResolver
	mylog    mylogger.Logger
}

func NewAuthMiddleware(sessions SessionResolver, mylog mylogger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
		mylog:    mylog,
	}
}

// Wrap rejects requests without a live session and puts the session in the
// request context.
func (am *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := handle.BearerToken(r)
		if token == "" {
			handle.JsonError(w, myerrors.ErrUnauthenticated)
			return
		}

		sess, err := am.sessions.Session(r.Context(), token)
		if err != nil {
			if !errors.Is(err, myerrors.ErrUnauthenticated) {
				am.mylog.Action("auth_middleware").Error("cannot resolve session", err)
			}
			handle.JsonError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(handle.WithSession(r.Context(), sess)))
	})
}
