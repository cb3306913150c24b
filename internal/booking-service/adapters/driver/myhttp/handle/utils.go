package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
)

const maxBodyBytes = 1 << 20

type ctxKey int

const sessionKey ctxKey = iota

func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFrom returns the session put in place by the auth middleware.
func SessionFrom(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionKey).(*model.Session)
	return sess
}

func identityFrom(r *http.Request) *model.Identity {
	sess := SessionFrom(r.Context())
	if sess == nil {
		return nil
	}
	return &sess.User
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return myerrors.Invalid("", fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// jsonResponse writes data as a JSON-encoded response with the given code.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// JsonError writes err as {"error","code","field"} with the status that
// StatusFor assigns to it. Unclassified errors are not echoed.
func JsonError(w http.ResponseWriter, err error) {
	code := StatusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	body := map[string]interface{}{
		"error": msg,
		"code":  code,
	}
	if field := myerrors.FieldOf(err); field != "" {
		body["field"] = field
	}
	jsonResponse(w, code, body)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, myerrors.ErrValidation),
		errors.Is(err, myerrors.ErrInvalidBookingID),
		errors.Is(err, myerrors.ErrDriverRequired),
		errors.Is(err, myerrors.ErrInvalidToken),
		errors.Is(err, myerrors.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, myerrors.ErrUnauthenticated),
		errors.Is(err, myerrors.ErrInvalidCreds):
		return http.StatusUnauthorized
	case errors.Is(err, myerrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, myerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, myerrors.ErrInvalidState),
		errors.Is(err, myerrors.ErrAlreadySubmitted),
		errors.Is(err, myerrors.ErrNotCancellable),
		errors.Is(err, myerrors.ErrNotRateable),
		errors.Is(err, myerrors.ErrEmailRegistered),
		errors.Is(err, myerrors.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
