package handle

import (
	"context"
	"net/http"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"

	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	checkoutService ports.ICheckoutService
	log             mylogger.Logger
}

func NewCheckoutHandler(cs ports.ICheckoutService, log mylogger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: cs,
		log:             log,
	}
}

func (ch *CheckoutHandler) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.StartCheckoutRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}

		view, err := ch.checkoutService.Start(r.Context(), identityFrom(r), req.DriverID)
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, view)
	}
}

func (ch *CheckoutHandler) Get() http.HandlerFunc {
	return ch.step(ch.checkoutService.Get)
}

func (ch *CheckoutHandler) Next() http.HandlerFunc {
	return ch.step(ch.checkoutService.Next)
}

func (ch *CheckoutHandler) Back() http.HandlerFunc {
	return ch.step(ch.checkoutService.Back)
}

func (ch *CheckoutHandler) Submit() http.HandlerFunc {
	return ch.step(ch.checkoutService.Submit)
}

func (ch *CheckoutHandler) SetDuration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.DurationRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}
		ch.respond(w, r, func(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error) {
			return ch.checkoutService.SetDuration(ctx, ident, id, req.Hours)
		})
	}
}

func (ch *CheckoutHandler) SetTrip() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.TripRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}
		ch.respond(w, r, func(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error) {
			return ch.checkoutService.SetTrip(ctx, ident, id, req)
		})
	}
}

func (ch *CheckoutHandler) SetPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.PaymentRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}
		ch.respond(w, r, func(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error) {
			return ch.checkoutService.SetPayment(ctx, ident, id, req)
		})
	}
}

type checkoutAction func(ctx context.Context, ident *model.Identity, id string) (dto.CheckoutView, error)

func (ch *CheckoutHandler) step(action checkoutAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ch.respond(w, r, action)
	}
}

// respond writes the draft view. Failures on a loaded draft still carry the
// view so the client can render the error on the step that owns it;
// field validation is reported as 422.
func (ch *CheckoutHandler) respond(w http.ResponseWriter, r *http.Request, action checkoutAction) {
	view, err := action(r.Context(), identityFrom(r), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		jsonResponse(w, http.StatusOK, view)
	case view.ID == "":
		JsonError(w, err)
	case StatusFor(err) == http.StatusBadRequest:
		jsonResponse(w, http.StatusUnprocessableEntity, view)
	default:
		if view.Error == "" {
			view.Error = err.Error()
		}
		jsonResponse(w, StatusFor(err), view)
	}
}
