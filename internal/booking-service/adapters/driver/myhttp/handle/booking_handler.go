package handle

import (
	"net/http"
	"strconv"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"

	"github.com/go-chi/chi/v5"
)

type BookingHandler struct {
	bookingService ports.IBookingService
	log            mylogger.Logger
}

func NewBookingHandler(bs ports.IBookingService, log mylogger.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bs,
		log:            log,
	}
}

func (bh *BookingHandler) ListBookings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page, err := queryInt(q.Get("page"), "page", 0)
		if err != nil {
			JsonError(w, err)
			return
		}
		rows, err := queryInt(q.Get("rows_per_page"), "rows_per_page", dto.DefaultRowsPerPage)
		if err != nil {
			JsonError(w, err)
			return
		}

		res, err := bh.bookingService.List(r.Context(), identityFrom(r), dto.ListQuery{
			Search:      q.Get("q"),
			Page:        page,
			RowsPerPage: rows,
		})
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, res)
	}
}

func (bh *BookingHandler) GetBooking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := bh.bookingService.Get(r.Context(), identityFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewBookingItem(b))
	}
}

func (bh *BookingHandler) CancelBooking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := bh.bookingService.Cancel(r.Context(), identityFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewBookingItem(b))
	}
}

func (bh *BookingHandler) ReviewBooking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.ReviewRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}

		b, err := bh.bookingService.Rate(r.Context(), identityFrom(r), chi.URLParam(r, "id"), req.Rating, req.Review)
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewBookingItem(b))
	}
}

func queryInt(raw, field string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, myerrors.Invalid(field, "must be a number")
	}
	return n, nil
}
