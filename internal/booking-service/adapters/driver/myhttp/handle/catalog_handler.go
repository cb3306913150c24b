package handle

import (
	"net/http"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"

	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	catalogService ports.ICatalogService
	log            mylogger.Logger
}

func NewCatalogHandler(cs ports.ICatalogService, log mylogger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: cs,
		log:            log,
	}
}

func (ch *CatalogHandler) ListDrivers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		res, err := ch.catalogService.List(r.Context(), dto.CatalogQuery{
			Search:   q.Get("q"),
			Location: q.Get("location"),
			Tier:     q.Get("tier"),
			SortBy:   q.Get("sort"),
		})
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, res)
	}
}

func (ch *CatalogHandler) GetDriver() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := ch.catalogService.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, d)
	}
}
