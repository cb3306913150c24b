package handle

import (
	"net/http"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

type ProfileHandler struct {
	profileService ports.IProfileService
	log            mylogger.Logger
}

func NewProfileHandler(ps ports.IProfileService, log mylogger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileService: ps,
		log:            log,
	}
}

func (ph *ProfileHandler) GetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ph.profileService.ResolveProfile(r.Context(), identityFrom(r))
		if err == nil && p == nil {
			err = myerrors.ErrUnauthenticated
		}
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewProfileResponse(p))
	}
}

func (ph *ProfileHandler) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.UpdateProfileRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}

		p, err := ph.profileService.UpdateProfile(r.Context(), SessionFrom(r.Context()), req.Patch())
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusOK, dto.NewProfileResponse(p))
	}
}
