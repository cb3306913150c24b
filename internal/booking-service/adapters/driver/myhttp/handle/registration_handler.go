package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

const maxUploadBytes = 10 << 20

type RegistrationHandler struct {
	registrationService ports.IRegistrationService
	log                 mylogger.Logger
}

func NewRegistrationHandler(rs ports.IRegistrationService, log mylogger.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: rs,
		log:                 log,
	}
}

func (rh *RegistrationHandler) CreateAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := dto.AccountRequest{}
		if err := decodeJSON(w, r, &req); err != nil {
			JsonError(w, err)
			return
		}

		sess, err := rh.registrationService.CreateAccount(r.Context(), req)
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, dto.NewSessionResponse(sess))
	}
}

func (rh *RegistrationHandler) Prefill() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, rh.registrationService.Prefill(identityFrom(r)))
	}
}

// SubmitDetails takes a multipart form: an "application" JSON part and an
// optional "license_picture" file.
func (rh *RegistrationHandler) SubmitDetails() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := rh.log.Action("SubmitDriverDetails")

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+maxBodyBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			JsonError(w, myerrors.Invalid("", "expected a multipart form"))
			return
		}
		defer r.MultipartForm.RemoveAll()

		app := dto.DriverApplication{}
		if err := json.Unmarshal([]byte(r.FormValue("application")), &app); err != nil {
			JsonError(w, myerrors.Invalid("application", "invalid application data"))
			return
		}

		var upload *dto.Upload
		file, header, err := r.FormFile("license_picture")
		switch {
		case err == nil:
			defer file.Close()
			upload = &dto.Upload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		case errors.Is(err, http.ErrMissingFile):
		default:
			log.Warn("cannot read license picture", "error", err.Error())
		}

		res, err := rh.registrationService.SubmitDriverDetails(r.Context(), SessionFrom(r.Context()), app, upload)
		if err != nil {
			JsonError(w, err)
			return
		}
		jsonResponse(w, http.StatusCreated, res)
	}
}
