package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"driver-booking/internal/booking-service/core/domain/dto"
	messagebrokerdto "driver-booking/internal/booking-service/core/domain/message_broker_dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"

	"github.com/google/uuid"
)

const (
	LicenseFolder = "driver-licenses"
	LoginPath     = "/login"
)

// licenseExts are the file types accepted for a license picture.
var licenseExts = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "webp": true, "heic": true, "pdf": true,
}

type RegistrationService struct {
	mylog    mylogger.Logger
	auth     ports.IAuthProvider
	drivers  ports.IDriverProfileRepo
	storage  ports.IObjectStorage
	profiles *ProfileService
	events   ports.IEventPublisher
	bucket   string
	now      func() time.Time
}

func NewRegistrationService(
	mylog mylogger.Logger,
	auth ports.IAuthProvider,
	drivers ports.IDriverProfileRepo,
	storage ports.IObjectStorage,
	profiles *ProfileService,
	events ports.IEventPublisher,
	bucket string,
) *RegistrationService {
	return &RegistrationService{
		mylog:    mylog,
		auth:     auth,
		drivers:  drivers,
		storage:  storage,
		profiles: profiles,
		events:   events,
		bucket:   bucket,
		now:      time.Now,
	}
}

// CreateAccount is the first intake step for email sign-ups.
func (rs *RegistrationService) CreateAccount(ctx context.Context, req dto.AccountRequest) (*model.Session, error) {
	log := rs.mylog.Action("CreateDriverAccount")

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if err := validateName("full_name", req.FullName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateConfirm(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}

	sess, err := rs.auth.SignUp(ctx, email, req.Password, map[string]any{
		"full_name": req.FullName,
		"phone":     req.PhoneNumber,
		"is_driver": true,
	})
	if err != nil {
		if !errors.Is(err, myerrors.ErrEmailRegistered) {
			log.Error("cannot create driver account", err)
		}
		return nil, err
	}
	log.Info("driver account created", "user_id", sess.User.ID)
	return sess, nil
}

// Prefill lets OAuth identities skip account creation.
func (rs *RegistrationService) Prefill(ident *model.Identity) dto.PrefillResponse {
	if ident == nil {
		return dto.PrefillResponse{}
	}
	res := dto.PrefillResponse{
		FullName: firstNonEmpty(ident.MetaString("full_name"), ident.MetaString("name")),
		Email:    ident.Email,
	}
	if ident.IsOAuth() {
		res.NextStep = 1
	}
	return res
}

// SubmitDriverDetails writes a pending driver profile. The document upload
// and the OAuth metadata updates are best-effort.
func (rs *RegistrationService) SubmitDriverDetails(ctx context.Context, sess *model.Session, app dto.DriverApplication, upload *dto.Upload) (dto.RegistrationResponse, error) {
	if sess == nil {
		return dto.RegistrationResponse{}, myerrors.ErrUnauthenticated
	}
	ident := sess.User
	log := rs.mylog.Action("SubmitDriverDetails").With("user_id", ident.ID)

	if err := validateApplication(app); err != nil {
		return dto.RegistrationResponse{}, err
	}

	var pictureURL *string
	if upload != nil && upload.Body != nil {
		url, err := rs.uploadLicense(ctx, upload)
		if err != nil {
			log.Error("cannot upload license picture, continuing without it", err)
		} else {
			pictureURL = &url
		}
	}

	p := model.DriverProfile{
		UserID:             ident.ID,
		Email:              firstNonEmpty(ident.Email, app.Email),
		FullName:           strings.TrimSpace(app.FullName),
		PhoneNumber:        strings.TrimSpace(app.PhoneNumber),
		LicenseNumber:      strings.TrimSpace(app.LicenseNumber),
		LicenseType:        app.LicenseType,
		LicenseExpiryDate:  app.LicenseExpiryDate,
		LicensePictureURL:  pictureURL,
		YearsOfExperience:  leadingInt(app.Experience),
		VehicleType:        app.VehicleType,
		PreviousEmployment: app.PreviousEmployment,
		LanguagesSpoken:    app.Languages,
		Status:             model.DriverStatusPending,
		CreatedAt:          rs.now(),
		UpdatedAt:          rs.now(),
	}

	insertCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	id, err := rs.drivers.Create(insertCtx, p)
	cancel()
	if err != nil {
		if errors.Is(err, myerrors.ErrDuplicate) {
			log.Warn("driver profile already exists")
			return dto.RegistrationResponse{}, err
		}
		log.Error("cannot create driver profile", err)
		return dto.RegistrationResponse{}, fmt.Errorf("create driver profile: %w", err)
	}

	if ident.IsOAuth() {
		rs.flagOAuthDriver(ctx, sess, app, log)
	}

	log.Info("driver application submitted", "driver_profile_id", id)
	publish(ctx, log, rs.events, messagebrokerdto.DriverApplicationQueued, messagebrokerdto.DriverApplicationEvent{
		DriverProfileID: id,
		UserID:          ident.ID,
		Email:           p.Email,
		Status:          p.Status,
		Timestamp:       p.CreatedAt,
	})

	return dto.RegistrationResponse{
		DriverProfileID:   id,
		Status:            p.Status,
		LicensePictureURL: pictureURL,
		Message:           "Driver registration successful! Your application is pending approval.",
		RedirectTo:        LoginPath,
	}, nil
}

func (rs *RegistrationService) uploadLicense(ctx context.Context, upload *dto.Upload) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(upload.Filename), "."))
	if !licenseExts[ext] {
		return "", myerrors.Invalid("license_picture", "must be a JPEG, PNG, WebP, HEIC or PDF file")
	}
	objectPath := fmt.Sprintf("%s/%s.%s", LicenseFolder, uuid.NewString(), ext)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := rs.storage.Upload(ctx, rs.bucket, objectPath, upload.Body, upload.ContentType); err != nil {
		return "", err
	}
	return rs.storage.PublicURL(rs.bucket, objectPath), nil
}

func (rs *RegistrationService) flagOAuthDriver(ctx context.Context, sess *model.Session, app dto.DriverApplication, log mylogger.Logger) {
	if _, err := rs.auth.UpdateCurrentUser(ctx, sess.AccessToken, model.UserPatch{
		Metadata: map[string]any{"is_driver": true},
	}); err != nil {
		log.Error("cannot update identity metadata", err)
	}

	if err := rs.profiles.MarkRiderDriver(ctx, &sess.User, model.ProfilePatch{
		FullName: optional(app.FullName),
		Phone:    optional(app.PhoneNumber),
	}); err != nil {
		log.Error("cannot flag profile as driver", err)
	}
}

func validateApplication(app dto.DriverApplication) error {
	if err := validateName("full_name", app.FullName); err != nil {
		return err
	}
	if blank(app.PhoneNumber) {
		return myerrors.Invalid("phone_number", "is required")
	}
	if blank(app.LicenseNumber) {
		return myerrors.Invalid("license_number", "is required")
	}
	if !contains(dto.LicenseTypes, app.LicenseType) {
		return myerrors.Invalid("license_type", "Please select a license type")
	}
	if app.LicenseExpiryDate == nil || app.LicenseExpiryDate.IsZero() {
		return myerrors.Invalid("license_expiry_date", "is required")
	}
	if !contains(dto.VehicleTypes, app.VehicleType) {
		return myerrors.Invalid("vehicle_type", "Please select a vehicle type")
	}
	for _, l := range app.Languages {
		if !contains(dto.Languages, l) {
			return myerrors.Invalid("languages", fmt.Sprintf("unsupported language %q", l))
		}
	}
	return nil
}
