package myhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"driver-booking/internal/booking-service/adapters/driver/myhttp/handle"
	"driver-booking/internal/booking-service/adapters/driver/myhttp/middleware"
	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/mylogger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

var testSession = &model.Session{
	AccessToken: goodToken,
	User:        model.Identity{ID: "user-1", Email: "rider@example.com", Provider: model.ProviderEmail},
}

type stubAuth struct {
	loginErr error
	changed  *dto.ChangePasswordRequest
}

func (s *stubAuth) Register(context.Context, dto.RegisterRequest) (*model.Session, error) {
	return testSession, nil
}

func (s *stubAuth) Login(_ context.Context, req dto.LoginRequest) (*model.Session, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return testSession, nil
}

func (s *stubAuth) OAuthURL(provider, _ string) (dto.OAuthURLResponse, error) {
	if provider != "google" {
		return dto.OAuthURLResponse{}, myerrors.ErrUnknownProvider
	}
	return dto.OAuthURLResponse{Provider: provider, URL: "https://accounts.example/auth"}, nil
}

func (s *stubAuth) Callback(context.Context, string, string) (*model.Session, error) {
	return testSession, nil
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func (s *stubAuth) Session(_ context.Context, token string) (*model.Session, error) {
	if token != goodToken {
		return nil, myerrors.ErrUnauthenticated
	}
	return testSession, nil
}

func (s *stubAuth) ForgotPassword(context.Context, dto.ForgotPasswordRequest) error { return nil }

func (s *stubAuth) ResetPassword(context.Context, dto.ResetPasswordRequest) error {
	return myerrors.ErrInvalidToken
}

func (s *stubAuth) ChangePassword(_ context.Context, sess *model.Session, req dto.ChangePasswordRequest) error {
	if sess == nil {
		return myerrors.ErrUnauthenticated
	}
	s.changed = &req
	return nil
}

type stubProfiles struct{}

func (stubProfiles) ResolveProfile(_ context.Context, ident *model.Identity) (*model.Profile, error) {
	return model.RiderOf(&model.RiderProfile{Email: ident.Email, FullName: "Asha"}), nil
}

func (stubProfiles) UpdateProfile(_ context.Context, sess *model.Session, patch model.ProfilePatch) (*model.Profile, error) {
	if patch.FullName != nil && *patch.FullName == "" {
		return nil, myerrors.Invalid("full_name", "is required")
	}
	return model.RiderOf(&model.RiderProfile{Email: sess.User.Email, FullName: *patch.FullName}), nil
}

type stubCatalog struct {
	query dto.CatalogQuery
}

func (s *stubCatalog) List(_ context.Context, q dto.CatalogQuery) (dto.CatalogResponse, error) {
	s.query = q
	return dto.CatalogResponse{Drivers: []model.Driver{{ID: "1", Name: "Rajesh Kumar"}}, Count: 1}, nil
}

func (s *stubCatalog) Get(_ context.Context, id string) (model.Driver, error) {
	if id != "1" {
		return model.Driver{}, myerrors.ErrDriverNotFound
	}
	return model.Driver{ID: "1", Name: "Rajesh Kumar"}, nil
}

type stubCheckout struct{}

func (stubCheckout) Start(_ context.Context, ident *model.Identity, driverID string) (dto.CheckoutView, error) {
	if driverID == "" {
		return dto.CheckoutView{}, myerrors.ErrDriverRequired
	}
	return dto.CheckoutView{ID: "co-1", DurationHours: 4}, nil
}

func (stubCheckout) Get(_ context.Context, _ *model.Identity, id string) (dto.CheckoutView, error) {
	if id != "co-1" {
		return dto.CheckoutView{}, myerrors.ErrCheckoutExpired
	}
	return dto.CheckoutView{ID: id}, nil
}

func (stubCheckout) SetDuration(_ context.Context, _ *model.Identity, id string, hours int) (dto.CheckoutView, error) {
	return dto.CheckoutView{ID: id, DurationHours: hours}, nil
}

func (stubCheckout) SetTrip(_ context.Context, _ *model.Identity, id string, req dto.TripRequest) (dto.CheckoutView, error) {
	err := myerrors.Invalid("pickup_location", "Please enter pickup location")
	return dto.CheckoutView{ID: id, Step: 1, Error: err.Message, ErrorField: err.Field}, err
}

func (stubCheckout) SetPayment(_ context.Context, _ *model.Identity, id string, _ dto.PaymentRequest) (dto.CheckoutView, error) {
	return dto.CheckoutView{ID: id}, nil
}

func (stubCheckout) Next(_ context.Context, _ *model.Identity, id string) (dto.CheckoutView, error) {
	return dto.CheckoutView{ID: id, Step: 1}, nil
}

func (stubCheckout) Back(_ context.Context, _ *model.Identity, id string) (dto.CheckoutView, error) {
	return dto.CheckoutView{ID: id}, nil
}

func (stubCheckout) Submit(_ context.Context, _ *model.Identity, id string) (dto.CheckoutView, error) {
	return dto.CheckoutView{ID: id, Phase: "submitted"}, myerrors.ErrAlreadySubmitted
}

type stubBookings struct {
	query dto.ListQuery
}

func (s *stubBookings) List(_ context.Context, _ *model.Identity, q dto.ListQuery) (dto.BookingPage, error) {
	s.query = q
	return dto.BookingPage{Page: q.Page, RowsPerPage: q.RowsPerPage}, nil
}

func (s *stubBookings) Get(_ context.Context, _ *model.Identity, id string) (model.Booking, error) {
	switch id {
	case "bad":
		return model.Booking{}, myerrors.Invalid("id", myerrors.ErrInvalidBookingID.Error())
	case "missing":
		return model.Booking{}, myerrors.ErrBookingNotFound
	}
	return model.Booking{ID: id, Status: model.StatusConfirmed}, nil
}

func (s *stubBookings) Cancel(context.Context, *model.Identity, string) (model.Booking, error) {
	return model.Booking{}, myerrors.ErrNotCancellable
}

func (s *stubBookings) Rate(_ context.Context, _ *model.Identity, id string, rating int, review string) (model.Booking, error) {
	r := rating
	return model.Booking{ID: id, Status: model.StatusCompleted, Rating: &r, Review: &review, Rated: true}, nil
}

func (s *stubBookings) MarkCompleted(context.Context, string) error { return nil }

type stubRegistration struct {
	app    dto.DriverApplication
	upload []byte
	name   string
}

func (s *stubRegistration) CreateAccount(context.Context, dto.AccountRequest) (*model.Session, error) {
	return testSession, nil
}

func (s *stubRegistration) Prefill(ident *model.Identity) dto.PrefillResponse {
	return dto.PrefillResponse{Email: ident.Email}
}

func (s *stubRegistration) SubmitDriverDetails(_ context.Context, sess *model.Session, app dto.DriverApplication, upload *dto.Upload) (dto.RegistrationResponse, error) {
	s.app = app
	if upload != nil {
		s.name = upload.Filename
		s.upload, _ = io.ReadAll(upload.Body)
	}
	return dto.RegistrationResponse{DriverProfileID: "drv-1", Status: "pending", RedirectTo: "/login"}, nil
}

type routerFixture struct {
	h        http.Handler
	auth     *stubAuth
	catalog  *stubCatalog
	bookings *stubBookings
	reg      *stubRegistration
}

func newRouterFixture(t *testing.T, storageRoot string) routerFixture {
	t.Helper()
	log := mylogger.Discard()
	f := routerFixture{auth: &stubAuth{}, catalog: &stubCatalog{}, bookings: &stubBookings{}, reg: &stubRegistration{}}
	f.h = NewRouter(Handlers{
		Auth:         handle.NewAuthHandler(f.auth, log),
		Profile:      handle.NewProfileHandler(stubProfiles{}, log),
		Catalog:      handle.NewCatalogHandler(f.catalog, log),
		Checkout:     handle.NewCheckoutHandler(stubCheckout{}, log),
		Booking:      handle.NewBookingHandler(f.bookings, log),
		Registration: handle.NewRegistrationHandler(f.reg, log),
		AuthMW:       middleware.NewAuthMiddleware(f.auth, log),
		StorageRoot:  storageRoot,
	}, log, []string{"http://localhost:5173"})
	return f
}

func (f routerFixture) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func (f routerFixture) doJSON(method, path, token, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	return f.do(method, path, token, r, "application/json")
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newRouterFixture(t, "")

	for _, path := range []string{"/bookings", "/profile", "/checkout/co-1", "/driver-registration/prefill"} {
		rec := f.doJSON(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)

		rec = f.doJSON(http.MethodGet, path, "expired", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := f.doJSON(http.MethodGet, "/profile", goodToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "rider", body["kind"])
}

func TestAuthRoutes(t *testing.T) {
	f := newRouterFixture(t, "")

	rec := f.doJSON(http.MethodPost, "/auth/login", "", `{"email":"rider@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, goodToken, decodeBody(t, rec)["access_token"])

	f.auth.loginErr = myerrors.ErrInvalidCreds
	rec = f.doJSON(http.MethodPost, "/auth/login", "", `{"email":"rider@example.com","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.doJSON(http.MethodPost, "/auth/login", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(http.MethodGet, "/auth/oauth/google?redirect_to=/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.doJSON(http.MethodGet, "/auth/oauth/github", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(http.MethodPost, "/auth/reset-password", "", `{"token":"old"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(http.MethodGet, "/auth/session", goodToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.doJSON(http.MethodGet, "/auth/session", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.doJSON(http.MethodPost, "/profile/password", goodToken,
		`{"current_password":"a","new_password":"hunter22","confirm_password":"hunter22"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.auth.changed)
	assert.Equal(t, "hunter22", f.auth.changed.NewPassword)
}

func TestProfileUpdateValidation(t *testing.T) {
	f := newRouterFixture(t, "")

	rec := f.doJSON(http.MethodPut, "/profile", goodToken, `{"full_name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "full_name", body["field"])
	assert.EqualValues(t, http.StatusBadRequest, body["code"])

	rec = f.doJSON(http.MethodPut, "/profile", goodToken, `{"full_name":"Asha Rao"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogRoutes(t *testing.T) {
	f := newRouterFixture(t, "")

	rec := f.doJSON(http.MethodGet, "/drivers?q=raj&location=Mumbai&tier=premium&sort=price_low", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.CatalogQuery{Search: "raj", Location: "Mumbai", Tier: "premium", SortBy: "price_low"}, f.catalog.query)

	assert.Equal(t, http.StatusOK, f.doJSON(http.MethodGet, "/drivers/1", "", "").Code)
	assert.Equal(t, http.StatusNotFound, f.doJSON(http.MethodGet, "/drivers/99", "", "").Code)
}

func TestCheckoutRoutes(t *testing.T) {
	f := newRouterFixture(t, "")

	rec := f.doJSON(http.MethodPost, "/checkout", goodToken, `{"driver_id":"1"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.doJSON(http.MethodPost, "/checkout", goodToken, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(http.MethodGet, "/checkout/other", goodToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.doJSON(http.MethodPut, "/checkout/co-1/duration", goodToken, `{"hours":8}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 8, decodeBody(t, rec)["duration_hours"])

	rec = f.doJSON(http.MethodPut, "/checkout/co-1/trip", goodToken, `{"pickup_location":""}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "co-1", body["id"])
	assert.Equal(t, "pickup_location", body["error_field"])

	rec = f.doJSON(http.MethodPost, "/checkout/co-1/submit", goodToken, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "submitted", decodeBody(t, rec)["phase"])
}

func TestBookingRoutes(t *testing.T) {
	f := newRouterFixture(t, "")

	rec := f.doJSON(http.MethodGet, "/bookings?q=mumbai&page=2&rows_per_page=10", goodToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ListQuery{Search: "mumbai", Page: 2, RowsPerPage: 10}, f.bookings.query)

	rec = f.doJSON(http.MethodGet, "/bookings", goodToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.DefaultRowsPerPage, f.bookings.query.RowsPerPage)

	rec = f.doJSON(http.MethodGet, "/bookings?page=x", goodToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(http.MethodGet, "/bookings/b1", goodToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "primary", body["status_color"])
	assert.Equal(t, true, body["can_cancel"])

	assert.Equal(t, http.StatusBadRequest, f.doJSON(http.MethodGet, "/bookings/bad", goodToken, "").Code)
	assert.Equal(t, http.StatusNotFound, f.doJSON(http.MethodGet, "/bookings/missing", goodToken, "").Code)
	assert.Equal(t, http.StatusConflict, f.doJSON(http.MethodPost, "/bookings/b1/cancel", goodToken, "").Code)

	rec = f.doJSON(http.MethodPost, "/bookings/b1/review", goodToken, `{"rating":5,"review":"Great"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, true, body["rated"])
	assert.Equal(t, false, body["can_review"])
}

func TestDriverRegistrationMultipart(t *testing.T) {
	f := newRouterFixture(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("application", `{"full_name":"Ravi","license_type":"Light Commercial Vehicle (LCV)","languages":["English","Hindi"]}`))
	fw, err := mw.CreateFormFile("license_picture", "license.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	rec := f.do(http.MethodPost, "/driver-registration", goodToken, &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Ravi", f.reg.app.FullName)
	assert.Equal(t, []string{"English", "Hindi"}, f.reg.app.Languages)
	assert.Equal(t, "license.png", f.reg.name)
	assert.Equal(t, "png-bytes", string(f.reg.upload))

	rec = f.doJSON(http.MethodPost, "/driver-registration", goodToken, `{"full_name":"Ravi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.doJSON(http.MethodGet, "/driver-registration/prefill", goodToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rider@example.com", decodeBody(t, rec)["email"])
}

func TestPublicStorage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "driver-documents", "driver-licenses"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "driver-documents", "driver-licenses", "a.png"), []byte("img"), 0o644))
	f := newRouterFixture(t, root)

	rec := f.doJSON(http.MethodGet, "/storage/v1/object/public/driver-documents/driver-licenses/a.png", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "img", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))

	rec = f.doJSON(http.MethodGet, "/storage/v1/object/public/driver-documents/", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicStorageDownloadsActiveContent(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "driver-documents", "driver-licenses")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.html"), []byte("<script>alert(1)</script>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.svg"), []byte("<svg onload=alert(1)/>"), 0o644))
	f := newRouterFixture(t, root)

	for _, name := range []string{"x.html", "x.svg"} {
		rec := f.doJSON(http.MethodGet, "/storage/v1/object/public/driver-documents/driver-licenses/"+name, "", "")
		require.Equal(t, http.StatusOK, rec.Code, name)
		assert.Equal(t, "attachment", rec.Header().Get("Content-Disposition"), name)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"), name)
		assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "sandbox", name)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newRouterFixture(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/bookings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
