package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
)

type fakeDriverProfiles struct {
	mu      sync.Mutex
	byUser  map[string]model.DriverProfile
	getErr  error
	creates int
	updates int
}

func newFakeDriverProfiles() *fakeDriverProfiles {
	return &fakeDriverProfiles{byUser: map[string]model.DriverProfile{}}
}

func (f *fakeDriverProfiles) GetByUserID(_ context.Context, userID string) (*model.DriverProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byUser[userID]
	if !ok {
		return nil, myerrors.ErrProfileNotFound
	}
	return &p, nil
}

func (f *fakeDriverProfiles) Create(_ context.Context, p model.DriverProfile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byUser[p.UserID]; ok {
		return "", myerrors.ErrDuplicate
	}
	f.creates++
	p.ID = fmt.Sprintf("drv-%d", f.creates)
	f.byUser[p.UserID] = p
	return p.ID, nil
}

func (f *fakeDriverProfiles) UpdateContact(_ context.Context, userID string, p model.DriverProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	f.byUser[userID] = p
	return nil
}

type fakeRiderProfiles struct {
	mu        sync.Mutex
	byEmail   map[string]model.RiderProfile
	getErr    error
	createErr error
	creates   int
	updates   int
}

func newFakeRiderProfiles() *fakeRiderProfiles {
	return &fakeRiderProfiles{byEmail: map[string]model.RiderProfile{}}
}

func (f *fakeRiderProfiles) GetByEmail(_ context.Context, email string) (*model.RiderProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byEmail[email]
	if !ok {
		return nil, myerrors.ErrProfileNotFound
	}
	return &p, nil
}

func (f *fakeRiderProfiles) Create(_ context.Context, p model.RiderProfile) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	if _, ok := f.byEmail[p.Email]; ok {
		return "", myerrors.ErrDuplicate
	}
	f.creates++
	p.ID = fmt.Sprintf("rider-%d", f.creates)
	f.byEmail[p.Email] = p
	return p.ID, nil
}

func (f *fakeRiderProfiles) Update(_ context.Context, id string, p model.RiderProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, r := range f.byEmail {
		if r.ID == id {
			f.updates++
			p.ID = id
			f.byEmail[email] = p
			return nil
		}
	}
	return myerrors.ErrProfileNotFound
}

type fakeCatalog struct {
	drivers []model.Driver
	err     error
}

func (f *fakeCatalog) List(context.Context) ([]model.Driver, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]model.Driver(nil), f.drivers...), nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (model.Driver, error) {
	if f.err != nil {
		return model.Driver{}, f.err
	}
	for _, d := range f.drivers {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Driver{}, myerrors.ErrDriverNotFound
}

func (f *fakeCatalog) Upsert(_ context.Context, d model.Driver) error {
	f.drivers = append(f.drivers, d)
	return nil
}

type fakeBookings struct {
	mu        sync.Mutex
	rows      map[string]model.Booking
	createErr error
	cancelErr error
	reviewErr error
	getCalls  int
	creates   int
}

func newFakeBookings(rows ...model.Booking) *fakeBookings {
	f := &fakeBookings{rows: map[string]model.Booking{}}
	for _, b := range rows {
		f.rows[b.ID] = b
	}
	return f
}

func (f *fakeBookings) Create(_ context.Context, b model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.rows[b.ID]; ok {
		return myerrors.ErrDuplicate
	}
	f.creates++
	f.rows[b.ID] = b
	return nil
}

func (f *fakeBookings) ListByUser(_ context.Context, userID string) ([]model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Booking
	for _, b := range f.rows {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBookings) GetForUser(_ context.Context, id, userID string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	b, ok := f.rows[id]
	if !ok || b.UserID != userID {
		return model.Booking{}, myerrors.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookings) GetByID(_ context.Context, id string) (model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[id]
	if !ok {
		return model.Booking{}, myerrors.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeBookings) Cancel(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	b := f.rows[id]
	b.Status = model.StatusCancelled
	f.rows[id] = b
	return nil
}

func (f *fakeBookings) SetStatus(_ context.Context, id string, status model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.rows[id]
	b.Status = status
	f.rows[id] = b
	return nil
}

func (f *fakeBookings) SaveReview(_ context.Context, id, userID string, rating int, review string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reviewErr != nil {
		return f.reviewErr
	}
	b := f.rows[id]
	if b.Rated {
		return myerrors.ErrNotRateable
	}
	b.Rating, b.Review, b.Rated = &rating, &review, true
	f.rows[id] = b
	return nil
}

func (f *fakeBookings) get(id string) model.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

type fakeCheckoutStore struct {
	mu      sync.Mutex
	drafts  map[string]model.Checkout
	lastTTL time.Duration
}

func newFakeCheckoutStore() *fakeCheckoutStore {
	return &fakeCheckoutStore{drafts: map[string]model.Checkout{}}
}

func (f *fakeCheckoutStore) Save(_ context.Context, c model.Checkout, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drafts[c.ID] = c
	f.lastTTL = ttl
	return nil
}

func (f *fakeCheckoutStore) Load(_ context.Context, id string) (model.Checkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.drafts[id]
	if !ok {
		return model.Checkout{}, myerrors.ErrCheckoutExpired
	}
	return c, nil
}

type fakeBus struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (f *fakeBus) Publish(_ context.Context, key string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, key)
	return nil
}

func (f *fakeBus) Close() error { return nil }

func (f *fakeBus) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

type fakeStorage struct {
	objects map[string][]byte
	err     error
}

func (f *fakeStorage) Upload(_ context.Context, bucket, path string, body io.Reader, _ string) error {
	if f.err != nil {
		return f.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[bucket+"/"+path] = b
	return nil
}

func (f *fakeStorage) PublicURL(bucket, path string) string {
	return "http://files.test/" + bucket + "/" + path
}

type fakeAuth struct {
	mu           sync.Mutex
	session      *model.Session
	getErr       error
	handlers     map[int]ports.SessionHandler
	nextHandler  int
	unsubscribed int
	passwords    map[string]string
	exchange     *model.Session
	updateErr    error
	updates      []model.UserPatch
	resets       []string
	signUps      []map[string]any
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		handlers:  map[int]ports.SessionHandler{},
		passwords: map[string]string{},
	}
}

func (f *fakeAuth) GetSession(_ context.Context, token string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.session == nil || f.session.AccessToken != token {
		return nil, nil
	}
	s := *f.session
	return &s, nil
}

func (f *fakeAuth) OnSessionChange(_ string, h ports.SessionHandler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextHandler
	f.nextHandler++
	f.handlers[id] = h
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.handlers[id]; ok {
			delete(f.handlers, id)
			f.unsubscribed++
		}
	}
}

func (f *fakeAuth) emit(ev model.SessionEvent) {
	f.mu.Lock()
	hs := make([]ports.SessionHandler, 0, len(f.handlers))
	for _, h := range f.handlers {
		hs = append(hs, h)
	}
	f.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string, attrs map[string]any) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.passwords[email]; ok {
		return nil, myerrors.ErrEmailRegistered
	}
	f.passwords[email] = password
	f.signUps = append(f.signUps, attrs)
	return &model.Session{
		AccessToken: "tok-" + email,
		User:        model.Identity{ID: "id-" + email, Email: email, Provider: model.ProviderEmail, UserMetadata: attrs},
	}, nil
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return nil, myerrors.ErrInvalidCreds
	}
	return &model.Session{
		AccessToken: "tok-" + email,
		User:        model.Identity{ID: "id-" + email, Email: email, Provider: model.ProviderEmail},
	}, nil
}

func (f *fakeAuth) SignInWithOAuth(provider, redirectTo string) (string, error) {
	if provider != model.ProviderGoogle {
		return "", myerrors.ErrUnknownProvider
	}
	return "https://accounts.test/authorize?redirect_to=" + redirectTo, nil
}

func (f *fakeAuth) ExchangeOAuth(context.Context, string, string) (*model.Session, error) {
	if f.exchange == nil {
		return nil, myerrors.ErrInvalidToken
	}
	return f.exchange, nil
}

func (f *fakeAuth) SignOut(context.Context, string) error { return nil }

func (f *fakeAuth) SendPasswordReset(_ context.Context, email, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, email)
	return nil
}

func (f *fakeAuth) ResetPassword(_ context.Context, token, _ string) error {
	if token != "good" {
		return myerrors.ErrInvalidToken
	}
	return nil
}

func (f *fakeAuth) UpdateCurrentUser(_ context.Context, _ string, patch model.UserPatch) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updates = append(f.updates, patch)
	if f.session == nil {
		return &model.Identity{UserMetadata: patch.Metadata}, nil
	}
	u := f.session.User
	if u.UserMetadata == nil {
		u.UserMetadata = map[string]any{}
	}
	for k, v := range patch.Metadata {
		u.UserMetadata[k] = v
	}
	return &u, nil
}
