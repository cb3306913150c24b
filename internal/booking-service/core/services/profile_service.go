package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

type stepOutcome int

const (
	stepFound stepOutcome = iota
	stepNotFound
	stepFailed
)

// resolveStep is one link of the profile lookup chain.
type resolveStep struct {
	name string
	run  func(ctx context.Context, ident *model.Identity) (*model.Profile, error)
}

type ProfileService struct {
	mylog   mylogger.Logger
	auth    ports.IAuthProvider
	drivers ports.IDriverProfileRepo
	riders  ports.IRiderProfileRepo
	timeout time.Duration
	now     func() time.Time
}

func NewProfileService(
	mylog mylogger.Logger,
	auth ports.IAuthProvider,
	drivers ports.IDriverProfileRepo,
	riders ports.IRiderProfileRepo,
) *ProfileService {
	return &ProfileService{
		mylog:   mylog,
		auth:    auth,
		drivers: drivers,
		riders:  riders,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// ResolveProfile walks driver row, rider row, OAuth synthesis and finally an
// unsaved default. Lookup failures are logged and treated as not found, so
// the only nil profile is for a nil identity.
func (ps *ProfileService) ResolveProfile(ctx context.Context, ident *model.Identity) (*model.Profile, error) {
	if ident == nil {
		return nil, nil
	}
	log := ps.mylog.Action("ResolveProfile").With("user_id", ident.ID)

	for _, step := range ps.chain() {
		p, outcome := ps.runStep(ctx, step, ident)
		if outcome == stepFound {
			log.Debug("profile resolved", "step", step.name, "kind", p.Kind.String())
			return p, nil
		}
	}

	return model.RiderOf(&model.RiderProfile{
		Email:    ident.Email,
		FullName: ident.MetaString("full_name"),
	}), nil
}

func (ps *ProfileService) chain() []resolveStep {
	return []resolveStep{
		{name: "driver_profile", run: ps.driverByUser},
		{name: "rider_profile", run: ps.riderByEmail},
		{name: "oauth_profile", run: ps.synthesizeOAuth},
	}
}

func (ps *ProfileService) runStep(ctx context.Context, step resolveStep, ident *model.Identity) (*model.Profile, stepOutcome) {
	p, err := step.run(ctx, ident)
	switch {
	case err == nil && p != nil:
		return p, stepFound
	case err == nil, errors.Is(err, myerrors.ErrNotFound):
		return nil, stepNotFound
	default:
		ps.mylog.Error("profile lookup failed, falling through", err, "step", step.name, "user_id", ident.ID)
		return nil, stepFailed
	}
}

func (ps *ProfileService) driverByUser(ctx context.Context, ident *model.Identity) (*model.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, ps.timeout)
	defer cancel()

	d, err := ps.drivers.GetByUserID(ctx, ident.ID)
	if err != nil {
		return nil, err
	}
	return model.DriverOf(d), nil
}

func (ps *ProfileService) riderByEmail(ctx context.Context, ident *model.Identity) (*model.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, ps.timeout)
	defer cancel()

	r, err := ps.riders.GetByEmail(ctx, ident.Email)
	if err != nil {
		return nil, err
	}
	r.Persisted = true
	return model.RiderOf(r), nil
}

// synthesizeOAuth persists a rider profile built from provider name fields,
// then reads it back.
func (ps *ProfileService) synthesizeOAuth(ctx context.Context, ident *model.Identity) (*model.Profile, error) {
	if !ident.IsOAuth() {
		return nil, nil
	}
	if err := ps.insertRider(ctx, ident, model.ProfilePatch{}); err != nil {
		return nil, err
	}
	return ps.riderByEmail(ctx, ident)
}

// UpsertProfile performs exactly one write: update the driver row, update the
// rider row, or insert a new rider row.
func (ps *ProfileService) UpsertProfile(ctx context.Context, ident *model.Identity, patch model.ProfilePatch) error {
	if ident == nil {
		return myerrors.ErrUnauthenticated
	}
	log := ps.mylog.Action("UpsertProfile").With("user_id", ident.ID)

	ctx, cancel := context.WithTimeout(ctx, ps.timeout*2)
	defer cancel()

	driver, err := ps.drivers.GetByUserID(ctx, ident.ID)
	if err != nil && !errors.Is(err, myerrors.ErrNotFound) {
		log.Error("cannot check driver profile", err)
	}
	if driver != nil {
		upd := *driver
		upd.FullName = firstNonEmpty(deref(patch.FullName), ident.MetaString("full_name"), driver.FullName)
		upd.Email = firstNonEmpty(deref(patch.Email), ident.Email, driver.Email)
		upd.PhoneNumber = firstNonEmpty(deref(patch.Phone), ident.MetaString("phone"), driver.PhoneNumber)
		upd.UpdatedAt = ps.now()
		if err := ps.drivers.UpdateContact(ctx, ident.ID, upd); err != nil {
			log.Error("cannot update driver profile", err)
			return err
		}
		log.Info("driver profile updated")
		return nil
	}

	rider, err := ps.riders.GetByEmail(ctx, ident.Email)
	if err != nil && !errors.Is(err, myerrors.ErrNotFound) {
		log.Error("cannot check rider profile", err)
	}
	if rider != nil {
		if err := ps.updateRider(ctx, ident, rider, patch); err != nil {
			log.Error("cannot update rider profile", err)
			return err
		}
		log.Info("rider profile updated")
		return nil
	}

	if err := ps.insertRider(ctx, ident, patch); err != nil {
		log.Error("cannot create rider profile", err)
		return err
	}
	log.Info("rider profile created")
	return nil
}

// UpdateProfile writes the patch to the caller's profile, mirrors name and
// phone into the identity metadata, and returns the re-resolved profile.
// The metadata mirror is best-effort.
func (ps *ProfileService) UpdateProfile(ctx context.Context, sess *model.Session, patch model.ProfilePatch) (*model.Profile, error) {
	if sess == nil {
		return nil, myerrors.ErrUnauthenticated
	}
	log := ps.mylog.Action("UpdateProfile").With("user_id", sess.User.ID)

	if patch.FullName != nil {
		if err := validateName("full_name", *patch.FullName); err != nil {
			return nil, err
		}
	}
	if err := ps.UpsertProfile(ctx, &sess.User, patch); err != nil {
		return nil, err
	}

	meta := map[string]any{}
	if patch.FullName != nil {
		meta["full_name"] = *patch.FullName
	}
	if patch.Phone != nil {
		meta["phone"] = *patch.Phone
	}
	ident := &sess.User
	if len(meta) > 0 && ps.auth != nil {
		updated, err := ps.auth.UpdateCurrentUser(ctx, sess.AccessToken, model.UserPatch{Metadata: meta})
		if err != nil {
			log.Error("cannot update identity metadata", err)
		} else {
			ident = updated
		}
	}

	return ps.ResolveProfile(ctx, ident)
}

// MarkRiderDriver flags the identity's rider row as belonging to a driver,
// creating the row when it does not exist yet.
func (ps *ProfileService) MarkRiderDriver(ctx context.Context, ident *model.Identity, patch model.ProfilePatch) error {
	ctx, cancel := context.WithTimeout(ctx, ps.timeout*2)
	defer cancel()

	isDriver := true
	patch.IsDriver = &isDriver

	rider, err := ps.riders.GetByEmail(ctx, ident.Email)
	switch {
	case err == nil:
		return ps.updateRider(ctx, ident, rider, patch)
	case errors.Is(err, myerrors.ErrNotFound):
		return ps.insertRider(ctx, ident, patch)
	default:
		return err
	}
}

func (ps *ProfileService) updateRider(ctx context.Context, ident *model.Identity, rider *model.RiderProfile, patch model.ProfilePatch) error {
	upd := *rider
	upd.FullName = firstNonEmpty(deref(patch.FullName), ident.MetaString("full_name"), rider.FullName)
	upd.Phone = firstNonEmpty(deref(patch.Phone), ident.MetaString("phone"), rider.Phone)
	if patch.FirstName != nil {
		upd.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		upd.LastName = *patch.LastName
	}
	if patch.IsDriver != nil {
		upd.IsDriver = *patch.IsDriver
	}
	upd.UpdatedAt = ps.now()
	return ps.riders.Update(ctx, rider.ID, upd)
}

func (ps *ProfileService) insertRider(ctx context.Context, ident *model.Identity, patch model.ProfilePatch) error {
	now := ps.now()
	first := firstNonEmpty(deref(patch.FirstName), ident.MetaString("given_name"), ident.MetaString("first_name"))
	last := firstNonEmpty(deref(patch.LastName), ident.MetaString("family_name"), ident.MetaString("last_name"))
	r := model.RiderProfile{
		Email:     ident.Email,
		FullName:  firstNonEmpty(deref(patch.FullName), ident.MetaString("full_name"), ident.MetaString("name"), joinName(first, last)),
		FirstName: first,
		LastName:  last,
		Phone:     firstNonEmpty(deref(patch.Phone), ident.MetaString("phone")),
		AvatarURL: firstNonEmpty(deref(patch.AvatarURL), ident.MetaString("avatar_url")),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if patch.IsDriver != nil {
		r.IsDriver = *patch.IsDriver
	}
	_, err := ps.riders.Create(ctx, r)
	if errors.Is(err, myerrors.ErrDuplicate) {
		return nil
	}
	return err
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
