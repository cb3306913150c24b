package model

import "time"

type ProfileKind int

const (
	KindRider ProfileKind = iota
	KindDriver
)

func (k ProfileKind) String() string {
	switch k {
	case KindRider:
		return "rider"
	case KindDriver:
		return "driver"
	default:
		return "unknown"
	}
}

// Profile is either a rider or a driver profile; exactly one of Rider and
// Driver is set, selected by Kind.
type Profile struct {
	Kind   ProfileKind
	Rider  *RiderProfile
	Driver *DriverProfile
}

func RiderOf(r *RiderProfile) *Profile {
	return &Profile{Kind: KindRider, Rider: r}
}

func DriverOf(d *DriverProfile) *Profile {
	return &Profile{Kind: KindDriver, Driver: d}
}

// IsDriver is derived from the variant. A rider row flagged is_driver after
// driver intake still reports true.
func (p *Profile) IsDriver() bool {
	switch p.Kind {
	case KindDriver:
		return true
	case KindRider:
		return p.Rider != nil && p.Rider.IsDriver
	default:
		return false
	}
}

func (p *Profile) Email() string {
	switch p.Kind {
	case KindDriver:
		return p.Driver.Email
	case KindRider:
		return p.Rider.Email
	default:
		return ""
	}
}

func (p *Profile) FullName() string {
	switch p.Kind {
	case KindDriver:
		return p.Driver.FullName
	case KindRider:
		return p.Rider.FullName
	default:
		return ""
	}
}

type RiderProfile struct {
	ID        string    `json:"id,omitempty"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	IsDriver  bool      `json:"is_driver"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// Persisted is false for the in-memory default returned when no row exists.
	Persisted bool `json:"-"`
}

const DriverStatusPending = "pending"

type DriverProfile struct {
	ID                 string     `json:"id,omitempty"`
	UserID             string     `json:"user_id"`
	Email              string     `json:"email"`
	FullName           string     `json:"full_name"`
	PhoneNumber        string     `json:"phone_number"`
	LicenseNumber      string     `json:"license_number"`
	LicenseType        string     `json:"license_type"`
	LicenseExpiryDate  *time.Time `json:"license_expiry_date"`
	LicensePictureURL  *string    `json:"license_picture_url"`
	YearsOfExperience  int        `json:"years_of_experience"`
	VehicleType        string     `json:"vehicle_type"`
	PreviousEmployment string     `json:"previous_employment"`
	LanguagesSpoken    []string   `json:"languages_spoken"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ProfilePatch carries the optional fields of an upsert. Nil means "not
// supplied" so fallbacks apply.
type ProfilePatch struct {
	FullName  *string
	FirstName *string
	LastName  *string
	Phone     *string
	Email     *string
	IsDriver  *bool
	AvatarURL *string
}
