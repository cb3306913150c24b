package model

const (
	DefaultDriverName       = "Unknown Driver"
	DefaultDriverImage      = "/drivers/default.jpg"
	DefaultDriverExperience = "0 years"
	DefaultDriverLocation   = "Unknown"
	DefaultDriverVehicle    = "Standard"
	DefaultDriverStatus     = "Unavailable"
)

// Driver is a catalog entry.
type Driver struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
	Experience  string  `json:"experience"`
	Location    string  `json:"location"`
	Vehicle     string  `json:"vehicle"`
	Status      string  `json:"status"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
}

// RawDriver is a loosely-typed catalog row as it arrives from storage or a
// request body.
type RawDriver struct {
	ID          string
	Name        string
	Image       string
	Rating      *float64
	Experience  string
	Location    string
	Vehicle     string
	Status      string
	Price       *float64
	Description string
}

// NewDriver normalizes raw data, defaulting every missing field.
func NewDriver(raw RawDriver) Driver {
	d := Driver{
		ID:          raw.ID,
		Name:        orDefault(raw.Name, DefaultDriverName),
		Image:       orDefault(raw.Image, DefaultDriverImage),
		Experience:  orDefault(raw.Experience, DefaultDriverExperience),
		Location:    orDefault(raw.Location, DefaultDriverLocation),
		Vehicle:     orDefault(raw.Vehicle, DefaultDriverVehicle),
		Status:      orDefault(raw.Status, DefaultDriverStatus),
		Description: raw.Description,
	}
	if raw.Rating != nil {
		d.Rating = *raw.Rating
	}
	if raw.Price != nil {
		d.Price = *raw.Price
	}
	return d
}

func (d Driver) IsValid() bool {
	return d.ID != "" && d.Name != ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
