package dto

import (
	"io"
	"time"
)

var (
	LicenseTypes = []string{
		"Commercial Driver License (CDL)",
		"Light Commercial Vehicle (LCV)",
		"Heavy Commercial Vehicle (HCV)",
		"Public Service Vehicle (PSV)",
	}

	VehicleTypes = []string{
		"Sedan",
		"SUV",
		"Luxury Sedan",
		"Premium SUV",
		"Van",
	}

	Languages = []string{
		"English",
		"Hindi",
		"Marathi",
		"Gujarati",
		"Tamil",
		"Telugu",
		"Kannada",
		"Malayalam",
	}
)

type AccountRequest struct {
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type DriverApplication struct {
	FullName           string     `json:"full_name"`
	PhoneNumber        string     `json:"phone_number"`
	Email              string     `json:"email"`
	LicenseNumber      string     `json:"license_number"`
	LicenseType        string     `json:"license_type"`
	LicenseExpiryDate  *time.Time `json:"license_expiry_date"`
	Experience         string     `json:"experience"`
	VehicleType        string     `json:"vehicle_type"`
	PreviousEmployment string     `json:"previous_employment"`
	Languages          []string   `json:"languages"`
}

// Upload is an optional document attached to a driver application.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type PrefillResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	NextStep int    `json:"next_step"`
}

type RegistrationResponse struct {
	DriverProfileID   string  `json:"driver_profile_id"`
	Status            string  `json:"status"`
	LicensePictureURL *string `json:"license_picture_url"`
	Message           string  `json:"message"`
	RedirectTo        string  `json:"redirect_to"`
}
