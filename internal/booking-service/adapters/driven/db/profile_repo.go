package db

import (
	"context"
	"fmt"
	"strings"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
)

// RiderProfileRepo stores user_profiles rows keyed by email.
type RiderProfileRepo struct {
	db *DB
}

func NewRiderProfileRepo(db *DB) *RiderProfileRepo {
	return &RiderProfileRepo{db: db}
}

func (rr *RiderProfileRepo) GetByEmail(ctx context.Context, email string) (*model.RiderProfile, error) {
	q := `
		SELECT
			id,
			email,
			full_name,
			first_name,
			last_name,
			phone,
			is_driver,
			avatar_url,
			created_at,
			updated_at
		FROM
			user_profiles
		WHERE
			email = $1`

	var p model.RiderProfile
	err := rr.db.Pool().QueryRow(ctx, q, strings.ToLower(email)).Scan(
		&p.ID,
		&p.Email,
		&p.FullName,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.IsDriver,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err, myerrors.ErrProfileNotFound, nil, "get rider profile")
	}
	p.Persisted = true
	return &p, nil
}

func (rr *RiderProfileRepo) Create(ctx context.Context, p model.RiderProfile) (string, error) {
	q := `
		INSERT INTO user_profiles (
			email,
			full_name,
			first_name,
			last_name,
			phone,
			is_driver,
			avatar_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	id := ""
	err := rr.db.Pool().QueryRow(ctx, q,
		strings.ToLower(p.Email),
		p.FullName,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.IsDriver,
		p.AvatarURL,
	).Scan(&id)
	if err != nil {
		return "", mapErr(err, myerrors.ErrProfileNotFound, myerrors.ErrDuplicate, "insert rider profile")
	}
	return id, nil
}

func (rr *RiderProfileRepo) Update(ctx context.Context, id string, p model.RiderProfile) error {
	q := `
		UPDATE user_profiles
		SET
			full_name = $2,
			first_name = $3,
			last_name = $4,
			phone = $5,
			is_driver = $6,
			avatar_url = $7,
			updated_at = NOW()
		WHERE id = $1`

	cmd, err := rr.db.Pool().Exec(ctx, q, id,
		p.FullName,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.IsDriver,
		p.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("update rider profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return myerrors.ErrProfileNotFound
	}
	return nil
}

// DriverProfileRepo stores driver_profiles rows keyed by user id.
type DriverProfileRepo struct {
	db *DB
}

func NewDriverProfileRepo(db *DB) *DriverProfileRepo {
	return &DriverProfileRepo{db: db}
}

func (dr *DriverProfileRepo) GetByUserID(ctx context.Context, userID string) (*model.DriverProfile, error) {
	q := `
		SELECT
			id,
			user_id,
			email,
			full_name,
			phone_number,
			license_number,
			license_type,
			license_expiry_date,
			license_picture_url,
			years_of_experience,
			vehicle_type,
			previous_employment,
			languages_spoken,
			status,
			created_at,
			updated_at
		FROM
			driver_profiles
		WHERE
			user_id = $1`

	var p model.DriverProfile
	err := dr.db.Pool().QueryRow(ctx, q, userID).Scan(
		&p.ID,
		&p.UserID,
		&p.Email,
		&p.FullName,
		&p.PhoneNumber,
		&p.LicenseNumber,
		&p.LicenseType,
		&p.LicenseExpiryDate,
		&p.LicensePictureURL,
		&p.YearsOfExperience,
		&p.VehicleType,
		&p.PreviousEmployment,
		&p.LanguagesSpoken,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err, myerrors.ErrProfileNotFound, nil, "get driver profile")
	}
	return &p, nil
}

func (dr *DriverProfileRepo) Create(ctx context.Context, p model.DriverProfile) (string, error) {
	if p.LanguagesSpoken == nil {
		p.LanguagesSpoken = []string{}
	}
	if p.Status == "" {
		p.Status = model.DriverStatusPending
	}

	q := `
		INSERT INTO driver_profiles (
			user_id,
			email,
			full_name,
			phone_number,
			license_number,
			license_type,
			license_expiry_date,
			license_picture_url,
			years_of_experience,
			vehicle_type,
			previous_employment,
			languages_spoken,
			status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	id := ""
	err := dr.db.Pool().QueryRow(ctx, q,
		p.UserID,
		p.Email,
		p.FullName,
		p.PhoneNumber,
		p.LicenseNumber,
		p.LicenseType,
		p.LicenseExpiryDate,
		p.LicensePictureURL,
		p.YearsOfExperience,
		p.VehicleType,
		p.PreviousEmployment,
		p.LanguagesSpoken,
		p.Status,
	).Scan(&id)
	if err != nil {
		return "", mapErr(err, myerrors.ErrProfileNotFound, myerrors.ErrDuplicate, "insert driver profile")
	}
	return id, nil
}

// UpdateContact rewrites the contact fields only; license data and status
// are owned by the application review.
func (dr *DriverProfileRepo) UpdateContact(ctx context.Context, userID string, p model.DriverProfile) error {
	q := `
		UPDATE driver_profiles
		SET
			full_name = $2,
			email = $3,
			phone_number = $4,
			updated_at = NOW()
		WHERE user_id = $1`

	cmd, err := dr.db.Pool().Exec(ctx, q, userID, p.FullName, p.Email, p.PhoneNumber)
	if err != nil {
		return fmt.Errorf("update driver profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return myerrors.ErrProfileNotFound
	}
	return nil
}
