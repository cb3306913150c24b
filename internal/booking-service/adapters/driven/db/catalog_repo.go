package db

import (
	"context"
	"fmt"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"

	"github.com/jackc/pgx/v5"
)

type CatalogRepo struct {
	db *DB
}

func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

const catalogColumns = `id, name, image, rating, experience, location, vehicle, status, price, description`

// scanDriver reads a catalog row whose columns may be null and normalizes
// it with model.NewDriver.
func scanDriver(row pgx.Row) (model.Driver, error) {
	var (
		raw                                       model.RawDriver
		name, image, exp, loc, veh, status, descr *string
	)
	if err := row.Scan(&raw.ID, &name, &image, &raw.Rating, &exp, &loc, &veh, &status, &raw.Price, &descr); err != nil {
		return model.Driver{}, err
	}
	raw.Name = str(name)
	raw.Image = str(image)
	raw.Experience = str(exp)
	raw.Location = str(loc)
	raw.Vehicle = str(veh)
	raw.Status = str(status)
	raw.Description = str(descr)
	return model.NewDriver(raw), nil
}

func (cr *CatalogRepo) List(ctx context.Context) ([]model.Driver, error) {
	q := `SELECT ` + catalogColumns + ` FROM drivers ORDER BY id`

	rows, err := cr.db.Pool().Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []model.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (cr *CatalogRepo) GetByID(ctx context.Context, id string) (model.Driver, error) {
	q := `SELECT ` + catalogColumns + ` FROM drivers WHERE id = $1`

	d, err := scanDriver(cr.db.Pool().QueryRow(ctx, q, id))
	if err != nil {
		return model.Driver{}, mapErr(err, myerrors.ErrDriverNotFound, nil, "get driver")
	}
	return d, nil
}

func (cr *CatalogRepo) Upsert(ctx context.Context, d model.Driver) error {
	q := `
		INSERT INTO drivers (` + catalogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			image = EXCLUDED.image,
			rating = EXCLUDED.rating,
			experience = EXCLUDED.experience,
			location = EXCLUDED.location,
			vehicle = EXCLUDED.vehicle,
			status = EXCLUDED.status,
			price = EXCLUDED.price,
			description = EXCLUDED.description`

	_, err := cr.db.Pool().Exec(ctx, q,
		d.ID,
		d.Name,
		d.Image,
		d.Rating,
		d.Experience,
		d.Location,
		d.Vehicle,
		d.Status,
		d.Price,
		d.Description,
	)
	if err != nil {
		return fmt.Errorf("upsert driver: %w", err)
	}
	return nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
