package db

import (
	"context"
	_ "embed"
	"fmt"

	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/ports"

	"gopkg.in/yaml.v3"
)

//go:embed migrations/seed_drivers.yaml
var seedDrivers []byte

type seedDriver struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Image       string   `yaml:"image"`
	Rating      *float64 `yaml:"rating"`
	Experience  string   `yaml:"experience"`
	Location    string   `yaml:"location"`
	Vehicle     string   `yaml:"vehicle"`
	Status      string   `yaml:"status"`
	Price       *float64 `yaml:"price"`
	Description string   `yaml:"description"`
}

// ReferenceDrivers returns the built-in catalog.
func ReferenceDrivers() ([]model.Driver, error) {
	var raw []seedDriver
	if err := yaml.Unmarshal(seedDrivers, &raw); err != nil {
		return nil, fmt.Errorf("parse seed drivers: %w", err)
	}

	drivers := make([]model.Driver, 0, len(raw))
	for _, r := range raw {
		drivers = append(drivers, model.NewDriver(model.RawDriver(r)))
	}
	return drivers, nil
}

// Seed upserts the reference catalog. It is safe to run repeatedly.
func Seed(ctx context.Context, repo ports.ICatalogRepo) (int, error) {
	drivers, err := ReferenceDrivers()
	if err != nil {
		return 0, err
	}
	for _, d := range drivers {
		if err := repo.Upsert(ctx, d); err != nil {
			return 0, fmt.Errorf("seed driver %s: %w", d.ID, err)
		}
	}
	return len(drivers), nil
}
