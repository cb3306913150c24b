package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/ports"
	"driver-booking/internal/mylogger"
)

const (
	EconomyMaxPrice = 500
	PremiumMaxPrice = 700
)

// tierIndex maps the tab indices the catalog page sends to tier names.
var tierIndex = map[string]string{
	"0": dto.TierAll,
	"1": dto.TierEconomy,
	"2": dto.TierPremium,
	"3": dto.TierLuxury,
}

// Filter applies tier, text and location filters, then sorts. The input
// slice is never modified and ties keep their input order.
func Filter(drivers []model.Driver, q dto.CatalogQuery) []model.Driver {
	out := make([]model.Driver, 0, len(drivers))
	search := strings.ToLower(strings.TrimSpace(q.Search))
	tier := normalizeTier(q.Tier)

	for _, d := range drivers {
		if !inTier(d, tier) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.Name), search) &&
			!strings.Contains(strings.ToLower(d.Vehicle), search) &&
			!strings.Contains(strings.ToLower(d.Location), search) {
			continue
		}
		if q.Location != "" && q.Location != dto.LocationAll && d.Location != q.Location {
			continue
		}
		out = append(out, d)
	}

	var less func(a, b model.Driver) bool
	switch q.SortBy {
	case dto.SortPriceLow:
		less = func(a, b model.Driver) bool { return a.Price < b.Price }
	case dto.SortPriceHigh:
		less = func(a, b model.Driver) bool { return a.Price > b.Price }
	case dto.SortExperience:
		less = func(a, b model.Driver) bool { return leadingInt(a.Experience) > leadingInt(b.Experience) }
	case dto.SortRating, "":
		less = func(a, b model.Driver) bool { return a.Rating > b.Rating }
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func normalizeTier(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if name, ok := tierIndex[t]; ok {
		return name
	}
	if t == "" {
		return dto.TierAll
	}
	return t
}

func inTier(d model.Driver, tier string) bool {
	switch tier {
	case dto.TierEconomy:
		return d.Price < EconomyMaxPrice
	case dto.TierPremium:
		return d.Price >= EconomyMaxPrice && d.Price < PremiumMaxPrice
	case dto.TierLuxury:
		return d.Price >= PremiumMaxPrice
	default:
		return true
	}
}

// Locations returns the distinct driver locations in first-seen order.
func Locations(drivers []model.Driver) []string {
	seen := make(map[string]bool, len(drivers))
	out := []string{}
	for _, d := range drivers {
		if d.Location == "" || seen[d.Location] {
			continue
		}
		seen[d.Location] = true
		out = append(out, d.Location)
	}
	return out
}

type CatalogService struct {
	mylog mylogger.Logger
	repo  ports.ICatalogRepo
}

func NewCatalogService(mylog mylogger.Logger, repo ports.ICatalogRepo) *CatalogService {
	return &CatalogService{mylog: mylog, repo: repo}
}

func (cs *CatalogService) List(ctx context.Context, q dto.CatalogQuery) (dto.CatalogResponse, error) {
	log := cs.mylog.Action("ListDrivers")

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	all, err := cs.repo.List(ctx)
	if err != nil {
		log.Error("cannot load catalog", err)
		return dto.CatalogResponse{}, fmt.Errorf("load catalog: %w", err)
	}

	drivers := Filter(all, q)
	return dto.CatalogResponse{
		Drivers:   drivers,
		Locations: Locations(all),
		Count:     len(drivers),
	}, nil
}

func (cs *CatalogService) Get(ctx context.Context, id string) (model.Driver, error) {
	log := cs.mylog.Action("GetDriver").With("driver_id", id)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	d, err := cs.repo.GetByID(ctx, id)
	if err != nil {
		log.Warn("cannot get driver", "error", err.Error())
		return model.Driver{}, err
	}
	return d, nil
}

func (cs *CatalogService) Locations(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	all, err := cs.repo.List(ctx)
	if err != nil {
		cs.mylog.Action("Locations").Error("cannot load catalog", err)
		return nil, err
	}
	return Locations(all), nil
}
