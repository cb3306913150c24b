package services

import (
	"context"
	"errors"
	"testing"

	"driver-booking/internal/booking-service/core/domain/dto"
	"driver-booking/internal/booking-service/core/domain/model"
	"driver-booking/internal/booking-service/core/myerrors"
	"driver-booking/internal/mylogger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceDrivers() []model.Driver {
	return []model.Driver{
		{ID: "1", Name: "Rahul Singh", Rating: 4.8, Experience: "5+ years", Location: "Mumbai", Vehicle: "Toyota Camry", Price: 599},
		{ID: "2", Name: "Vikram Joshi", Rating: 4.9, Experience: "3+ years", Location: "Delhi", Vehicle: "Honda City", Price: 499},
		{ID: "3", Name: "Arjun Malhotra", Rating: 4.7, Experience: "4+ years", Location: "Bangalore", Vehicle: "Hyundai Verna", Price: 699},
		{ID: "4", Name: "Neelam Iyer", Rating: 4.9, Experience: "6+ years", Location: "Chennai", Vehicle: "Maruti Dzire", Price: 449},
		{ID: "5", Name: "Pradeep Kumar", Rating: 4.6, Experience: "4+ years", Location: "Mumbai", Vehicle: "Honda Civic", Price: 549},
		{ID: "6", Name: "Sanjay Mehta", Rating: 4.8, Experience: "7+ years", Location: "Delhi", Vehicle: "Toyota Innova", Price: 799},
	}
}

func ids(ds []model.Driver) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func prices(ds []model.Driver) []float64 {
	out := make([]float64, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Price)
	}
	return out
}

func TestFilter_PriceLowAndEconomyTab(t *testing.T) {
	in := []model.Driver{
		{ID: "a", Name: "A", Price: 700},
		{ID: "b", Name: "B", Price: 499},
		{ID: "c", Name: "C", Price: 599},
	}

	sorted := Filter(in, dto.CatalogQuery{SortBy: dto.SortPriceLow})
	assert.Equal(t, []float64{499, 599, 700}, prices(sorted))

	economy := Filter(in, dto.CatalogQuery{Tier: dto.TierEconomy})
	assert.Equal(t, []float64{499}, prices(economy))

	// the input slice is untouched
	assert.Equal(t, []float64{700, 499, 599}, prices(in))
}

func TestFilter_Tiers(t *testing.T) {
	tests := []struct {
		tier string
		want []string
	}{
		{dto.TierAll, []string{"2", "4", "1", "6", "3", "5"}},
		{dto.TierEconomy, []string{"2", "4"}},
		{dto.TierPremium, []string{"1", "3", "5"}},
		{dto.TierLuxury, []string{"6"}},
		{"2", []string{"1", "3", "5"}},
		{"", []string{"2", "4", "1", "6", "3", "5"}},
	}
	for _, tt := range tests {
		t.Run(tt.tier, func(t *testing.T) {
			got := Filter(referenceDrivers(), dto.CatalogQuery{Tier: tt.tier})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_SearchMatchesNameVehicleOrLocation(t *testing.T) {
	d := referenceDrivers()

	assert.Equal(t, []string{"2"}, ids(Filter(d, dto.CatalogQuery{Search: "VIKRAM"})))
	assert.Equal(t, []string{"2", "5"}, ids(Filter(d, dto.CatalogQuery{Search: "honda"})))
	assert.Equal(t, []string{"1", "5"}, ids(Filter(d, dto.CatalogQuery{Search: "mum"})))
	assert.Empty(t, Filter(d, dto.CatalogQuery{Search: "nobody"}))
}

func TestFilter_Location(t *testing.T) {
	d := referenceDrivers()

	assert.Equal(t, []string{"6", "2"}, ids(Filter(d, dto.CatalogQuery{Location: "Delhi", SortBy: dto.SortPriceHigh})))
	assert.Len(t, Filter(d, dto.CatalogQuery{Location: dto.LocationAll}), 6)
	assert.Empty(t, Filter(d, dto.CatalogQuery{Location: "delhi"}))
}

func TestFilter_SortIsStable(t *testing.T) {
	d := referenceDrivers()

	// 2 and 4 both rate 4.9, 1 and 6 both rate 4.8
	assert.Equal(t, []string{"2", "4", "1", "6", "3", "5"}, ids(Filter(d, dto.CatalogQuery{SortBy: dto.SortRating})))
	// 3 and 5 both have 4+ years
	assert.Equal(t, []string{"6", "4", "1", "3", "5", "2"}, ids(Filter(d, dto.CatalogQuery{SortBy: dto.SortExperience})))
	assert.Equal(t, []string{"6", "3", "1", "5", "2", "4"}, ids(Filter(d, dto.CatalogQuery{SortBy: dto.SortPriceHigh})))
}

func TestFilter_Idempotent(t *testing.T) {
	q := dto.CatalogQuery{Search: "o", Tier: dto.TierPremium, SortBy: dto.SortExperience}
	first := Filter(referenceDrivers(), q)
	second := Filter(referenceDrivers(), q)
	assert.Equal(t, first, second)
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 5, leadingInt("5+ years"))
	assert.Equal(t, 12, leadingInt(" 12 years"))
	assert.Equal(t, 0, leadingInt("years"))
	assert.Equal(t, 0, leadingInt(""))
}

func TestLocations(t *testing.T) {
	assert.Equal(t, []string{"Mumbai", "Delhi", "Bangalore", "Chennai"}, Locations(referenceDrivers()))
}

func TestCatalogService(t *testing.T) {
	repo := &fakeCatalog{drivers: referenceDrivers()}
	svc := NewCatalogService(mylogger.Discard(), repo)

	res, err := svc.List(context.Background(), dto.CatalogQuery{Tier: dto.TierLuxury})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Len(t, res.Locations, 4)

	d, err := svc.Get(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Arjun Malhotra", d.Name)

	_, err = svc.Get(context.Background(), "99")
	assert.ErrorIs(t, err, myerrors.ErrNotFound)

	repo.err = errors.New("db down")
	_, err = svc.List(context.Background(), dto.CatalogQuery{})
	assert.Error(t, err)
}
