package dto

import "driver-booking/internal/booking-service/core/domain/model"

const (
	TierAll     = "all"
	TierEconomy = "economy"
	TierPremium = "premium"
	TierLuxury  = "luxury"

	SortRating     = "rating"
	SortPriceLow   = "price_low"
	SortPriceHigh  = "price_high"
	SortExperience = "experience"

	LocationAll = "all"
)

type CatalogQuery struct {
	Search   string `json:"q"`
	Location string `json:"location"`
	Tier     string `json:"tier"`
	SortBy   string `json:"sort"`
}

type CatalogResponse struct {
	Drivers   []model.Driver `json:"drivers"`
	Locations []string       `json:"locations"`
	Count     int            `json:"count"`
}
