package dto

import "driver-booking/internal/booking-service/core/domain/model"

var RowsPerPageOptions = []int{5, 10, 25}

const DefaultRowsPerPage = 5

type ListQuery struct {
	Search      string
	Page        int
	RowsPerPage int
}

type BookingItem struct {
	model.Booking
	StatusColor string `json:"status_color"`
	CanCancel   bool   `json:"can_cancel"`
	CanReview   bool   `json:"can_review"`
}

func NewBookingItem(b model.Booking) BookingItem {
	return BookingItem{
		Booking:     b,
		StatusColor: model.StatusColor(b.Status),
		CanCancel:   b.CanCancel(),
		CanReview:   b.CanRate(),
	}
}

type BookingPage struct {
	Items       []BookingItem `json:"items"`
	Total       int           `json:"total"`
	Page        int           `json:"page"`
	RowsPerPage int           `json:"rows_per_page"`
}

type ReviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}
