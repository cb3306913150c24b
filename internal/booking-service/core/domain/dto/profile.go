package dto

import "driver-booking/internal/booking-service/core/domain/model"

type ProfileResponse struct {
	Kind     string `json:"kind"`
	IsDriver bool   `json:"is_driver"`
	Profile  any    `json:"profile"`
}

func NewProfileResponse(p *model.Profile) ProfileResponse {
	res := ProfileResponse{Kind: p.Kind.String(), IsDriver: p.IsDriver()}
	switch p.Kind {
	case model.KindDriver:
		res.Profile = p.Driver
	case model.KindRider:
		res.Profile = p.Rider
	}
	return res
}

type UpdateProfileRequest struct {
	FullName  *string `json:"full_name"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func (r UpdateProfileRequest) Patch() model.ProfilePatch {
	return model.ProfilePatch{
		FullName:  r.FullName,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
