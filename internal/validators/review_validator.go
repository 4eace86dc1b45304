package validators

import "strings"

type ReviewCreateRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,object_id"`
	CaravanID     string `json:"caravan_id" validate:"omitempty,object_id"`
	Rating        int    `json:"rating" validate:"required,rating_value"`
	Content       string `json:"content" validate:"required,max=2000"`
}

func ValidateReviewCreate(req *ReviewCreateRequest) ValidationErrors {
	req.Content = strings.TrimSpace(req.Content)
	return ValidateStruct(req)
}
