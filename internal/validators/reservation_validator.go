package validators

import (
	"time"

	"caravanshare/internal/utils"
)

type ReservationCreateRequest struct {
	CaravanID string `json:"caravan_id" validate:"required,object_id"`
	StartDate string `json:"start_date" validate:"required,iso_date"`
	EndDate   string `json:"end_date" validate:"required,iso_date"`
}

type PaymentCreateRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,object_id"`
}

type RatingCreateRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,object_id"`
	Rating        int    `json:"rating" validate:"required,rating_value"`
}

// ValidateReservationCreate checks the request shape and that the dates are
// ordered. Whether the start is in the past depends on the booking clock and
// is left to the availability check.
func ValidateReservationCreate(req *ReservationCreateRequest, loc *time.Location) ValidationErrors {
	errors := ValidateStruct(req)
	if len(errors) > 0 {
		return errors
	}

	start, _ := utils.ParseDate(req.StartDate, loc)
	end, _ := utils.ParseDate(req.EndDate, loc)
	if !start.Before(end) {
		errors = append(errors, ValidationError{
			Field:   "end_date",
			Tag:     "after_start",
			Value:   req.EndDate,
			Message: "end date must be after start date",
		})
	}

	return errors
}
