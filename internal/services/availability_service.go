package services

import (
	"context"
	"fmt"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailabilityService decides whether a caravan can take a stay.
type AvailabilityService interface {
	// IsAvailable reports false for malformed or past ranges instead of failing.
	IsAvailable(ctx context.Context, caravanID primitive.ObjectID, dr models.DateRange) (bool, error)
	// ValidateRange rejects inverted and retroactive ranges and stays shorter
	// than one night.
	ValidateRange(dr models.DateRange) error
}

type availabilityService struct {
	reservationRepo interfaces.ReservationRepository
	location        *time.Location
	now             func() time.Time
}

func NewAvailabilityService(reservationRepo interfaces.ReservationRepository, location *time.Location, now func() time.Time) AvailabilityService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &availabilityService{
		reservationRepo: reservationRepo,
		location:        location,
		now:             now,
	}
}

func (s *availabilityService) ValidateRange(dr models.DateRange) error {
	if !dr.Start.Before(dr.End) {
		return utils.NewValidationError("end date must be after start date")
	}
	if utils.NightsBetween(dr.Start.In(s.location), dr.End.In(s.location)) < 1 {
		return utils.NewValidationError("a stay must be at least one night")
	}

	today := utils.StartOfDay(s.now().In(s.location))
	if dr.Start.Before(today) {
		return utils.NewValidationError("start date cannot be in the past")
	}

	return nil
}

func (s *availabilityService) IsAvailable(ctx context.Context, caravanID primitive.ObjectID, dr models.DateRange) (bool, error) {
	if err := s.ValidateRange(dr); err != nil {
		return false, nil
	}

	overlapping, err := s.reservationRepo.FindOverlapping(ctx, caravanID, dr, models.BlockingStatuses)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}

	return len(overlapping) == 0, nil
}
