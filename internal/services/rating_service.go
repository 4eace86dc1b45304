package services

import (
	"context"
	"fmt"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingService applies the post-stay ratings each party gives the other.
// Each direction counts at most once per reservation.
type RatingService interface {
	RateGuest(ctx context.Context, hostID, reservationID primitive.ObjectID, rating int) (*models.User, error)
	RateHost(ctx context.Context, guestID, reservationID primitive.ObjectID, rating int) (*models.User, error)
}

type ratingService struct {
	reservationRepo interfaces.ReservationRepository
	trust           TrustService
	logger          *logger.Logger
}

func NewRatingService(reservationRepo interfaces.ReservationRepository, trust TrustService, logger *logger.Logger) RatingService {
	return &ratingService{
		reservationRepo: reservationRepo,
		trust:           trust,
		logger:          logger,
	}
}

func (s *ratingService) RateGuest(ctx context.Context, hostID, reservationID primitive.ObjectID, rating int) (*models.User, error) {
	if _, err := RatingDelta(rating); err != nil {
		return nil, err
	}

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.HostID != hostID {
		return nil, utils.NewForbiddenError("only the host can rate this guest")
	}

	return s.apply(ctx, reservation, models.FlagGuestRatedByHost, reservation.GuestID, rating)
}

func (s *ratingService) RateHost(ctx context.Context, guestID, reservationID primitive.ObjectID, rating int) (*models.User, error) {
	if _, err := RatingDelta(rating); err != nil {
		return nil, err
	}

	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.GuestID != guestID {
		return nil, utils.NewForbiddenError("only the guest can rate this host")
	}
	if reservation.Status == models.ReservationStatusCompleted && !reservation.Reviewed {
		return nil, utils.NewInvalidStateError("review the caravan before rating the host")
	}

	return s.apply(ctx, reservation, models.FlagHostRatedByGuest, reservation.HostID, rating)
}

func (s *ratingService) apply(ctx context.Context, reservation *models.Reservation, flag models.ReservationFlag, targetID primitive.ObjectID, rating int) (*models.User, error) {
	if reservation.Status != models.ReservationStatusCompleted {
		return nil, utils.NewInvalidStateError("ratings open once the reservation is completed")
	}
	if reservation.HasFlag(flag) {
		return nil, utils.NewAlreadyRatedError("already rated for this reservation")
	}

	set, err := s.reservationRepo.SetFlag(ctx, reservation.ID, flag)
	if err != nil {
		return nil, fmt.Errorf("failed to record rating: %w", err)
	}
	if !set {
		return nil, utils.NewAlreadyRatedError("already rated for this reservation")
	}

	updated, err := s.trust.Nudge(ctx, targetID, rating)
	if err != nil {
		if clearErr := s.reservationRepo.ClearFlag(ctx, reservation.ID, flag); clearErr != nil {
			s.logger.WithError(clearErr).WithReservationID(reservation.ID).Error("Failed to roll back rating flag")
		}
		return nil, err
	}

	return updated, nil
}
