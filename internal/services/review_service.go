package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewService interface {
	Create(ctx context.Context, reviewerID primitive.ObjectID, input *CreateReviewInput) (*models.Review, error)
	ListForCaravan(ctx context.Context, caravanID primitive.ObjectID) ([]*models.Review, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Review, error)
}

type CreateReviewInput struct {
	ReservationID primitive.ObjectID
	// CaravanID is optional; when set it must match the reservation.
	CaravanID *primitive.ObjectID
	Rating    int
	Content   string
}

type reviewService struct {
	reviewRepo      interfaces.ReviewRepository
	reservationRepo interfaces.ReservationRepository
	caravanRepo     interfaces.CaravanRepository
	tx              Transactor
	trust           TrustService
	notifications   NotificationService
	logger          *logger.Logger
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	reservationRepo interfaces.ReservationRepository,
	caravanRepo interfaces.CaravanRepository,
	tx Transactor,
	trust TrustService,
	notifications NotificationService,
	logger *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:      reviewRepo,
		reservationRepo: reservationRepo,
		caravanRepo:     caravanRepo,
		tx:              orDirect(tx),
		trust:           trust,
		notifications:   notifications,
		logger:          logger,
	}
}

func (s *reviewService) Create(ctx context.Context, reviewerID primitive.ObjectID, input *CreateReviewInput) (*models.Review, error) {
	content := strings.TrimSpace(input.Content)
	if input.Rating < utils.MinRating || input.Rating > utils.MaxRating {
		return nil, utils.NewValidationError(fmt.Sprintf("rating must be between %d and %d", utils.MinRating, utils.MaxRating))
	}
	if content == "" {
		return nil, utils.NewValidationError("review content is required")
	}

	reservation, err := s.reservationRepo.GetByID(ctx, input.ReservationID)
	if err != nil {
		return nil, err
	}
	if input.CaravanID != nil && *input.CaravanID != reservation.CaravanID {
		return nil, utils.NewValidationError("caravan does not match the reservation")
	}
	if reservation.GuestID != reviewerID {
		return nil, utils.NewForbiddenError("only the guest can review this stay")
	}
	if reservation.Status != models.ReservationStatusCompleted {
		return nil, utils.NewInvalidStateError("reviews open once the reservation is completed")
	}
	if reservation.Reviewed {
		return nil, utils.NewAlreadyRatedError("already reviewed")
	}

	revieweeID, err := s.currentHost(ctx, reservation)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		ReservationID: reservation.ID,
		CaravanID:     reservation.CaravanID,
		ReviewerID:    reviewerID,
		RevieweeID:    revieweeID,
		Rating:        input.Rating,
		Content:       content,
	}

	flagged := false
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		set, err := s.reservationRepo.SetFlag(ctx, reservation.ID, models.FlagReviewed)
		if err != nil {
			return fmt.Errorf("failed to mark reservation reviewed: %w", err)
		}
		if !set {
			return utils.NewAlreadyRatedError("already reviewed")
		}
		flagged = true
		return s.reviewRepo.Create(ctx, review)
	})
	if err != nil {
		// Without a transaction the flag outlives a failed insert.
		if flagged && !errors.Is(err, utils.ErrAlreadyRated) {
			if clearErr := s.reservationRepo.ClearFlag(ctx, reservation.ID, models.FlagReviewed); clearErr != nil {
				s.logger.WithError(clearErr).WithReservationID(reservation.ID).Error("Failed to roll back reviewed flag")
			}
		}
		return nil, err
	}

	if _, err := s.trust.Recompute(ctx, revieweeID); err != nil {
		s.logger.WithError(err).WithUserID(revieweeID).Error("Failed to recompute trust score after review")
		return nil, fmt.Errorf("failed to update trust score: %w", err)
	}

	s.notifications.Notify(ctx, &models.Notification{
		UserID:  revieweeID,
		Type:    models.NotificationReviewCreated,
		Title:   "New review",
		Message: fmt.Sprintf("A guest left a %d-star review.", review.Rating),
		Data: map[string]interface{}{
			"review_id":      review.ID.Hex(),
			"reservation_id": reservation.ID.Hex(),
			"caravan_id":     reservation.CaravanID.Hex(),
		},
	})

	return review, nil
}

func (s *reviewService) ListForCaravan(ctx context.Context, caravanID primitive.ObjectID) ([]*models.Review, error) {
	return s.reviewRepo.ListByCaravan(ctx, caravanID)
}

func (s *reviewService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Review, error) {
	return s.reviewRepo.ListByReviewee(ctx, userID)
}

// currentHost resolves the caravan's host at write time, falling back to
// the host recorded on the reservation if the listing is gone.
func (s *reviewService) currentHost(ctx context.Context, reservation *models.Reservation) (primitive.ObjectID, error) {
	caravan, err := s.caravanRepo.GetByID(ctx, reservation.CaravanID)
	if err == nil {
		return caravan.HostID, nil
	}
	if errors.Is(err, utils.ErrNotFound) {
		return reservation.HostID, nil
	}
	return primitive.NilObjectID, err
}
