package services

import (
	"context"
	"fmt"
	"math"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	trustBase              = 50.0
	trustPerAverageStar    = 10.0
	trustPerReview         = 0.5
	trustReviewVolumeCap   = 20.0
	trustVerificationBonus = 20.0
)

var ratingDeltas = map[int]float64{
	1: -0.2,
	2: -0.1,
	3: 0,
	4: 0.1,
	5: 0.2,
}

// TrustService maintains the two update paths of User.TrustScore: a full
// recompute from received reviews and a small nudge per explicit rating.
type TrustService interface {
	Recompute(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	Nudge(ctx context.Context, userID primitive.ObjectID, rating int) (*models.User, error)
}

type trustService struct {
	userRepo   interfaces.UserRepository
	reviewRepo interfaces.ReviewRepository
	logger     *logger.Logger
}

func NewTrustService(userRepo interfaces.UserRepository, reviewRepo interfaces.ReviewRepository, logger *logger.Logger) TrustService {
	return &trustService{
		userRepo:   userRepo,
		reviewRepo: reviewRepo,
		logger:     logger,
	}
}

// ComputeTrustScore overwrites, never layers on, the previous score.
func ComputeTrustScore(stats models.RatingStats, verified bool) float64 {
	score := trustBase + stats.Average*trustPerAverageStar
	score += math.Min(float64(stats.Count)*trustPerReview, trustReviewVolumeCap)
	if verified {
		score += trustVerificationBonus
	}
	return clampTrust(score)
}

func RatingDelta(rating int) (float64, error) {
	delta, ok := ratingDeltas[rating]
	if !ok {
		return 0, utils.NewValidationError(fmt.Sprintf("rating must be between %d and %d", utils.MinRating, utils.MaxRating))
	}
	return delta, nil
}

func clampTrust(score float64) float64 {
	return math.Min(models.MaxTrustScore, math.Max(models.MinTrustScore, score))
}

func (s *trustService) Recompute(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.reviewRepo.StatsForReviewee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review stats: %w", err)
	}

	score := ComputeTrustScore(stats, user.IsVerified)
	updated, err := s.userRepo.SetTrustScore(ctx, userID, score, stats.Average)
	if err != nil {
		return nil, fmt.Errorf("failed to store trust score: %w", err)
	}

	s.logger.LogTrustEvent(userID, utils.EventTrustRecomputed, score, map[string]interface{}{
		"previous_score": user.TrustScore,
		"review_count":   stats.Count,
		"average_rating": stats.Average,
		"verified":       user.IsVerified,
	})
	return updated, nil
}

func (s *trustService) Nudge(ctx context.Context, userID primitive.ObjectID, rating int) (*models.User, error) {
	delta, err := RatingDelta(rating)
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepo.AdjustTrustScore(ctx, userID, delta)
	if err != nil {
		return nil, err
	}

	s.logger.LogTrustEvent(userID, utils.EventTrustAdjusted, updated.TrustScore, map[string]interface{}{
		"rating": rating,
		"delta":  delta,
	})
	return updated, nil
}
