package interfaces

import (
	"context"

	"caravanshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	ListByCaravan(ctx context.Context, caravanID primitive.ObjectID) ([]*models.Review, error)
	ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID) ([]*models.Review, error)
	StatsForReviewee(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingStats, error)
}
