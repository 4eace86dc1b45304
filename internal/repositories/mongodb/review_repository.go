package mongodb

import (
	"context"
	"fmt"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) interfaces.ReviewRepository {
	return &reviewRepository{
		collection: db.Collection(database.CollectionReviews),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if database.IsDuplicateKey(err) {
			return utils.NewAlreadyRatedError("reservation already reviewed")
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, wrapFind(err, "review")
	}
	return &review, nil
}

func (r *reviewRepository) ListByCaravan(ctx context.Context, caravanID primitive.ObjectID) ([]*models.Review, error) {
	return r.find(ctx, bson.M{"caravan_id": caravanID})
}

func (r *reviewRepository) ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID) ([]*models.Review, error) {
	return r.find(ctx, bson.M{"reviewee_id": revieweeID})
}

func (r *reviewRepository) StatsForReviewee(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"reviewee_id": revieweeID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"count":   bson.M{"$sum": 1},
			"average": bson.M{"$avg": "$rating"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingStats{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var stats models.RatingStats
	if cursor.Next(ctx) {
		if err := cursor.Decode(&stats); err != nil {
			return models.RatingStats{}, fmt.Errorf("failed to decode review stats: %w", err)
		}
	}
	return stats, cursor.Err()
}

func (r *reviewRepository) find(ctx context.Context, filter bson.M) ([]*models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := []*models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
