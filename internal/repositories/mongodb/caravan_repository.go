package mongodb

import (
	"context"
	"fmt"
	"regexp"
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

type caravanRepository struct {
	collection *mongo.Collection
}

func NewCaravanRepository(db *mongo.Database) interfaces.CaravanRepository {
	return &caravanRepository{
		collection: db.Collection(database.CollectionCaravans),
	}
}

func (r *caravanRepository) Create(ctx context.Context, caravan *models.Caravan) error {
	if caravan.ID.IsZero() {
		caravan.ID = primitive.NewObjectID()
	}
	now := time.Now()
	caravan.CreatedAt = now
	caravan.UpdatedAt = now
	if caravan.Status == "" {
		caravan.Status = models.CaravanStatusAvailable
	}
	if caravan.Amenities == nil {
		caravan.Amenities = []string{}
	}
	if caravan.Photos == nil {
		caravan.Photos = []models.Photo{}
	}

	if _, err := r.collection.InsertOne(ctx, caravan); err != nil {
		return fmt.Errorf("failed to create caravan: %w", err)
	}

	return nil
}

func (r *caravanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Caravan, error) {
	var caravan models.Caravan
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&caravan); err != nil {
		return nil, wrapFind(err, "caravan")
	}
	return &caravan, nil
}

func (r *caravanRepository) List(ctx context.Context, filter interfaces.CaravanFilter) ([]*models.Caravan, int64, error) {
	query := bson.M{}
	if filter.HostID != nil {
		query["host_id"] = *filter.HostID
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"location": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count caravans: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Skip > 0 {
		opts.SetSkip(int64(filter.Skip))
	}
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find caravans: %w", err)
	}
	defer cursor.Close(ctx)

	caravans := []*models.Caravan{}
	if err := cursor.All(ctx, &caravans); err != nil {
		return nil, 0, fmt.Errorf("failed to decode caravans: %w", err)
	}

	return caravans, total, nil
}

func (r *caravanRepository) Update(ctx context.Context, id primitive.ObjectID, update models.CaravanUpdate) (*models.Caravan, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.DailyRate != nil {
		set["daily_rate"] = *update.DailyRate
	}
	if update.Capacity != nil {
		set["capacity"] = *update.Capacity
	}
	if update.Amenities != nil {
		set["amenities"] = update.Amenities
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}

	var caravan models.Caravan
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnAfter()).Decode(&caravan)
	if err != nil {
		return nil, wrapFind(err, "caravan")
	}
	return &caravan, nil
}

func (r *caravanRepository) AddPhotos(ctx context.Context, id primitive.ObjectID, photos []models.Photo) (*models.Caravan, error) {
	update := bson.M{
		"$push": bson.M{"photos": bson.M{"$each": photos}},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	var caravan models.Caravan
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter()).Decode(&caravan)
	if err != nil {
		return nil, wrapFind(err, "caravan")
	}
	return &caravan, nil
}

func (r *caravanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete caravan: %w", err)
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("caravan")
	}
	return nil
}
