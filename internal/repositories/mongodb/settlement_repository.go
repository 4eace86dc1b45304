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

type settlementRepository struct {
	collection *mongo.Collection
}

func NewSettlementRepository(db *mongo.Database) interfaces.SettlementRepository {
	return &settlementRepository{
		collection: db.Collection(database.CollectionSettlements),
	}
}

func (r *settlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID.IsZero() {
		settlement.ID = primitive.NewObjectID()
	}
	if settlement.CreatedAt.IsZero() {
		settlement.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, settlement); err != nil {
		if database.IsDuplicateKey(err) {
			return utils.NewConflictError("settlement already exists")
		}
		return fmt.Errorf("failed to create settlement: %w", err)
	}
	return nil
}

func (r *settlementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Settlement, error) {
	var settlement models.Settlement
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&settlement); err != nil {
		return nil, wrapFind(err, "settlement")
	}
	return &settlement, nil
}

func (r *settlementRepository) ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Settlement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"host_id": hostID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find settlements: %w", err)
	}
	defer cursor.Close(ctx)

	settlements := []*models.Settlement{}
	if err := cursor.All(ctx, &settlements); err != nil {
		return nil, fmt.Errorf("failed to decode settlements: %w", err)
	}
	return settlements, nil
}
