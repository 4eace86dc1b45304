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

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection(database.CollectionPayments),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, payment); err != nil {
		if database.IsDuplicateKey(err) {
			return utils.NewConflictError("payment already exists for reservation")
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment); err != nil {
		return nil, wrapFind(err, "payment")
	}
	return &payment, nil
}

func (r *paymentRepository) GetByReservationID(ctx context.Context, reservationID primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.collection.FindOne(ctx, bson.M{"reservation_id": reservationID}).Decode(&payment); err != nil {
		return nil, wrapFind(err, "payment")
	}
	return &payment, nil
}

func (r *paymentRepository) MarkPending(ctx context.Context, id primitive.ObjectID, amount, platformFee float64) error {
	return r.update(ctx, id, bson.M{
		"status":         models.PaymentStatusPending,
		"amount":         amount,
		"platform_fee":   platformFee,
		"failure_reason": "",
	})
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, gateway, transactionID string, processedAt time.Time) error {
	return r.update(ctx, id, bson.M{
		"status":         models.PaymentStatusCompleted,
		"gateway":        gateway,
		"transaction_id": transactionID,
		"processed_at":   processedAt,
	})
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	return r.update(ctx, id, bson.M{
		"status":         models.PaymentStatusFailed,
		"failure_reason": reason,
	})
}

func (r *paymentRepository) ListUnsettledByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Payment, error) {
	filter := bson.M{
		"host_id":       hostID,
		"status":        models.PaymentStatusCompleted,
		"settlement_id": bson.M{"$exists": false},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := []*models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments: %w", err)
	}
	return payments, nil
}

func (r *paymentRepository) MarkSettled(ctx context.Context, ids []primitive.ObjectID, settlementID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"_id":           bson.M{"$in": ids},
		"settlement_id": bson.M{"$exists": false},
	}
	update := bson.M{"$set": bson.M{"settlement_id": settlementID, "updated_at": time.Now()}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to settle payments: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *paymentRepository) ClearSettlement(ctx context.Context, settlementID primitive.ObjectID) error {
	update := bson.M{
		"$unset": bson.M{"settlement_id": ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	if _, err := r.collection.UpdateMany(ctx, bson.M{"settlement_id": settlementID}, update); err != nil {
		return fmt.Errorf("failed to clear settlement: %w", err)
	}
	return nil
}

func (r *paymentRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	set["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("payment")
	}
	return nil
}
