package mongodb

import (
	"context"
	"fmt"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reservationRepository struct {
	collection *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) interfaces.ReservationRepository {
	return &reservationRepository{
		collection: db.Collection(database.CollectionReservations),
	}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID.IsZero() {
		reservation.ID = primitive.NewObjectID()
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now()
	}
	reservation.UpdatedAt = reservation.CreatedAt

	if _, err := r.collection.InsertOne(ctx, reservation); err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reservation); err != nil {
		return nil, wrapFind(err, "reservation")
	}
	return &reservation, nil
}

func (r *reservationRepository) ListByGuest(ctx context.Context, guestID primitive.ObjectID) ([]*models.Reservation, error) {
	return r.find(ctx, bson.M{"guest_id": guestID}, bson.D{{Key: "created_at", Value: -1}})
}

func (r *reservationRepository) ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Reservation, error) {
	return r.find(ctx, bson.M{"host_id": hostID}, bson.D{{Key: "created_at", Value: -1}})
}

func (r *reservationRepository) ListByCaravan(ctx context.Context, caravanID primitive.ObjectID, statuses []models.ReservationStatus) ([]*models.Reservation, error) {
	filter := bson.M{
		"caravan_id": caravanID,
		"status":     bson.M{"$in": statuses},
	}
	return r.find(ctx, filter, bson.D{{Key: "start_date", Value: 1}})
}

func (r *reservationRepository) FindOverlapping(ctx context.Context, caravanID primitive.ObjectID, dr models.DateRange, statuses []models.ReservationStatus) ([]*models.Reservation, error) {
	filter := bson.M{
		"caravan_id": caravanID,
		"status":     bson.M{"$in": statuses},
		"start_date": bson.M{"$lt": dr.End},
		"end_date":   bson.M{"$gt": dr.Start},
	}
	return r.find(ctx, filter, bson.D{{Key: "start_date", Value: 1}})
}

func (r *reservationRepository) CountByCaravan(ctx context.Context, caravanID primitive.ObjectID, statuses []models.ReservationStatus) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"caravan_id": caravanID,
		"status":     bson.M{"$in": statuses},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}
	return count, nil
}

func (r *reservationRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, bool, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	return r.swap(ctx, filter, update)
}

func (r *reservationRepository) MarkPaid(ctx context.Context, id primitive.ObjectID) (*models.Reservation, bool, error) {
	filter := bson.M{
		"_id":            id,
		"status":         models.ReservationStatusApproved,
		"payment_status": models.ReservationUnpaid,
	}
	update := bson.M{"$set": bson.M{
		"status":         models.ReservationStatusCompleted,
		"payment_status": models.ReservationPaid,
		"updated_at":     time.Now(),
	}}
	return r.swap(ctx, filter, update)
}

func (r *reservationRepository) RevertPaid(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id":            id,
		"status":         models.ReservationStatusCompleted,
		"payment_status": models.ReservationPaid,
	}
	update := bson.M{"$set": bson.M{
		"status":         models.ReservationStatusApproved,
		"payment_status": models.ReservationUnpaid,
		"updated_at":     time.Now(),
	}}
	if _, err := r.collection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to revert reservation payment: %w", err)
	}
	return nil
}

func (r *reservationRepository) SetFlag(ctx context.Context, id primitive.ObjectID, flag models.ReservationFlag) (bool, error) {
	field := string(flag)
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, field: bson.M{"$ne": true}},
		bson.M{"$set": bson.M{field: true, "updated_at": time.Now()}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to set reservation flag %s: %w", field, err)
	}
	return result.ModifiedCount == 1, nil
}

func (r *reservationRepository) ClearFlag(ctx context.Context, id primitive.ObjectID, flag models.ReservationFlag) error {
	field := string(flag)
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{field: false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear reservation flag %s: %w", field, err)
	}
	return nil
}

// swap applies update when filter still matches. A miss is not an error.
func (r *reservationRepository) swap(ctx context.Context, filter, update bson.M) (*models.Reservation, bool, error) {
	var reservation models.Reservation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&reservation)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to update reservation: %w", err)
	}
	return &reservation, true, nil
}

func (r *reservationRepository) find(ctx context.Context, filter bson.M, sort bson.D) ([]*models.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	reservations := []*models.Reservation{}
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}
	return reservations, nil
}
