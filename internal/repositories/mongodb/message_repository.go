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

type messageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) interfaces.MessageRepository {
	return &messageRepository{
		collection: db.Collection(database.CollectionMessages),
	}
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) ListConversation(ctx context.Context, a, b primitive.ObjectID) ([]*models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": a, "recipient_id": b},
		{"sender_id": b, "recipient_id": a},
	}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
}

func (r *messageRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": userID},
		{"recipient_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, filter, opts)
}

func (r *messageRepository) MarkRead(ctx context.Context, recipientID, senderID primitive.ObjectID, at time.Time) (int64, error) {
	filter := bson.M{
		"recipient_id": recipientID,
		"sender_id":    senderID,
		"read_at":      bson.M{"$exists": false},
	}
	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read_at": at}})
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return result.ModifiedCount, nil
}

func (r *messageRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Message, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []*models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
