package interfaces

import (
	"context"
	"time"

	"caravanshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// ListConversation returns messages exchanged between a and b in either
	// direction, oldest first.
	ListConversation(ctx context.Context, a, b primitive.ObjectID) ([]*models.Message, error)
	// ListForUser returns messages sent or received by the user, newest first.
	ListForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Message, error)
	// MarkRead stamps unread messages from sender to recipient.
	MarkRead(ctx context.Context, recipientID, senderID primitive.ObjectID, at time.Time) (int64, error)
}
