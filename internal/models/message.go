package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a direct note between two users, typically a guest asking a
// host about a caravan.
type Message struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	SenderID    primitive.ObjectID `json:"sender_id" bson:"sender_id"`
	RecipientID primitive.ObjectID `json:"recipient_id" bson:"recipient_id"`
	Content     string             `json:"content" bson:"content"`
	ReadAt      *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

func (m *Message) Involves(userID primitive.ObjectID) bool {
	return m.SenderID == userID || m.RecipientID == userID
}
