package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReservationID primitive.ObjectID `json:"reservation_id" bson:"reservation_id" validate:"required"`
	CaravanID     primitive.ObjectID `json:"caravan_id" bson:"caravan_id" validate:"required"`
	ReviewerID    primitive.ObjectID `json:"reviewer_id" bson:"reviewer_id" validate:"required"`
	RevieweeID    primitive.ObjectID `json:"reviewee_id" bson:"reviewee_id" validate:"required"`
	Rating        int                `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Content       string             `json:"content" bson:"content" validate:"required"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}

// RatingStats summarises the reviews a user has received.
type RatingStats struct {
	Count   int     `json:"count" bson:"count"`
	Average float64 `json:"average" bson:"average"`
}
