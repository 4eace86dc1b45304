package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settlement is one payout to a host covering completed payments that had
// not been paid out yet.
type Settlement struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	HostID      primitive.ObjectID   `json:"host_id" bson:"host_id"`
	GrossAmount float64              `json:"gross_amount" bson:"gross_amount"`
	PlatformFee float64              `json:"platform_fee" bson:"platform_fee"`
	Amount      float64              `json:"amount" bson:"amount"`
	Currency    string               `json:"currency" bson:"currency"`
	PaymentIDs  []primitive.ObjectID `json:"payment_ids" bson:"payment_ids"`
	CreatedAt   time.Time            `json:"created_at" bson:"created_at"`
}
