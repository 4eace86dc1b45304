package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ReservationID primitive.ObjectID  `json:"reservation_id" bson:"reservation_id" validate:"required"`
	PayerID       primitive.ObjectID  `json:"payer_id" bson:"payer_id" validate:"required"`
	HostID        primitive.ObjectID  `json:"host_id" bson:"host_id"`
	Amount        float64             `json:"amount" bson:"amount"`
	PlatformFee   float64             `json:"platform_fee" bson:"platform_fee"`
	Currency      string              `json:"currency" bson:"currency" default:"KRW"`
	Status        PaymentStatus       `json:"status" bson:"status" default:"pending"`
	Gateway       string              `json:"gateway" bson:"gateway"`
	TransactionID string              `json:"transaction_id" bson:"transaction_id"`
	FailureReason string              `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	SettlementID  *primitive.ObjectID `json:"settlement_id,omitempty" bson:"settlement_id,omitempty"`
	ProcessedAt   *time.Time          `json:"processed_at" bson:"processed_at"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" bson:"updated_at"`
}

// HostPayout is what the host receives once the payment is settled.
func (p *Payment) HostPayout() float64 {
	return p.Amount - p.PlatformFee
}

func (p *Payment) IsSettled() bool {
	return p.SettlementID != nil
}
