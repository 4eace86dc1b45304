package interfaces

import (
	"context"
	"time"

	"caravanshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRepository interface {
	// Create fails with a conflict when the reservation already has a payment.
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	GetByReservationID(ctx context.Context, reservationID primitive.ObjectID) (*models.Payment, error)
	MarkPending(ctx context.Context, id primitive.ObjectID, amount, platformFee float64) error
	MarkCompleted(ctx context.Context, id primitive.ObjectID, gateway, transactionID string, processedAt time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error

	// ListUnsettledByHost returns completed payments for the host's caravans
	// that no settlement covers yet, oldest first.
	ListUnsettledByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Payment, error)
	// MarkSettled attaches settlementID to the listed payments that are
	// still unsettled and reports how many it claimed.
	MarkSettled(ctx context.Context, ids []primitive.ObjectID, settlementID primitive.ObjectID) (int64, error)
	// ClearSettlement detaches every payment from settlementID.
	ClearSettlement(ctx context.Context, settlementID primitive.ObjectID) error
}
