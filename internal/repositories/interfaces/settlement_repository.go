package interfaces

import (
	"context"

	"caravanshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettlementRepository interface {
	Create(ctx context.Context, settlement *models.Settlement) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Settlement, error)
	// ListByHost returns the host's settlements, newest first.
	ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Settlement, error)
}
