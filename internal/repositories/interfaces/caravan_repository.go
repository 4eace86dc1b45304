package interfaces

import (
	"context"

	"caravanshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CaravanFilter struct {
	HostID *primitive.ObjectID
	Status *models.CaravanStatus
	// Search matches name and location, case-insensitive.
	Search string
	Skip   int
	Limit  int
}

type CaravanRepository interface {
	Create(ctx context.Context, caravan *models.Caravan) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Caravan, error)
	List(ctx context.Context, filter CaravanFilter) ([]*models.Caravan, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.CaravanUpdate) (*models.Caravan, error)
	AddPhotos(ctx context.Context, id primitive.ObjectID, photos []models.Photo) (*models.Caravan, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
