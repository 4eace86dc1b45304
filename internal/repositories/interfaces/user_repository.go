package interfaces

import (
	"context"
	"time"

	"caravanshare/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileUpdate struct {
	DisplayName  *string
	Introduction *string
	ProfileImage *string
}

type UserRepository interface {
	// Create fails with a conflict on a duplicate email or google id.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)

	UpdateProfile(ctx context.Context, id primitive.ObjectID, update ProfileUpdate) (*models.User, error)
	LinkGoogleAccount(ctx context.Context, id primitive.ObjectID, googleID string) error
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	SetHost(ctx context.Context, id primitive.ObjectID) error

	// SetContactOnce writes contact only while it is empty.
	SetContactOnce(ctx context.Context, id primitive.ObjectID, contact string) (updated *models.User, set bool, err error)
	// SetVerified flips is_verified only while it is false.
	SetVerified(ctx context.Context, id primitive.ObjectID) (updated *models.User, set bool, err error)

	// SetTrustScore overwrites the derived reputation fields.
	SetTrustScore(ctx context.Context, id primitive.ObjectID, score, averageRating float64) (*models.User, error)
	// AdjustTrustScore adds delta and clamps to [MinTrustScore, MaxTrustScore] atomically.
	AdjustTrustScore(ctx context.Context, id primitive.ObjectID, delta float64) (*models.User, error)
}
