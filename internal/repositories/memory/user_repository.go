package memory

import (
	"context"
	"math"
	"sync"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{byID: map[primitive.ObjectID]models.User{}}
}

var _ interfaces.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.ID == user.ID ||
			(user.Email != "" && existing.Email == user.Email) ||
			(user.GoogleID != "" && existing.GoogleID == user.GoogleID) {
			return utils.NewConflictError("account already exists")
		}
	}
	r.byID[user.ID] = *user
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return email != "" && u.Email == email })
}

func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.findOne(func(u models.User) bool { return googleID != "" && u.GoogleID == googleID })
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update interfaces.ProfileUpdate) (*models.User, error) {
	return r.mutate(id, func(u *models.User) bool {
		if update.DisplayName != nil {
			u.DisplayName = *update.DisplayName
		}
		if update.Introduction != nil {
			u.Introduction = *update.Introduction
		}
		if update.ProfileImage != nil {
			u.ProfileImage = *update.ProfileImage
		}
		return true
	})
}

func (r *UserRepository) LinkGoogleAccount(ctx context.Context, id primitive.ObjectID, googleID string) error {
	_, err := r.mutate(id, func(u *models.User) bool {
		u.GoogleID = googleID
		return true
	})
	return err
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.mutate(id, func(u *models.User) bool {
		u.LastLoginAt = &at
		return true
	})
	return err
}

func (r *UserRepository) SetHost(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.mutate(id, func(u *models.User) bool {
		u.IsHost = true
		return true
	})
	return err
}

func (r *UserRepository) SetContactOnce(ctx context.Context, id primitive.ObjectID, contact string) (*models.User, bool, error) {
	set := false
	u, err := r.mutate(id, func(u *models.User) bool {
		if u.Contact != "" {
			return false
		}
		u.Contact = contact
		set = true
		return true
	})
	return u, set, err
}

func (r *UserRepository) SetVerified(ctx context.Context, id primitive.ObjectID) (*models.User, bool, error) {
	set := false
	u, err := r.mutate(id, func(u *models.User) bool {
		if u.IsVerified {
			return false
		}
		u.IsVerified = true
		set = true
		return true
	})
	return u, set, err
}

func (r *UserRepository) SetTrustScore(ctx context.Context, id primitive.ObjectID, score, averageRating float64) (*models.User, error) {
	return r.mutate(id, func(u *models.User) bool {
		u.TrustScore = score
		u.AverageRating = averageRating
		return true
	})
}

func (r *UserRepository) AdjustTrustScore(ctx context.Context, id primitive.ObjectID, delta float64) (*models.User, error) {
	return r.mutate(id, func(u *models.User) bool {
		u.TrustScore = math.Min(models.MaxTrustScore, math.Max(models.MinTrustScore, u.TrustScore+delta))
		return true
	})
}

// mutate applies fn under the write lock and stores the result when fn
// reports a change.
func (r *UserRepository) mutate(id primitive.ObjectID, fn func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	if fn(&u) {
		u.UpdatedAt = time.Now()
		r.byID[id] = u
	}
	return &u, nil
}

func (r *UserRepository) findOne(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, utils.NewNotFoundError("user")
}
