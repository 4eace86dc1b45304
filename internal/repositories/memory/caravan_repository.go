package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CaravanRepository struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Caravan
}

func NewCaravanRepository() *CaravanRepository {
	return &CaravanRepository{byID: map[primitive.ObjectID]models.Caravan{}}
}

var _ interfaces.CaravanRepository = (*CaravanRepository)(nil)

func cloneCaravan(c models.Caravan) *models.Caravan {
	out := c
	out.Amenities = append([]string{}, c.Amenities...)
	out.Photos = append([]models.Photo{}, c.Photos...)
	return &out
}

func (r *CaravanRepository) Create(ctx context.Context, caravan *models.Caravan) error {
	if caravan.ID.IsZero() {
		caravan.ID = primitive.NewObjectID()
	}
	now := time.Now()
	caravan.CreatedAt = now
	caravan.UpdatedAt = now
	if caravan.Status == "" {
		caravan.Status = models.CaravanStatusAvailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[caravan.ID]; ok {
		return utils.NewConflictError("caravan already exists")
	}
	r.byID[caravan.ID] = *cloneCaravan(*caravan)
	return nil
}

func (r *CaravanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Caravan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("caravan")
	}
	return cloneCaravan(c), nil
}

func (r *CaravanRepository) List(ctx context.Context, filter interfaces.CaravanFilter) ([]*models.Caravan, int64, error) {
	search := strings.ToLower(filter.Search)

	r.mu.RLock()
	matched := make([]*models.Caravan, 0, len(r.byID))
	for _, c := range r.byID {
		if filter.HostID != nil && c.HostID != *filter.HostID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Name), search) &&
			!strings.Contains(strings.ToLower(c.Location), search) {
			continue
		}
		matched = append(matched, cloneCaravan(c))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Skip > 0 {
		if filter.Skip >= len(matched) {
			return []*models.Caravan{}, total, nil
		}
		matched = matched[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *CaravanRepository) Update(ctx context.Context, id primitive.ObjectID, update models.CaravanUpdate) (*models.Caravan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("caravan")
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Description != nil {
		c.Description = *update.Description
	}
	if update.Location != nil {
		c.Location = *update.Location
	}
	if update.DailyRate != nil {
		c.DailyRate = *update.DailyRate
	}
	if update.Capacity != nil {
		c.Capacity = *update.Capacity
	}
	if update.Amenities != nil {
		c.Amenities = append([]string{}, update.Amenities...)
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	c.UpdatedAt = time.Now()
	r.byID[id] = c
	return cloneCaravan(c), nil
}

func (r *CaravanRepository) AddPhotos(ctx context.Context, id primitive.ObjectID, photos []models.Photo) (*models.Caravan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("caravan")
	}
	c.Photos = append(append([]models.Photo{}, c.Photos...), photos...)
	c.UpdatedAt = time.Now()
	r.byID[id] = c
	return cloneCaravan(c), nil
}

func (r *CaravanRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return utils.NewNotFoundError("caravan")
	}
	delete(r.byID, id)
	return nil
}
