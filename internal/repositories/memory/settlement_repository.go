package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettlementRepository struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Settlement
}

func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{byID: map[primitive.ObjectID]models.Settlement{}}
}

var _ interfaces.SettlementRepository = (*SettlementRepository)(nil)

func (r *SettlementRepository) Create(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID.IsZero() {
		settlement.ID = primitive.NewObjectID()
	}
	if settlement.CreatedAt.IsZero() {
		settlement.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[settlement.ID]; ok {
		return utils.NewConflictError("settlement already exists")
	}
	stored := *settlement
	stored.PaymentIDs = append([]primitive.ObjectID(nil), settlement.PaymentIDs...)
	r.byID[settlement.ID] = stored
	return nil
}

func (r *SettlementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Settlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("settlement")
	}
	return &s, nil
}

func (r *SettlementRepository) ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Settlement, error) {
	r.mu.RLock()
	out := []*models.Settlement{}
	for _, s := range r.byID {
		if s.HostID == hostID {
			s := s
			out = append(out, &s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
