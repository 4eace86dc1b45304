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

type PaymentRepository struct {
	mu            sync.RWMutex
	byID          map[primitive.ObjectID]models.Payment
	byReservation map[primitive.ObjectID]primitive.ObjectID
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		byID:          map[primitive.ObjectID]models.Payment{},
		byReservation: map[primitive.ObjectID]primitive.ObjectID{},
	}
}

var _ interfaces.PaymentRepository = (*PaymentRepository)(nil)

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byReservation[payment.ReservationID]; ok {
		return utils.NewConflictError("payment already exists for reservation")
	}
	r.byID[payment.ID] = *payment
	r.byReservation[payment.ReservationID] = payment.ID
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("payment")
	}
	return &p, nil
}

func (r *PaymentRepository) GetByReservationID(ctx context.Context, reservationID primitive.ObjectID) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byReservation[reservationID]
	if !ok {
		return nil, utils.NewNotFoundError("payment")
	}
	p := r.byID[id]
	return &p, nil
}

func (r *PaymentRepository) MarkPending(ctx context.Context, id primitive.ObjectID, amount, platformFee float64) error {
	return r.update(id, func(p *models.Payment) {
		p.Status = models.PaymentStatusPending
		p.Amount = amount
		p.PlatformFee = platformFee
		p.FailureReason = ""
	})
}

func (r *PaymentRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, gateway, transactionID string, processedAt time.Time) error {
	return r.update(id, func(p *models.Payment) {
		p.Status = models.PaymentStatusCompleted
		p.Gateway = gateway
		p.TransactionID = transactionID
		p.ProcessedAt = &processedAt
	})
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	return r.update(id, func(p *models.Payment) {
		p.Status = models.PaymentStatusFailed
		p.FailureReason = reason
	})
}

func (r *PaymentRepository) ListUnsettledByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Payment, error) {
	r.mu.RLock()
	out := []*models.Payment{}
	for _, p := range r.byID {
		if p.HostID == hostID && p.Status == models.PaymentStatusCompleted && !p.IsSettled() {
			p := p
			out = append(out, &p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *PaymentRepository) MarkSettled(ctx context.Context, ids []primitive.ObjectID, settlementID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed int64
	now := time.Now()
	for _, id := range ids {
		p, ok := r.byID[id]
		if !ok || p.IsSettled() {
			continue
		}
		sid := settlementID
		p.SettlementID = &sid
		p.UpdatedAt = now
		r.byID[id] = p
		claimed++
	}
	return claimed, nil
}

func (r *PaymentRepository) ClearSettlement(ctx context.Context, settlementID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, p := range r.byID {
		if p.SettlementID != nil && *p.SettlementID == settlementID {
			p.SettlementID = nil
			p.UpdatedAt = now
			r.byID[id] = p
		}
	}
	return nil
}

func (r *PaymentRepository) update(id primitive.ObjectID, mutate func(*models.Payment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return utils.NewNotFoundError("payment")
	}
	mutate(&p)
	p.UpdatedAt = time.Now()
	r.byID[id] = p
	return nil
}
