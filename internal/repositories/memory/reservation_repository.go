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

type ReservationRepository struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]models.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{byID: map[primitive.ObjectID]models.Reservation{}}
}

var _ interfaces.ReservationRepository = (*ReservationRepository)(nil)

func (r *ReservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID.IsZero() {
		reservation.ID = primitive.NewObjectID()
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now()
	}
	reservation.UpdatedAt = reservation.CreatedAt

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[reservation.ID]; ok {
		return utils.NewConflictError("reservation already exists")
	}
	r.byID[reservation.ID] = *reservation
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("reservation")
	}
	return &res, nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID primitive.ObjectID) ([]*models.Reservation, error) {
	out := r.filter(func(res models.Reservation) bool { return res.GuestID == guestID })
	sortNewestFirst(out)
	return out, nil
}

func (r *ReservationRepository) ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Reservation, error) {
	out := r.filter(func(res models.Reservation) bool { return res.HostID == hostID })
	sortNewestFirst(out)
	return out, nil
}

func (r *ReservationRepository) ListByCaravan(ctx context.Context, caravanID primitive.ObjectID, statuses []models.ReservationStatus) ([]*models.Reservation, error) {
	out := r.filter(func(res models.Reservation) bool {
		return res.CaravanID == caravanID && hasStatus(statuses, res.Status)
	})
	sortByStart(out)
	return out, nil
}

func (r *ReservationRepository) FindOverlapping(ctx context.Context, caravanID primitive.ObjectID, dr models.DateRange, statuses []models.ReservationStatus) ([]*models.Reservation, error) {
	out := r.filter(func(res models.Reservation) bool {
		return res.CaravanID == caravanID && hasStatus(statuses, res.Status) && res.Range().Overlaps(dr)
	})
	sortByStart(out)
	return out, nil
}

func (r *ReservationRepository) CountByCaravan(ctx context.Context, caravanID primitive.ObjectID, statuses []models.ReservationStatus) (int64, error) {
	out := r.filter(func(res models.Reservation) bool {
		return res.CaravanID == caravanID && hasStatus(statuses, res.Status)
	})
	return int64(len(out)), nil
}

func (r *ReservationRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ReservationStatus) (*models.Reservation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.Status != from {
		return nil, false, nil
	}
	res.Status = to
	res.UpdatedAt = time.Now()
	r.byID[id] = res
	return &res, true, nil
}

func (r *ReservationRepository) MarkPaid(ctx context.Context, id primitive.ObjectID) (*models.Reservation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.Status != models.ReservationStatusApproved || res.PaymentStatus != models.ReservationUnpaid {
		return nil, false, nil
	}
	res.Status = models.ReservationStatusCompleted
	res.PaymentStatus = models.ReservationPaid
	res.UpdatedAt = time.Now()
	r.byID[id] = res
	return &res, true, nil
}

func (r *ReservationRepository) RevertPaid(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.Status != models.ReservationStatusCompleted || res.PaymentStatus != models.ReservationPaid {
		return nil
	}
	res.Status = models.ReservationStatusApproved
	res.PaymentStatus = models.ReservationUnpaid
	res.UpdatedAt = time.Now()
	r.byID[id] = res
	return nil
}

func (r *ReservationRepository) SetFlag(ctx context.Context, id primitive.ObjectID, flag models.ReservationFlag) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok || res.HasFlag(flag) {
		return false, nil
	}
	res.SetFlag(flag)
	res.UpdatedAt = time.Now()
	r.byID[id] = res
	return true, nil
}

func (r *ReservationRepository) ClearFlag(ctx context.Context, id primitive.ObjectID, flag models.ReservationFlag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.byID[id]
	if !ok {
		return utils.NewNotFoundError("reservation")
	}
	res.ClearFlag(flag)
	res.UpdatedAt = time.Now()
	r.byID[id] = res
	return nil
}

func (r *ReservationRepository) filter(keep func(models.Reservation) bool) []*models.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Reservation{}
	for _, res := range r.byID {
		if keep(res) {
			res := res
			out = append(out, &res)
		}
	}
	return out
}

func hasStatus(statuses []models.ReservationStatus, s models.ReservationStatus) bool {
	for _, candidate := range statuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func sortNewestFirst(list []*models.Reservation) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}

func sortByStart(list []*models.Reservation) {
	sort.Slice(list, func(i, j int) bool { return list[i].StartDate.Before(list[j].StartDate) })
}
