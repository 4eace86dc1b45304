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

type ReviewRepository struct {
	mu            sync.RWMutex
	byID          map[primitive.ObjectID]models.Review
	byReservation map[primitive.ObjectID]primitive.ObjectID
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		byID:          map[primitive.ObjectID]models.Review{},
		byReservation: map[primitive.ObjectID]primitive.ObjectID{},
	}
}

var _ interfaces.ReviewRepository = (*ReviewRepository)(nil)

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byReservation[review.ReservationID]; ok {
		return utils.NewAlreadyRatedError("reservation already reviewed")
	}
	r.byID[review.ID] = *review
	r.byReservation[review.ReservationID] = review.ID
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.byID[id]
	if !ok {
		return nil, utils.NewNotFoundError("review")
	}
	return &rv, nil
}

func (r *ReviewRepository) ListByCaravan(ctx context.Context, caravanID primitive.ObjectID) ([]*models.Review, error) {
	return r.filter(func(rv models.Review) bool { return rv.CaravanID == caravanID }), nil
}

func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID primitive.ObjectID) ([]*models.Review, error) {
	return r.filter(func(rv models.Review) bool { return rv.RevieweeID == revieweeID }), nil
}

func (r *ReviewRepository) StatsForReviewee(ctx context.Context, revieweeID primitive.ObjectID) (models.RatingStats, error) {
	reviews := r.filter(func(rv models.Review) bool { return rv.RevieweeID == revieweeID })
	if len(reviews) == 0 {
		return models.RatingStats{}, nil
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	return models.RatingStats{
		Count:   len(reviews),
		Average: float64(sum) / float64(len(reviews)),
	}, nil
}

func (r *ReviewRepository) filter(keep func(models.Review) bool) []*models.Review {
	r.mu.RLock()
	out := []*models.Review{}
	for _, rv := range r.byID {
		if keep(rv) {
			rv := rv
			out = append(out, &rv)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
