package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/memory"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateReviewRecomputesHostScore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 10000)
	r := f.completed(t, guest, c, date(time.June, 1), date(time.June, 3))

	review, err := f.review.Create(ctx, guest.ID, &CreateReviewInput{
		ReservationID: r.ID,
		CaravanID:     &c.ID,
		Rating:        4,
		Content:       "  clean and cosy  ",
	})
	require.NoError(t, err)
	assert.Equal(t, host.ID, review.RevieweeID)
	assert.Equal(t, c.ID, review.CaravanID)
	assert.Equal(t, "clean and cosy", review.Content)

	updated := f.reload(t, host.ID)
	assert.InDelta(t, 90.5, updated.TrustScore, 1e-9)
	assert.InDelta(t, 4.0, updated.AverageRating, 1e-9)
	assert.Contains(t, f.notifier.types(), models.NotificationReviewCreated)

	_, err = f.review.Create(ctx, guest.ID, &CreateReviewInput{ReservationID: r.ID, Rating: 5, Content: "again"})
	assert.ErrorIs(t, err, utils.ErrAlreadyRated)

	list, err := f.review.ListForCaravan(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = f.review.ListForUser(ctx, host.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestVerifiedHostWithFiveStarReviewClampsTo100(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 10000)
	_, _, err := f.users.SetVerified(ctx, host.ID)
	require.NoError(t, err)
	r := f.completed(t, guest, c, date(time.June, 1), date(time.June, 3))

	_, err = f.review.Create(ctx, guest.ID, &CreateReviewInput{ReservationID: r.ID, Rating: 5, Content: "perfect"})
	require.NoError(t, err)
	assert.Equal(t, models.MaxTrustScore, f.reload(t, host.ID).TrustScore)
}

func TestCreateReviewPreconditions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 10000)
	pending := f.reserve(t, guest, c, date(time.June, 1), date(time.June, 3))
	done := f.completed(t, guest, c, date(time.June, 10), date(time.June, 12))
	otherCaravan := primitive.NewObjectID()

	tests := []struct {
		name     string
		reviewer primitive.ObjectID
		input    CreateReviewInput
		want     error
	}{
		{"rating too high", guest.ID, CreateReviewInput{ReservationID: done.ID, Rating: 6, Content: "x"}, utils.ErrValidation},
		{"empty content", guest.ID, CreateReviewInput{ReservationID: done.ID, Rating: 5, Content: "   "}, utils.ErrValidation},
		{"missing reservation", guest.ID, CreateReviewInput{ReservationID: primitive.NewObjectID(), Rating: 5, Content: "x"}, utils.ErrNotFound},
		{"caravan mismatch", guest.ID, CreateReviewInput{ReservationID: done.ID, CaravanID: &otherCaravan, Rating: 5, Content: "x"}, utils.ErrValidation},
		{"not the guest", host.ID, CreateReviewInput{ReservationID: done.ID, Rating: 5, Content: "x"}, utils.ErrForbidden},
		{"not completed", guest.ID, CreateReviewInput{ReservationID: pending.ID, Rating: 5, Content: "x"}, utils.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.review.Create(ctx, tt.reviewer, &input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	got, err := f.reservations.GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.False(t, got.Reviewed)
}

type countingTx struct{ calls int }

func (c *countingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	return fn(ctx)
}

type brokenReviews struct {
	*memory.ReviewRepository
}

func (brokenReviews) Create(ctx context.Context, review *models.Review) error {
	return errors.New("disk full")
}

func TestCreateReviewReleasesFlagWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	host := f.user(t, "host")
	guest := f.user(t, "guest")
	c := f.caravan(t, host, 10000)
	r := f.completed(t, guest, c, date(time.June, 1), date(time.June, 3))

	tx := &countingTx{}
	svc := NewReviewService(brokenReviews{f.reviews}, f.reservations, f.caravans, tx, f.trust, f.notifier, logger.Nop())

	_, err := svc.Create(ctx, guest.ID, &CreateReviewInput{ReservationID: r.ID, Rating: 4, Content: "nice"})
	require.Error(t, err)
	assert.Equal(t, 1, tx.calls)

	stored, err := f.reservations.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, stored.Reviewed, "a failed insert must leave the stay reviewable")

	_, err = f.review.Create(ctx, guest.ID, &CreateReviewInput{ReservationID: r.ID, Rating: 4, Content: "nice"})
	require.NoError(t, err)
}
