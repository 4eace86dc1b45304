package services

import (
	"context"
	"testing"

	"caravanshare/internal/models"
	"caravanshare/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTrustScore(t *testing.T) {
	tests := []struct {
		name     string
		stats    models.RatingStats
		verified bool
		want     float64
	}{
		{"no reviews", models.RatingStats{}, false, 50},
		{"verified without reviews", models.RatingStats{}, true, 70},
		{"one five star", models.RatingStats{Count: 1, Average: 5}, false, 100},
		{"verified one five star clamps", models.RatingStats{Count: 1, Average: 5}, true, 100},
		{"lukewarm", models.RatingStats{Count: 2, Average: 2.5}, false, 76},
		{"volume is capped", models.RatingStats{Count: 100, Average: 1}, false, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ComputeTrustScore(tt.stats, tt.verified), 1e-9)
		})
	}
}

func TestRatingDelta(t *testing.T) {
	want := map[int]float64{1: -0.2, 2: -0.1, 3: 0, 4: 0.1, 5: 0.2}
	for rating, delta := range want {
		got, err := RatingDelta(rating)
		require.NoError(t, err)
		assert.Equal(t, delta, got)
	}

	for _, bad := range []int{0, 6, -1} {
		_, err := RatingDelta(bad)
		assert.ErrorIs(t, err, utils.ErrValidation)
	}
}

func TestRecomputeOverwritesNudges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "host")

	_, err := f.trust.Nudge(ctx, u.ID, 5)
	require.NoError(t, err)

	updated, err := f.trust.Recompute(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, updated.TrustScore)
	assert.Equal(t, 0.0, updated.AverageRating)
}

func TestNudgeStaysInBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "guest")
	_, err := f.users.SetTrustScore(ctx, u.ID, 99.95, 0)
	require.NoError(t, err)

	updated, err := f.trust.Nudge(ctx, u.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, models.MaxTrustScore, updated.TrustScore)

	_, err = f.users.SetTrustScore(ctx, u.ID, 0.05, 0)
	require.NoError(t, err)
	updated, err = f.trust.Nudge(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.MinTrustScore, updated.TrustScore)
}
