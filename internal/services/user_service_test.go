package services

import (
	"context"
	"testing"

	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUserService(t *testing.T, f *fixture) UserService {
	t.Helper()
	provider, err := storage.New(context.Background(), storage.Config{
		Provider:  storage.ProviderLocal,
		LocalPath: t.TempDir(),
		LocalURL:  "http://files.test",
	})
	require.NoError(t, err)
	return NewUserService(f.users, provider, logger.Nop())
}

func strPtr(s string) *string { return &s }

func TestContactCanBeSetOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)
	u := f.user(t, "guest")

	updated, err := svc.UpdateProfile(ctx, u.ID, &ProfileInput{Contact: strPtr("010-1111-2222")})
	require.NoError(t, err)
	assert.Equal(t, "010-1111-2222", updated.Contact)

	_, err = svc.UpdateProfile(ctx, u.ID, &ProfileInput{Contact: strPtr("010-9999-9999")})
	assert.ErrorIs(t, err, utils.ErrInvalidState)

	updated, err = svc.UpdateProfile(ctx, u.ID, &ProfileInput{
		Contact:      strPtr("010-1111-2222"),
		Introduction: strPtr("I like camping"),
	})
	require.NoError(t, err)
	assert.Equal(t, "I like camping", updated.Introduction)
	assert.Equal(t, "010-1111-2222", updated.Contact)
}

func TestUpdateDisplayName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)
	u := f.user(t, "guest")

	_, err := svc.UpdateProfile(ctx, u.ID, &ProfileInput{DisplayName: strPtr(" x ")})
	assert.ErrorIs(t, err, utils.ErrValidation)

	updated, err := svc.UpdateProfile(ctx, u.ID, &ProfileInput{DisplayName: strPtr("Camper Kim")})
	require.NoError(t, err)
	assert.Equal(t, "Camper Kim", updated.DisplayName)
}

func TestVerifyIdentityDefersBonus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)
	u := f.user(t, "host")

	verified, err := svc.VerifyIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, 50.0, verified.TrustScore)

	again, err := svc.VerifyIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, again.IsVerified)

	recomputed, err := f.trust.Recompute(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 70.0, recomputed.TrustScore)
}

func TestPublicProfileHidesPrivateFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)
	u := f.user(t, "host")

	profile, err := svc.GetPublicProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.DisplayName, profile.DisplayName)
	assert.Equal(t, 50.0, profile.TrustScore)

	_, err = svc.GetPublicProfile(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUploadProfileImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newUserService(t, f)
	u := f.user(t, "guest")

	updated, err := svc.UploadProfileImage(ctx, u.ID, FileUpload{Filename: "me.png", Data: pngBytes(t, 10, 10)})
	require.NoError(t, err)
	assert.Contains(t, updated.ProfileImage, "http://files.test/users/"+u.ID.Hex()+"/")
}
