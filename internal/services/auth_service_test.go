package services

import (
	"context"
	"net/url"
	"testing"

	"caravanshare/internal/models"
	"caravanshare/internal/utils"
	"caravanshare/pkg/cache"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/oauth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type fakeGoogle struct {
	info *oauth.UserInfo
}

func (g *fakeGoogle) Name() string { return "google" }

func (g *fakeGoogle) GetAuthURL(state string) string {
	return "https://accounts.example/auth?state=" + url.QueryEscape(state)
}

func (g *fakeGoogle) Exchange(ctx context.Context, code string) (*oauth.UserInfo, error) {
	return g.info, nil
}

func newAuthService(f *fixture, google oauth.Provider) AuthService {
	return NewAuthService(f.users, google, cache.NewMemoryCache(), AuthOptions{
		JWTSecret:  testSecret,
		BcryptCost: bcrypt.MinCost,
	}, logger.Nop())
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuthService(f, nil)

	resp, err := svc.Register(ctx, &RegisterRequest{DisplayName: "Kim", Email: " Kim@Example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, resp.IsNewUser)
	assert.Equal(t, "kim@example.com", resp.User.Email)
	assert.Equal(t, models.DefaultTrustScore, resp.User.TrustScore)
	assert.NotEqual(t, "password123", resp.User.Password)

	claims, err := utils.ValidateToken(resp.Token.AccessToken, testSecret)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, utils.UserTypeGuest, claims.UserType)

	_, err = svc.Register(ctx, &RegisterRequest{DisplayName: "Kim2", Email: "kim@example.com", Password: "password123"})
	assert.ErrorIs(t, err, utils.ErrConflict)

	login, err := svc.Login(ctx, &LoginRequest{Email: "KIM@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
	assert.NotNil(t, login.User.LastLoginAt)

	_, err = svc.Login(ctx, &LoginRequest{Email: "kim@example.com", Password: "wrong-password"})
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, nil)

	_, err := svc.Register(context.Background(), &RegisterRequest{DisplayName: "Kim", Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestGoogleLoginCreatesCredentialLessUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	google := &fakeGoogle{info: &oauth.UserInfo{ID: "g-1", Email: "park@example.com", EmailVerified: true, Name: "Park"}}
	svc := newAuthService(f, google)

	authURL, err := svc.GoogleAuthURL(ctx)
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	resp, err := svc.GoogleCallback(ctx, state, "code")
	require.NoError(t, err)
	assert.True(t, resp.IsNewUser)
	assert.False(t, resp.User.HasPassword())
	assert.Equal(t, models.AuthProviderGoogle, resp.User.AuthProvider)

	// State is single use.
	_, err = svc.GoogleCallback(ctx, state, "code")
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))

	_, err = svc.Login(ctx, &LoginRequest{Email: "park@example.com", Password: "anything"})
	assert.Equal(t, utils.KindUnauthorized, utils.KindOf(err))
}

func TestGoogleLoginLinksExistingEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	existing := f.user(t, "lee")
	google := &fakeGoogle{info: &oauth.UserInfo{ID: "g-2", Email: existing.Email, EmailVerified: true}}
	svc := newAuthService(f, google)

	authURL, err := svc.GoogleAuthURL(ctx)
	require.NoError(t, err)
	parsed, _ := url.Parse(authURL)

	resp, err := svc.GoogleCallback(ctx, parsed.Query().Get("state"), "code")
	require.NoError(t, err)
	assert.False(t, resp.IsNewUser)
	assert.Equal(t, existing.ID, resp.User.ID)
	assert.Equal(t, "g-2", f.reload(t, existing.ID).GoogleID)
}

func TestGoogleLoginDisabled(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(f, nil)

	_, err := svc.GoogleAuthURL(context.Background())
	assert.ErrorIs(t, err, utils.ErrInvalidState)
}
