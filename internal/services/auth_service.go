package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/cache"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/oauth"

	"golang.org/x/crypto/bcrypt"
)

const oauthStateTTL = 10 * time.Minute

type AuthService interface {
	Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error)

	// Social authentication
	GoogleAuthURL(ctx context.Context) (string, error)
	GoogleCallback(ctx context.Context, state, code string) (*AuthResponse, error)
}

type RegisterRequest struct {
	DisplayName string
	Email       string
	Password    string
}

type LoginRequest struct {
	Email    string
	Password string
}

type AuthResponse struct {
	User      *models.User         `json:"user"`
	Token     *utils.TokenResponse `json:"token"`
	IsNewUser bool                 `json:"is_new_user"`
}

type AuthOptions struct {
	JWTSecret         string
	TokenTTL          time.Duration
	PasswordMinLength int
	BcryptCost        int
	Now               func() time.Time
}

type authService struct {
	userRepo interfaces.UserRepository
	google   oauth.Provider
	cache    Cache
	opts     AuthOptions
	logger   *logger.Logger
}

// NewAuthService accepts a nil google provider when social login is off.
func NewAuthService(userRepo interfaces.UserRepository, google oauth.Provider, cache Cache, opts AuthOptions, logger *logger.Logger) AuthService {
	if opts.PasswordMinLength <= 0 {
		opts.PasswordMinLength = utils.PasswordMinLength
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &authService{
		userRepo: userRepo,
		google:   google,
		cache:    cache,
		opts:     opts,
		logger:   logger,
	}
}

func (s *authService) Register(ctx context.Context, request *RegisterRequest) (*AuthResponse, error) {
	email := normalizeEmail(request.Email)
	displayName := strings.TrimSpace(request.DisplayName)
	if displayName == "" || email == "" {
		return nil, utils.NewValidationError("display name and email are required")
	}
	if len(request.Password) < s.opts.PasswordMinLength || len(request.Password) > utils.PasswordMaxLength {
		return nil, utils.NewValidationError(fmt.Sprintf("password must be %d to %d characters", s.opts.PasswordMinLength, utils.PasswordMaxLength))
	}

	// Check if user already exists
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, utils.NewConflictError("email is already registered")
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		DisplayName:  displayName,
		Email:        email,
		Password:     string(hashedPassword),
		AuthProvider: models.AuthProviderEmail,
		TrustScore:   models.DefaultTrustScore,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.NewConflictError("email is already registered")
		}
		s.logger.WithError(err).Error("Failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.LogUserAction(user.ID, utils.EventUserRegistered, map[string]interface{}{"provider": string(user.AuthProvider)})
	return s.issue(ctx, user, true)
}

func (s *authService) Login(ctx context.Context, request *LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(request.Email))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewUnauthorizedError(utils.ErrInvalidCredentials)
		}
		return nil, err
	}

	// Social-only accounts have no password to check.
	if !user.HasPassword() {
		return nil, utils.NewUnauthorizedError(utils.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
		s.logger.LogSecurityEvent("login_failed", "low", map[string]interface{}{"user_id": user.ID.Hex()})
		return nil, utils.NewUnauthorizedError(utils.ErrInvalidCredentials)
	}

	return s.issue(ctx, user, false)
}

func (s *authService) GoogleAuthURL(ctx context.Context) (string, error) {
	if s.google == nil {
		return "", utils.NewInvalidStateError("google login is not configured")
	}

	state := utils.GenerateRandomString(32)
	if err := s.cache.Set(ctx, utils.CacheOAuthStatePrefix+state, true, oauthStateTTL); err != nil {
		return "", fmt.Errorf("failed to store oauth state: %w", err)
	}

	return s.google.GetAuthURL(state), nil
}

func (s *authService) GoogleCallback(ctx context.Context, state, code string) (*AuthResponse, error) {
	if s.google == nil {
		return nil, utils.NewInvalidStateError("google login is not configured")
	}
	if state == "" || code == "" {
		return nil, utils.NewValidationError("state and code are required")
	}

	var known bool
	key := utils.CacheOAuthStatePrefix + state
	if err := s.cache.Get(ctx, key, &known); err != nil || !known {
		if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			return nil, fmt.Errorf("failed to read oauth state: %w", err)
		}
		return nil, utils.NewUnauthorizedError("login session expired, try again")
	}
	_ = s.cache.Delete(ctx, key)

	info, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.WithError(err).Warn("Google code exchange failed")
		return nil, &utils.AppError{Kind: utils.KindUnauthorized, Message: "google login failed", Err: err}
	}

	user, isNew, err := s.upsertGoogleUser(ctx, info)
	if err != nil {
		return nil, err
	}

	if isNew {
		s.logger.LogUserAction(user.ID, utils.EventUserRegistered, map[string]interface{}{"provider": string(models.AuthProviderGoogle)})
	}
	return s.issue(ctx, user, isNew)
}

// upsertGoogleUser finds the account by google id, links an existing
// account with the same verified email, or creates a credential-less one.
func (s *authService) upsertGoogleUser(ctx context.Context, info *oauth.UserInfo) (*models.User, bool, error) {
	user, err := s.userRepo.GetByGoogleID(ctx, info.ID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, false, err
	}

	email := normalizeEmail(info.Email)
	if email != "" && info.EmailVerified {
		existing, err := s.userRepo.GetByEmail(ctx, email)
		if err == nil {
			if err := s.userRepo.LinkGoogleAccount(ctx, existing.ID, info.ID); err != nil {
				return nil, false, fmt.Errorf("failed to link google account: %w", err)
			}
			existing.GoogleID = info.ID
			return existing, false, nil
		}
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, false, err
		}
	}

	displayName := strings.TrimSpace(info.Name)
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}
	if displayName == "" {
		displayName = "Guest"
	}

	user = &models.User{
		DisplayName:  displayName,
		Email:        email,
		AuthProvider: models.AuthProviderGoogle,
		GoogleID:     info.ID,
		ProfileImage: info.Picture,
		TrustScore:   models.DefaultTrustScore,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	return user, true, nil
}

func (s *authService) issue(ctx context.Context, user *models.User, isNew bool) (*AuthResponse, error) {
	userType := utils.UserTypeGuest
	if user.IsHost {
		userType = utils.UserTypeHost
	}

	token, err := utils.GenerateToken(user.ID, userType, user.Email, s.opts.JWTSecret, s.opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	now := s.opts.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to update last login")
	} else {
		user.LastLoginAt = &now
	}
	s.logger.LogUserAction(user.ID, utils.EventUserLogin, nil)

	return &AuthResponse{User: user, Token: token, IsNewUser: isNew}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
