package services

import (
	"context"
	"fmt"
	"strings"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetMe(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	GetPublicProfile(ctx context.Context, userID primitive.ObjectID) (*models.PublicProfile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, input *ProfileInput) (*models.User, error)
	// VerifyIdentity flips the verification flag once. The trust bonus
	// lands on the next review-driven recompute.
	VerifyIdentity(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	UploadProfileImage(ctx context.Context, userID primitive.ObjectID, file FileUpload) (*models.User, error)
}

type ProfileInput struct {
	DisplayName  *string
	Introduction *string
	// Contact can be written once; later writes must repeat the stored value.
	Contact *string
}

type userService struct {
	userRepo interfaces.UserRepository
	media    *mediaStore
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, storageProvider storage.Provider, logger *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		media:    &mediaStore{storage: storageProvider, logger: logger},
		logger:   logger,
	}
}

func (s *userService) GetMe(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) GetPublicProfile(ctx context.Context, userID primitive.ObjectID) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Public()
	return &profile, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, input *ProfileInput) (*models.User, error) {
	update := interfaces.ProfileUpdate{Introduction: input.Introduction}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if len(name) < 2 || len(name) > 50 {
			return nil, utils.NewValidationError("display name must be 2 to 50 characters")
		}
		update.DisplayName = &name
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Contact != nil {
		contact := strings.TrimSpace(*input.Contact)
		if contact == "" {
			return nil, utils.NewValidationError("contact cannot be empty")
		}
		if user.Contact != "" && user.Contact != contact {
			return nil, utils.NewInvalidStateError("contact can only be set once")
		}
		if user.Contact == "" {
			updated, set, err := s.userRepo.SetContactOnce(ctx, userID, contact)
			if err != nil {
				return nil, fmt.Errorf("failed to set contact: %w", err)
			}
			if !set && updated.Contact != contact {
				return nil, utils.NewInvalidStateError("contact can only be set once")
			}
			user = updated
		}
	}

	if update.DisplayName == nil && update.Introduction == nil {
		return user, nil
	}
	return s.userRepo.UpdateProfile(ctx, userID, update)
}

func (s *userService) VerifyIdentity(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, set, err := s.userRepo.SetVerified(ctx, userID)
	if err != nil {
		return nil, err
	}
	if set {
		s.logger.LogUserAction(userID, "identity_verified", nil)
	}
	return user, nil
}

func (s *userService) UploadProfileImage(ctx context.Context, userID primitive.ObjectID, file FileUpload) (*models.User, error) {
	if err := file.validate(); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	photo, err := s.media.storePhoto(ctx, utils.ProfileImageKey(userID.Hex(), file.Filename), file)
	if err != nil {
		return nil, err
	}

	return s.userRepo.UpdateProfile(ctx, userID, interfaces.ProfileUpdate{ProfileImage: &photo.URL})
}
