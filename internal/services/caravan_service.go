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

type CaravanService interface {
	Create(ctx context.Context, hostID primitive.ObjectID, input *CaravanInput) (*models.Caravan, error)
	Get(ctx context.Context, caravanID primitive.ObjectID) (*models.Caravan, error)
	List(ctx context.Context, filter interfaces.CaravanFilter) ([]*models.Caravan, int64, error)
	ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Caravan, error)
	Update(ctx context.Context, caravanID, hostID primitive.ObjectID, update models.CaravanUpdate) (*models.Caravan, error)
	Delete(ctx context.Context, caravanID, hostID primitive.ObjectID) error
	UploadPhotos(ctx context.Context, caravanID, hostID primitive.ObjectID, files []FileUpload) (*models.Caravan, error)
}

type CaravanInput struct {
	Name        string
	Description string
	Location    string
	DailyRate   float64
	Capacity    int
	Amenities   []string
}

// activeStatuses are the reservations that still need the listing.
var activeStatuses = []models.ReservationStatus{
	models.ReservationStatusPending,
	models.ReservationStatusApproved,
}

type caravanService struct {
	caravanRepo     interfaces.CaravanRepository
	reservationRepo interfaces.ReservationRepository
	userRepo        interfaces.UserRepository
	media           *mediaStore
	logger          *logger.Logger
}

func NewCaravanService(
	caravanRepo interfaces.CaravanRepository,
	reservationRepo interfaces.ReservationRepository,
	userRepo interfaces.UserRepository,
	storageProvider storage.Provider,
	logger *logger.Logger,
) CaravanService {
	return &caravanService{
		caravanRepo:     caravanRepo,
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		media:           &mediaStore{storage: storageProvider, logger: logger},
		logger:          logger,
	}
}

func (s *caravanService) Create(ctx context.Context, hostID primitive.ObjectID, input *CaravanInput) (*models.Caravan, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, utils.NewValidationError("name is required")
	}
	if err := validateListingNumbers(&input.DailyRate, &input.Capacity); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, hostID); err != nil {
		return nil, err
	}

	caravan := &models.Caravan{
		HostID:      hostID,
		Name:        name,
		Description: input.Description,
		Location:    input.Location,
		DailyRate:   input.DailyRate,
		Capacity:    input.Capacity,
		Amenities:   normalizeAmenities(input.Amenities),
		Photos:      []models.Photo{},
		Status:      models.CaravanStatusAvailable,
	}
	if err := s.caravanRepo.Create(ctx, caravan); err != nil {
		return nil, fmt.Errorf("failed to create caravan: %w", err)
	}

	if err := s.userRepo.SetHost(ctx, hostID); err != nil {
		return nil, fmt.Errorf("failed to mark user as host: %w", err)
	}

	s.logger.LogUserAction(hostID, "caravan_created", map[string]interface{}{"caravan_id": caravan.ID.Hex()})
	return caravan, nil
}

func (s *caravanService) Get(ctx context.Context, caravanID primitive.ObjectID) (*models.Caravan, error) {
	return s.caravanRepo.GetByID(ctx, caravanID)
}

func (s *caravanService) List(ctx context.Context, filter interfaces.CaravanFilter) ([]*models.Caravan, int64, error) {
	return s.caravanRepo.List(ctx, filter)
}

func (s *caravanService) ListByHost(ctx context.Context, hostID primitive.ObjectID) ([]*models.Caravan, error) {
	caravans, _, err := s.caravanRepo.List(ctx, interfaces.CaravanFilter{HostID: &hostID})
	return caravans, err
}

func (s *caravanService) Update(ctx context.Context, caravanID, hostID primitive.ObjectID, update models.CaravanUpdate) (*models.Caravan, error) {
	if _, err := s.ownedBy(ctx, caravanID, hostID); err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, utils.NewValidationError("name cannot be empty")
		}
		update.Name = &name
	}
	if err := validateListingNumbers(update.DailyRate, update.Capacity); err != nil {
		return nil, err
	}
	if update.Status != nil && !update.Status.IsValid() {
		return nil, utils.NewValidationError(fmt.Sprintf("unknown caravan status %q", *update.Status))
	}
	if update.Amenities != nil {
		update.Amenities = normalizeAmenities(update.Amenities)
	}

	return s.caravanRepo.Update(ctx, caravanID, update)
}

func (s *caravanService) Delete(ctx context.Context, caravanID, hostID primitive.ObjectID) error {
	if _, err := s.ownedBy(ctx, caravanID, hostID); err != nil {
		return err
	}

	active, err := s.reservationRepo.CountByCaravan(ctx, caravanID, activeStatuses)
	if err != nil {
		return fmt.Errorf("failed to count reservations: %w", err)
	}
	if active > 0 {
		return utils.NewInvalidStateError("caravan has pending or approved reservations")
	}

	if err := s.caravanRepo.Delete(ctx, caravanID); err != nil {
		return err
	}

	s.logger.LogUserAction(hostID, "caravan_deleted", map[string]interface{}{"caravan_id": caravanID.Hex()})
	return nil
}

func (s *caravanService) UploadPhotos(ctx context.Context, caravanID, hostID primitive.ObjectID, files []FileUpload) (*models.Caravan, error) {
	caravan, err := s.ownedBy(ctx, caravanID, hostID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, utils.NewValidationError("at least one photo is required")
	}
	if len(caravan.Photos)+len(files) > utils.MaxPhotosPerCar {
		return nil, utils.NewValidationError(fmt.Sprintf("a caravan can have at most %d photos", utils.MaxPhotosPerCar))
	}
	for _, f := range files {
		if err := f.validate(); err != nil {
			return nil, err
		}
	}

	photos := make([]models.Photo, 0, len(files))
	for _, f := range files {
		photo, err := s.media.storePhoto(ctx, utils.CaravanPhotoKey(caravanID.Hex(), f.Filename), f)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}

	return s.caravanRepo.AddPhotos(ctx, caravanID, photos)
}

func (s *caravanService) ownedBy(ctx context.Context, caravanID, hostID primitive.ObjectID) (*models.Caravan, error) {
	caravan, err := s.caravanRepo.GetByID(ctx, caravanID)
	if err != nil {
		return nil, err
	}
	if caravan.HostID != hostID {
		return nil, utils.NewForbiddenError("only the host can modify this caravan")
	}
	return caravan, nil
}

func validateListingNumbers(dailyRate *float64, capacity *int) error {
	if dailyRate != nil && *dailyRate < 0 {
		return utils.NewValidationError("daily rate cannot be negative")
	}
	if capacity != nil && *capacity < 1 {
		return utils.NewValidationError("capacity must be at least 1")
	}
	return nil
}

func normalizeAmenities(amenities []string) []string {
	seen := make(map[string]bool, len(amenities))
	out := make([]string, 0, len(amenities))
	for _, a := range amenities {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
