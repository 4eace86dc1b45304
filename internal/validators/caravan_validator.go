package validators

import (
	"strings"

	"caravanshare/internal/models"
)

type CaravanCreateRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Description string   `json:"description" validate:"omitempty,max=2000"`
	Location    string   `json:"location" validate:"omitempty,max=200"`
	DailyRate   *float64 `json:"daily_rate" validate:"required,min=0"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=50"`
	Amenities   []string `json:"amenities" validate:"omitempty,max=30,dive,min=1,max=50"`
}

type CaravanUpdateRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Location    *string  `json:"location" validate:"omitempty,max=200"`
	DailyRate   *float64 `json:"daily_rate" validate:"omitempty,min=0"`
	Capacity    *int     `json:"capacity" validate:"omitempty,min=1,max=50"`
	Amenities   []string `json:"amenities" validate:"omitempty,max=30,dive,min=1,max=50"`
	Status      *string  `json:"status" validate:"omitempty,caravan_status"`
}

func ValidateCaravanCreate(req *CaravanCreateRequest) ValidationErrors {
	req.Name = strings.TrimSpace(req.Name)
	return ValidateStruct(req)
}

func ValidateCaravanUpdate(req *CaravanUpdateRequest) ValidationErrors {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	return ValidateStruct(req)
}

// Update converts the request into the repository patch.
func (req *CaravanUpdateRequest) Update() models.CaravanUpdate {
	update := models.CaravanUpdate{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		DailyRate:   req.DailyRate,
		Capacity:    req.Capacity,
		Amenities:   req.Amenities,
	}
	if req.Status != nil {
		status := models.CaravanStatus(*req.Status)
		update.Status = &status
	}
	return update
}
