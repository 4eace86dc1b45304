package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CaravanStatus string

const (
	CaravanStatusAvailable   CaravanStatus = "available"
	CaravanStatusReserved    CaravanStatus = "reserved"
	CaravanStatusMaintenance CaravanStatus = "maintenance"
)

type Caravan struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	HostID      primitive.ObjectID `json:"host_id" bson:"host_id" validate:"required"`
	Name        string             `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string             `json:"description" bson:"description"`
	Location    string             `json:"location" bson:"location"`
	DailyRate   float64            `json:"daily_rate" bson:"daily_rate" validate:"min=0"`
	Capacity    int                `json:"capacity" bson:"capacity" validate:"min=1"`
	Amenities   []string           `json:"amenities" bson:"amenities"`
	Photos      []Photo            `json:"photos" bson:"photos"`
	Status      CaravanStatus      `json:"status" bson:"status" default:"available"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

type Photo struct {
	URL          string `json:"url" bson:"url"`
	ThumbnailURL string `json:"thumbnail_url" bson:"thumbnail_url"`
}

// CaravanUpdate carries the mutable listing fields; nil means unchanged.
type CaravanUpdate struct {
	Name        *string
	Description *string
	Location    *string
	DailyRate   *float64
	Capacity    *int
	Amenities   []string
	Status      *CaravanStatus
}

func (s CaravanStatus) IsValid() bool {
	switch s {
	case CaravanStatusAvailable, CaravanStatusReserved, CaravanStatusMaintenance:
		return true
	}
	return false
}
