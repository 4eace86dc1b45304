package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthProvider string

const (
	AuthProviderEmail  AuthProvider = "email"
	AuthProviderGoogle AuthProvider = "google"

	DefaultTrustScore = 50.0
	MinTrustScore     = 0.0
	MaxTrustScore     = 100.0
)

type User struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	DisplayName   string             `json:"display_name" bson:"display_name" validate:"required,min=2,max=50"`
	Email         string             `json:"email" bson:"email,omitempty"`
	Password      string             `json:"-" bson:"password,omitempty"`
	AuthProvider  AuthProvider       `json:"auth_provider" bson:"auth_provider" default:"email"`
	GoogleID      string             `json:"-" bson:"google_id,omitempty"`
	Introduction  string             `json:"introduction" bson:"introduction"`
	ProfileImage  string             `json:"profile_image" bson:"profile_image"`
	Contact       string             `json:"contact" bson:"contact"`
	TrustScore    float64            `json:"trust_score" bson:"trust_score" default:"50"`
	AverageRating float64            `json:"average_rating" bson:"average_rating" default:"0"`
	IsVerified    bool               `json:"is_verified" bson:"is_verified" default:"false"`
	IsHost        bool               `json:"is_host" bson:"is_host" default:"false"`
	LastLoginAt   *time.Time         `json:"last_login_at" bson:"last_login_at"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// PublicProfile is what other users see.
type PublicProfile struct {
	ID            primitive.ObjectID `json:"id"`
	DisplayName   string             `json:"display_name"`
	Introduction  string             `json:"introduction"`
	ProfileImage  string             `json:"profile_image"`
	TrustScore    float64            `json:"trust_score"`
	AverageRating float64            `json:"average_rating"`
	IsVerified    bool               `json:"is_verified"`
	IsHost        bool               `json:"is_host"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:            u.ID,
		DisplayName:   u.DisplayName,
		Introduction:  u.Introduction,
		ProfileImage:  u.ProfileImage,
		TrustScore:    u.TrustScore,
		AverageRating: u.AverageRating,
		IsVerified:    u.IsVerified,
		IsHost:        u.IsHost,
	}
}

func (u *User) HasPassword() bool {
	return u.Password != ""
}
