package utils

import "time"

// Application Constants
const (
	AppName    = "CaravanShare"
	AppVersion = "1.0.0"

	DefaultCurrency = "KRW"
	DefaultTimeZone = "Asia/Seoul"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL = 24 * time.Hour
	PasswordMinLength = 8
	PasswordMaxLength = 128

	// Ratings
	MinRating = 1
	MaxRating = 5

	// Messaging
	MaxMessageLength  = 2000
	DefaultInboxLimit = 50

	// File Upload
	MaxImageSize    = 5 * 1024 * 1024 // 5MB
	MaxPhotosPerCar = 10
	ThumbnailWidth  = 400
	ThumbnailHeight = 300
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrInvalidToken       = "invalid token"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbiddenMessage   = "forbidden"
	ErrValidationFailed   = "validation failed"
	ErrFileUploadFailed   = "file upload failed"
)

// Cache Keys
const (
	CacheBookedRangesPrefix = "booked_ranges:"
	LockCaravanPrefix       = "caravan:"
	LockReservationPrefix   = "reservation:"
	LockSettlementPrefix    = "settlement:"
	CacheOAuthStatePrefix   = "oauth_state:"
)

// Event Types
const (
	EventUserRegistered      = "user_registered"
	EventUserLogin           = "user_login"
	EventReservationCreated  = "reservation_created"
	EventReservationApproved = "reservation_approved"
	EventReservationRejected = "reservation_rejected"
	EventReservationCancel   = "reservation_cancelled"
	EventPaymentProcessed    = "payment_processed"
	EventPaymentFailed       = "payment_failed"
	EventTrustRecomputed     = "trust_recomputed"
	EventTrustAdjusted       = "trust_adjusted"
	EventMessageSent         = "message_sent"
	EventSettlementCreated   = "settlement_created"
)

// File Types
var AllowedImageTypes = []string{"jpg", "jpeg", "png", "gif", "webp"}
