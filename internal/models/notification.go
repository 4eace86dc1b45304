package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationReservationCreated   NotificationType = "reservation_created"
	NotificationReservationApproved  NotificationType = "reservation_approved"
	NotificationReservationRejected  NotificationType = "reservation_rejected"
	NotificationReservationCancelled NotificationType = "reservation_cancelled"
	NotificationReservationPaid      NotificationType = "reservation_paid"
	NotificationReviewCreated        NotificationType = "review_created"
	NotificationMessageReceived      NotificationType = "message_received"
	NotificationSettlementCreated    NotificationType = "settlement_created"
)

type Notification struct {
	UserID    primitive.ObjectID     `json:"user_id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
