package services

import (
	"context"
	"fmt"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"
	"caravanshare/pkg/sms"
	"caravanshare/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService delivers lifecycle events to users. Delivery is
// best effort: failures are logged and never reach the caller.
type NotificationService interface {
	Notify(ctx context.Context, notification *models.Notification)
}

// Pusher is the realtime side of delivery; *websocket.Hub satisfies it.
type Pusher interface {
	SendToUser(userID primitive.ObjectID, message websocket.Message) error
}

type notificationService struct {
	pusher   Pusher
	sms      sms.Sender
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

// NewNotificationService accepts a nil sms sender when SMS is disabled.
func NewNotificationService(pusher Pusher, smsSender sms.Sender, userRepo interfaces.UserRepository, logger *logger.Logger) NotificationService {
	return &notificationService{
		pusher:   pusher,
		sms:      smsSender,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, n *models.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	log := s.logger.WithUserID(n.UserID).WithField("notification_type", string(n.Type))

	if s.pusher != nil {
		data := map[string]interface{}{
			"title":   n.Title,
			"message": n.Message,
		}
		for k, v := range n.Data {
			data[k] = v
		}
		err := s.pusher.SendToUser(n.UserID, websocket.Message{
			Type:      string(n.Type),
			Timestamp: n.CreatedAt.Unix(),
			Data:      data,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to push notification")
		}
	}

	if s.sms == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, n.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to load user for sms notification")
		return
	}
	if user.Contact == "" {
		return
	}

	_, err = s.sms.SendSMS(ctx, &sms.SMSRequest{
		To:      user.Contact,
		Message: fmt.Sprintf("[%s] %s", utils.AppName, n.Message),
	})
	if err != nil {
		log.WithError(err).Warn("Failed to send sms notification")
	}
}

func reservationNotification(userID primitive.ObjectID, kind models.NotificationType, title, message string, r *models.Reservation) *models.Notification {
	return &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data: map[string]interface{}{
			"reservation_id": r.ID.Hex(),
			"caravan_id":     r.CaravanID.Hex(),
			"status":         string(r.Status),
		},
	}
}
