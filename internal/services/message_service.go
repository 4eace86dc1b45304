package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"
	"caravanshare/internal/utils"
	"caravanshare/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageService interface {
	Send(ctx context.Context, senderID primitive.ObjectID, input *SendMessageInput) (*models.Message, error)
	// Conversation returns the thread with otherID, oldest first, and marks
	// the messages addressed to userID as read.
	Conversation(ctx context.Context, userID, otherID primitive.ObjectID) ([]*models.Message, error)
	Inbox(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Message, error)
}

type SendMessageInput struct {
	RecipientID primitive.ObjectID
	Content     string
}

type messageService struct {
	messageRepo   interfaces.MessageRepository
	userRepo      interfaces.UserRepository
	notifications NotificationService
	now           func() time.Time
	logger        *logger.Logger
}

func NewMessageService(
	messageRepo interfaces.MessageRepository,
	userRepo interfaces.UserRepository,
	notifications NotificationService,
	now func() time.Time,
	logger *logger.Logger,
) MessageService {
	if now == nil {
		now = time.Now
	}
	return &messageService{
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		notifications: notifications,
		now:           now,
		logger:        logger,
	}
}

func (s *messageService) Send(ctx context.Context, senderID primitive.ObjectID, input *SendMessageInput) (*models.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, utils.NewValidationError("message content is required")
	}
	if utf8.RuneCountInString(content) > utils.MaxMessageLength {
		return nil, utils.NewValidationError(fmt.Sprintf("message must be at most %d characters", utils.MaxMessageLength))
	}
	if input.RecipientID == senderID {
		return nil, utils.NewValidationError("cannot message yourself")
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, input.RecipientID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.NewNotFoundError("recipient")
		}
		return nil, err
	}

	message := &models.Message{
		SenderID:    senderID,
		RecipientID: input.RecipientID,
		Content:     content,
		CreatedAt:   s.now(),
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.logger.LogUserAction(senderID, utils.EventMessageSent, map[string]interface{}{
		"message_id":   message.ID.Hex(),
		"recipient_id": input.RecipientID.Hex(),
	})
	s.notifications.Notify(ctx, &models.Notification{
		UserID:  input.RecipientID,
		Type:    models.NotificationMessageReceived,
		Title:   "New message",
		Message: fmt.Sprintf("%s sent you a message.", sender.DisplayName),
		Data: map[string]interface{}{
			"message_id": message.ID.Hex(),
			"sender_id":  senderID.Hex(),
		},
	})

	return message, nil
}

func (s *messageService) Conversation(ctx context.Context, userID, otherID primitive.ObjectID) ([]*models.Message, error) {
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if _, err := s.messageRepo.MarkRead(ctx, userID, otherID, now); err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("Failed to mark messages read")
		return messages, nil
	}
	for _, m := range messages {
		if m.RecipientID == userID && m.ReadAt == nil {
			readAt := now
			m.ReadAt = &readAt
		}
	}
	return messages, nil
}

func (s *messageService) Inbox(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Message, error) {
	if limit <= 0 || limit > utils.MaxPageSize {
		limit = utils.DefaultInboxLimit
	}
	return s.messageRepo.ListForUser(ctx, userID, limit)
}
