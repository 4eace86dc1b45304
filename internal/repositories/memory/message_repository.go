package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"caravanshare/internal/models"
	"caravanshare/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MessageRepository struct {
	mu       sync.RWMutex
	messages []models.Message
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{}
}

var _ interfaces.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) Create(ctx context.Context, message *models.Message) error {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *message)
	return nil
}

func (r *MessageRepository) ListConversation(ctx context.Context, a, b primitive.ObjectID) ([]*models.Message, error) {
	out := r.filter(func(m models.Message) bool {
		return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MessageRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.Message, error) {
	out := r.filter(func(m models.Message) bool { return m.Involves(userID) })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, recipientID, senderID primitive.ObjectID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var marked int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.RecipientID == recipientID && m.SenderID == senderID && m.ReadAt == nil {
			readAt := at
			m.ReadAt = &readAt
			marked++
		}
	}
	return marked, nil
}

func (r *MessageRepository) filter(keep func(models.Message) bool) []*models.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Message{}
	for _, m := range r.messages {
		if keep(m) {
			m := m
			out = append(out, &m)
		}
	}
	return out
}
