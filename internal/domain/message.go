package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Message is a chat message posted to a room.
type Message struct {
	ID         uuid.UUID  `json:"id"`
	Room       string     `json:"room"`
	SenderID   *uuid.UUID `json:"sender_id,omitempty"`
	SenderName string     `json:"sender_name,omitempty"` // resolved on read
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListByRoom(ctx context.Context, room string, limit int) ([]*Message, error)
}
