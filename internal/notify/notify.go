// Package notify pushes persisted notifications to connected clients.
package notify

import (
	"context"
	"time"

	"github.com/octobees/rentroom/api/internal/entity"
)

// Broadcaster delivers a notification to whoever listens for its user.
type Broadcaster interface {
	Broadcast(ctx context.Context, n entity.Notification) error
}

// Message is the payload clients receive.
type Message struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Message    string    `json:"message"`
	Type       int       `json:"type"`
	TypeName   string    `json:"type_name"`
	ReadStatus int       `json:"read_status"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewMessage converts a stored notification into its wire form.
func NewMessage(n entity.Notification) Message {
	return Message{
		ID:         n.ID,
		UserID:     n.UserID.String(),
		Message:    n.Message,
		Type:       int(n.Type),
		TypeName:   n.Type.String(),
		ReadStatus: int(n.ReadStatus),
		CreatedAt:  n.CreatedAt,
	}
}

// Noop drops every notification. It is used when NOTIFY_DRIVER=none.
type Noop struct{}

func (Noop) Broadcast(context.Context, entity.Notification) error { return nil }

var _ Broadcaster = Noop{}
