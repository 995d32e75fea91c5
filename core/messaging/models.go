package messaging

import (
	"time"

	"github.com/trezcool/chekechea/core"
)

// Message statuses
const (
	MessageUnread = "unread"
	MessageRead   = "read"
)

// Message is an in-app message between two users. Sender and receiver names
// are denormalized onto the row for display.
type Message struct {
	ID           int       `json:"id" db:"id"`
	SenderID     int       `json:"sender_id" db:"sender_id"`
	SenderName   string    `json:"sender_name,omitempty" db:"sender_name"`
	SenderRole   string    `json:"sender_role,omitempty" db:"sender_role"`
	ReceiverID   int       `json:"receiver_id" db:"receiver_id"`
	ReceiverName string    `json:"receiver_name,omitempty" db:"receiver_name"`
	Subject      string    `json:"subject" db:"subject"`
	Content      string    `json:"content" db:"content"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewMessage contains information needed to send a Message.
type NewMessage struct {
	ReceiverID int    `json:"receiver_id" validate:"required"`
	Subject    string `json:"subject" validate:"required,min=2"`
	Content    string `json:"content" validate:"required,min=2"`
}

func (nm *NewMessage) Validate() error {
	nm.Subject = core.CleanString(nm.Subject)
	nm.Content = core.CleanString(nm.Content)
	return core.Validate.Struct(nm)
}
