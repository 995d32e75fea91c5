package notification

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Activity types
const (
	TypeApplication  = "application"
	TypeEnrollment   = "enrollment"
	TypePayment      = "payment"
	TypeAttendance   = "attendance"
	TypeStaff        = "staff"
	TypeAnnouncement = "announcement"
)

// Notification is an in-app message to a single user. Notifications are only
// ever created as side effects of domain operations, never directly.
type Notification struct {
	ID      int       `json:"id" db:"id"`
	UserID  int       `json:"user_id" db:"user_id"`
	Title   string    `json:"title" db:"title"`
	Message string    `json:"message" db:"message"`
	Date    time.Time `json:"date" db:"date"` // UTC
	IsRead  bool      `json:"is_read" db:"is_read"`
}

// Activity is an append-only audit trail entry; the UserID is the user the
// event is about (e.g. the parent whose application was decided), not
// necessarily the user who triggered it.
type Activity struct {
	ID          int         `json:"id" db:"id"`
	UserID      int         `json:"user_id" db:"user_id"`
	UserName    null.String `json:"user,omitempty" db:"user_name"`
	Type        string      `json:"type" db:"type"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"` // UTC
}
