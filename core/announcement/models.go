package announcement

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
)

// Target audiences
const (
	AudienceAll     = "all"
	AudienceParents = "parents"
	AudienceStaff   = "staff"
)

// Announcement statuses
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Announcement is a notice published by an admin to a target audience.
type Announcement struct {
	ID             int         `json:"id" db:"id"`
	Title          string      `json:"title" db:"title"`
	Content        string      `json:"content" db:"content"`
	AuthorID       int         `json:"author_id" db:"author_id"`
	AuthorName     string      `json:"author_name,omitempty" db:"author_name"`
	TargetAudience string      `json:"target_audience" db:"target_audience"`
	PublishDate    time.Time   `json:"publish_date" db:"publish_date"`
	ExpiryDate     null.Time   `json:"expiry_date" db:"expiry_date"`
	Status         string      `json:"status" db:"status"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"` // UTC
}

// VisibleToParents reports whether parents may see this announcement.
func (a Announcement) VisibleToParents() bool {
	if a.Status != StatusActive {
		return false
	}
	return a.TargetAudience == AudienceAll || a.TargetAudience == AudienceParents
}

// NewAnnouncement contains information needed to publish an Announcement.
type NewAnnouncement struct {
	Title          string `json:"title" validate:"required,min=3"`
	Content        string `json:"content" validate:"required,min=10"`
	TargetAudience string `json:"target_audience" validate:"omitempty,oneof=all parents staff"`
	ExpiryDate     string `json:"expiry_date" validate:"omitempty"`

	expiry null.Time
}

func (na *NewAnnouncement) Validate() error {
	na.Title = core.CleanString(na.Title)
	na.Content = core.CleanString(na.Content)
	na.TargetAudience = core.CleanString(na.TargetAudience, true /* lower */)
	if na.TargetAudience == "" {
		na.TargetAudience = AudienceAll
	}

	if err := core.Validate.Struct(na); err != nil {
		return err
	}

	if na.ExpiryDate != "" {
		expiry, err := core.ParseDate(na.ExpiryDate)
		if err != nil {
			return core.NewValidationError(
				errors.New("invalid expiry date"),
				core.FieldError{Field: "expiry_date", Error: "must be a valid date"},
			)
		}
		na.expiry = null.TimeFrom(expiry)
	}
	return nil
}

// UpdateAnnouncement contains the updatable Announcement fields; zero-valued
// fields are left untouched.
type UpdateAnnouncement struct {
	Title          string `json:"title" validate:"omitempty,min=3"`
	Content        string `json:"content" validate:"omitempty,min=10"`
	TargetAudience string `json:"target_audience" validate:"omitempty,oneof=all parents staff"`
	ExpiryDate     string `json:"expiry_date" validate:"omitempty"`
	Status         string `json:"status" validate:"omitempty,oneof=draft active archived"`

	expiry null.Time
}

func (ua *UpdateAnnouncement) Validate() error {
	ua.Title = core.CleanString(ua.Title)
	ua.Content = core.CleanString(ua.Content)
	ua.TargetAudience = core.CleanString(ua.TargetAudience, true /* lower */)
	ua.Status = core.CleanString(ua.Status, true /* lower */)

	if err := core.Validate.Struct(ua); err != nil {
		return err
	}

	if ua.ExpiryDate != "" {
		expiry, err := core.ParseDate(ua.ExpiryDate)
		if err != nil {
			return core.NewValidationError(
				errors.New("invalid expiry date"),
				core.FieldError{Field: "expiry_date", Error: "must be a valid date"},
			)
		}
		ua.expiry = null.TimeFrom(expiry)
	}
	return nil
}
