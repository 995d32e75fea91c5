package announcement

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/user"
)

var (
	// ErrNotFound is returned when an announcement is not found.
	ErrNotFound = core.NewNotFoundError("announcement not found")
	// ErrInvalidStatus is returned for an unknown announcement status value.
	ErrInvalidStatus = core.NewValidationError(errors.New("status must be draft, active or archived"))
)

type (
	// Repository persists announcements. Implementations denormalize the
	// author's name onto each row they return. QueryActiveAnnouncements
	// matches announcements addressed to the given audience or to "all".
	Repository interface {
		CreateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
		QueryAllAnnouncements(ctx context.Context) ([]Announcement, error)
		QueryActiveAnnouncements(ctx context.Context, audience string) ([]Announcement, error)
		GetAnnouncementByID(ctx context.Context, id int) (Announcement, error)
		UpdateAnnouncement(ctx context.Context, a Announcement) (Announcement, error)
	}

	// Service manages announcements and their audience fan-out.
	Service struct {
		repo     Repository
		notifSvc *notification.Service
		userSvc  *user.Service
		tx       core.Transactor
	}
)

func NewService(repo Repository, notifSvc *notification.Service, userSvc *user.Service, tx core.Transactor) *Service {
	return &Service{
		repo:     repo,
		notifSvc: notifSvc,
		userSvc:  userSvc,
		tx:       tx,
	}
}

// Create publishes an announcement, records an activity attributed to the
// author, and notifies every parent when the audience includes them. All of
// it commits or rolls back together.
func (svc *Service) Create(ctx context.Context, na NewAnnouncement, author user.User) (Announcement, error) {
	if err := na.Validate(); err != nil {
		return Announcement{}, err
	}

	now := time.Now().UTC()
	a := Announcement{
		Title:          na.Title,
		Content:        na.Content,
		AuthorID:       author.ID,
		TargetAudience: na.TargetAudience,
		PublishDate:    now,
		ExpiryDate:     na.expiry,
		Status:         StatusActive,
		CreatedAt:      now,
	}

	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if a, err = svc.repo.CreateAnnouncement(ctx, a); err != nil {
			return err
		}
		if _, err = svc.notifSvc.Record(ctx, author.ID, notification.TypeAnnouncement,
			"New announcement published", a.Title,
		); err != nil {
			return err
		}

		if a.TargetAudience == AudienceAll || a.TargetAudience == AudienceParents {
			parents, err := svc.userSvc.QueryParents(ctx)
			if err != nil {
				return err
			}
			for _, parent := range parents {
				if _, err = svc.notifSvc.Notify(ctx, parent.ID, "New Announcement", a.Title); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return Announcement{}, err
	}
	a.AuthorName = author.Name
	return a, nil
}

// Query returns every announcement for admins; parents only see active ones
// addressed to them.
func (svc *Service) Query(ctx context.Context, actor user.User) ([]Announcement, error) {
	if actor.IsAdmin() {
		return svc.repo.QueryAllAnnouncements(ctx)
	}
	return svc.repo.QueryActiveAnnouncements(ctx, AudienceParents)
}

// Get returns a single announcement; parents only see active ones addressed
// to them.
func (svc *Service) Get(ctx context.Context, id int, actor user.User) (Announcement, error) {
	a, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	if !actor.IsAdmin() && !a.VisibleToParents() {
		return Announcement{}, core.NewPermissionError("you don't have permission to view this announcement")
	}
	return a, nil
}

// Update applies the provided fields to an existing announcement; zero-valued
// fields are left untouched.
func (svc *Service) Update(ctx context.Context, id int, ua UpdateAnnouncement) (Announcement, error) {
	if err := ua.Validate(); err != nil {
		return Announcement{}, err
	}

	a, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}

	if ua.Title != "" {
		a.Title = ua.Title
	}
	if ua.Content != "" {
		a.Content = ua.Content
	}
	if ua.TargetAudience != "" {
		a.TargetAudience = ua.TargetAudience
	}
	if ua.expiry.Valid {
		a.ExpiryDate = ua.expiry
	}
	if ua.Status != "" {
		a.Status = ua.Status
	}
	return svc.repo.UpdateAnnouncement(ctx, a)
}

// SetStatus moves an announcement between draft, active and archived.
func (svc *Service) SetStatus(ctx context.Context, id int, status string) (Announcement, error) {
	switch status {
	case StatusDraft, StatusActive, StatusArchived:
	default:
		return Announcement{}, ErrInvalidStatus
	}

	a, err := svc.repo.GetAnnouncementByID(ctx, id)
	if err != nil {
		return Announcement{}, err
	}
	a.Status = status
	return svc.repo.UpdateAnnouncement(ctx, a)
}
