package notification

import (
	"context"
	"time"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/user"
)

var ErrNotFound = core.NewNotFoundError("notification not found")

// recentLimit caps the dashboard feeds.
const recentLimit = 10

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		QueryNotificationsByUserID(ctx context.Context, userID, limit int) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id int) (Notification, error)
		MarkNotificationRead(ctx context.Context, id int) (Notification, error)
		MarkAllNotificationsRead(ctx context.Context, userID int) (int, error)

		CreateActivity(ctx context.Context, act Activity) (Activity, error)
		QueryRecentActivities(ctx context.Context, limit int) ([]Activity, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Notify writes an unread in-app notification for userID.
func (svc *Service) Notify(ctx context.Context, userID int, title, message string) (Notification, error) {
	return svc.repo.CreateNotification(ctx, Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Date:    time.Now().UTC(),
	})
}

// Record appends an audit trail entry.
func (svc *Service) Record(ctx context.Context, userID int, typ, title, description string) (Activity, error) {
	return svc.repo.CreateActivity(ctx, Activity{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) QueryFor(ctx context.Context, userID int) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUserID(ctx, userID, recentLimit)
}

// MarkRead flips a notification to read; only the recipient may do so.
func (svc *Service) MarkRead(ctx context.Context, id int, actor user.User) (Notification, error) {
	notif, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if notif.UserID != actor.ID {
		return Notification{}, core.NewPermissionError("you don't have permission to update this notification")
	}
	return svc.repo.MarkNotificationRead(ctx, id)
}

// MarkAllRead flips every notification of userID to read and returns how many
// rows it touched.
func (svc *Service) MarkAllRead(ctx context.Context, userID int) (int, error) {
	return svc.repo.MarkAllNotificationsRead(ctx, userID)
}

func (svc *Service) RecentActivities(ctx context.Context) ([]Activity, error) {
	return svc.repo.QueryRecentActivities(ctx, recentLimit)
}
