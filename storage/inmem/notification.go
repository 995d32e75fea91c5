package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/notification"
)

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	notif.ID = repo.db.nextID("notifications")
	repo.db.notifications[notif.ID] = &notif
	return notif, nil
}

func (repo *notificationRepository) QueryNotificationsByUserID(_ context.Context, userID, limit int) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var notifs []notification.Notification
	for _, notif := range repo.db.notifications {
		if notif.UserID == userID {
			notifs = append(notifs, *notif)
		}
	}
	sort.Slice(notifs, func(i, j int) bool {
		if notifs[i].Date.Equal(notifs[j].Date) {
			return notifs[i].ID > notifs[j].ID
		}
		return notifs[i].Date.After(notifs[j].Date)
	})
	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id int) (notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if notif, ok := repo.db.notifications[id]; ok {
		return *notif, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, id int) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	notif, ok := repo.db.notifications[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	notif.IsRead = true
	return *notif, nil
}

func (repo *notificationRepository) MarkAllNotificationsRead(_ context.Context, userID int) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, notif := range repo.db.notifications {
		if notif.UserID == userID && !notif.IsRead {
			notif.IsRead = true
			n++
		}
	}
	return n, nil
}

func (repo *notificationRepository) CreateActivity(_ context.Context, act notification.Activity) (notification.Activity, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	act.ID = repo.db.nextID("activities")
	if usr, ok := repo.db.users[act.UserID]; ok {
		act.UserName = null.StringFrom(usr.Name)
	}
	repo.db.activities[act.ID] = &act
	return act, nil
}

func (repo *notificationRepository) QueryRecentActivities(_ context.Context, limit int) ([]notification.Activity, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	acts := make([]notification.Activity, 0, len(repo.db.activities))
	for _, act := range repo.db.activities {
		hydrated := *act
		if usr, ok := repo.db.users[act.UserID]; ok {
			hydrated.UserName = null.StringFrom(usr.Name)
		}
		acts = append(acts, hydrated)
	}
	sort.Slice(acts, func(i, j int) bool {
		if acts[i].CreatedAt.Equal(acts[j].CreatedAt) {
			return acts[i].ID > acts[j].ID
		}
		return acts[i].CreatedAt.After(acts[j].CreatedAt)
	})
	if limit > 0 && len(acts) > limit {
		acts = acts[:limit]
	}
	return acts, nil
}
