package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/notification"
)

const activityQuery = `
SELECT a.*, u.name AS user_name
FROM activities a
JOIN users u ON u.id = a.user_id`

type notificationRepository struct {
	store *Store
}

func NewNotificationRepository(store *Store) notification.Repository {
	return &notificationRepository{store: store}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &notif.ID,
		`INSERT INTO notifications (user_id, title, message, date, is_read)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		notif.UserID, notif.Title, notif.Message, notif.Date, notif.IsRead,
	)
	return notif, errors.Wrap(err, "creating notification")
}

func (repo *notificationRepository) QueryNotificationsByUserID(ctx context.Context, userID, limit int) ([]notification.Notification, error) {
	notifs := make([]notification.Notification, 0)
	query := `SELECT * FROM notifications WHERE user_id = $1 ORDER BY date DESC, id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &notifs, query, args...)
	return notifs, errors.Wrap(err, "querying notifications")
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id int) (notification.Notification, error) {
	var notif notification.Notification
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &notif,
		`SELECT * FROM notifications WHERE id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return notification.Notification{}, notification.ErrNotFound
	}
	return notif, errors.Wrap(err, "getting notification")
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id int) (notification.Notification, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1`, id,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "marking notification read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return repo.GetNotificationByID(ctx, id)
}

func (repo *notificationRepository) MarkAllNotificationsRead(ctx context.Context, userID int) (int, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND NOT is_read`, userID,
	)
	if err != nil {
		return 0, errors.Wrap(err, "marking all notifications read")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "marking all notifications read")
}

func (repo *notificationRepository) CreateActivity(ctx context.Context, act notification.Activity) (notification.Activity, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &act.ID,
		`INSERT INTO activities (user_id, type, title, description, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		act.UserID, act.Type, act.Title, act.Description, act.CreatedAt,
	)
	return act, errors.Wrap(err, "creating activity")
}

func (repo *notificationRepository) QueryRecentActivities(ctx context.Context, limit int) ([]notification.Activity, error) {
	acts := make([]notification.Activity, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &acts,
		activityQuery+` ORDER BY a.created_at DESC, a.id DESC LIMIT $1`, limit,
	)
	return acts, errors.Wrap(err, "querying recent activities")
}
