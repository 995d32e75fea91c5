package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/announcement"
)

const announcementQuery = `
SELECT a.*, u.name AS author_name
FROM announcements a
JOIN users u ON u.id = a.author_id`

type announcementRepository struct {
	store *Store
}

func NewAnnouncementRepository(store *Store) announcement.Repository {
	return &announcementRepository{store: store}
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &a.ID,
		`INSERT INTO announcements (title, content, author_id, target_audience, publish_date, expiry_date, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		a.Title, a.Content, a.AuthorID, a.TargetAudience, a.PublishDate, a.ExpiryDate, a.Status, a.CreatedAt,
	)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "creating announcement")
	}
	return repo.GetAnnouncementByID(ctx, a.ID)
}

func (repo *announcementRepository) QueryAllAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	anns := make([]announcement.Announcement, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &anns,
		announcementQuery+` ORDER BY a.publish_date DESC, a.id DESC`,
	)
	return anns, errors.Wrap(err, "querying announcements")
}

func (repo *announcementRepository) QueryActiveAnnouncements(ctx context.Context, audience string) ([]announcement.Announcement, error) {
	anns := make([]announcement.Announcement, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &anns,
		announcementQuery+` WHERE a.status = $1 AND a.target_audience IN ($2, $3)
		 ORDER BY a.publish_date DESC, a.id DESC`,
		announcement.StatusActive, audience, announcement.AudienceAll,
	)
	return anns, errors.Wrap(err, "querying active announcements")
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id int) (announcement.Announcement, error) {
	var a announcement.Announcement
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &a,
		announcementQuery+` WHERE a.id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return a, errors.Wrap(err, "getting announcement")
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE announcements
		 SET title = $1, content = $2, target_audience = $3, expiry_date = $4, status = $5
		 WHERE id = $6`,
		a.Title, a.Content, a.TargetAudience, a.ExpiryDate, a.Status, a.ID,
	)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return repo.GetAnnouncementByID(ctx, a.ID)
}
