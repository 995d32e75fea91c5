package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/chekechea/core/announcement"
)

type announcementRepository struct {
	db *DB
}

func NewAnnouncementRepository(db *DB) announcement.Repository {
	return &announcementRepository{db: db}
}

// must be called with at least the read lock held
func (repo *announcementRepository) hydrate(a announcement.Announcement) announcement.Announcement {
	if author, ok := repo.db.users[a.AuthorID]; ok {
		a.AuthorName = author.Name
	}
	return a
}

func (repo *announcementRepository) CreateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	a.ID = repo.db.nextID("announcements")
	repo.db.announcements[a.ID] = &a
	return repo.hydrate(a), nil
}

func (repo *announcementRepository) QueryAllAnnouncements(_ context.Context) ([]announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	anns := make([]announcement.Announcement, 0, len(repo.db.announcements))
	for _, a := range repo.db.announcements {
		anns = append(anns, repo.hydrate(*a))
	}
	sortAnnouncements(anns)
	return anns, nil
}

func (repo *announcementRepository) QueryActiveAnnouncements(_ context.Context, audience string) ([]announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var anns []announcement.Announcement
	for _, a := range repo.db.announcements {
		if a.Status != announcement.StatusActive {
			continue
		}
		if a.TargetAudience != audience && a.TargetAudience != announcement.AudienceAll {
			continue
		}
		anns = append(anns, repo.hydrate(*a))
	}
	sortAnnouncements(anns)
	return anns, nil
}

func (repo *announcementRepository) GetAnnouncementByID(_ context.Context, id int) (announcement.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.announcements[id]; ok {
		return repo.hydrate(*a), nil
	}
	return announcement.Announcement{}, announcement.ErrNotFound
}

func (repo *announcementRepository) UpdateAnnouncement(_ context.Context, a announcement.Announcement) (announcement.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.announcements[a.ID]; !ok {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	repo.db.announcements[a.ID] = &a
	return repo.hydrate(a), nil
}

func sortAnnouncements(anns []announcement.Announcement) {
	sort.Slice(anns, func(i, j int) bool {
		if anns[i].PublishDate.Equal(anns[j].PublishDate) {
			return anns[i].ID > anns[j].ID
		}
		return anns[i].PublishDate.After(anns[j].PublishDate)
	})
}
