package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// must be called with at least the read lock held
func (repo *attendanceRepository) hydrate(rec attendance.Record) attendance.Record {
	if child, ok := repo.db.children[rec.StudentID]; ok {
		rec.StudentName = child.FirstName + " " + child.LastName
	}
	return rec
}

func (repo *attendanceRepository) UpsertRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.attendance {
		if existing.StudentID == rec.StudentID && existing.Date.Equal(rec.Date) {
			existing.Present = rec.Present
			if rec.Notes.Valid {
				existing.Notes = rec.Notes
			}
			return repo.hydrate(*existing), nil
		}
	}

	rec.ID = repo.db.nextID("attendance")
	repo.db.attendance[rec.ID] = &rec
	return repo.hydrate(rec), nil
}

func (repo *attendanceRepository) GetRecord(_ context.Context, studentID int, date time.Time) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rec := range repo.db.attendance {
		if rec.StudentID == studentID && rec.Date.Equal(date) {
			return repo.hydrate(*rec), nil
		}
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryRecordsByDate(_ context.Context, date time.Time) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var records []attendance.Record
	for _, rec := range repo.db.attendance {
		if rec.Date.Equal(date) {
			records = append(records, repo.hydrate(*rec))
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (repo *attendanceRepository) UpdateRecordNotes(_ context.Context, id int, notes null.String) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.attendance[id]
	if !ok {
		return attendance.Record{}, attendance.ErrNotFound
	}
	rec.Notes = notes
	return repo.hydrate(*rec), nil
}

func (repo *attendanceRepository) CountPresentByDate(_ context.Context, date time.Time) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var n int
	for _, rec := range repo.db.attendance {
		if rec.Present && rec.Date.Equal(date) {
			n++
		}
	}
	return n, nil
}
