package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/attendance"
)

const attendanceQuery = `
SELECT a.*, (c.first_name || ' ' || c.last_name) AS student_name
FROM attendance a
JOIN children c ON c.id = a.student_id`

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.Repository {
	return &attendanceRepository{store: store}
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &rec.ID,
		`INSERT INTO attendance (student_id, date, present, notes)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (student_id, date) DO UPDATE
		 SET present = excluded.present,
		     notes   = coalesce(excluded.notes, attendance.notes)
		 RETURNING id`,
		rec.StudentID, rec.Date, rec.Present, rec.Notes,
	)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}
	return repo.getByID(ctx, rec.ID)
}

func (repo *attendanceRepository) getByID(ctx context.Context, id int) (attendance.Record, error) {
	var rec attendance.Record
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &rec,
		attendanceQuery+` WHERE a.id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, errors.Wrap(err, "getting attendance record")
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, studentID int, date time.Time) (attendance.Record, error) {
	var rec attendance.Record
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &rec,
		attendanceQuery+` WHERE a.student_id = $1 AND a.date = $2`, studentID, date,
	)
	if err == sql.ErrNoRows {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return rec, errors.Wrap(err, "getting attendance record")
}

func (repo *attendanceRepository) QueryRecordsByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &records,
		attendanceQuery+` WHERE a.date = $1 ORDER BY a.id`, date,
	)
	return records, errors.Wrap(err, "querying attendance records")
}

func (repo *attendanceRepository) UpdateRecordNotes(ctx context.Context, id int, notes null.String) (attendance.Record, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE attendance SET notes = $1 WHERE id = $2`, notes, id,
	)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance notes")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.Record{}, attendance.ErrNotFound
	}
	return repo.getByID(ctx, id)
}

func (repo *attendanceRepository) CountPresentByDate(ctx context.Context, date time.Time) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &count,
		`SELECT count(*) FROM attendance WHERE date = $1 AND present`, date,
	)
	return count, errors.Wrap(err, "counting present")
}
