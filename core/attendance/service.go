package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/enrollment"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/user"
)

// ErrNotFound is returned when an attendance record is not found.
var ErrNotFound = core.NewNotFoundError("attendance record not found")

type (
	// Repository persists attendance records, one per (student, day).
	Repository interface {
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, studentID int, date time.Time) (Record, error)
		QueryRecordsByDate(ctx context.Context, date time.Time) ([]Record, error)
		UpdateRecordNotes(ctx context.Context, id int, notes null.String) (Record, error)
		CountPresentByDate(ctx context.Context, date time.Time) (int, error)
	}

	// Service manages daily attendance for active children.
	Service struct {
		repo      Repository
		enrollSvc *enrollment.Service
		notifSvc  *notification.Service
		tx        core.Transactor
	}
)

func NewService(repo Repository, enrollSvc *enrollment.Service, notifSvc *notification.Service, tx core.Transactor) *Service {
	return &Service{
		repo:      repo,
		enrollSvc: enrollSvc,
		notifSvc:  notifSvc,
		tx:        tx,
	}
}

// Record upserts one child's attendance for a day.
func (svc *Service) Record(ctx context.Context, nr NewRecord) (Record, error) {
	if err := nr.Validate(); err != nil {
		return Record{}, err
	}

	rec := Record{
		StudentID: nr.StudentID,
		Date:      nr.date,
		Present:   nr.Present,
		Notes:     core.NullString(nr.Notes),
	}
	return svc.repo.UpsertRecord(ctx, rec)
}

// MarkAll marks every active child, optionally restricted to a class, as
// present or absent for a day. The upserts and the audit activity commit or
// roll back together; the activity is attributed to the calling admin.
// Returns the number of children marked.
func (svc *Service) MarkAll(ctx context.Context, ma MarkAll, actor user.User) (int, error) {
	if err := ma.Validate(); err != nil {
		return 0, err
	}

	var classID null.Int
	if ma.ClassID > 0 {
		classID = null.IntFrom(ma.ClassID)
	}
	children, err := svc.enrollSvc.QueryActiveChildren(ctx, classID)
	if err != nil {
		return 0, err
	}

	err = svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, child := range children {
			rec := Record{
				StudentID: child.ID,
				Date:      ma.date,
				Present:   ma.Present,
			}
			if _, err := svc.repo.UpsertRecord(ctx, rec); err != nil {
				return err
			}
		}

		mark := "absent"
		if ma.Present {
			mark = "present"
		}
		scope := ""
		if classID.Valid {
			scope = " in a specific class"
		}
		_, err := svc.notifSvc.Record(ctx, actor.ID, notification.TypeAttendance,
			"Attendance marked for all students",
			fmt.Sprintf("Attendance on %s has been marked as %s for all students%s",
				ma.date.Format("2 January 2006"), mark, scope),
		)
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(children), nil
}

// UpdateNotes replaces the notes on an existing record.
func (svc *Service) UpdateNotes(ctx context.Context, id int, notes string) (Record, error) {
	return svc.repo.UpdateRecordNotes(ctx, id, core.NullString(core.CleanString(notes)))
}

// Roster returns every active child with their attendance for the day merged
// in; children without a record appear with null present.
func (svc *Service) Roster(ctx context.Context, date time.Time) ([]RosterEntry, error) {
	date = DateOnly(date)

	children, err := svc.enrollSvc.QueryActiveChildren(ctx, null.Int{})
	if err != nil {
		return nil, err
	}
	records, err := svc.repo.QueryRecordsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	byStudent := make(map[int]Record, len(records))
	for _, rec := range records {
		byStudent[rec.StudentID] = rec
	}

	roster := make([]RosterEntry, 0, len(children))
	for _, child := range children {
		entry := RosterEntry{
			StudentID:   child.ID,
			StudentName: child.FirstName + " " + child.LastName,
			ClassID:     child.ClassID,
			ClassName:   child.ClassName,
		}
		if rec, ok := byStudent[child.ID]; ok {
			entry.RecordID = null.IntFrom(rec.ID)
			entry.Present = null.BoolFrom(rec.Present)
			entry.Notes = rec.Notes
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// CountPresentOn backs the dashboard stats.
func (svc *Service) CountPresentOn(ctx context.Context, date time.Time) (int, error) {
	return svc.repo.CountPresentByDate(ctx, DateOnly(date))
}
