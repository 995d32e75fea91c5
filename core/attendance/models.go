package attendance

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
)

// Record is one child's attendance on one day. At most one record exists per
// (student, day); recording again overwrites.
type Record struct {
	ID          int         `json:"id" db:"id"`
	StudentID   int         `json:"student_id" db:"student_id"`
	StudentName string      `json:"student_name,omitempty" db:"student_name"`
	Date        time.Time   `json:"date" db:"date"` // midnight UTC
	Present     bool        `json:"present" db:"present"`
	Notes       null.String `json:"notes" db:"notes"`
}

// RosterEntry is a row of the daily roster: every active child, with their
// attendance record for the day merged in when one exists.
type RosterEntry struct {
	RecordID    null.Int    `json:"id"`
	StudentID   int         `json:"student_id"`
	StudentName string      `json:"student_name"`
	ClassID     null.Int    `json:"class_id"`
	ClassName   null.String `json:"class_name"`
	Present     null.Bool   `json:"present"`
	Notes       null.String `json:"notes"`
}

// NewRecord contains information needed to record one child's attendance.
type NewRecord struct {
	StudentID int    `json:"student_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Present   bool   `json:"present"`
	Notes     string `json:"notes" validate:"omitempty"`

	date time.Time
}

func (nr *NewRecord) Validate() error {
	nr.Notes = core.CleanString(nr.Notes)

	if err := core.Validate.Struct(nr); err != nil {
		return err
	}

	date, err := core.ParseDate(nr.Date)
	if err != nil {
		return core.NewValidationError(
			errors.New("invalid date"),
			core.FieldError{Field: "date", Error: "must be a valid date"},
		)
	}
	nr.date = DateOnly(date)
	return nil
}

// MarkAll contains information needed to mark a whole day's attendance,
// optionally restricted to a class.
type MarkAll struct {
	Date    string `json:"date" validate:"required"`
	ClassID int    `json:"class_id" validate:"omitempty"`
	Present bool   `json:"present"`

	date time.Time
}

func (ma *MarkAll) Validate() error {
	if err := core.Validate.Struct(ma); err != nil {
		return err
	}

	date, err := core.ParseDate(ma.Date)
	if err != nil {
		return core.NewValidationError(
			errors.New("invalid date"),
			core.FieldError{Field: "date", Error: "must be a valid date"},
		)
	}
	ma.date = DateOnly(date)
	return nil
}

// DateOnly truncates a timestamp to midnight UTC so all records for the same
// calendar day compare equal.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
