package billing

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
)

// Fee statuses
const (
	FeePending = "pending"
	FeePaid    = "paid"
	FeeOverdue = "overdue"
)

// Fee is a billing line against an enrolled child. Amount is exact decimal;
// never floats.
type Fee struct {
	ID          int             `json:"id" db:"id"`
	StudentID   int             `json:"student_id" db:"student_id"`
	StudentName string          `json:"student_name,omitempty" db:"student_name"`
	ParentID    int             `json:"-" db:"parent_id"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	Status      string          `json:"status" db:"status"`
	PaidDate    null.Time       `json:"paid_date" db:"paid_date"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"` // UTC
}

// NewFee contains information needed to raise a Fee against a student.
type NewFee struct {
	StudentID   int             `json:"student_id" validate:"required"`
	Description string          `json:"description" validate:"required,min=2"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date" validate:"required"`

	dueDate time.Time
}

func (nf *NewFee) Validate() error {
	nf.Description = core.CleanString(nf.Description)

	if err := core.Validate.Struct(nf); err != nil {
		return err
	}
	if !nf.Amount.IsPositive() {
		return core.NewValidationError(
			errors.New("invalid amount"),
			core.FieldError{Field: "amount", Error: "must be greater than 0"},
		)
	}

	due, err := core.ParseDate(nf.DueDate)
	if err != nil {
		return core.NewValidationError(
			errors.New("invalid due date"),
			core.FieldError{Field: "due_date", Error: "must be a valid date"},
		)
	}
	nf.dueDate = due
	return nil
}
