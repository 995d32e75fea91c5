package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/messaging"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/user"
)

var (
	// ErrFeeNotFound is returned when a fee is not found.
	ErrFeeNotFound = core.NewNotFoundError("fee not found")
	// ErrStudentNotFound is returned when raising a fee against an unknown student.
	ErrStudentNotFound = core.NewNotFoundError("student not found")
	// ErrInvalidStatus is returned for an unknown fee status value.
	ErrInvalidStatus = core.NewValidationError(errors.New("status must be pending, paid or overdue"))
)

type (
	// Repository persists fees. Implementations denormalize the student name
	// and the owning parent onto each row they return.
	Repository interface {
		CreateFee(ctx context.Context, fee Fee) (Fee, error)
		QueryAllFees(ctx context.Context) ([]Fee, error)
		QueryFeesByParentID(ctx context.Context, parentID int) ([]Fee, error)
		GetFeeByID(ctx context.Context, id int) (Fee, error)
		UpdateFeeStatus(ctx context.Context, id int, status string, paidDate null.Time) (Fee, error)
		CountFeesByStatus(ctx context.Context, status string) (int, error)
	}

	// Service manages fees and their payment lifecycle.
	Service struct {
		repo     Repository
		notifSvc *notification.Service
		msgSvc   *messaging.Service
		tx       core.Transactor
	}
)

func NewService(repo Repository, notifSvc *notification.Service, msgSvc *messaging.Service, tx core.Transactor) *Service {
	return &Service{
		repo:     repo,
		notifSvc: notifSvc,
		msgSvc:   msgSvc,
		tx:       tx,
	}
}

// Create raises a pending fee against a student and notifies the parent.
// Both commit or roll back together.
func (svc *Service) Create(ctx context.Context, nf NewFee) (Fee, error) {
	if err := nf.Validate(); err != nil {
		return Fee{}, err
	}

	fee := Fee{
		StudentID:   nf.StudentID,
		Description: nf.Description,
		Amount:      nf.Amount,
		DueDate:     nf.dueDate,
		Status:      FeePending,
		CreatedAt:   time.Now().UTC(),
	}

	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if fee, err = svc.repo.CreateFee(ctx, fee); err != nil {
			return err
		}
		_, err = svc.notifSvc.Notify(ctx, fee.ParentID, "New Fee Added",
			fmt.Sprintf("A new fee of R%s for %s has been added", fee.Amount.StringFixed(2), fee.Description),
		)
		return err
	})
	if err != nil {
		return Fee{}, err
	}
	return fee, nil
}

// Query returns all fees for admins and only the caller's children's fees
// for parents.
func (svc *Service) Query(ctx context.Context, actor user.User) ([]Fee, error) {
	if actor.IsAdmin() {
		return svc.repo.QueryAllFees(ctx)
	}
	return svc.repo.QueryFeesByParentID(ctx, actor.ID)
}

// Get returns a single fee; parents may only fetch their own children's.
func (svc *Service) Get(ctx context.Context, id int, actor user.User) (Fee, error) {
	fee, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	if !actor.CanAccess(fee.ParentID) {
		return Fee{}, core.NewPermissionError("you don't have permission to view this fee")
	}
	return fee, nil
}

// SetStatus updates a fee's status. Parents may only update fees owned by
// their own children; marking a fee paid stamps the paid date and records a
// payment activity attributed to the parent.
func (svc *Service) SetStatus(ctx context.Context, id int, status string, actor user.User) (Fee, error) {
	switch status {
	case FeePending, FeePaid, FeeOverdue:
	default:
		return Fee{}, ErrInvalidStatus
	}

	fee, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return Fee{}, err
	}
	if !actor.CanAccess(fee.ParentID) {
		return Fee{}, core.NewPermissionError("you don't have permission to update this fee")
	}
	// self-service payment is the only transition open to parents
	if !actor.IsAdmin() && status != FeePaid {
		return Fee{}, core.NewPermissionError("parents may only mark a fee as paid")
	}

	var paidDate null.Time
	if status == FeePaid {
		paidDate = null.TimeFrom(time.Now().UTC())
	}

	err = svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if fee, err = svc.repo.UpdateFeeStatus(ctx, id, status, paidDate); err != nil {
			return err
		}
		if status == FeePaid {
			_, err = svc.notifSvc.Record(ctx, fee.ParentID, notification.TypePayment,
				"Fee payment received",
				fmt.Sprintf("Payment of R%s for %s has been received", fee.Amount.StringFixed(2), fee.Description),
			)
		}
		return err
	})
	if err != nil {
		return Fee{}, err
	}
	return fee, nil
}

// Remind sends the fee's parent an in-app payment reminder message from the
// calling admin; the message itself notifies the parent.
func (svc *Service) Remind(ctx context.Context, id int, actor user.User) error {
	fee, err := svc.repo.GetFeeByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = svc.msgSvc.Send(ctx, actor, messaging.NewMessage{
		ReceiverID: fee.ParentID,
		Subject:    "Fee Payment Reminder",
		Content: fmt.Sprintf("This is a reminder that your payment of R%s for %s is due on %s.",
			fee.Amount.StringFixed(2), fee.Description, fee.DueDate.Format("2 January 2006")),
	})
	return err
}

// CountPending backs the dashboard stats.
func (svc *Service) CountPending(ctx context.Context) (int, error) {
	return svc.repo.CountFeesByStatus(ctx, FeePending)
}
