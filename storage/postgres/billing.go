package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/billing"
)

// feeQuery denormalizes the student's name and owning parent onto every fee row.
const feeQuery = `
SELECT f.*, (c.first_name || ' ' || c.last_name) AS student_name, c.parent_id AS parent_id
FROM fees f
JOIN children c ON c.id = f.student_id`

type billingRepository struct {
	store *Store
}

func NewBillingRepository(store *Store) billing.Repository {
	return &billingRepository{store: store}
}

func (repo *billingRepository) CreateFee(ctx context.Context, fee billing.Fee) (billing.Fee, error) {
	var exists bool
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &exists,
		`SELECT exists(SELECT 1 FROM children WHERE id = $1)`, fee.StudentID,
	)
	if err != nil {
		return billing.Fee{}, errors.Wrap(err, "checking student")
	}
	if !exists {
		return billing.Fee{}, billing.ErrStudentNotFound
	}

	err = sqlx.GetContext(ctx, repo.store.ext(ctx), &fee.ID,
		`INSERT INTO fees (student_id, description, amount, due_date, status, paid_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		fee.StudentID, fee.Description, fee.Amount, fee.DueDate, fee.Status, fee.PaidDate, fee.CreatedAt,
	)
	if err != nil {
		return billing.Fee{}, errors.Wrap(err, "creating fee")
	}
	return repo.GetFeeByID(ctx, fee.ID)
}

func (repo *billingRepository) QueryAllFees(ctx context.Context) ([]billing.Fee, error) {
	fees := make([]billing.Fee, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &fees,
		feeQuery+` ORDER BY f.due_date, f.id`,
	)
	return fees, errors.Wrap(err, "querying fees")
}

func (repo *billingRepository) QueryFeesByParentID(ctx context.Context, parentID int) ([]billing.Fee, error) {
	fees := make([]billing.Fee, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &fees,
		feeQuery+` WHERE c.parent_id = $1 ORDER BY f.due_date, f.id`, parentID,
	)
	return fees, errors.Wrap(err, "querying fees by parent")
}

func (repo *billingRepository) GetFeeByID(ctx context.Context, id int) (billing.Fee, error) {
	var fee billing.Fee
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &fee,
		feeQuery+` WHERE f.id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return billing.Fee{}, billing.ErrFeeNotFound
	}
	return fee, errors.Wrap(err, "getting fee")
}

func (repo *billingRepository) UpdateFeeStatus(ctx context.Context, id int, status string, paidDate null.Time) (billing.Fee, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE fees SET status = $1, paid_date = $2 WHERE id = $3`, status, paidDate, id,
	)
	if err != nil {
		return billing.Fee{}, errors.Wrap(err, "updating fee status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return billing.Fee{}, billing.ErrFeeNotFound
	}
	return repo.GetFeeByID(ctx, id)
}

func (repo *billingRepository) CountFeesByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &count,
		`SELECT count(*) FROM fees WHERE status = $1`, status,
	)
	return count, errors.Wrap(err, "counting fees")
}
