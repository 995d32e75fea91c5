package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/staff"
)

const teacherQuery = `
SELECT t.*, cl.name AS class_name
FROM teachers t
LEFT JOIN classes cl ON cl.id = t.class_id`

type staffRepository struct {
	store *Store
}

func NewStaffRepository(store *Store) staff.Repository {
	return &staffRepository{store: store}
}

func (repo *staffRepository) CheckTeacherEmailUniqueness(ctx context.Context, email string, excludeID int) error {
	var count int
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &count,
		`SELECT count(*) FROM teachers WHERE email = $1 AND id <> $2`, email, excludeID,
	)
	if err != nil {
		return errors.Wrap(err, "checking teacher email uniqueness")
	}
	if count > 0 {
		return staff.ErrEmailExists
	}
	return nil
}

func (repo *staffRepository) CreateTeacher(ctx context.Context, t staff.Teacher) (staff.Teacher, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &t.ID,
		`INSERT INTO teachers (name, email, phone, qualification, class_id, status, hire_date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		t.Name, t.Email, t.Phone, t.Qualification, t.ClassID, t.Status, t.HireDate, t.CreatedAt,
	)
	if err != nil {
		return staff.Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return repo.GetTeacherByID(ctx, t.ID)
}

func (repo *staffRepository) QueryAllTeachers(ctx context.Context) ([]staff.Teacher, error) {
	teachers := make([]staff.Teacher, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &teachers,
		teacherQuery+` ORDER BY t.id`,
	)
	return teachers, errors.Wrap(err, "querying teachers")
}

func (repo *staffRepository) GetTeacherByID(ctx context.Context, id int) (staff.Teacher, error) {
	var t staff.Teacher
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &t,
		teacherQuery+` WHERE t.id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return staff.Teacher{}, staff.ErrNotFound
	}
	return t, errors.Wrap(err, "getting teacher")
}

func (repo *staffRepository) UpdateTeacher(ctx context.Context, t staff.Teacher) (staff.Teacher, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE teachers
		 SET name = $1, email = $2, phone = $3, qualification = $4, class_id = $5, status = $6
		 WHERE id = $7`,
		t.Name, t.Email, t.Phone, t.Qualification, t.ClassID, t.Status, t.ID,
	)
	if err != nil {
		return staff.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return staff.Teacher{}, staff.ErrNotFound
	}
	return repo.GetTeacherByID(ctx, t.ID)
}
