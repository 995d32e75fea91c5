package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/enrollment"
)

// applicationQuery denormalizes the parent's name and the child's computed
// age onto every application row.
const applicationQuery = `
SELECT a.*, u.name AS parent_name, date_part('year', age(a.child_dob))::int AS child_age
FROM applications a
JOIN users u ON u.id = a.parent_id`

// childQuery denormalizes parent contact details, class name and computed age
// onto every child row.
const childQuery = `
SELECT c.*, u.name AS parent_name, u.email AS parent_email, coalesce(u.phone, '') AS parent_phone,
       cl.name AS class_name, date_part('year', age(c.dob))::int AS age
FROM children c
JOIN users u ON u.id = c.parent_id
LEFT JOIN classes cl ON cl.id = c.class_id`

type enrollmentRepository struct {
	store *Store
}

func NewEnrollmentRepository(store *Store) enrollment.Repository {
	return &enrollmentRepository{store: store}
}

func (repo *enrollmentRepository) CreateApplication(ctx context.Context, app enrollment.Application) (enrollment.Application, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &app.ID,
		`INSERT INTO applications (
			child_first_name, child_last_name, child_dob, child_gender, parent_id,
			allergies, medical_conditions, medications,
			emergency_name, emergency_relationship, emergency_phone, emergency_email,
			status, applied_date
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		app.ChildFirstName, app.ChildLastName, app.ChildDob, app.ChildGender, app.ParentID,
		app.Allergies, app.MedicalConditions, app.Medications,
		app.EmergencyName, app.EmergencyRelationship, app.EmergencyPhone, app.EmergencyEmail,
		app.Status, app.AppliedDate,
	)
	if err != nil {
		return enrollment.Application{}, errors.Wrap(err, "creating application")
	}
	return repo.GetApplicationByID(ctx, app.ID)
}

func (repo *enrollmentRepository) QueryAllApplications(ctx context.Context) ([]enrollment.Application, error) {
	apps := make([]enrollment.Application, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &apps,
		applicationQuery+` ORDER BY a.applied_date DESC, a.id DESC`,
	)
	return apps, errors.Wrap(err, "querying applications")
}

func (repo *enrollmentRepository) QueryApplicationsByParentID(ctx context.Context, parentID int) ([]enrollment.Application, error) {
	apps := make([]enrollment.Application, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &apps,
		applicationQuery+` WHERE a.parent_id = $1 ORDER BY a.applied_date DESC, a.id DESC`, parentID,
	)
	return apps, errors.Wrap(err, "querying applications by parent")
}

func (repo *enrollmentRepository) GetApplicationByID(ctx context.Context, id int) (enrollment.Application, error) {
	var app enrollment.Application
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &app,
		applicationQuery+` WHERE a.id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return enrollment.Application{}, enrollment.ErrApplicationNotFound
	}
	return app, errors.Wrap(err, "getting application")
}

func (repo *enrollmentRepository) UpdateApplicationStatus(ctx context.Context, id int, status string) (enrollment.Application, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE applications SET status = $1 WHERE id = $2`, status, id,
	)
	if err != nil {
		return enrollment.Application{}, errors.Wrap(err, "updating application status")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enrollment.Application{}, enrollment.ErrApplicationNotFound
	}
	return repo.GetApplicationByID(ctx, id)
}

func (repo *enrollmentRepository) CountApplicationsByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &count,
		`SELECT count(*) FROM applications WHERE status = $1`, status,
	)
	return count, errors.Wrap(err, "counting applications")
}

func (repo *enrollmentRepository) CreateChild(ctx context.Context, child enrollment.Child) (enrollment.Child, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &child.ID,
		`INSERT INTO children (
			first_name, last_name, dob, gender, parent_id, class_id, status, enrollment_date,
			allergies, medical_conditions, medications,
			emergency_name, emergency_relationship, emergency_phone
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		child.FirstName, child.LastName, child.Dob, child.Gender, child.ParentID,
		child.ClassID, child.Status, child.EnrollmentDate,
		child.Allergies, child.MedicalConditions, child.Medications,
		child.EmergencyName, child.EmergencyRelationship, child.EmergencyPhone,
	)
	if err != nil {
		return enrollment.Child{}, errors.Wrap(err, "creating child")
	}
	return repo.GetChildByID(ctx, child.ID)
}

func (repo *enrollmentRepository) QueryAllChildren(ctx context.Context) ([]enrollment.Child, error) {
	children := make([]enrollment.Child, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &children,
		childQuery+` ORDER BY c.id`,
	)
	return children, errors.Wrap(err, "querying children")
}

func (repo *enrollmentRepository) QueryChildrenByParentID(ctx context.Context, parentID int) ([]enrollment.Child, error) {
	children := make([]enrollment.Child, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &children,
		childQuery+` WHERE c.parent_id = $1 ORDER BY c.id`, parentID,
	)
	return children, errors.Wrap(err, "querying children by parent")
}

func (repo *enrollmentRepository) QueryActiveChildren(ctx context.Context, classID null.Int) ([]enrollment.Child, error) {
	children := make([]enrollment.Child, 0)
	query := childQuery + ` WHERE c.status = $1`
	args := []interface{}{enrollment.ChildActive}
	if classID.Valid {
		query += ` AND c.class_id = $2`
		args = append(args, classID.Int)
	}
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &children, query+` ORDER BY c.id`, args...)
	return children, errors.Wrap(err, "querying active children")
}

func (repo *enrollmentRepository) GetChildByID(ctx context.Context, id int) (enrollment.Child, error) {
	var child enrollment.Child
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &child,
		childQuery+` WHERE c.id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return enrollment.Child{}, enrollment.ErrChildNotFound
	}
	return child, errors.Wrap(err, "getting child")
}

func (repo *enrollmentRepository) UpdateChildClass(ctx context.Context, id, classID int) (enrollment.Child, error) {
	res, err := repo.store.ext(ctx).ExecContext(ctx,
		`UPDATE children SET class_id = $1 WHERE id = $2`, classID, id,
	)
	if err != nil {
		return enrollment.Child{}, errors.Wrap(err, "updating child class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enrollment.Child{}, enrollment.ErrChildNotFound
	}
	return repo.GetChildByID(ctx, id)
}

func (repo *enrollmentRepository) CountChildrenByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &count,
		`SELECT count(*) FROM children WHERE status = $1`, status,
	)
	return count, errors.Wrap(err, "counting children")
}

func (repo *enrollmentRepository) CreateClass(ctx context.Context, cls enrollment.Class) (enrollment.Class, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &cls.ID,
		`INSERT INTO classes (name, description, age_range, capacity, teacher_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		cls.Name, cls.Description, cls.AgeRange, cls.Capacity, cls.TeacherID,
	)
	return cls, errors.Wrap(err, "creating class")
}

func (repo *enrollmentRepository) QueryAllClasses(ctx context.Context) ([]enrollment.Class, error) {
	classes := make([]enrollment.Class, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &classes,
		`SELECT * FROM classes ORDER BY id`,
	)
	return classes, errors.Wrap(err, "querying classes")
}

func (repo *enrollmentRepository) GetClassByID(ctx context.Context, id int) (enrollment.Class, error) {
	var cls enrollment.Class
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &cls,
		`SELECT * FROM classes WHERE id = $1`, id,
	)
	if err == sql.ErrNoRows {
		return enrollment.Class{}, enrollment.ErrClassNotFound
	}
	return cls, errors.Wrap(err, "getting class")
}

func (repo *enrollmentRepository) CreateDocument(ctx context.Context, doc enrollment.Document) (enrollment.Document, error) {
	err := sqlx.GetContext(ctx, repo.store.ext(ctx), &doc.ID,
		`INSERT INTO documents (application_type, application_id, type, file_name, file_url, upload_date)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		doc.Kind, doc.DocumentOwner.ID, doc.Type, doc.FileName, doc.FileURL, doc.UploadDate,
	)
	return doc, errors.Wrap(err, "creating document")
}

func (repo *enrollmentRepository) QueryDocumentsByOwner(ctx context.Context, owner enrollment.DocumentOwner) ([]enrollment.Document, error) {
	docs := make([]enrollment.Document, 0)
	err := sqlx.SelectContext(ctx, repo.store.ext(ctx), &docs,
		`SELECT * FROM documents WHERE application_type = $1 AND application_id = $2 ORDER BY id`,
		owner.Kind, owner.ID,
	)
	return docs, errors.Wrap(err, "querying documents")
}
