package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/user"
)

var (
	// ErrNotFound is returned when a teacher is not found.
	ErrNotFound = core.NewNotFoundError("teacher not found")
	// ErrEmailExists is returned when a teacher email is already taken.
	ErrEmailExists = core.NewValidationError(
		errors.New("email taken"),
		core.FieldError{Field: "email", Error: "a teacher with this email already exists"},
	)
	// ErrInvalidStatus is returned for an unknown teacher status value.
	ErrInvalidStatus = core.NewValidationError(errors.New("status must be active or inactive"))
)

type (
	// Repository persists teacher records.
	Repository interface {
		CheckTeacherEmailUniqueness(ctx context.Context, email string, excludeID int) error
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	}

	// Service manages staff records.
	Service struct {
		repo     Repository
		notifSvc *notification.Service
		tx       core.Transactor
	}
)

func NewService(repo Repository, notifSvc *notification.Service, tx core.Transactor) *Service {
	return &Service{
		repo:     repo,
		notifSvc: notifSvc,
		tx:       tx,
	}
}

// Create adds a teacher and records a staff activity attributed to the
// calling admin; both commit or roll back together.
func (svc *Service) Create(ctx context.Context, nt NewTeacher, actor user.User) (Teacher, error) {
	if err := nt.Validate(); err != nil {
		return Teacher{}, err
	}
	if err := svc.repo.CheckTeacherEmailUniqueness(ctx, nt.Email, 0); err != nil {
		return Teacher{}, err
	}

	now := time.Now().UTC()
	t := Teacher{
		Name:          nt.Name,
		Email:         nt.Email,
		Phone:         core.NullString(nt.Phone),
		Qualification: nt.Qualification,
		Status:        TeacherActive,
		HireDate:      now,
		CreatedAt:     now,
	}
	if nt.ClassID > 0 {
		t.ClassID = null.IntFrom(nt.ClassID)
	}

	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if t, err = svc.repo.CreateTeacher(ctx, t); err != nil {
			return err
		}
		_, err = svc.notifSvc.Record(ctx, actor.ID, notification.TypeStaff,
			"New teacher hired", fmt.Sprintf("%s has been hired as a teacher", t.Name),
		)
		return err
	})
	if err != nil {
		return Teacher{}, err
	}
	return t, nil
}

// Query returns all teachers.
func (svc *Service) Query(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

// Get returns a single teacher.
func (svc *Service) Get(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

// Update applies the provided fields to an existing teacher; zero-valued
// fields are left untouched.
func (svc *Service) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	if err := ut.Validate(); err != nil {
		return Teacher{}, err
	}

	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}

	if ut.Name != "" {
		t.Name = ut.Name
	}
	if ut.Email != "" && ut.Email != t.Email {
		if err = svc.repo.CheckTeacherEmailUniqueness(ctx, ut.Email, id); err != nil {
			return Teacher{}, err
		}
		t.Email = ut.Email
	}
	if ut.Phone != "" {
		t.Phone = null.StringFrom(ut.Phone)
	}
	if ut.Qualification != "" {
		t.Qualification = ut.Qualification
	}
	if ut.ClassID > 0 {
		t.ClassID = null.IntFrom(ut.ClassID)
	}
	if ut.Status != "" {
		t.Status = ut.Status
	}
	return svc.repo.UpdateTeacher(ctx, t)
}

// SetStatus activates or deactivates a teacher.
func (svc *Service) SetStatus(ctx context.Context, id int, status string) (Teacher, error) {
	if status != TeacherActive && status != TeacherInactive {
		return Teacher{}, ErrInvalidStatus
	}

	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	t.Status = status
	return svc.repo.UpdateTeacher(ctx, t)
}
