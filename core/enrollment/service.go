package enrollment

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
	// ErrApplicationNotFound is returned when an application is not found.
	ErrApplicationNotFound = core.NewNotFoundError("application not found")
	// ErrChildNotFound is returned when a child is not found.
	ErrChildNotFound = core.NewNotFoundError("child not found")
	// ErrClassNotFound is returned when a class is not found.
	ErrClassNotFound = core.NewNotFoundError("class not found")
	// ErrAlreadyDecided is returned when deciding an application that is no longer pending.
	ErrAlreadyDecided = core.NewValidationError(errors.New("application has already been decided"))
	// ErrInvalidDecision is returned when a decision is neither approved nor rejected.
	ErrInvalidDecision = core.NewValidationError(errors.New("status must be approved or rejected"))
)

type (
	// Repository persists applications, children, classes and documents.
	Repository interface {
		CreateApplication(ctx context.Context, app Application) (Application, error)
		QueryAllApplications(ctx context.Context) ([]Application, error)
		QueryApplicationsByParentID(ctx context.Context, parentID int) ([]Application, error)
		GetApplicationByID(ctx context.Context, id int) (Application, error)
		UpdateApplicationStatus(ctx context.Context, id int, status string) (Application, error)
		CountApplicationsByStatus(ctx context.Context, status string) (int, error)

		CreateChild(ctx context.Context, child Child) (Child, error)
		QueryAllChildren(ctx context.Context) ([]Child, error)
		QueryChildrenByParentID(ctx context.Context, parentID int) ([]Child, error)
		QueryActiveChildren(ctx context.Context, classID null.Int) ([]Child, error)
		GetChildByID(ctx context.Context, id int) (Child, error)
		UpdateChildClass(ctx context.Context, id, classID int) (Child, error)
		CountChildrenByStatus(ctx context.Context, status string) (int, error)

		CreateClass(ctx context.Context, cls Class) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)

		CreateDocument(ctx context.Context, doc Document) (Document, error)
		QueryDocumentsByOwner(ctx context.Context, owner DocumentOwner) ([]Document, error)
	}

	// Service manages the enrollment lifecycle: applications, their decisions
	// and the children records that approvals produce.
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

// Submit records a new pending application for the calling parent.
// No activity or notification is produced until the application is decided.
func (svc *Service) Submit(ctx context.Context, parentID int, na NewApplication) (Application, error) {
	if err := na.Validate(); err != nil {
		return Application{}, err
	}

	app := Application{
		ChildFirstName:        na.ChildFirstName,
		ChildLastName:         na.ChildLastName,
		ChildDob:              na.Dob(),
		ChildGender:           na.ChildGender,
		ParentID:              parentID,
		Allergies:             core.NullString(na.Allergies),
		MedicalConditions:     core.NullString(na.MedicalConditions),
		Medications:           core.NullString(na.Medications),
		EmergencyName:         na.EmergencyName,
		EmergencyRelationship: na.EmergencyRelationship,
		EmergencyPhone:        na.EmergencyPhone,
		EmergencyEmail:        core.NullString(na.EmergencyEmail),
		Status:                ApplicationPending,
		AppliedDate:           time.Now().UTC(),
	}
	return svc.repo.CreateApplication(ctx, app)
}

// QueryApplications returns all applications for admins and only the
// caller's own for parents.
func (svc *Service) QueryApplications(ctx context.Context, actor user.User) ([]Application, error) {
	if actor.IsAdmin() {
		return svc.repo.QueryAllApplications(ctx)
	}
	return svc.repo.QueryApplicationsByParentID(ctx, actor.ID)
}

// GetApplication returns an application with its documents attached.
// Parents may only fetch their own.
func (svc *Service) GetApplication(ctx context.Context, id int, actor user.User) (Application, error) {
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if !actor.CanAccess(app.ParentID) {
		return Application{}, core.NewPermissionError("you don't have permission to view this application")
	}
	docs, err := svc.repo.QueryDocumentsByOwner(ctx, DocumentOwner{Kind: OwnerApplication, ID: app.ID})
	if err != nil {
		return Application{}, err
	}
	app.Documents = docs
	return app, nil
}

// Decide approves or rejects a pending application. The status update, the
// activity, the parent notification and (on approval) the child enrollment
// all commit or roll back together. Deciding a non-pending application fails.
func (svc *Service) Decide(ctx context.Context, id int, decision string, actor user.User) (Application, error) {
	if decision != ApplicationApproved && decision != ApplicationRejected {
		return Application{}, ErrInvalidDecision
	}
	if !actor.IsAdmin() {
		return Application{}, core.NewPermissionError("admin access required")
	}

	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.Status != ApplicationPending {
		return Application{}, ErrAlreadyDecided
	}

	err = svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		if app, err = svc.repo.UpdateApplicationStatus(ctx, id, decision); err != nil {
			return err
		}

		fullName := app.ChildFirstName + " " + app.ChildLastName
		if _, err = svc.notifSvc.Record(ctx, app.ParentID, notification.TypeApplication,
			fmt.Sprintf("Application status updated to %s", decision),
			fmt.Sprintf("Application for %s has been %s", fullName, decision),
		); err != nil {
			return err
		}
		if _, err = svc.notifSvc.Notify(ctx, app.ParentID, "Application Status Updated",
			fmt.Sprintf("Your application for %s has been %s", app.ChildFirstName, decision),
		); err != nil {
			return err
		}

		if decision == ApplicationApproved {
			if _, err = svc.enroll(ctx, childFromApplication(app)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Application{}, err
	}
	return app, nil
}

// CreateChild enrolls a child directly without an application (admin action).
func (svc *Service) CreateChild(ctx context.Context, nc NewChild) (Child, error) {
	if err := nc.Validate(); err != nil {
		return Child{}, err
	}

	child := Child{
		FirstName:             nc.FirstName,
		LastName:              nc.LastName,
		Dob:                   nc.dob,
		Gender:                nc.Gender,
		ParentID:              nc.ParentID,
		Status:                ChildActive,
		EnrollmentDate:        time.Now().UTC(),
		Allergies:             core.NullString(nc.Allergies),
		MedicalConditions:     core.NullString(nc.MedicalConditions),
		Medications:           core.NullString(nc.Medications),
		EmergencyName:         core.NullString(nc.EmergencyName),
		EmergencyRelationship: core.NullString(nc.EmergencyRelationship),
		EmergencyPhone:        core.NullString(nc.EmergencyPhone),
	}

	err := svc.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		child, err = svc.enroll(ctx, child)
		return err
	})
	if err != nil {
		return Child{}, err
	}
	return child, nil
}

// enroll persists the child and produces the enrollment activity and the
// parent notification. Callers are expected to hold a transaction.
func (svc *Service) enroll(ctx context.Context, child Child) (Child, error) {
	child, err := svc.repo.CreateChild(ctx, child)
	if err != nil {
		return Child{}, err
	}

	fullName := child.FirstName + " " + child.LastName
	if _, err = svc.notifSvc.Record(ctx, child.ParentID, notification.TypeEnrollment,
		"New child enrolled", fmt.Sprintf("%s has been enrolled", fullName),
	); err != nil {
		return Child{}, err
	}
	if _, err = svc.notifSvc.Notify(ctx, child.ParentID, "Child Enrolled",
		fmt.Sprintf("%s has been successfully enrolled in the creche", child.FirstName),
	); err != nil {
		return Child{}, err
	}
	return child, nil
}

// QueryChildren returns all children for admins and only the caller's own
// for parents.
func (svc *Service) QueryChildren(ctx context.Context, actor user.User) ([]Child, error) {
	if actor.IsAdmin() {
		return svc.repo.QueryAllChildren(ctx)
	}
	return svc.repo.QueryChildrenByParentID(ctx, actor.ID)
}

// GetChild returns a child with its documents attached. Parents may only
// fetch their own.
func (svc *Service) GetChild(ctx context.Context, id int, actor user.User) (Child, error) {
	child, err := svc.repo.GetChildByID(ctx, id)
	if err != nil {
		return Child{}, err
	}
	if !actor.CanAccess(child.ParentID) {
		return Child{}, core.NewPermissionError("you don't have permission to view this child")
	}
	docs, err := svc.repo.QueryDocumentsByOwner(ctx, DocumentOwner{Kind: OwnerChild, ID: child.ID})
	if err != nil {
		return Child{}, err
	}
	child.Documents = docs
	return child, nil
}

// QueryActiveChildren returns active children, optionally restricted to a
// class; backs the attendance roster.
func (svc *Service) QueryActiveChildren(ctx context.Context, classID null.Int) ([]Child, error) {
	return svc.repo.QueryActiveChildren(ctx, classID)
}

// AssignClass places a child in a class.
func (svc *Service) AssignClass(ctx context.Context, childID, classID int) (Child, error) {
	if _, err := svc.repo.GetClassByID(ctx, classID); err != nil {
		return Child{}, err
	}
	return svc.repo.UpdateChildClass(ctx, childID, classID)
}

// CreateClass creates a class.
func (svc *Service) CreateClass(ctx context.Context, nc NewClass) (Class, error) {
	if err := nc.Validate(); err != nil {
		return Class{}, err
	}

	cls := Class{
		Name:        nc.Name,
		Description: core.NullString(nc.Description),
		AgeRange:    core.NullString(nc.AgeRange),
		Capacity:    nc.Capacity,
	}
	if nc.TeacherID > 0 {
		cls.TeacherID = null.IntFrom(nc.TeacherID)
	}
	return svc.repo.CreateClass(ctx, cls)
}

// QueryClasses returns all classes.
func (svc *Service) QueryClasses(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

// AttachDocument records an uploaded document against an application or a
// child.
func (svc *Service) AttachDocument(ctx context.Context, nd NewDocument) (Document, error) {
	if err := nd.Validate(); err != nil {
		return Document{}, err
	}

	owner := DocumentOwner{Kind: nd.OwnerKind, ID: nd.OwnerID}
	switch nd.OwnerKind {
	case OwnerApplication:
		if _, err := svc.repo.GetApplicationByID(ctx, nd.OwnerID); err != nil {
			return Document{}, err
		}
	case OwnerChild:
		if _, err := svc.repo.GetChildByID(ctx, nd.OwnerID); err != nil {
			return Document{}, err
		}
	}

	doc := Document{
		DocumentOwner: owner,
		Type:          nd.Type,
		FileName:      nd.FileName,
		FileURL:       nd.FileURL,
		UploadDate:    time.Now().UTC(),
	}
	return svc.repo.CreateDocument(ctx, doc)
}

// QueryDocuments returns the documents attached to an application or child.
func (svc *Service) QueryDocuments(ctx context.Context, owner DocumentOwner) ([]Document, error) {
	return svc.repo.QueryDocumentsByOwner(ctx, owner)
}

// CountActiveChildren backs the dashboard stats.
func (svc *Service) CountActiveChildren(ctx context.Context) (int, error) {
	return svc.repo.CountChildrenByStatus(ctx, ChildActive)
}

// CountPendingApplications backs the dashboard stats.
func (svc *Service) CountPendingApplications(ctx context.Context) (int, error) {
	return svc.repo.CountApplicationsByStatus(ctx, ApplicationPending)
}

func childFromApplication(app Application) Child {
	return Child{
		FirstName:             app.ChildFirstName,
		LastName:              app.ChildLastName,
		Dob:                   app.ChildDob,
		Gender:                app.ChildGender,
		ParentID:              app.ParentID,
		Status:                ChildActive,
		EnrollmentDate:        time.Now().UTC(),
		Allergies:             app.Allergies,
		MedicalConditions:     app.MedicalConditions,
		Medications:           app.Medications,
		EmergencyName:         null.StringFrom(app.EmergencyName),
		EmergencyRelationship: null.StringFrom(app.EmergencyRelationship),
		EmergencyPhone:        null.StringFrom(app.EmergencyPhone),
	}
}
