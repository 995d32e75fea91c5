package enrollment

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
)

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Application statuses
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

// Child statuses
const (
	ChildActive   = "active"
	ChildInactive = "inactive"
)

// Application is an enrollment request submitted by a parent. It stays
// pending until an admin decides it; approval additionally enrolls the child.
type Application struct {
	ID                    int         `json:"id" db:"id"`
	ChildFirstName        string      `json:"child_first_name" db:"child_first_name"`
	ChildLastName         string      `json:"child_last_name" db:"child_last_name"`
	ChildDob              time.Time   `json:"child_dob" db:"child_dob"`
	ChildGender           string      `json:"child_gender" db:"child_gender"`
	ChildAge              null.Int    `json:"child_age,omitempty" db:"child_age"`
	ParentID              int         `json:"parent_id" db:"parent_id"`
	ParentName            string      `json:"parent_name,omitempty" db:"parent_name"`
	Allergies             null.String `json:"allergies" db:"allergies"`
	MedicalConditions     null.String `json:"medical_conditions" db:"medical_conditions"`
	Medications           null.String `json:"medications" db:"medications"`
	EmergencyName         string      `json:"emergency_name" db:"emergency_name"`
	EmergencyRelationship string      `json:"emergency_relationship" db:"emergency_relationship"`
	EmergencyPhone        string      `json:"emergency_phone" db:"emergency_phone"`
	EmergencyEmail        null.String `json:"emergency_email" db:"emergency_email"`
	Status                string      `json:"status" db:"status"`
	AppliedDate           time.Time   `json:"applied_date" db:"applied_date"` // UTC

	Documents []Document `json:"documents,omitempty" db:"-"`
}

// Child is an enrolled student. The parent relationship is immutable; the
// class assignment is made by an admin after enrollment.
type Child struct {
	ID                    int         `json:"id" db:"id"`
	FirstName             string      `json:"first_name" db:"first_name"`
	LastName              string      `json:"last_name" db:"last_name"`
	Dob                   time.Time   `json:"dob" db:"dob"`
	Gender                string      `json:"gender" db:"gender"`
	Age                   null.Int    `json:"age,omitempty" db:"age"`
	ParentID              int         `json:"parent_id" db:"parent_id"`
	ParentName            string      `json:"parent_name,omitempty" db:"parent_name"`
	ParentEmail           string      `json:"parent_email,omitempty" db:"parent_email"`
	ParentPhone           string      `json:"parent_phone,omitempty" db:"parent_phone"`
	ClassID               null.Int    `json:"class_id" db:"class_id"`
	ClassName             null.String `json:"class_name" db:"class_name"`
	Status                string      `json:"status" db:"status"`
	EnrollmentDate        time.Time   `json:"enrollment_date" db:"enrollment_date"` // UTC
	Allergies             null.String `json:"allergies" db:"allergies"`
	MedicalConditions     null.String `json:"medical_conditions" db:"medical_conditions"`
	Medications           null.String `json:"medications" db:"medications"`
	EmergencyName         null.String `json:"emergency_name" db:"emergency_name"`
	EmergencyRelationship null.String `json:"emergency_relationship" db:"emergency_relationship"`
	EmergencyPhone        null.String `json:"emergency_phone" db:"emergency_phone"`

	Documents []Document `json:"documents,omitempty" db:"-"`
}

// Class is a creche class/room; referenced by children and teachers.
type Class struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Description null.String `json:"description" db:"description"`
	AgeRange    null.String `json:"age_range" db:"age_range"`
	Capacity    int         `json:"capacity" db:"capacity"`
	TeacherID   null.Int    `json:"teacher_id" db:"teacher_id"`
}

// Document owner kinds
type OwnerKind string

const (
	OwnerApplication OwnerKind = "application"
	OwnerChild       OwnerKind = "child"
)

// DocumentOwner ties a document to either an Application or a Child.
type DocumentOwner struct {
	Kind OwnerKind `json:"application_type" db:"application_type"`
	ID   int       `json:"application_id" db:"application_id"`
}

// Document is a reference to an uploaded supporting file; the storage backend
// itself is an external collaborator, only the record is kept here.
type Document struct {
	ID int `json:"id" db:"id"`
	DocumentOwner
	Type       string    `json:"type" db:"type"`
	FileName   string    `json:"file_name" db:"file_name"`
	FileURL    string    `json:"file_url" db:"file_url"`
	UploadDate time.Time `json:"upload_date" db:"upload_date"` // UTC
}

// NewApplication contains information needed to submit an Application.
// Optional free-text fields are normalized: an empty string is stored as
// null, never as "".
type NewApplication struct {
	ChildFirstName        string `json:"child_first_name" validate:"required,min=2"`
	ChildLastName         string `json:"child_last_name" validate:"required,min=2"`
	ChildDob              string `json:"child_dob" validate:"required"`
	ChildGender           string `json:"child_gender" validate:"required,oneof=male female other"`
	Allergies             string `json:"allergies" validate:"omitempty"`
	MedicalConditions     string `json:"medical_conditions" validate:"omitempty"`
	Medications           string `json:"medications" validate:"omitempty"`
	EmergencyName         string `json:"emergency_name" validate:"required,min=2"`
	EmergencyRelationship string `json:"emergency_relationship" validate:"required,min=2"`
	EmergencyPhone        string `json:"emergency_phone" validate:"required,zaphone"`
	EmergencyEmail        string `json:"emergency_email" validate:"omitempty,email"`

	dob time.Time
}

func (na *NewApplication) Validate() error {
	na.ChildFirstName = core.CleanString(na.ChildFirstName)
	na.ChildLastName = core.CleanString(na.ChildLastName)
	na.ChildGender = core.CleanString(na.ChildGender, true /* lower */)
	na.Allergies = core.CleanString(na.Allergies)
	na.MedicalConditions = core.CleanString(na.MedicalConditions)
	na.Medications = core.CleanString(na.Medications)
	na.EmergencyName = core.CleanString(na.EmergencyName)
	na.EmergencyRelationship = core.CleanString(na.EmergencyRelationship)
	na.EmergencyPhone = strings.ReplaceAll(core.CleanString(na.EmergencyPhone), " ", "")
	na.EmergencyEmail = core.CleanString(na.EmergencyEmail, true /* lower */)

	if err := core.Validate.Struct(na); err != nil {
		return err
	}

	dob, err := core.ParseDate(na.ChildDob)
	if err != nil {
		return core.NewValidationError(
			errors.New("invalid date of birth"),
			core.FieldError{Field: "child_dob", Error: "must be a valid date"},
		)
	}
	na.dob = dob
	return nil
}

// Dob returns the parsed date of birth; only valid after Validate.
func (na NewApplication) Dob() time.Time { return na.dob }

// NewChild contains information needed to enroll a Child directly,
// bypassing the application flow (admin action).
type NewChild struct {
	FirstName             string `json:"first_name" validate:"required,min=2"`
	LastName              string `json:"last_name" validate:"required,min=2"`
	Dob                   string `json:"dob" validate:"required"`
	Gender                string `json:"gender" validate:"required,oneof=male female other"`
	ParentID              int    `json:"parent_id" validate:"required"`
	Allergies             string `json:"allergies" validate:"omitempty"`
	MedicalConditions     string `json:"medical_conditions" validate:"omitempty"`
	Medications           string `json:"medications" validate:"omitempty"`
	EmergencyName         string `json:"emergency_name" validate:"omitempty,min=2"`
	EmergencyRelationship string `json:"emergency_relationship" validate:"omitempty,min=2"`
	EmergencyPhone        string `json:"emergency_phone" validate:"omitempty,zaphone"`

	dob time.Time
}

func (nc *NewChild) Validate() error {
	nc.FirstName = core.CleanString(nc.FirstName)
	nc.LastName = core.CleanString(nc.LastName)
	nc.Gender = core.CleanString(nc.Gender, true /* lower */)
	nc.Allergies = core.CleanString(nc.Allergies)
	nc.MedicalConditions = core.CleanString(nc.MedicalConditions)
	nc.Medications = core.CleanString(nc.Medications)
	nc.EmergencyName = core.CleanString(nc.EmergencyName)
	nc.EmergencyRelationship = core.CleanString(nc.EmergencyRelationship)
	nc.EmergencyPhone = strings.ReplaceAll(core.CleanString(nc.EmergencyPhone), " ", "")

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}

	dob, err := core.ParseDate(nc.Dob)
	if err != nil {
		return core.NewValidationError(
			errors.New("invalid date of birth"),
			core.FieldError{Field: "dob", Error: "must be a valid date"},
		)
	}
	nc.dob = dob
	return nil
}

// NewClass contains information needed to create a Class.
type NewClass struct {
	Name        string `json:"name" validate:"required,min=2"`
	Description string `json:"description" validate:"omitempty"`
	AgeRange    string `json:"age_range" validate:"omitempty"`
	Capacity    int    `json:"capacity" validate:"required,gt=0"`
	TeacherID   int    `json:"teacher_id" validate:"omitempty"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.AgeRange = core.CleanString(nc.AgeRange)
	return core.Validate.Struct(nc)
}

// NewDocument contains information needed to attach a Document record;
// the file itself lives with the (external) storage backend.
type NewDocument struct {
	OwnerKind OwnerKind `json:"application_type" validate:"required,oneof=application child"`
	OwnerID   int       `json:"application_id" validate:"required"`
	Type      string    `json:"type" validate:"required,min=2"`
	FileName  string    `json:"file_name" validate:"required,min=2"`
	FileURL   string    `json:"file_url" validate:"required,min=2"`
}

func (nd *NewDocument) Validate() error {
	nd.Type = core.CleanString(nd.Type)
	nd.FileName = core.CleanString(nd.FileName)
	nd.FileURL = core.CleanString(nd.FileURL)
	return core.Validate.Struct(nd)
}

