package staff

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core"
)

// Teacher statuses
const (
	TeacherActive   = "active"
	TeacherInactive = "inactive"
)

// Teacher is a staff record; independent of the users table, teachers do not
// log in.
type Teacher struct {
	ID            int         `json:"id" db:"id"`
	Name          string      `json:"name" db:"name"`
	Email         string      `json:"email" db:"email"`
	Phone         null.String `json:"phone" db:"phone"`
	Qualification string      `json:"qualification" db:"qualification"`
	ClassID       null.Int    `json:"class_id" db:"class_id"`
	ClassName     null.String `json:"class_name" db:"class_name"`
	Status        string      `json:"status" db:"status"`
	HireDate      time.Time   `json:"hire_date" db:"hire_date"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"` // UTC
}

// NewTeacher contains information needed to add a Teacher.
type NewTeacher struct {
	Name          string `json:"name" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"omitempty,zaphone"`
	Qualification string `json:"qualification" validate:"required,min=2"`
	ClassID       int    `json:"class_id" validate:"omitempty"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Phone = strings.ReplaceAll(core.CleanString(nt.Phone), " ", "")
	nt.Qualification = core.CleanString(nt.Qualification)
	return core.Validate.Struct(nt)
}

// UpdateTeacher contains the updatable Teacher fields; zero-valued fields are
// left untouched.
type UpdateTeacher struct {
	Name          string `json:"name" validate:"omitempty,min=2"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,zaphone"`
	Qualification string `json:"qualification" validate:"omitempty,min=2"`
	ClassID       int    `json:"class_id" validate:"omitempty"`
	Status        string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (ut *UpdateTeacher) Validate() error {
	ut.Name = core.CleanString(ut.Name)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	ut.Phone = strings.ReplaceAll(core.CleanString(ut.Phone), " ", "")
	ut.Qualification = core.CleanString(ut.Qualification)
	ut.Status = core.CleanString(ut.Status, true /* lower */)
	return core.Validate.Struct(ut)
}
