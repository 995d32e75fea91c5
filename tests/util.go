package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chekechea/core/billing"
	"github.com/trezcool/chekechea/core/enrollment"
	"github.com/trezcool/chekechea/core/staff"
	"github.com/trezcool/chekechea/core/user"
)

func createUser(t *testing.T, repo user.Repository, name, email, pwd, role string) user.User {
	t.Helper()

	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string) user.User {
	return createUser(t, repo, name, email, pwd, user.RoleParent)
}

func CreateAdmin(t *testing.T, repo user.Repository, name, email, pwd string) user.User {
	return createUser(t, repo, name, email, pwd, user.RoleAdmin)
}

func CreateApplication(t *testing.T, repo enrollment.Repository, parentID int, first, last string) enrollment.Application {
	t.Helper()

	app, err := repo.CreateApplication(context.Background(), enrollment.Application{
		ChildFirstName:        first,
		ChildLastName:         last,
		ChildDob:              time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC),
		ChildGender:           enrollment.GenderFemale,
		ParentID:              parentID,
		EmergencyName:         "Gran Nandi",
		EmergencyRelationship: "grandmother",
		EmergencyPhone:        "0821234567",
		Status:                enrollment.ApplicationPending,
		AppliedDate:           time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateApplication() failed: %v", err)
	}
	return app
}

func CreateChild(t *testing.T, repo enrollment.Repository, parentID int, first, last string) enrollment.Child {
	t.Helper()

	child, err := repo.CreateChild(context.Background(), enrollment.Child{
		FirstName:      first,
		LastName:       last,
		Dob:            time.Date(2021, 7, 2, 0, 0, 0, 0, time.UTC),
		Gender:         enrollment.GenderMale,
		ParentID:       parentID,
		Status:         enrollment.ChildActive,
		EnrollmentDate: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateChild() failed: %v", err)
	}
	return child
}

func CreateClass(t *testing.T, repo enrollment.Repository, name string) enrollment.Class {
	t.Helper()

	cls, err := repo.CreateClass(context.Background(), enrollment.Class{
		Name:     name,
		Capacity: 15,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateFee(t *testing.T, repo billing.Repository, studentID int, desc string, amount decimal.Decimal) billing.Fee {
	t.Helper()

	fee, err := repo.CreateFee(context.Background(), billing.Fee{
		StudentID:   studentID,
		Description: desc,
		Amount:      amount,
		DueDate:     time.Now().UTC().AddDate(0, 1, 0),
		Status:      billing.FeePending,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateFee() failed: %v", err)
	}
	return fee
}

func CreateTeacher(t *testing.T, repo staff.Repository, name, email string) staff.Teacher {
	t.Helper()

	now := time.Now().UTC()
	teacher, err := repo.CreateTeacher(context.Background(), staff.Teacher{
		Name:          name,
		Email:         email,
		Qualification: "ECD Level 4",
		Status:        staff.TeacherActive,
		HireDate:      now,
		CreatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return teacher
}

// NullStr is a shorthand for expected nullable string values in tests.
func NullStr(s string) null.String {
	return null.StringFrom(s)
}
