package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/chekechea/core/staff"
	testutil "github.com/trezcool/chekechea/tests"
)

func Test_teacherApi_create(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	adminCookie := env.authCookie(t, admin)

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/teachers", env.authCookie(t, parent), []byte(`{}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("hires a teacher and records the activity", func(t *testing.T) {
		body := []byte(`{"name": "Thandi Nkosi", "email": "Thandi@creche.cd", "phone": "083 555 1234", "qualification": "ECD Level 5"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/teachers", adminCookie, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var teacher staff.Teacher
		decodeBody(t, rec, &teacher)
		if teacher.Email != "thandi@creche.cd" || teacher.Status != staff.TeacherActive {
			t.Errorf("unexpected teacher: %+v", teacher)
		}

		activities, err := env.notifRepo.QueryRecentActivities(ctx, 10)
		if err != nil {
			t.Fatalf("QueryRecentActivities() failed: %v", err)
		}
		if len(activities) != 1 {
			t.Fatalf("activities = %d; want 1", len(activities))
		}
		act := activities[0]
		if act.Title != "New teacher hired" || act.Description != "Thandi Nkosi has been hired as a teacher" ||
			act.UserID != admin.ID {
			t.Errorf("unexpected activity: %+v", act)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := []byte(`{"name": "Copy Cat", "email": "thandi@creche.cd", "qualification": "ECD Level 4"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/teachers", adminCookie, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})
}

func Test_teacherApi_update(t *testing.T) {
	env := setup(t)

	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	teacher := testutil.CreateTeacher(t, env.staffRepo, "Thandi Nkosi", "thandi@creche.cd")
	testutil.CreateTeacher(t, env.staffRepo, "Sipho Zulu", "sipho@creche.cd")
	adminCookie := env.authCookie(t, admin)

	t.Run("patches only the provided fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/teachers/1", adminCookie, []byte(`{"qualification": "ECD Level 6"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var updated staff.Teacher
		decodeBody(t, rec, &updated)
		if updated.Qualification != "ECD Level 6" {
			t.Errorf("qualification = %q; want updated", updated.Qualification)
		}
		if updated.Name != teacher.Name || updated.Email != teacher.Email {
			t.Errorf("untouched fields changed: %+v", updated)
		}
	})

	t.Run("may not take another teacher's email", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/teachers/1", adminCookie, []byte(`{"email": "sipho@creche.cd"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("status transitions are validated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/teachers/1/status", adminCookie, []byte(`{"status": "fired"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
		}

		req, rec = newAuthRequest(http.MethodPatch, "/api/teachers/1/status", adminCookie, []byte(`{"status": "inactive"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var updated staff.Teacher
		decodeBody(t, rec, &updated)
		if updated.Status != staff.TeacherInactive {
			t.Errorf("status = %q; want %q", updated.Status, staff.TeacherInactive)
		}
	})

	t.Run("unknown teacher", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/teachers/999", adminCookie)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}
