package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/chekechea/core/enrollment"
	testutil "github.com/trezcool/chekechea/tests"
)

func Test_applicationApi_submit(t *testing.T) {
	env := setup(t)

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	cookie := env.authCookie(t, parent)

	body := []byte(`{
		"child_first_name": "Amara",
		"child_last_name": "Okafor",
		"child_dob": "2022-03-14",
		"child_gender": "female",
		"allergies": "",
		"emergency_name": "Gran Nandi",
		"emergency_relationship": "Grandmother",
		"emergency_phone": "082 123 4567"
	}`)

	req, rec := newAuthRequest(http.MethodPost, "/api/applications", cookie, body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	var app enrollment.Application
	decodeBody(t, rec, &app)
	if app.Status != enrollment.ApplicationPending {
		t.Errorf("status = %q; want %q", app.Status, enrollment.ApplicationPending)
	}
	if app.ParentID != parent.ID {
		t.Errorf("parent_id = %d; want %d", app.ParentID, parent.ID)
	}
	if app.Allergies.Valid {
		t.Errorf("allergies = %v; want null", app.Allergies)
	}
	if app.EmergencyPhone != "0821234567" {
		t.Errorf("emergency_phone = %q; want spaces stripped", app.EmergencyPhone)
	}

	t.Run("invalid payloads", func(t *testing.T) {
		tests := []httpTest{
			{name: "Missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest},
			{
				name:     "Bad date",
				body:     []byte(`{"child_first_name": "Amara", "child_last_name": "Okafor", "child_dob": "not-a-date", "child_gender": "female", "emergency_name": "Gran", "emergency_relationship": "Gran", "emergency_phone": "0821234567"}`),
				wantCode: http.StatusBadRequest,
			},
			{
				name:     "Bad gender",
				body:     []byte(`{"child_first_name": "Amara", "child_last_name": "Okafor", "child_dob": "2022-03-14", "child_gender": "robot", "emergency_name": "Gran", "emergency_relationship": "Gran", "emergency_phone": "0821234567"}`),
				wantCode: http.StatusBadRequest,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newAuthRequest(http.MethodPost, "/api/applications", cookie, tt.body)
				env.app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})
}

func Test_applicationApi_query(t *testing.T) {
	env := setup(t)

	parent1 := testutil.CreateUser(t, env.usrRepo, "Parent One", "p1@test.cd", "s3cr3t")
	parent2 := testutil.CreateUser(t, env.usrRepo, "Parent Two", "p2@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")

	app1 := testutil.CreateApplication(t, env.enrollRepo, parent1.ID, "Amara", "Okafor")
	app2 := testutil.CreateApplication(t, env.enrollRepo, parent2.ID, "Bongani", "Dlamini")

	tests := []struct {
		name    string
		cookie  *http.Cookie
		wantIDs []int
	}{
		{name: "Admin sees all", cookie: env.authCookie(t, admin), wantIDs: []int{app2.ID, app1.ID}},
		{name: "Parent sees own only", cookie: env.authCookie(t, parent1), wantIDs: []int{app1.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/applications", tt.cookie)
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}

			var apps []enrollment.Application
			decodeBody(t, rec, &apps)
			var ids []int
			for _, a := range apps {
				ids = append(ids, a.ID)
			}
			if len(ids) != len(tt.wantIDs) {
				t.Fatalf("ids = %v; want %v", ids, tt.wantIDs)
			}
			for i := range ids {
				if ids[i] != tt.wantIDs[i] {
					t.Fatalf("ids = %v; want %v", ids, tt.wantIDs)
				}
			}
		})
	}

	t.Run("parent cannot retrieve another parent's application", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/applications/1", env.authCookie(t, parent2))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
}

func Test_applicationApi_decide(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	app := testutil.CreateApplication(t, env.enrollRepo, parent.ID, "Amara", "Okafor")
	adminCookie := env.authCookie(t, admin)

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/applications/1/status", env.authCookie(t, parent), []byte(`{"status": "approved"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("invalid decision", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/applications/1/status", adminCookie, []byte(`{"status": "maybe"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("approval enrolls the child and fans out", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/applications/1/status", adminCookie, []byte(`{"status": "approved"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var decided enrollment.Application
		decodeBody(t, rec, &decided)
		if decided.Status != enrollment.ApplicationApproved {
			t.Errorf("status = %q; want %q", decided.Status, enrollment.ApplicationApproved)
		}

		children, err := env.enrollRepo.QueryChildrenByParentID(ctx, parent.ID)
		if err != nil {
			t.Fatalf("QueryChildrenByParentID() failed: %v", err)
		}
		if len(children) != 1 {
			t.Fatalf("children = %d; want 1", len(children))
		}
		if children[0].FirstName != app.ChildFirstName || children[0].Status != enrollment.ChildActive {
			t.Errorf("unexpected child: %+v", children[0])
		}

		notifs, err := env.notifRepo.QueryNotificationsByUserID(ctx, parent.ID, 10)
		if err != nil {
			t.Fatalf("QueryNotificationsByUserID() failed: %v", err)
		}
		if len(notifs) != 2 {
			t.Fatalf("notifications = %d; want 2", len(notifs))
		}
		wantTitles := map[string]string{
			"Application Status Updated": "Your application for Amara has been approved",
			"Child Enrolled":             "Amara has been successfully enrolled in the creche",
		}
		for _, n := range notifs {
			if want, ok := wantTitles[n.Title]; !ok || n.Message != want {
				t.Errorf("unexpected notification: %q / %q", n.Title, n.Message)
			}
		}

		activities, err := env.notifRepo.QueryRecentActivities(ctx, 10)
		if err != nil {
			t.Fatalf("QueryRecentActivities() failed: %v", err)
		}
		if len(activities) != 2 {
			t.Fatalf("activities = %d; want 2", len(activities))
		}
	})

	t.Run("re-deciding is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/applications/1/status", adminCookie, []byte(`{"status": "rejected"}`))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Message: "application has already been decided"}),
		}, rec)
	})
}
