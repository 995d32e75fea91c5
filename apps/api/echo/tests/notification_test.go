package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/chekechea/core/notification"
	testutil "github.com/trezcool/chekechea/tests"
)

func Test_notificationApi(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent1 := testutil.CreateUser(t, env.usrRepo, "Parent One", "p1@test.cd", "s3cr3t")
	parent2 := testutil.CreateUser(t, env.usrRepo, "Parent Two", "p2@test.cd", "s3cr3t")

	for i := 0; i < 3; i++ {
		if _, err := env.notifSvc.Notify(ctx, parent1.ID, "Hello", "A message for parent one"); err != nil {
			t.Fatalf("Notify() failed: %v", err)
		}
	}
	if _, err := env.notifSvc.Notify(ctx, parent2.ID, "Hello", "A message for parent two"); err != nil {
		t.Fatalf("Notify() failed: %v", err)
	}

	t.Run("each user sees their own", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/notifications", env.authCookie(t, parent1))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var notifs []notification.Notification
		decodeBody(t, rec, &notifs)
		if len(notifs) != 3 {
			t.Fatalf("notifications = %d; want 3", len(notifs))
		}
		for _, n := range notifs {
			if n.UserID != parent1.ID || n.IsRead {
				t.Errorf("unexpected notification: %+v", n)
			}
		}
	})

	t.Run("only the recipient may mark one read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/notifications/1/read", env.authCookie(t, parent2))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}

		req, rec = newAuthRequest(http.MethodPatch, "/api/notifications/1/read", env.authCookie(t, parent1))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var n notification.Notification
		decodeBody(t, rec, &n)
		if !n.IsRead {
			t.Error("notification not marked read")
		}
	})

	t.Run("mark all read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/notifications/read-all", env.authCookie(t, parent1))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Count int `json:"count"`
		}
		decodeBody(t, rec, &resp)
		if resp.Count != 2 { // one was already read
			t.Errorf("count = %d; want 2", resp.Count)
		}
	})
}

func Test_notificationApi_activities(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")

	// the feed is capped at the ten most recent entries
	for i := 0; i < 12; i++ {
		if _, err := env.notifSvc.Record(ctx, admin.ID, notification.TypeApplication, "Something happened", "Details"); err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
	}

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/activities", env.authCookie(t, parent))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("recent feed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/activities", env.authCookie(t, admin))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var activities []notification.Activity
		decodeBody(t, rec, &activities)
		if len(activities) != 10 {
			t.Fatalf("activities = %d; want 10", len(activities))
		}
		if activities[0].UserName.String != admin.Name {
			t.Errorf("user = %v; want %q", activities[0].UserName, admin.Name)
		}
	})
}
