package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/trezcool/chekechea/core/announcement"
	testutil "github.com/trezcool/chekechea/tests"
)

func Test_announcementApi_create(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent1 := testutil.CreateUser(t, env.usrRepo, "Parent One", "p1@test.cd", "s3cr3t")
	parent2 := testutil.CreateUser(t, env.usrRepo, "Parent Two", "p2@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	adminCookie := env.authCookie(t, admin)

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/announcements", env.authCookie(t, parent1), []byte(`{}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("publishing to parents notifies every parent", func(t *testing.T) {
		body := []byte(`{"title": "Sports Day", "content": "Sports day is on Friday, pack sunscreen.", "target_audience": "parents"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/announcements", adminCookie, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var ann announcement.Announcement
		decodeBody(t, rec, &ann)
		if ann.AuthorID != admin.ID || ann.Status != announcement.StatusActive {
			t.Errorf("unexpected announcement: %+v", ann)
		}

		for _, parent := range []int{parent1.ID, parent2.ID} {
			notifs, err := env.notifRepo.QueryNotificationsByUserID(ctx, parent, 10)
			if err != nil {
				t.Fatalf("QueryNotificationsByUserID() failed: %v", err)
			}
			if len(notifs) != 1 || notifs[0].Title != "New Announcement" || notifs[0].Message != "Sports Day" {
				t.Errorf("unexpected notifications for parent %d: %+v", parent, notifs)
			}
		}

		// the admin author is not notified
		notifs, err := env.notifRepo.QueryNotificationsByUserID(ctx, admin.ID, 10)
		if err != nil {
			t.Fatalf("QueryNotificationsByUserID() failed: %v", err)
		}
		if len(notifs) != 0 {
			t.Errorf("admin notifications = %d; want 0", len(notifs))
		}
	})

	t.Run("staff-only announcements skip parents", func(t *testing.T) {
		body := []byte(`{"title": "Staff Meeting", "content": "Staff meeting moved to Thursday afternoon.", "target_audience": "staff"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/announcements", adminCookie, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		notifs, err := env.notifRepo.QueryNotificationsByUserID(ctx, parent1.ID, 10)
		if err != nil {
			t.Fatalf("QueryNotificationsByUserID() failed: %v", err)
		}
		if len(notifs) != 1 { // still just the one from the previous publish
			t.Errorf("notifications = %d; want 1", len(notifs))
		}
	})
}

func Test_announcementApi_query(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")

	create := func(title, audience string) announcement.Announcement {
		ann, err := env.annSvc.Create(ctx, announcement.NewAnnouncement{
			Title:          title,
			Content:        "Something long enough to validate.",
			TargetAudience: audience,
		}, admin)
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		return ann
	}
	all := create("For Everyone", announcement.AudienceAll)
	forParents := create("For Parents", announcement.AudienceParents)
	forStaff := create("For Staff", announcement.AudienceStaff)

	archived := create("Old News", announcement.AudienceAll)
	if _, err := env.annSvc.SetStatus(ctx, archived.ID, announcement.StatusArchived); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}

	tests := []struct {
		name    string
		cookie  *http.Cookie
		wantIDs map[int]bool
	}{
		{
			name:    "Admin sees everything including archived",
			cookie:  env.authCookie(t, admin),
			wantIDs: map[int]bool{all.ID: true, forParents.ID: true, forStaff.ID: true, archived.ID: true},
		},
		{
			name:    "Parent sees active parent-facing only",
			cookie:  env.authCookie(t, parent),
			wantIDs: map[int]bool{all.ID: true, forParents.ID: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/announcements", tt.cookie)
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}

			var anns []announcement.Announcement
			decodeBody(t, rec, &anns)
			if len(anns) != len(tt.wantIDs) {
				t.Fatalf("announcements = %d; want %d", len(anns), len(tt.wantIDs))
			}
			for _, ann := range anns {
				if !tt.wantIDs[ann.ID] {
					t.Errorf("unexpected announcement %d %q", ann.ID, ann.Title)
				}
			}
		})
	}

	t.Run("parent may not retrieve a staff announcement", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/announcements/3", env.authCookie(t, parent))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})
}

func Test_announcementApi_update(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	adminCookie := env.authCookie(t, admin)

	ann, err := env.annSvc.Create(ctx, announcement.NewAnnouncement{
		Title:   "Winter Fair",
		Content: "The winter fair takes place at the end of the month.",
	}, admin)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	path := fmt.Sprintf("/api/announcements/%d", ann.ID)

	t.Run("admin only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, env.authCookie(t, parent), []byte(`{}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("invalid expiry date", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, path, adminCookie, []byte(`{"expiry_date": "soon"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("untouched fields are preserved", func(t *testing.T) {
		body := []byte(`{"title": "Winter Fair (new date)", "expiry_date": "2026-09-30"}`)
		req, rec := newAuthRequest(http.MethodPatch, path, adminCookie, body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var updated announcement.Announcement
		decodeBody(t, rec, &updated)
		if updated.Title != "Winter Fair (new date)" {
			t.Errorf("Title = %q", updated.Title)
		}
		if updated.Content != ann.Content || updated.TargetAudience != ann.TargetAudience {
			t.Errorf("unexpected announcement: %+v", updated)
		}
		if !updated.ExpiryDate.Valid {
			t.Error("ExpiryDate not set")
		}
	})

	t.Run("unknown announcement", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPatch, "/api/announcements/999", adminCookie, []byte(`{"title": "Nope!"}`))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}
