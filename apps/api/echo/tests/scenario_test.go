package tests

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trezcool/chekechea/core/enrollment"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/user"
	testutil "github.com/trezcool/chekechea/tests"
)

// Test_enrollmentFlow walks the full parent journey over the HTTP surface:
// register, apply, admin approval, then the resulting child and notifications.
func Test_enrollmentFlow(t *testing.T) {
	env := setup(t)

	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	adminCookie := env.authCookie(t, admin)

	// Sarah signs up and comes out of it with a session.
	body := marchallObj(t, user.NewUser{
		Name:            "Sarah",
		Email:           "sarah@x.test",
		Password:        "s3cr3t",
		PasswordConfirm: "s3cr3t",
	})
	req, rec := newRequest(http.MethodPost, "/api/register", body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var sarah user.User
	decodeBody(t, rec, &sarah)
	sarahCookie := sessionCookie(t, rec)

	// She applies for Emma.
	body = marchallObj(t, enrollment.NewApplication{
		ChildFirstName:        "Emma",
		ChildLastName:         "Smith",
		ChildDob:              "2020-05-15",
		ChildGender:           "female",
		EmergencyName:         "John Smith",
		EmergencyRelationship: "father",
		EmergencyPhone:        "0821234567",
	})
	req, rec = newAuthRequest(http.MethodPost, "/api/applications", sarahCookie, body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var app enrollment.Application
	decodeBody(t, rec, &app)
	if app.Status != enrollment.ApplicationPending {
		t.Fatalf("Status = %q; want %q", app.Status, enrollment.ApplicationPending)
	}

	// The admin approves it.
	path := fmt.Sprintf("/api/applications/%d/status", app.ID)
	req, rec = newAuthRequest(http.MethodPatch, path, adminCookie, []byte(`{"status": "approved"}`))
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("decide failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var decided enrollment.Application
	decodeBody(t, rec, &decided)
	if decided.Status != enrollment.ApplicationApproved {
		t.Errorf("Status = %q; want %q", decided.Status, enrollment.ApplicationApproved)
	}

	// Emma is now enrolled under Sarah.
	req, rec = newAuthRequest(http.MethodGet, "/api/children", sarahCookie)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("children failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var children []enrollment.Child
	decodeBody(t, rec, &children)
	if len(children) != 1 {
		t.Fatalf("children = %d; want 1", len(children))
	}
	emma := children[0]
	if emma.FirstName != "Emma" || emma.ParentID != sarah.ID || emma.Status != enrollment.ChildActive {
		t.Errorf("unexpected child: %+v", emma)
	}

	// Sarah was told twice: once about the decision, once about the enrollment.
	req, rec = newAuthRequest(http.MethodGet, "/api/notifications", sarahCookie)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("notifications failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var notifs []notification.Notification
	decodeBody(t, rec, &notifs)
	if len(notifs) != 2 {
		t.Fatalf("notifications = %d; want 2", len(notifs))
	}
	for _, n := range notifs {
		if n.IsRead {
			t.Errorf("notification %q should be unread", n.Title)
		}
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "session" && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie set")
	return nil
}
