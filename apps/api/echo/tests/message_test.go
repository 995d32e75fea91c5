package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/trezcool/chekechea/core/messaging"
	testutil "github.com/trezcool/chekechea/tests"
)

func Test_messageApi_send(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")

	t.Run("sends and notifies the receiver", func(t *testing.T) {
		body := []byte(`{"receiver_id": 1, "subject": "Pickup time", "content": "Please remember the new pickup time."}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/messages", env.authCookie(t, admin), body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var msg messaging.Message
		decodeBody(t, rec, &msg)
		if msg.SenderID != admin.ID || msg.ReceiverID != parent.ID || msg.Status != messaging.MessageUnread {
			t.Errorf("unexpected message: %+v", msg)
		}

		notifs, err := env.notifRepo.QueryNotificationsByUserID(ctx, parent.ID, 10)
		if err != nil {
			t.Fatalf("QueryNotificationsByUserID() failed: %v", err)
		}
		if len(notifs) != 1 {
			t.Fatalf("notifications = %d; want 1", len(notifs))
		}
		if notifs[0].Title != "New Message" ||
			notifs[0].Message != "You have received a new message: Pickup time" {
			t.Errorf("unexpected notification: %q / %q", notifs[0].Title, notifs[0].Message)
		}
	})

	t.Run("unknown receiver", func(t *testing.T) {
		body := []byte(`{"receiver_id": 999, "subject": "Hello", "content": "Anyone there?"}`)
		req, rec := newAuthRequest(http.MethodPost, "/api/messages", env.authCookie(t, admin), body)
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_messageApi_retrieve(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "s3cr3t")

	sent, err := env.msgSvc.Send(ctx, admin, messaging.NewMessage{
		ReceiverID: parent.ID,
		Subject:    "Pickup time",
		Content:    "Please remember the new pickup time.",
	})
	if err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	t.Run("third parties may not read it", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/messages/1", env.authCookie(t, other))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("receiver fetching marks it read", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/messages/1", env.authCookie(t, parent))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var msg messaging.Message
		decodeBody(t, rec, &msg)
		if msg.ID != sent.ID || msg.Status != messaging.MessageRead {
			t.Errorf("unexpected message: %+v", msg)
		}
	})

	t.Run("sender fetching does not change status", func(t *testing.T) {
		second, err := env.msgSvc.Send(ctx, parent, messaging.NewMessage{
			ReceiverID: admin.ID,
			Subject:    "Re: Pickup time",
			Content:    "Noted, thanks.",
		})
		if err != nil {
			t.Fatalf("Send() failed: %v", err)
		}

		req, rec := newAuthRequest(http.MethodGet, "/api/messages/2", env.authCookie(t, parent))
		env.app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		var msg messaging.Message
		decodeBody(t, rec, &msg)
		if msg.ID != second.ID || msg.Status != messaging.MessageUnread {
			t.Errorf("unexpected message: %+v", msg)
		}
	})
}

func Test_messageApi_query(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	parent := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	admin := testutil.CreateAdmin(t, env.usrRepo, "Admin", "admin@test.cd", "s3cr3t")
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "s3cr3t")

	if _, err := env.msgSvc.Send(ctx, admin, messaging.NewMessage{ReceiverID: parent.ID, Subject: "One", Content: "First message."}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if _, err := env.msgSvc.Send(ctx, parent, messaging.NewMessage{ReceiverID: admin.ID, Subject: "Two", Content: "Second message."}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	tests := []struct {
		name   string
		cookie *http.Cookie
		want   int
	}{
		{name: "participant sees both directions", cookie: env.authCookie(t, parent), want: 2},
		{name: "outsider sees none", cookie: env.authCookie(t, other), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/messages", tt.cookie)
			env.app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
			}

			var msgs []messaging.Message
			decodeBody(t, rec, &msgs)
			if len(msgs) != tt.want {
				t.Errorf("messages = %d; want %d", len(msgs), tt.want)
			}
		})
	}
}
