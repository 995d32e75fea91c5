package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/user"
	inmemdb "github.com/trezcool/chekechea/storage/inmem"
)

func newSvc(t *testing.T, ttl time.Duration) *user.Service {
	t.Helper()

	db := inmemdb.NewDB()
	conf := &core.Config{Server: core.ServerConfig{SessionTTL: ttl}}
	return user.NewService(inmemdb.NewUserRepository(db), inmemdb.NewSessionRepository(db), conf)
}

func register(t *testing.T, svc *user.Service, email string) user.User {
	t.Helper()

	usr, err := svc.Register(context.Background(), user.NewUser{
		Name:            "Thembi Parent",
		Email:           email,
		Password:        "s3cr3t",
		PasswordConfirm: "s3cr3t",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	return usr
}

func TestService_Authenticate(t *testing.T) {
	svc := newSvc(t, time.Hour)
	ctx := context.Background()
	register(t, svc, "thembi@test.cd")

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "ok", email: "thembi@test.cd", pwd: "s3cr3t"},
		{name: "email case-insensitive", email: "THEMBI@Test.CD", pwd: "s3cr3t"},
		{name: "wrong password", email: "thembi@test.cd", pwd: "nope", wantErr: user.ErrAuthenticationFailed},
		{name: "unknown email", email: "ghost@test.cd", pwd: "s3cr3t", wantErr: user.ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if err != tt.wantErr {
				t.Errorf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_sessions(t *testing.T) {
	ctx := context.Background()

	t.Run("open and resolve", func(t *testing.T) {
		svc := newSvc(t, time.Hour)
		usr := register(t, svc, "thembi@test.cd")

		sess, err := svc.OpenSession(ctx, usr)
		if err != nil {
			t.Fatalf("OpenSession() failed: %v", err)
		}
		if sess.Token == "" {
			t.Fatal("empty session token")
		}

		got, err := svc.GetBySession(ctx, sess.Token)
		if err != nil {
			t.Fatalf("GetBySession() failed: %v", err)
		}
		if got.ID != usr.ID {
			t.Errorf("user = %d; want %d", got.ID, usr.ID)
		}
	})

	t.Run("closed sessions stop resolving", func(t *testing.T) {
		svc := newSvc(t, time.Hour)
		usr := register(t, svc, "thembi@test.cd")

		sess, err := svc.OpenSession(ctx, usr)
		if err != nil {
			t.Fatalf("OpenSession() failed: %v", err)
		}
		if err = svc.CloseSession(ctx, sess.Token); err != nil {
			t.Fatalf("CloseSession() failed: %v", err)
		}
		if _, err = svc.GetBySession(ctx, sess.Token); err != user.ErrSessionNotFound {
			t.Errorf("GetBySession() error = %v, want %v", err, user.ErrSessionNotFound)
		}
	})

	t.Run("expired sessions are purged on use", func(t *testing.T) {
		svc := newSvc(t, -time.Minute) // already expired on open
		usr := register(t, svc, "thembi@test.cd")

		sess, err := svc.OpenSession(ctx, usr)
		if err != nil {
			t.Fatalf("OpenSession() failed: %v", err)
		}
		if _, err = svc.GetBySession(ctx, sess.Token); err != user.ErrSessionNotFound {
			t.Errorf("GetBySession() error = %v, want %v", err, user.ErrSessionNotFound)
		}
	})
}

func TestService_ResetPassword(t *testing.T) {
	svc := newSvc(t, time.Hour)
	ctx := context.Background()
	register(t, svc, "thembi@test.cd")

	if err := svc.ResetPassword(ctx, "thembi@test.cd", "n3wpwd"); err != nil {
		t.Fatalf("ResetPassword() failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "thembi@test.cd", "s3cr3t"); err != user.ErrAuthenticationFailed {
		t.Errorf("old password still works; error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "thembi@test.cd", "n3wpwd"); err != nil {
		t.Errorf("Authenticate() with new password failed: %v", err)
	}
}
