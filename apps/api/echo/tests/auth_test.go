package tests

import (
	"net/http"
	"testing"

	"github.com/trezcool/chekechea/core/user"
	testutil "github.com/trezcool/chekechea/tests"
)

func Test_authApi_register(t *testing.T) {
	env := setup(t)

	testutil.CreateUser(t, env.usrRepo, "Taken", "taken@test.cd", "s3cr3t")

	tests := []httpTest{
		{
			name: "Valid registration",
			body: []byte(`{"name": "Zanele M", "email": "zanele@test.cd", "phone": "082 123 4567", "password": "s3cr3t", "password_confirm": "s3cr3t"}`),
			wantCode: http.StatusCreated,
		},
		{
			name:     "Password mismatch",
			body:     []byte(`{"name": "Zanele M", "email": "zanele2@test.cd", "password": "s3cr3t", "password_confirm": "nope00"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Invalid phone",
			body:     []byte(`{"name": "Zanele M", "email": "zanele3@test.cd", "phone": "12345", "password": "s3cr3t", "password_confirm": "s3cr3t"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "Duplicate email",
			body:     []byte(`{"name": "Copy Cat", "email": "taken@test.cd", "password": "s3cr3t", "password_confirm": "s3cr3t"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/register", tt.body)
			env.app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusCreated {
				return
			}

			var usr user.User
			decodeBody(t, rec, &usr)
			if usr.Role != user.RoleParent {
				t.Errorf("role = %q; want %q", usr.Role, user.RoleParent)
			}
			if !hasSessionCookie(rec) {
				t.Error("expected a session cookie to be set")
			}
		})
	}
}

func Test_authApi_login(t *testing.T) {
	env := setup(t)

	testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	badCreds := marchallObj(t, httpErr{Message: "invalid email or password"})

	tests := []httpTest{
		{name: "Valid credentials", body: []byte(`{"email": "parent@test.cd", "password": "s3cr3t"}`), wantCode: http.StatusOK},
		{name: "Email is case-insensitive", body: []byte(`{"email": "PARENT@test.cd", "password": "s3cr3t"}`), wantCode: http.StatusOK},
		{
			name: "Wrong password", body: []byte(`{"email": "parent@test.cd", "password": "nope"}`),
			wantCode: http.StatusBadRequest, wantData: badCreds,
		},
		{
			name: "Unknown email", body: []byte(`{"email": "ghost@test.cd", "password": "s3cr3t"}`),
			wantCode: http.StatusBadRequest, wantData: badCreds,
		},
		{name: "Missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/login", tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK && !hasSessionCookie(rec) {
				t.Error("expected a session cookie to be set")
			}
		})
	}
}

func Test_authApi_logout(t *testing.T) {
	env := setup(t)

	usr := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")
	cookie := env.authCookie(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/api/logout", cookie)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; want %v", rec.Code, http.StatusOK)
	}

	// the session is revoked server-side, the same cookie no longer works
	req, rec = newAuthRequest(http.MethodGet, "/api/user", cookie)
	env.app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, errNotAuthenticated),
	}, rec)
}

func Test_authApi_currentUser(t *testing.T) {
	env := setup(t)

	usr := testutil.CreateUser(t, env.usrRepo, "Parent", "parent@test.cd", "s3cr3t")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errNotAuthenticated)},
		{name: "Get self", cookie: env.authCookie(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/user", tt.cookie)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func hasSessionCookie(rec interface{ Result() *http.Response }) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" && c.Value != "" {
			return true
		}
	}
	return false
}
