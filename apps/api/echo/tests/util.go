package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/trezcool/chekechea/apps/api/echo"
	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/announcement"
	"github.com/trezcool/chekechea/core/attendance"
	"github.com/trezcool/chekechea/core/billing"
	"github.com/trezcool/chekechea/core/enrollment"
	"github.com/trezcool/chekechea/core/messaging"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/staff"
	"github.com/trezcool/chekechea/core/user"
	logsvc "github.com/trezcool/chekechea/services/logger"
	inmemdb "github.com/trezcool/chekechea/storage/inmem"
)

type testEnv struct {
	app  echoapi.Server
	conf *core.Config

	usrRepo    user.Repository
	enrollRepo enrollment.Repository
	feeRepo    billing.Repository
	notifRepo  notification.Repository
	staffRepo  staff.Repository

	usrSvc        *user.Service
	enrollSvc     *enrollment.Service
	billingSvc    *billing.Service
	attendanceSvc *attendance.Service
	msgSvc        *messaging.Service
	staffSvc      *staff.Service
	annSvc        *announcement.Service
	notifSvc      *notification.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		Debug:    true,
		TestMode: true,
		AppName:  "Chekechea",
		Server:   core.ServerConfig{SessionTTL: time.Hour},
	}

	db := inmemdb.NewDB()
	env := &testEnv{
		conf:       conf,
		usrRepo:    inmemdb.NewUserRepository(db),
		enrollRepo: inmemdb.NewEnrollmentRepository(db),
		feeRepo:    inmemdb.NewBillingRepository(db),
		notifRepo:  inmemdb.NewNotificationRepository(db),
		staffRepo:  inmemdb.NewStaffRepository(db),
	}

	env.notifSvc = notification.NewService(env.notifRepo)
	env.usrSvc = user.NewService(env.usrRepo, inmemdb.NewSessionRepository(db), conf)
	env.enrollSvc = enrollment.NewService(env.enrollRepo, env.notifSvc, db)
	env.msgSvc = messaging.NewService(inmemdb.NewMessagingRepository(db), env.notifSvc, db)
	env.billingSvc = billing.NewService(env.feeRepo, env.notifSvc, env.msgSvc, db)
	env.attendanceSvc = attendance.NewService(inmemdb.NewAttendanceRepository(db), env.enrollSvc, env.notifSvc, db)
	env.staffSvc = staff.NewService(env.staffRepo, env.notifSvc, db)
	env.annSvc = announcement.NewService(inmemdb.NewAnnouncementRepository(db), env.notifSvc, env.usrSvc, db)

	env.app = echoapi.NewServer(
		&echoapi.Options{
			DisableReqLogs: true,
			AppConf:        conf,
			Logger:         logsvc.NewConsoleLogger(log.New(io.Discard, "", 0)),

			UserSvc:         env.usrSvc,
			EnrollmentSvc:   env.enrollSvc,
			BillingSvc:      env.billingSvc,
			AttendanceSvc:   env.attendanceSvc,
			MessagingSvc:    env.msgSvc,
			StaffSvc:        env.staffSvc,
			AnnouncementSvc: env.annSvc,
			NotificationSvc: env.notifSvc,
		},
	)
	return env
}

// authCookie opens a real session for usr and returns the resulting cookie.
func (env *testEnv) authCookie(t *testing.T, usr user.User) *http.Cookie {
	t.Helper()

	sess, err := env.usrSvc.OpenSession(context.Background(), usr)
	if err != nil {
		t.Fatalf("authCookie() failed: %v", err)
	}
	return &http.Cookie{Name: "session", Value: sess.Token}
}

type httpErr struct {
	Message string `json:"message"`
}

var errNotAuthenticated = httpErr{Message: "user not authenticated"}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	cookie   *http.Cookie
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path string, cookie *http.Cookie, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, nil, data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decodeBody() failed: %v; body %s", err, rec.Body.String())
	}
}
