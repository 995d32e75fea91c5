// Package echoapi exposes the portal's REST API on echo.
package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/announcement"
	"github.com/trezcool/chekechea/core/attendance"
	"github.com/trezcool/chekechea/core/billing"
	"github.com/trezcool/chekechea/core/enrollment"
	"github.com/trezcool/chekechea/core/messaging"
	"github.com/trezcool/chekechea/core/notification"
	"github.com/trezcool/chekechea/core/staff"
	"github.com/trezcool/chekechea/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		AppConf *core.Config
		Logger  core.Logger

		UserSvc         *user.Service
		EnrollmentSvc   *enrollment.Service
		BillingSvc      *billing.Service
		AttendanceSvc   *attendance.Service
		MessagingSvc    *messaging.Service
		StaffSvc        *staff.Service
		AnnouncementSvc *announcement.Service
		NotificationSvc *notification.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.AppConf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	api := s.app.Group("/api")
	auth := sessionMiddleware(s.opts.UserSvc)

	registerAuthAPI(api, auth, s.opts.UserSvc, conf)
	registerApplicationAPI(api, auth, s.opts.EnrollmentSvc)
	registerChildAPI(api, auth, s.opts.EnrollmentSvc)
	registerFeeAPI(api, auth, s.opts.BillingSvc)
	registerAttendanceAPI(api, auth, s.opts.AttendanceSvc)
	registerMessageAPI(api, auth, s.opts.MessagingSvc)
	registerTeacherAPI(api, auth, s.opts.StaffSvc)
	registerAnnouncementAPI(api, auth, s.opts.AnnouncementSvc)
	registerNotificationAPI(api, auth, s.opts.NotificationSvc)
	registerStatsAPI(api, auth, s.opts.EnrollmentSvc, s.opts.BillingSvc, s.opts.AttendanceSvc)
}

func (s *server) Start() {
	go func() {
		<-s.shutdown
		s.app.Logger.Error("shutdown signal caught, stopping server")
		_ = s.Stop(context.Background())
	}()
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// signalShutdown is handed to the error handler so an unrecoverable error can
// stop the server gracefully.
func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Chekechea API!")
}
