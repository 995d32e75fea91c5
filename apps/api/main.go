package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

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
	"github.com/trezcool/chekechea/storage/postgres"
)

func main() {
	conf := core.NewConfig()

	// set up loggers
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}
	logger.Enable(true)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close database", err)
		}
	}()
	store := postgres.NewStore(db)

	// set up services; notifications feed every other domain's fan-out
	notifSvc := notification.NewService(postgres.NewNotificationRepository(store))
	usrSvc := user.NewService(postgres.NewUserRepository(store), postgres.NewSessionRepository(store), conf)
	enrollSvc := enrollment.NewService(postgres.NewEnrollmentRepository(store), notifSvc, store)
	msgSvc := messaging.NewService(postgres.NewMessagingRepository(store), notifSvc, store)
	billingSvc := billing.NewService(postgres.NewBillingRepository(store), notifSvc, msgSvc, store)
	attendanceSvc := attendance.NewService(postgres.NewAttendanceRepository(store), enrollSvc, notifSvc, store)
	staffSvc := staff.NewService(postgres.NewStaffRepository(store), notifSvc, store)
	announcementSvc := announcement.NewService(postgres.NewAnnouncementRepository(store), notifSvc, usrSvc, store)

	logger.Info(fmt.Sprintf("%s initializing : version %q", conf.AppName, conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address: conf.Server.Address(),
			AppConf: conf,
			Logger:  logger,

			UserSvc:         usrSvc,
			EnrollmentSvc:   enrollSvc,
			BillingSvc:      billingSvc,
			AttendanceSvc:   attendanceSvc,
			MessagingSvc:    msgSvc,
			StaffSvc:        staffSvc,
			AnnouncementSvc: announcementSvc,
			NotificationSvc: notifSvc,
		},
	)
	go app.Start()

	// block until the OS asks us to stop, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info(fmt.Sprintf("%v: start shutdown...", sig))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = app.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := postgres.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := postgres.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = postgres.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
