package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/attendance"
	"github.com/trezcool/chekechea/core/billing"
	"github.com/trezcool/chekechea/core/enrollment"
)

type statsApi struct {
	enrollSvc     *enrollment.Service
	billingSvc    *billing.Service
	attendanceSvc *attendance.Service
}

func registerStatsAPI(
	g *echo.Group,
	auth echo.MiddlewareFunc,
	enrollSvc *enrollment.Service,
	billingSvc *billing.Service,
	attendanceSvc *attendance.Service,
) {
	api := statsApi{enrollSvc: enrollSvc, billingSvc: billingSvc, attendanceSvc: attendanceSvc}

	g.GET("/stats", api.dashboard, auth, adminMiddleware())
}

// dashboard aggregates the counters shown on the admin landing page.
func (api *statsApi) dashboard(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	students, err := api.enrollSvc.CountActiveChildren(rctx)
	if err != nil {
		return errors.Wrap(err, "counting active children")
	}
	pendingApps, err := api.enrollSvc.CountPendingApplications(rctx)
	if err != nil {
		return errors.Wrap(err, "counting pending applications")
	}
	present, err := api.attendanceSvc.CountPresentOn(rctx, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "counting attendance")
	}
	pendingFees, err := api.billingSvc.CountPending(rctx)
	if err != nil {
		return errors.Wrap(err, "counting pending fees")
	}

	return ctx.JSON(http.StatusOK, echo.Map{
		"total_students":       students,
		"pending_applications": pendingApps,
		"attendance_today":     present,
		"pending_fees":         pendingFees,
	})
}
