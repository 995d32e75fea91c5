package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", auth, adminMiddleware())
	ag.GET("", api.roster)
	ag.POST("", api.record)
	ag.POST("/mark-all", api.markAll)
	ag.PATCH("/:id", api.updateNotes)
}

// roster returns every active child with their record for the given date,
// defaulting to today.
func (api *attendanceApi) roster(ctx echo.Context) error {
	date := time.Now().UTC()
	if raw := ctx.QueryParam("date"); raw != "" {
		var err error
		if date, err = core.ParseDate(raw); err != nil {
			return core.NewValidationError(err, core.FieldError{
				Field: "date", Error: "must be a valid date",
			})
		}
	}

	roster, err := api.svc.Roster(ctx.Request().Context(), date)
	if err != nil {
		return errors.Wrap(err, "building roster")
	}
	return ctx.JSON(http.StatusOK, roster)
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}

	rec, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) markAll(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data attendance.MarkAll
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAll")
	}

	count, err := api.svc.MarkAll(ctx.Request().Context(), data, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"count": count})
}

func (api *attendanceApi) updateNotes(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	var data struct {
		Notes string `json:"notes"`
	}
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding notes")
	}

	rec, err := api.svc.UpdateNotes(ctx.Request().Context(), id, data.Notes)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}
