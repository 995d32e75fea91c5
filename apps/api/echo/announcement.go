package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/announcement"
)

type announcementApi struct {
	svc *announcement.Service
}

func registerAnnouncementAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *announcement.Service) {
	api := announcementApi{svc: svc}
	admin := adminMiddleware()

	ag := g.Group("/announcements", auth)
	ag.GET("", api.query)
	ag.POST("", api.create, admin)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id", api.update, admin)
	ag.PATCH("/:id/status", api.setStatus, admin)
}

func (api *announcementApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	anns, err := api.svc.Query(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *announcementApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data announcement.NewAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}

	ann, err := api.svc.Create(ctx.Request().Context(), data, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	ann, err := api.svc.Get(ctx.Request().Context(), id, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *announcementApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	var data announcement.UpdateAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAnnouncement")
	}

	ann, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *announcementApi) setStatus(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	var data struct {
		Status string `json:"status"`
	}
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding status")
	}

	ann, err := api.svc.SetStatus(ctx.Request().Context(), id, data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ann)
}
