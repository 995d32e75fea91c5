package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/enrollment"
)

type applicationApi struct {
	svc *enrollment.Service
}

func registerApplicationAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *enrollment.Service) {
	api := applicationApi{svc: svc}

	ag := g.Group("/applications", auth)
	ag.GET("", api.query)
	ag.POST("", api.submit)
	ag.GET("/:id", api.retrieve)
	ag.PATCH("/:id/status", api.decide, adminMiddleware())
}

func (api *applicationApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	apps, err := api.svc.QueryApplications(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data enrollment.NewApplication
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}

	app, err := api.svc.Submit(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *applicationApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	app, err := api.svc.GetApplication(ctx.Request().Context(), id, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) decide(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	var data struct {
		Status string `json:"status"`
	}
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding decision")
	}

	app, err := api.svc.Decide(ctx.Request().Context(), id, data.Status, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}
