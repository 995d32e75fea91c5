package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/billing"
)

type feeApi struct {
	svc *billing.Service
}

func registerFeeAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *billing.Service) {
	api := feeApi{svc: svc}
	admin := adminMiddleware()

	fg := g.Group("/fees", auth)
	fg.GET("", api.query)
	fg.POST("", api.create, admin)
	fg.GET("/:id", api.retrieve)
	fg.PATCH("/:id/status", api.setStatus)
	fg.POST("/:id/remind", api.remind, admin)
}

func (api *feeApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	fees, err := api.svc.Query(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *feeApi) create(ctx echo.Context) error {
	var data billing.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}

	fee, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fee)
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	fee, err := api.svc.Get(ctx.Request().Context(), id, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fee)
}

func (api *feeApi) setStatus(ctx echo.Context) error {
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
		return errors.Wrap(err, "binding status")
	}

	fee, err := api.svc.SetStatus(ctx.Request().Context(), id, data.Status, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, fee)
}

func (api *feeApi) remind(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	if err = api.svc.Remind(ctx.Request().Context(), id, usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "reminder sent"})
}
