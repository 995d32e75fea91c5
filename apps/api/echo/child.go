package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core/enrollment"
	"github.com/trezcool/chekechea/core/user"
)

type childApi struct {
	svc *enrollment.Service
}

func registerChildAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *enrollment.Service) {
	api := childApi{svc: svc}
	admin := adminMiddleware()

	cg := g.Group("/children", auth)
	cg.GET("", api.query)
	cg.POST("", api.create, admin)
	cg.GET("/:id", api.retrieve)
	cg.PATCH("/:id/class", api.assignClass, admin)

	// the admin dashboard addresses enrolled children as students
	sg := g.Group("/students", auth, admin)
	sg.GET("", api.query)
	sg.GET("/:id", api.retrieve)
	sg.PATCH("/:id", api.assignClass)

	clg := g.Group("/classes", auth, admin)
	clg.GET("", api.queryClasses)
	clg.POST("", api.createClass)

	dg := g.Group("/documents", auth)
	dg.GET("", api.queryDocuments)
	dg.POST("", api.attachDocument)
}

func (api *childApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	children, err := api.svc.QueryChildren(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	return ctx.JSON(http.StatusOK, children)
}

func (api *childApi) create(ctx echo.Context) error {
	var data enrollment.NewChild
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChild")
	}

	child, err := api.svc.CreateChild(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, child)
}

func (api *childApi) retrieve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	child, err := api.svc.GetChild(ctx.Request().Context(), id, usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, child)
}

func (api *childApi) assignClass(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHTTPNotFound
	}

	var data struct {
		ClassID int `json:"class_id"`
	}
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding class assignment")
	}

	child, err := api.svc.AssignClass(ctx.Request().Context(), id, data.ClassID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, child)
}

func (api *childApi) queryClasses(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *childApi) createClass(ctx echo.Context) error {
	var data enrollment.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}

	class, err := api.svc.CreateClass(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *childApi) queryDocuments(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	owner := enrollment.DocumentOwner{Kind: enrollment.OwnerKind(ctx.QueryParam("application_type"))}
	if owner.ID, err = strconv.Atoi(ctx.QueryParam("application_id")); err != nil {
		return errHTTPNotFound
	}
	if err = api.checkOwnerAccess(ctx, owner, usr); err != nil {
		return err
	}

	docs, err := api.svc.QueryDocuments(ctx.Request().Context(), owner)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *childApi) attachDocument(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data enrollment.NewDocument
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	owner := enrollment.DocumentOwner{Kind: data.OwnerKind, ID: data.OwnerID}
	if err = api.checkOwnerAccess(ctx, owner, usr); err != nil {
		return err
	}

	doc, err := api.svc.AttachDocument(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, doc)
}

// checkOwnerAccess loads the document owner through the access-checked
// getters so a parent can only touch documents on their own records.
func (api *childApi) checkOwnerAccess(ctx echo.Context, owner enrollment.DocumentOwner, usr user.User) error {
	switch owner.Kind {
	case enrollment.OwnerApplication:
		_, err := api.svc.GetApplication(ctx.Request().Context(), owner.ID, usr)
		return err
	case enrollment.OwnerChild:
		_, err := api.svc.GetChild(ctx.Request().Context(), owner.ID, usr)
		return err
	}
	return errHTTPNotFound
}
