package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chekechea/core"
	"github.com/trezcool/chekechea/core/user"
)

const (
	sessionCookieName = "session"
	ctxUserKey        = "ctxUser"
	ctxTokenKey       = "ctxToken"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

type authApi struct {
	svc  *user.Service
	conf *core.Config
}

func registerAuthAPI(g *echo.Group, auth echo.MiddlewareFunc, svc *user.Service, conf *core.Config) {
	api := authApi{svc: svc, conf: conf}

	g.POST("/register", api.register)
	g.POST("/login", api.login)
	g.POST("/logout", api.logout, auth)
	g.GET("/user", api.currentUser, auth)
}

// sessionMiddleware resolves the session cookie to a user and stashes both on
// the context. Requests without a valid session are rejected.
func sessionMiddleware(svc *user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				return errUnauthenticated
			}
			usr, err := svc.GetBySession(ctx.Request().Context(), cookie.Value)
			if err != nil {
				if core.IsNotFound(err) {
					return errUnauthenticated
				}
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(ctxUserKey, usr)
			ctx.Set(ctxTokenKey, cookie.Value)
			return next(ctx)
		}
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(ctxUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUsrNotFoundInCtx
}

func (api *authApi) setSessionCookie(ctx echo.Context, sess user.Session) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   !api.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

func (api *authApi) clearSessionCookie(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !api.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})
}

// Handlers

// register self-signs-up a parent account and opens a session for it.
func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	sess, err := api.svc.OpenSession(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "opening session")
	}
	api.setSessionCookie(ctx, sess)

	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrAuthenticationFailed {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	sess, err := api.svc.OpenSession(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "opening session")
	}
	api.setSessionCookie(ctx, sess)

	return ctx.JSON(http.StatusOK, usr)
}

// logout revokes the server-side session so the token is dead even if the
// cookie survives on a client.
func (api *authApi) logout(ctx echo.Context) error {
	if token, ok := ctx.Get(ctxTokenKey).(string); ok {
		if err := api.svc.CloseSession(ctx.Request().Context(), token); err != nil {
			return errors.Wrap(err, "closing session")
		}
	}
	api.clearSessionCookie(ctx)

	return ctx.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (api *authApi) currentUser(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}
