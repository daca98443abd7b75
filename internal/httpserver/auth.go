package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/auth"
	"github.com/lvcu04/fashion_shop/internal/transport"
	"github.com/lvcu04/fashion_shop/pkg/logging"
	authmw "github.com/lvcu04/fashion_shop/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc *auth.Service
}

func accessCookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     authmw.AccessCookie,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register", "invalid body", err)
	}

	u, err := h.Svc.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		return fail(l, "register", err)
	}

	l.Info("register_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, u)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login", err)
	}

	c.SetCookie(accessCookie(res.AccessToken, res.AccessExp))
	l.Info("login_success")
	return c.JSON(http.StatusOK, transport.LoginResponse{
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExp,
		IsAdmin:     res.IsAdmin,
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Me(ctx, uid)
	if err != nil {
		return fail(l, "me", err)
	}
	return c.JSON(http.StatusOK, u)
}
