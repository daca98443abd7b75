package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/dashboard"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

type DashboardHTTP struct {
	Svc *dashboard.Service
}

func (h *DashboardHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.stats")

	st, err := h.Svc.Stats(ctx)
	if err != nil {
		return fail(l, "dashboard_stats", err)
	}
	return c.JSON(http.StatusOK, st)
}
