package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/order"
	"github.com/lvcu04/fashion_shop/internal/transport"
	"github.com/lvcu04/fashion_shop/internal/util"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

type OrderHTTP struct {
	Engine *order.Engine
}

func (h *OrderHTTP) CreateFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_from_cart")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateFromCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order", "invalid body", err)
	}

	o, err := h.Engine.CreateFromCart(ctx, uid, req.Address)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "total", o.TotalPrice)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) CreateSingle(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_single")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreateSingleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order", "invalid body", err)
	}

	o, err := h.Engine.CreateSingle(ctx, uid, req.ProductID, req.Quantity, req.Address)
	if err != nil {
		return fail(l, "create_order", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "total", o.TotalPrice)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) ListMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	orders, err := h.Engine.ListByUser(ctx, uid)
	if err != nil {
		return fail(l, "list_orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetMine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_mine")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_order", "invalid id", err)
	}
	o, err := h.Engine.GetForUser(ctx, uid, id)
	if err != nil {
		return fail(l, "get_order", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) AdminList(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_list")

	f := order.AdminFilter{
		Page:     util.ParseIntDefault(c.QueryParam("page"), 1),
		PageSize: util.ParseIntDefault(c.QueryParam("page_size"), util.DefaultPageSize),
		Status:   c.QueryParam("status"),
		UserID:   uint(max(util.ParseIntDefault(c.QueryParam("user_id"), 0), 0)),
	}
	page, err := h.Engine.ListForAdmin(ctx, f)
	if err != nil {
		return fail(l, "admin_list_orders", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *OrderHTTP) AdminGet(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.admin_get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "admin_get_order", "invalid id", err)
	}
	o, err := h.Engine.GetForAdmin(ctx, id)
	if err != nil {
		return fail(l, "admin_get_order", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_status", "invalid id", err)
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status", "invalid body", err)
	}

	o, err := h.Engine.TransitionStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status", err)
	}

	l.Info("update_status_success", "order_id", o.ID, "status", o.Status)
	return c.JSON(http.StatusOK, o)
}
