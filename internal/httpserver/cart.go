package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/cart"
	"github.com/lvcu04/fashion_shop/internal/transport"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

type CartHTTP struct {
	Svc *cart.Service
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.Get(ctx, uid)
	if err != nil {
		return fail(l, "get_cart", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart", "invalid body", err)
	}
	item, err := h.Svc.Add(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart", err)
	}

	l.Info("add_to_cart_success", "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveOne(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_one")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "remove_from_cart", "invalid id", err)
	}
	deleted, item, err := h.Svc.RemoveOne(ctx, uid, id)
	if err != nil {
		return fail(l, "remove_from_cart", err)
	}

	resp := transport.RemoveFromCartResponse{ItemID: item.ID, ProductID: item.ProductID, Deleted: deleted}
	if !deleted {
		resp.Quantity = item.Quantity
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, uid); err != nil {
		return fail(l, "clear_cart", err)
	}
	return c.NoContent(http.StatusNoContent)
}
