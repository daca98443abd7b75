package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/review"
	"github.com/lvcu04/fashion_shop/internal/transport"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

type ReviewHTTP struct {
	Svc *review.Service
}

func (h *ReviewHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list")

	pid, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "list_reviews", "invalid id", err)
	}
	reviews, err := h.Svc.ListByProduct(ctx, pid)
	if err != nil {
		return fail(l, "list_reviews", err)
	}
	return c.JSON(http.StatusOK, reviews)
}

func (h *ReviewHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.stats")

	pid, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "review_stats", "invalid id", err)
	}
	st, err := h.Svc.Stats(ctx, pid)
	if err != nil {
		return fail(l, "review_stats", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *ReviewHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	pid, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "create_review", "invalid id", err)
	}
	var req transport.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_review", "invalid body", err)
	}

	r, err := h.Svc.Create(ctx, uid, pid, req.Rating, req.Comment)
	if err != nil {
		return fail(l, "create_review", err)
	}

	l.Info("create_review_success", "review_id", r.ID, "product_id", pid)
	return c.JSON(http.StatusCreated, r)
}
