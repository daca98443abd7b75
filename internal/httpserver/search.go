package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/search"
	"github.com/lvcu04/fashion_shop/internal/util"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

type SearchHTTP struct {
	Index search.Index
}

func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.products")

	page, size := util.Normalize(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	offset, limit := util.Calculate(page, size)

	res, err := h.Index.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search", err)
	}
	items := res.Items
	if items == nil {
		items = []models.Product{}
	}
	return c.JSON(http.StatusOK, util.Page[models.Product]{
		Items:    items,
		Total:    res.Total,
		Page:     page,
		PageSize: size,
	})
}
