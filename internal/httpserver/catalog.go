package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/catalog"
	"github.com/lvcu04/fashion_shop/internal/transport"
	"github.com/lvcu04/fashion_shop/internal/util"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

type CatalogHTTP struct {
	Svc *catalog.Service
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_categories")

	cats, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(l, "list_categories", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_category")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_category", "invalid body", err)
	}
	cat, err := h.Svc.CreateCategory(ctx, req.Name)
	if err != nil {
		return fail(l, "create_category", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHTTP) RenameCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.rename_category")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "rename_category", "invalid id", err)
	}
	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "rename_category", "invalid body", err)
	}
	cat, err := h.Svc.RenameCategory(ctx, id, req.Name)
	if err != nil {
		return fail(l, "rename_category", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_category")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "delete_category", "invalid id", err)
	}
	if err := h.Svc.DeleteCategory(ctx, id); err != nil {
		return fail(l, "delete_category", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	f := catalog.ProductFilter{
		Page:       util.ParseIntDefault(c.QueryParam("page"), 1),
		Size:       util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
		CategoryID: uint(max(util.ParseIntDefault(c.QueryParam("category"), 0), 0)),
	}
	page, err := h.Svc.ListProducts(ctx, f)
	if err != nil {
		return fail(l, "list_products", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_product", "invalid id", err)
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product", "invalid body", err)
	}
	p, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "create_product", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "patch_product", "invalid id", err)
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_product", "invalid body", err)
	}
	p, err := h.Svc.PatchProduct(ctx, id, req)
	if err != nil {
		return fail(l, "patch_product", err)
	}

	l.Info("patch_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "delete_product", "invalid id", err)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "delete_product", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) Restock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.restock")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "restock", "invalid id", err)
	}
	var req transport.RestockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "restock", "invalid body", err)
	}
	p, err := h.Svc.Restock(ctx, id, req.Quantity)
	if err != nil {
		return fail(l, "restock", err)
	}

	l.Info("restock_success", "product_id", p.ID, "stock", p.Stock)
	return c.JSON(http.StatusOK, p)
}
