package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/auth"
	"github.com/lvcu04/fashion_shop/internal/cart"
	"github.com/lvcu04/fashion_shop/internal/catalog"
	"github.com/lvcu04/fashion_shop/internal/inventory"
	"github.com/lvcu04/fashion_shop/internal/order"
	"github.com/lvcu04/fashion_shop/internal/payment"
	"github.com/lvcu04/fashion_shop/internal/review"
	authmw "github.com/lvcu04/fashion_shop/pkg/middleware/auth"
)

var statusByErr = []struct {
	err  error
	code int
}{
	{order.ErrValidation, http.StatusBadRequest},
	{order.ErrEmptyCart, http.StatusBadRequest},
	{inventory.ErrValidation, http.StatusBadRequest},
	{cart.ErrValidation, http.StatusBadRequest},
	{catalog.ErrValidation, http.StatusBadRequest},
	{review.ErrValidation, http.StatusBadRequest},
	{auth.ErrValidation, http.StatusBadRequest},
	{payment.ErrValidation, http.StatusBadRequest},
	{payment.ErrInvalidSignature, http.StatusBadRequest},

	{order.ErrProductNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{inventory.ErrProductNotFound, http.StatusNotFound},
	{cart.ErrNotFound, http.StatusNotFound},
	{catalog.ErrNotFound, http.StatusNotFound},
	{review.ErrNotFound, http.StatusNotFound},
	{auth.ErrNotFound, http.StatusNotFound},

	{order.ErrConflict, http.StatusConflict},
	{catalog.ErrConflict, http.StatusConflict},
	{review.ErrConflict, http.StatusConflict},
	{auth.ErrConflict, http.StatusConflict},

	{auth.ErrInvalidCredentials, http.StatusUnauthorized},
	{payment.ErrProvider, http.StatusBadGateway},
	{payment.ErrNotConfigured, http.StatusServiceUnavailable},
}

// translate maps a service error to a status code and response body.
func translate(err error) (int, any) {
	var stock *inventory.InsufficientStockError
	if errors.As(err, &stock) {
		return http.StatusConflict, echo.Map{
			"message":    "insufficient stock",
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
		}
	}
	var tr *order.InvalidTransitionError
	if errors.As(err, &tr) {
		return http.StatusUnprocessableEntity, echo.Map{
			"message": "invalid status transition",
			"from":    tr.From,
			"to":      tr.To,
		}
	}
	for _, m := range statusByErr {
		if errors.Is(err, m.err) {
			return m.code, err.Error()
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// fail logs err under op and converts it to an HTTP error.
func fail(l *slog.Logger, op string, err error) error {
	code, body := translate(err)
	if code >= http.StatusInternalServerError {
		l.Error(op+"_error", "status", code, "reason", "internal error", "error", err)
	} else {
		l.Warn(op+"_error", "status", code, "reason", body, "error", err)
	}
	return echo.NewHTTPError(code, body)
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func paramID(c echo.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(n), nil
}

func currentUser(c echo.Context) (uint, error) {
	uid, ok := authmw.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return uid, nil
}
