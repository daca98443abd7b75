package httpserver

import (
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/lvcu04/fashion_shop/internal/catalog"
	"github.com/lvcu04/fashion_shop/internal/inventory"
	"github.com/lvcu04/fashion_shop/internal/order"
)

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestTranslate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", fmt.Errorf("%w: address is required", order.ErrValidation), http.StatusBadRequest},
		{"empty cart", order.ErrEmptyCart, http.StatusBadRequest},
		{"product", fmt.Errorf("%w: product 3", order.ErrProductNotFound), http.StatusNotFound},
		{"order", order.ErrOrderNotFound, http.StatusNotFound},
		{"catalog not found", catalog.ErrNotFound, http.StatusNotFound},
		{"cas", order.ErrConflict, http.StatusConflict},
		{"internal", fmt.Errorf("%w: boom", order.ErrInternal), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			code, _ := translate(tc.err)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestTranslate_TypedErrors(t *testing.T) {
	t.Parallel()

	code, body := translate(fmt.Errorf("reserve: %w", &inventory.InsufficientStockError{ProductID: 4, Requested: 9}))
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, echo.Map{"message": "insufficient stock", "product_id": uint(4), "requested": 9}, body)

	code, body = translate(&order.InvalidTransitionError{From: order.StatusCompleted, To: order.StatusCancelled})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, echo.Map{"message": "invalid status transition", "from": order.StatusCompleted, "to": order.StatusCancelled}, body)

	_, body = translate(fmt.Errorf("%w: pq: connection reset", order.ErrInternal))
	assert.Equal(t, "internal error", body)
}
