package order

import (
	"errors"
	"fmt"

	"github.com/lvcu04/fashion_shop/internal/inventory"
)

var (
	ErrValidation        = errors.New("validation")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = inventory.ErrInsufficientStock
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrInternal          = errors.New("internal error")
)

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

var domainErrors = []error{
	ErrValidation,
	ErrEmptyCart,
	ErrProductNotFound,
	ErrOrderNotFound,
	ErrInsufficientStock,
	ErrInvalidTransition,
	ErrConflict,
}

func isDomain(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
