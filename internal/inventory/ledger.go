package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
)

var (
	ErrValidation        = errors.New("validation")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrProductNotFound   = errors.New("product not found")
)

type InsufficientStockError struct {
	ProductID uint
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (requested %d)", e.ProductID, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// GormLedger owns products.stock. DB may be a transaction handle.
type GormLedger struct {
	DB *gorm.DB
}

// Reserve decrements stock only if enough is available. The check and the
// write are one statement, so concurrent reservations never oversell.
func (l GormLedger) Reserve(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	res := l.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("reserve product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return &InsufficientStockError{ProductID: productID, Requested: quantity}
	}
	return nil
}

func (l GormLedger) Release(ctx context.Context, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	res := l.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("release product %d: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
	}
	return nil
}

func (l GormLedger) Available(ctx context.Context, productID uint) (int, error) {
	var p models.Product
	err := l.DB.WithContext(ctx).Select("id", "stock").First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
	}
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}
