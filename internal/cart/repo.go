package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
)

var ErrMissingProduct = errors.New("cart references a missing product")

// Line is a cart row priced at the current catalog price.
type Line struct {
	ProductID uint
	Quantity  int
	UnitPrice int64
}

// GormRepo works on either the root DB or a transaction handle.
type GormRepo struct {
	DB *gorm.DB
}

type lineRow struct {
	ProductID uint
	Quantity  int
	Price     *int64
}

// Lines returns the user's cart joined with product prices, ordered by
// product id. A line whose product was removed yields ErrMissingProduct.
func (r GormRepo) Lines(ctx context.Context, userID uint) ([]Line, error) {
	var rows []lineRow
	err := r.DB.WithContext(ctx).
		Table("cart_items AS ci").
		Select("ci.product_id AS product_id, ci.quantity AS quantity, p.price AS price").
		Joins("LEFT JOIN products p ON p.id = ci.product_id").
		Where("ci.user_id = ?", userID).
		Order("ci.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Line, 0, len(rows))
	for _, row := range rows {
		if row.Price == nil {
			return nil, ErrMissingProduct
		}
		out = append(out, Line{ProductID: row.ProductID, Quantity: row.Quantity, UnitPrice: *row.Price})
	}
	return out, nil
}

func (r GormRepo) Items(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r GormRepo) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(item).Error
		}
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveOne decrements an item, deleting it when it reaches zero.
func (r GormRepo) RemoveOne(ctx context.Context, userID, itemID uint) (deleted bool, item *models.CartItem, err error) {
	item = &models.CartItem{}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", itemID, userID).First(item).Error; err != nil {
			return err
		}
		if item.Quantity > 1 {
			res := tx.Model(&models.CartItem{}).
				Where("id = ? AND quantity > 1", item.ID).
				Update("quantity", gorm.Expr("quantity - 1"))
			if res.Error != nil {
				return res.Error
			}
			return tx.First(item, item.ID).Error
		}
		deleted = true
		return tx.Delete(&models.CartItem{}, item.ID).Error
	})
	if err != nil {
		return false, nil, err
	}
	return deleted, item, nil
}

// Clear deletes the user's cart and reports how many rows went.
func (r GormRepo) Clear(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
