package order

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/util"
)

type AdminFilter struct {
	Page     int
	PageSize int
	Status   string
	UserID   uint
}

func (e *Engine) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := e.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrInternal, err)
	}
	return orders, nil
}

func (e *Engine) ListForAdmin(ctx context.Context, f AdminFilter) (util.Page[models.Order], error) {
	page, size := util.Normalize(f.Page, f.PageSize)
	out := util.Page[models.Order]{Items: []models.Order{}, Page: page, PageSize: size}

	q := e.DB.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		st, err := ParseStatus(f.Status)
		if err != nil {
			return out, err
		}
		q = q.Where("status = ?", string(st))
	}
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}

	q = q.Session(&gorm.Session{})
	if err := q.Count(&out.Total).Error; err != nil {
		return out, fmt.Errorf("%w: count orders: %v", ErrInternal, err)
	}

	offset, limit := util.Calculate(page, size)
	err := q.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&out.Items).Error
	if err != nil {
		return out, fmt.Errorf("%w: list orders: %v", ErrInternal, err)
	}
	return out, nil
}

func (e *Engine) GetForAdmin(ctx context.Context, orderID uint) (*models.Order, error) {
	return e.get(ctx, e.DB.WithContext(ctx), orderID)
}

// GetForUser hides orders of other users behind ErrOrderNotFound.
func (e *Engine) GetForUser(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	return e.get(ctx, e.DB.WithContext(ctx).Where("user_id = ?", userID), orderID)
}

func (e *Engine) get(_ context.Context, q *gorm.DB, orderID uint) (*models.Order, error) {
	var o models.Order
	err := q.Preload("Items").First(&o, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get order: %v", ErrInternal, err)
	}
	return &o, nil
}
