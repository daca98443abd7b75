package dashboard

import (
	"context"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/order"
)

type Stats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalProducts int64 `json:"total_products"`
	TotalOrders   int64 `json:"total_orders"`
	PendingOrders int64 `json:"pending_orders"`
	TotalRevenue  int64 `json:"total_revenue"`
}

type Service struct {
	DB *gorm.DB
}

// Stats counts revenue from completed orders only.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&st.TotalUsers).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Product{}).Count(&st.TotalProducts).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Order{}).Count(&st.TotalOrders).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Order{}).Where("status = ?", string(order.StatusPending)).Count(&st.PendingOrders).Error; err != nil {
		return st, err
	}
	err := db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0)").
		Where("status = ?", string(order.StatusCompleted)).
		Scan(&st.TotalRevenue).Error
	if err != nil {
		return st, err
	}
	return st, nil
}
