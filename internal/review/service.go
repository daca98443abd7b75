package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/order"
)

var (
	ErrValidation   = errors.New("validation")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrNotPurchased = fmt.Errorf("%w: product must be in one of your completed orders", ErrValidation)
)

type Stats struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int64   `json:"total_reviews"`
}

type Service struct {
	DB *gorm.DB
}

// Create accepts one review per user and product, and only from users who
// have a completed order containing the product.
func (s *Service) Create(ctx context.Context, userID, productID uint, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	db := s.DB.WithContext(ctx)

	var p models.Product
	if err := db.Select("id").First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	var bought int64
	err := db.Model(&models.OrderItem{}).
		Joins("JOIN orders o ON o.id = order_items.order_id").
		Where("o.user_id = ? AND o.status = ? AND order_items.product_id = ?", userID, string(order.StatusCompleted), productID).
		Count(&bought).Error
	if err != nil {
		return nil, err
	}
	if bought == 0 {
		return nil, ErrNotPurchased
	}

	var existing int64
	if err := db.Model(&models.Review{}).Where("user_id = ? AND product_id = ?", userID, productID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: product already reviewed", ErrConflict)
	}

	r := &models.Review{UserID: userID, ProductID: productID, Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := db.Create(r).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: product already reviewed", ErrConflict)
		}
		return nil, err
	}
	return r, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var out []models.Review
	err := s.DB.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, productID uint) (Stats, error) {
	var row struct {
		AvgRating *float64
		Total     int64
	}
	err := s.DB.WithContext(ctx).
		Model(&models.Review{}).
		Select("AVG(rating) AS avg_rating, COUNT(*) AS total").
		Where("product_id = ?", productID).
		Scan(&row).Error
	if err != nil {
		return Stats{}, err
	}

	st := Stats{TotalReviews: row.Total}
	if row.AvgRating != nil {
		st.AverageRating = *row.AvgRating
	}
	return st, nil
}
