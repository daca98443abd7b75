package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

type Service struct {
	Repo GormRepo
}

func (s *Service) Get(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.Items(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("%w: product_id required", ErrValidation)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	var p models.Product
	err := s.Repo.DB.WithContext(ctx).Select("id").First(&p, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
	}
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.Add(ctx, userID, productID, quantity)
	if err != nil {
		logging.FromContext(ctx).Error("cart_add_error", "user_id", userID, "product_id", productID, "error", err)
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveOne(ctx context.Context, userID, itemID uint) (bool, *models.CartItem, error) {
	if itemID == 0 {
		return false, nil, fmt.Errorf("%w: item id required", ErrValidation)
	}
	deleted, item, err := s.Repo.RemoveOne(ctx, userID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, fmt.Errorf("%w: cart item %d", ErrNotFound, itemID)
	}
	return deleted, item, err
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	_, err := s.Repo.Clear(ctx, userID)
	return err
}
