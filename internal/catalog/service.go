package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/inventory"
	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/search"
	"github.com/lvcu04/fashion_shop/internal/transport"
	"github.com/lvcu04/fashion_shop/internal/util"
	"github.com/lvcu04/fashion_shop/pkg/events"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

const sideEffectTimeout = 5 * time.Second

type ProductFilter struct {
	Page       int
	Size       int
	CategoryID uint
}

// Service owns categories and product metadata. Product stock is only
// written at creation and through Restock, which goes via the ledger.
type Service struct {
	DB     *gorm.DB
	Search search.Index
	Events events.Publisher
	Source string
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if err := s.nameFree(ctx, name, 0); err != nil {
		return nil, err
	}
	c := &models.Category{Name: name}
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		return nil, mapWriteErr(err, "category")
	}
	return c, nil
}

func (s *Service) RenameCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	var c models.Category
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, mapReadErr(err, "category", id)
	}
	if err := s.nameFree(ctx, name, id); err != nil {
		return nil, err
	}
	c.Name = name
	if err := s.DB.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, mapWriteErr(err, "category")
	}
	return &c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	return nil
}

func (s *Service) ListProducts(ctx context.Context, f ProductFilter) (util.Page[models.Product], error) {
	page, size := util.Normalize(f.Page, f.Size)
	out := util.Page[models.Product]{Items: []models.Product{}, Page: page, PageSize: size}

	q := s.DB.WithContext(ctx).Model(&models.Product{})
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	q = q.Session(&gorm.Session{})

	if err := q.Count(&out.Total).Error; err != nil {
		return out, err
	}
	offset, limit := util.Calculate(page, size)
	if err := q.Preload("Category").Order("id ASC").Offset(offset).Limit(limit).Find(&out.Items).Error; err != nil {
		return out, err
	}
	return out, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.DB.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, mapReadErr(err, "product", id)
	}
	return &p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	case req.Price < 0:
		return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
	case req.Stock < 0:
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		CategoryID:  req.CategoryID,
	}
	if err := s.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, mapWriteErr(err, "product")
	}

	s.afterWrite(ctx, events.ProductCreated, p)
	return p, nil
}

func (s *Service) PatchProduct(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be blank", ErrValidation)
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must be >= 0", ErrValidation)
		}
		updates["price"] = *req.Price
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}

	var p models.Product
	if err := s.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, mapReadErr(err, "product", id)
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&p).Updates(updates).Error; err != nil {
			return nil, mapWriteErr(err, "product")
		}
	}

	fresh, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.ProductUpdated, fresh)
	return fresh, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: product %d", ErrNotFound, id)
	}

	l := logging.FromContext(ctx).With("svc", "catalog.delete_product", "product_id", id)
	sctx, cancel := detached(ctx)
	defer cancel()
	if s.Search != nil {
		if err := s.Search.DeleteProduct(sctx, id); err != nil {
			l.Error("search_delete_error", "error", err)
		}
	}
	s.publish(sctx, l, events.ProductDeleted, events.ProductPayload{ProductID: id})
	return nil
}

// Restock adds stock through the inventory ledger.
func (s *Service) Restock(ctx context.Context, id uint, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	err := inventory.GormLedger{DB: s.DB}.Release(ctx, id, quantity)
	if errors.Is(err, inventory.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, events.ProductRestocked, p)
	return p, nil
}

func (s *Service) nameFree(ctx context.Context, name string, except uint) error {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, except).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: category %q already exists", ErrConflict, name)
	}
	return nil
}

func (s *Service) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	var c models.Category
	if err := s.DB.WithContext(ctx).Select("id").First(&c, *id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category %d does not exist", ErrValidation, *id)
		}
		return err
	}
	return nil
}

// afterWrite reindexes and announces a product. Both are best-effort.
func (s *Service) afterWrite(ctx context.Context, eventType string, p *models.Product) {
	l := logging.FromContext(ctx).With("svc", "catalog", "product_id", p.ID)
	sctx, cancel := detached(ctx)
	defer cancel()

	if s.Search != nil {
		if err := s.Search.IndexProduct(sctx, p); err != nil {
			l.Error("search_index_error", "error", err)
		}
	}
	s.publish(sctx, l, eventType, events.ProductPayload{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
	})
}

func (s *Service) publish(ctx context.Context, l *slog.Logger, eventType string, payload events.ProductPayload) {
	if s.Events == nil {
		return
	}
	key := strconv.FormatUint(uint64(payload.ProductID), 10)
	env, err := events.NewEnvelope(eventType, s.Source, key, payload)
	if err != nil {
		l.Error("event_encode_error", "event", eventType, "error", err)
		return
	}
	if err := s.Events.Publish(ctx, events.TopicProducts, key, env); err != nil {
		l.Error("event_publish_error", "event", eventType, "error", err)
	}
}

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

func mapReadErr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
	}
	return err
}

func mapWriteErr(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
