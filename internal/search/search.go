package search

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
)

type Results struct {
	Total int64            `json:"total"`
	Items []models.Product `json:"items"`
}

// Index keeps a searchable copy of the catalog.
type Index interface {
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, offset, limit int) (Results, error)
}

func sanitizeQuery(q string) string {
	return strings.TrimSpace(q)
}

// DBIndex answers searches straight from the products table. It is used
// when no Elasticsearch cluster is configured; writes are no-ops.
type DBIndex struct {
	DB *gorm.DB
}

func (DBIndex) IndexProduct(context.Context, *models.Product) error { return nil }

func (DBIndex) DeleteProduct(context.Context, uint) error { return nil }

func (d DBIndex) Search(ctx context.Context, rawQ string, offset, limit int) (Results, error) {
	q := sanitizeQuery(rawQ)
	if q == "" {
		return Results{Items: []models.Product{}}, nil
	}

	pattern := "%" + strings.ToLower(q) + "%"
	base := d.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return Results{}, err
	}

	items := make([]models.Product, 0, limit)
	if err := base.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return Results{}, err
	}
	return Results{Total: total, Items: items}, nil
}
