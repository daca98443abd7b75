package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
)

// document carries no stock; checkout moves stock without reindexing, so
// hits take it from the database.
type document struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
	CategoryID  *uint  `json:"category_id,omitempty"`
}

func toDocument(p *models.Product) document {
	return document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
	}
}

func (d document) product() models.Product {
	return models.Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		ImageURL:    d.ImageURL,
		CategoryID:  d.CategoryID,
	}
}

type ESConfig struct {
	URL      string
	User     string
	Password string
}

// NewClient builds a client and verifies the cluster answers.
func NewClient(cfg ESConfig, l *slog.Logger) (*elasticsearch.Client, error) {
	l.Info("es_connect", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("es client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("es info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type ESIndex struct {
	Client *elasticsearch.Client
	Index  string
	// DB supplies live rows for search hits. When nil, hits are returned as
	// indexed, without stock.
	DB *gorm.DB
}

func (s *ESIndex) IndexProduct(ctx context.Context, p *models.Product) error {
	body, err := json.Marshal(toDocument(p))
	if err != nil {
		return err
	}

	res, err := s.Client.Index(
		s.Index,
		bytes.NewReader(body),
		s.Client.Index.WithContext(ctx),
		s.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es index product %d: %s", p.ID, res.Status())
	}
	return nil
}

func (s *ESIndex) DeleteProduct(ctx context.Context, id uint) error {
	res, err := s.Client.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete product %d: %s", id, res.Status())
	}
	return nil
}

func (s *ESIndex) Search(ctx context.Context, rawQ string, offset, limit int) (Results, error) {
	q := sanitizeQuery(rawQ)
	if q == "" {
		return Results{Items: []models.Product{}}, nil
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": offset,
		"size": limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Results{}, err
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.Index),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return Results{}, fmt.Errorf("es search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return Results{}, fmt.Errorf("es search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Results{}, fmt.Errorf("es search decode: %w", err)
	}

	items := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		items = append(items, hit.Source.product())
	}
	if s.DB != nil {
		if items, err = s.live(ctx, items); err != nil {
			return Results{}, err
		}
	}
	return Results{Total: r.Hits.Total.Value, Items: items}, nil
}

// live replaces hits with current rows, keeping the relevance order and
// dropping products deleted since they were indexed.
func (s *ESIndex) live(ctx context.Context, hits []models.Product) ([]models.Product, error) {
	if len(hits) == 0 {
		return hits, nil
	}
	ids := make([]uint, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}

	var rows []models.Product
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load search hits: %w", err)
	}
	byID := make(map[uint]models.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}

	out := make([]models.Product, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
