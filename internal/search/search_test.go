package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/testutil"
)

type fakeES struct {
	mu    sync.Mutex
	calls []string
	docs  map[string]json.RawMessage
	hits  string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		f.mu.Lock()
		hits := f.hits
		f.mu.Unlock()
		if hits == "" {
			hits = `{"hits":{"total":{"value":1},"hits":[{"_source":{"id":7,"name":"linen shirt","price":350000}}]}}`
		}
		_, _ = io.WriteString(w, hits)
	case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/_doc/"):
		f.mu.Lock()
		f.docs[r.URL.Path] = body
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	default:
		_, _ = io.WriteString(w, `{}`)
	}
}

func newFakeIndex(t *testing.T) (*ESIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{docs: map[string]json.RawMessage{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &ESIndex{Client: client, Index: "products"}, fake
}

func TestESIndex_IndexAndDelete(t *testing.T) {
	t.Parallel()
	idx, fake := newFakeIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexProduct(ctx, &models.Product{ID: 7, Name: "linen shirt", Price: 350000}))
	require.NoError(t, idx.DeleteProduct(ctx, 8), "missing documents are not an error")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	raw, ok := fake.docs["/products/_doc/7"]
	require.True(t, ok, "calls: %v", fake.calls)
	var doc document
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "linen shirt", doc.Name)
	assert.EqualValues(t, 350000, doc.Price)
}

func TestESIndex_Search(t *testing.T) {
	t.Parallel()
	idx, _ := newFakeIndex(t)

	res, err := idx.Search(context.Background(), " linen ", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, uint(7), res.Items[0].ID)

	res, err = idx.Search(context.Background(), "   ", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Items)
}

func TestDBIndex_Search(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	testutil.SeedProduct(t, db, "Linen Shirt", 350000, 3)
	testutil.SeedProduct(t, db, "Wool Coat", 1900000, 1)
	testutil.SeedProduct(t, db, "linen trousers", 420000, 2)
	idx := DBIndex{DB: db}

	res, err := idx.Search(context.Background(), "LINEN", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	assert.Len(t, res.Items, 2)

	res, err = idx.Search(context.Background(), "linen", 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "linen trousers", res.Items[0].Name)
}

func TestESIndex_SearchReadsLiveRows(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	coat := testutil.SeedProduct(t, db, "wool coat", 1900000, 5)
	scarf := testutil.SeedProduct(t, db, "wool scarf", 200000, 2)

	idx, fake := newFakeIndex(t)
	idx.DB = db
	fake.mu.Lock()
	fake.hits = fmt.Sprintf(`{"hits":{"total":{"value":3},"hits":[`+
		`{"_source":{"id":%d,"name":"wool scarf","price":1}},`+
		`{"_source":{"id":999,"name":"wool hat","price":1}},`+
		`{"_source":{"id":%d,"name":"wool coat","price":1}}]}}`, scarf.ID, coat.ID)
	fake.mu.Unlock()

	// a checkout after indexing
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", coat.ID).Update("stock", 1).Error)

	res, err := idx.Search(context.Background(), "wool", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, scarf.ID, res.Items[0].ID)
	assert.Equal(t, 2, res.Items[0].Stock)
	assert.EqualValues(t, 200000, res.Items[0].Price)
	assert.Equal(t, coat.ID, res.Items[1].ID)
	assert.Equal(t, 1, res.Items[1].Stock)
}

func TestESIndex_DocumentOmitsStock(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(toDocument(&models.Product{ID: 1, Name: "tee", Stock: 9}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "stock")
}
