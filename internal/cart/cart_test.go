package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/testutil"
)

func TestService_AddAccumulates(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	u := testutil.SeedUser(t, db, "a@shop.test", models.RoleUser)
	p := testutil.SeedProduct(t, db, "jacket", 900000, 10)
	svc := &Service{Repo: GormRepo{DB: db}}
	ctx := context.Background()

	_, err := svc.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	item, err := svc.Add(ctx, u.ID, p.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	items, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "jacket", items[0].Product.Name)
}

func TestService_AddValidation(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	u := testutil.SeedUser(t, db, "a@shop.test", models.RoleUser)
	p := testutil.SeedProduct(t, db, "jacket", 900000, 10)
	svc := &Service{Repo: GormRepo{DB: db}}
	ctx := context.Background()

	tests := []struct {
		name      string
		productID uint
		qty       int
		want      error
	}{
		{"no product id", 0, 1, ErrValidation},
		{"zero qty", p.ID, 0, ErrValidation},
		{"negative qty", p.ID, -2, ErrValidation},
		{"unknown product", 999, 1, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, u.ID, tt.productID, tt.qty)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_RemoveOne(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	u := testutil.SeedUser(t, db, "a@shop.test", models.RoleUser)
	other := testutil.SeedUser(t, db, "b@shop.test", models.RoleUser)
	p := testutil.SeedProduct(t, db, "cap", 150000, 10)
	ci := testutil.SeedCartItem(t, db, u.ID, p.ID, 2)
	svc := &Service{Repo: GormRepo{DB: db}}
	ctx := context.Background()

	_, _, err := svc.RemoveOne(ctx, other.ID, ci.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, item, err := svc.RemoveOne(ctx, u.ID, ci.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, item.Quantity)

	deleted, _, err = svc.RemoveOne(ctx, u.ID, ci.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	items, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRepo_LinesAndClear(t *testing.T) {
	t.Parallel()

	db := testutil.NewDB(t)
	u := testutil.SeedUser(t, db, "a@shop.test", models.RoleUser)
	other := testutil.SeedUser(t, db, "b@shop.test", models.RoleUser)
	p1 := testutil.SeedProduct(t, db, "tee", 100000, 10)
	p2 := testutil.SeedProduct(t, db, "jeans", 450000, 10)
	testutil.SeedCartItem(t, db, u.ID, p2.ID, 1)
	testutil.SeedCartItem(t, db, u.ID, p1.ID, 3)
	testutil.SeedCartItem(t, db, other.ID, p1.ID, 1)
	repo := GormRepo{DB: db}
	ctx := context.Background()

	lines, err := repo.Lines(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []Line{
		{ProductID: p1.ID, Quantity: 3, UnitPrice: 100000},
		{ProductID: p2.ID, Quantity: 1, UnitPrice: 450000},
	}, lines)

	n, err := repo.Clear(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	lines, err = repo.Lines(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	lines, err = repo.Lines(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}
