package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/order"
	"github.com/lvcu04/fashion_shop/internal/testutil"
	"github.com/lvcu04/fashion_shop/pkg/events"
)

func TestCreate_RequiresCompletedOrder(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, db, "r@shop.test", models.RoleUser)
	p := testutil.SeedProduct(t, db, "dress", 500000, 5)
	engine := order.NewEngine(db, events.Nop{}, "test")
	svc := &Service{DB: db}

	_, err := svc.Create(ctx, u.ID, p.ID, 5, "lovely")
	assert.ErrorIs(t, err, ErrNotPurchased)
	assert.ErrorIs(t, err, ErrValidation)

	o, err := engine.CreateSingle(ctx, u.ID, p.ID, 1, "addr")
	require.NoError(t, err)
	_, err = svc.Create(ctx, u.ID, p.ID, 5, "lovely")
	assert.ErrorIs(t, err, ErrNotPurchased, "pending orders do not count")

	for _, st := range []string{"processing", "shipped", "delivered", "completed"} {
		_, err = engine.TransitionStatus(ctx, o.ID, st)
		require.NoError(t, err)
	}

	r, err := svc.Create(ctx, u.ID, p.ID, 4, "  lovely  ")
	require.NoError(t, err)
	assert.Equal(t, "lovely", r.Comment)

	_, err = svc.Create(ctx, u.ID, p.ID, 5, "again")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	u := testutil.SeedUser(t, db, "r@shop.test", models.RoleUser)
	p := testutil.SeedProduct(t, db, "dress", 500000, 5)
	svc := &Service{DB: db}

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), u.ID, p.ID, rating, "")
		assert.ErrorIs(t, err, ErrValidation, rating)
	}
	_, err := svc.Create(context.Background(), u.ID, 999, 3, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndStats(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()
	p := testutil.SeedProduct(t, db, "dress", 500000, 5)
	a := testutil.SeedUser(t, db, "a@shop.test", models.RoleUser)
	b := testutil.SeedUser(t, db, "b@shop.test", models.RoleUser)
	require.NoError(t, db.Create(&models.Review{UserID: a.ID, ProductID: p.ID, Rating: 5}).Error)
	require.NoError(t, db.Create(&models.Review{UserID: b.ID, ProductID: p.ID, Rating: 2}).Error)
	svc := &Service{DB: db}

	list, err := svc.ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].UserID)
	require.NotNil(t, list[0].User)
	assert.Equal(t, "b@shop.test", list[0].User.Name)
	assert.Empty(t, list[0].User.PasswordHash)

	st, err := svc.Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.TotalReviews)
	assert.InDelta(t, 3.5, st.AverageRating, 0.001)

	st, err = svc.Stats(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, st.TotalReviews)
	assert.Zero(t, st.AverageRating)
}
