package order

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/testutil"
)

// Not parallel: goleak compares against the goroutines alive at start.
func TestCreateSingle_RaceForLastUnit(t *testing.T) {
	e := newEnv(t)
	other := testutil.SeedUser(t, e.db, "rival@shop.test", models.RoleUser)
	p := testutil.SeedProduct(t, e.db, "last one", 500, 1)

	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, 2)
	)
	for i, uid := range []uint{e.user.ID, other.ID} {
		wg.Add(1)
		go func(i int, uid uint) {
			defer wg.Done()
			<-start
			_, errs[i] = e.engine.CreateSingle(context.Background(), uid, p.ID, 1, "addr")
		}(i, uid)
	}
	close(start)
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrInsufficientStock):
			short++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, testutil.Stock(t, e.db, p.ID))
	assert.EqualValues(t, 1, e.countOrders(t))
}

func TestCreateSingle_ManyBuyersNeverOversell(t *testing.T) {
	e := newEnv(t)
	const stock, buyers = 5, 12
	p := testutil.SeedProduct(t, e.db, "drop", 1000, stock)

	users := make([]*models.User, buyers)
	for i := range users {
		users[i] = testutil.SeedUser(t, e.db, fmt.Sprintf("b%d@shop.test", i), models.RoleUser)
	}

	var (
		mu sync.Mutex
		ok int
		wg sync.WaitGroup
	)
	for _, u := range users {
		wg.Add(1)
		go func(uid uint) {
			defer wg.Done()
			_, err := e.engine.CreateSingle(context.Background(), uid, p.ID, 1, "addr")
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}(u.ID)
	}
	wg.Wait()

	assert.Equal(t, stock, ok)
	assert.Equal(t, 0, testutil.Stock(t, e.db, p.ID))
}

// TestStockLedgerInvariant drives a seeded random mix of operations and
// checks stock == initial - reserved + released after each step.
func TestStockLedgerInvariant(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	initial := map[uint]int{}
	reserved := map[uint]int{}
	released := map[uint]int{}
	var products []*models.Product
	for i := 0; i < 3; i++ {
		p := testutil.SeedProduct(t, e.db, fmt.Sprintf("p%d", i), int64(100*(i+1)), 6)
		products = append(products, p)
		initial[p.ID] = p.Stock
	}

	var live []*models.Order
	targets := []string{"processing", "shipped", "delivered", "completed", "cancelled", "returned"}

	for step := 0; step < 120; step++ {
		switch rng.Intn(3) {
		case 0:
			p := products[rng.Intn(len(products))]
			q := rng.Intn(3) + 1
			o, err := e.engine.CreateSingle(ctx, e.user.ID, p.ID, q, "addr")
			if err == nil {
				reserved[p.ID] += q
				live = append(live, o)
			} else {
				require.ErrorIs(t, err, ErrInsufficientStock)
			}
		case 1:
			for _, p := range products {
				if rng.Intn(2) == 0 {
					testutil.SeedCartItem(t, e.db, e.user.ID, p.ID, rng.Intn(2)+1)
				}
			}
			lines := map[uint]int{}
			var items []models.CartItem
			require.NoError(t, e.db.Where("user_id = ?", e.user.ID).Find(&items).Error)
			for _, it := range items {
				lines[it.ProductID] = it.Quantity
			}
			o, err := e.engine.CreateFromCart(ctx, e.user.ID, "addr")
			switch {
			case err == nil:
				for pid, q := range lines {
					reserved[pid] += q
				}
				live = append(live, o)
			case len(lines) == 0:
				require.ErrorIs(t, err, ErrEmptyCart)
			default:
				require.ErrorIs(t, err, ErrInsufficientStock)
				require.NoError(t, e.db.Where("user_id = ?", e.user.ID).Delete(&models.CartItem{}).Error)
			}
		case 2:
			if len(live) == 0 {
				continue
			}
			o := live[rng.Intn(len(live))]
			before, err := e.engine.GetForAdmin(ctx, o.ID)
			require.NoError(t, err)
			to := targets[rng.Intn(len(targets))]
			_, err = e.engine.TransitionStatus(ctx, o.ID, to)
			if err != nil {
				require.ErrorIs(t, err, ErrInvalidTransition)
				continue
			}
			if restocks(Status(before.Status), Status(to)) {
				for _, it := range before.Items {
					released[it.ProductID] += it.Quantity
				}
			}
		}

		for _, p := range products {
			got := testutil.Stock(t, e.db, p.ID)
			require.GreaterOrEqual(t, got, 0)
			require.Equal(t, initial[p.ID]-reserved[p.ID]+released[p.ID], got, "step %d product %d", step, p.ID)
		}
	}
}
