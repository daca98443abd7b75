package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/cart"
	"github.com/lvcu04/fashion_shop/internal/inventory"
	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/pkg/events"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

const publishTimeout = 5 * time.Second

// Engine places orders and moves them through the status table. Every
// operation is one gorm transaction; the cart and the inventory ledger are
// bound to that transaction so they commit or roll back with the order.
type Engine struct {
	DB     *gorm.DB
	Events events.Publisher
	Source string
}

func NewEngine(db *gorm.DB, pub events.Publisher, source string) *Engine {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Engine{DB: db, Events: pub, Source: source}
}

func (e *Engine) CreateFromCart(ctx context.Context, userID uint, address string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_from_cart", "user_id", userID)

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, e.fail(l, fmt.Errorf("%w: address required", ErrValidation))
	}

	var created *models.Order
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		carts := cart.GormRepo{DB: tx}

		lines, err := carts.Lines(ctx, userID)
		if errors.Is(err, cart.ErrMissingProduct) {
			return fmt.Errorf("%w: %v", ErrProductNotFound, err)
		}
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		o, err := place(ctx, tx, userID, address, lines)
		if err != nil {
			return err
		}
		// A concurrent checkout of the same cart empties it first; the loser
		// deletes fewer rows than it read and rolls back its reservations.
		n, err := carts.Clear(ctx, userID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if n != int64(len(lines)) {
			return fmt.Errorf("%w: cart changed during checkout", ErrConflict)
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, e.fail(l, err)
	}

	l.Info("order_created", "order_id", created.ID, "total_price", created.TotalPrice, "items", len(created.Items))
	e.publishCreated(ctx, created)
	return created, nil
}

func (e *Engine) CreateSingle(ctx context.Context, userID, productID uint, quantity int, address string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create_single", "user_id", userID, "product_id", productID)

	address = strings.TrimSpace(address)
	switch {
	case productID == 0:
		return nil, e.fail(l, fmt.Errorf("%w: product_id required", ErrValidation))
	case quantity < 1:
		return nil, e.fail(l, fmt.Errorf("%w: quantity must be >= 1", ErrValidation))
	case address == "":
		return nil, e.fail(l, fmt.Errorf("%w: address required", ErrValidation))
	}

	var created *models.Order
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		err := tx.Select("id", "price").First(&p, productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
		}
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}

		o, err := place(ctx, tx, userID, address, []cart.Line{{ProductID: p.ID, Quantity: quantity, UnitPrice: p.Price}})
		if err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, e.fail(l, err)
	}

	l.Info("order_created", "order_id", created.ID, "total_price", created.TotalPrice)
	e.publishCreated(ctx, created)
	return created, nil
}

// place reserves every line and writes the order with its items. Prices and
// the total come from lines only; nothing is re-read from the catalog.
func place(ctx context.Context, tx *gorm.DB, userID uint, address string, lines []cart.Line) (*models.Order, error) {
	ledger := inventory.GormLedger{DB: tx}

	var total int64
	items := make([]models.OrderItem, 0, len(lines))
	for _, ln := range lines {
		if err := ledger.Reserve(ctx, ln.ProductID, ln.Quantity); err != nil {
			return nil, err
		}
		total += int64(ln.Quantity) * ln.UnitPrice
		items = append(items, models.OrderItem{
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			Price:     ln.UnitPrice,
		})
	}

	o := &models.Order{
		UserID:     userID,
		Address:    address,
		Status:     string(StatusPending),
		TotalPrice: total,
		Items:      items,
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

// TransitionStatus applies one edge of the status table. The write is
// conditioned on the status that was read, and entering cancelled or
// returned from any other status releases every item in the same
// transaction, so stock is given back exactly once.
func (e *Engine) TransitionStatus(ctx context.Context, orderID uint, newStatus string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.transition_status", "order_id", orderID, "to", newStatus)

	to, err := ParseStatus(newStatus)
	if err != nil {
		return nil, e.fail(l, err)
	}

	var (
		o         models.Order
		from      Status
		restocked bool
	)
	err = e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Items").First(&o, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		from = Status(o.Status)
		if !CanTransition(from, to) {
			return &InvalidTransitionError{From: from, To: to}
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", o.ID, string(from)).
			Update("status", string(to))
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: order %d changed concurrently", ErrConflict, o.ID)
		}

		if restocks(from, to) {
			ledger := inventory.GormLedger{DB: tx}
			for _, it := range o.Items {
				err := ledger.Release(ctx, it.ProductID, it.Quantity)
				if errors.Is(err, inventory.ErrProductNotFound) {
					l.Warn("restock_skipped", "product_id", it.ProductID, "reason", "product deleted")
					continue
				}
				if err != nil {
					return fmt.Errorf("release product %d: %w", it.ProductID, err)
				}
			}
			restocked = true
		}

		o.Status = string(to)
		o.UpdatedAt = tx.NowFunc()
		return nil
	})
	if err != nil {
		return nil, e.fail(l, err)
	}

	l.Info("order_status_changed", "from", from, "restocked", restocked)
	e.publish(ctx, l, events.OrderStatusChanged, o.ID, events.OrderStatusChangedPayload{
		OrderID:   o.ID,
		From:      string(from),
		To:        string(to),
		Restocked: restocked,
	})
	return &o, nil
}

// fail logs and classifies an error. Anything outside the domain set is
// wrapped with ErrInternal.
func (e *Engine) fail(l *slog.Logger, err error) error {
	if isDomain(err) {
		l.Warn("order_rejected", "reason", err.Error())
		return err
	}
	l.Error("order_internal_error", "error", err)
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func (e *Engine) publishCreated(ctx context.Context, o *models.Order) {
	lines := make([]events.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, events.OrderLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	l := logging.FromContext(ctx).With("order_id", o.ID)
	e.publish(ctx, l, events.OrderCreated, o.ID, events.OrderCreatedPayload{
		OrderID:    o.ID,
		UserID:     o.UserID,
		TotalPrice: o.TotalPrice,
		Items:      lines,
	})
}

// publish runs after commit; a broker failure is logged and never undoes
// the order.
func (e *Engine) publish(ctx context.Context, l *slog.Logger, eventType string, orderID uint, payload any) {
	if e.Events == nil {
		return
	}
	key := strconv.FormatUint(uint64(orderID), 10)
	env, err := events.NewEnvelope(eventType, e.Source, key, payload)
	if err != nil {
		l.Error("event_encode_error", "event", eventType, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := e.Events.Publish(pubCtx, events.TopicOrders, key, env); err != nil {
		l.Error("event_publish_error", "event", eventType, "error", err)
	}
}
