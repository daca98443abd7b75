package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
	"gorm.io/gorm"

	"github.com/lvcu04/fashion_shop/internal/models"
	"github.com/lvcu04/fashion_shop/internal/order"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

// VND has no minor unit, so order totals are sent to Stripe as is.
const Currency = "vnd"

var (
	ErrValidation       = errors.New("validation")
	ErrNotConfigured    = errors.New("payments not configured")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrProvider         = errors.New("payment provider error")

	// errUnmatched marks events that can never be applied; they are
	// acknowledged so Stripe stops redelivering.
	errUnmatched = errors.New("payment intent matches no order")
)

// IntentCreator is the slice of the Stripe API used here.
type IntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripeIntents(secretKey string) IntentCreator {
	return &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
}

type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
}

type Service struct {
	DB            *gorm.DB
	Orders        *order.Engine
	Intents       IntentCreator
	WebhookSecret string
}

// CreateIntent opens a PaymentIntent for one of the caller's pending orders
// and remembers its id on the order.
func (s *Service) CreateIntent(ctx context.Context, userID, orderID uint) (*Intent, error) {
	l := logging.FromContext(ctx).With("svc", "payment.create_intent", "order_id", orderID)
	if s.Intents == nil {
		return nil, ErrNotConfigured
	}

	o, err := s.Orders.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != string(order.StatusPending) {
		return nil, fmt.Errorf("%w: order is %s, not awaiting payment", ErrValidation, o.Status)
	}
	if o.TotalPrice <= 0 {
		return nil, fmt.Errorf("%w: order total must be positive", ErrValidation)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(o.TotalPrice),
		Currency: stripe.String(Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", strconv.FormatUint(uint64(o.ID), 10))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(userID), 10))

	pi, err := s.Intents.New(params)
	if err != nil {
		l.Error("stripe_intent_error", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}

	err = s.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", o.ID).
		Update("payment_intent_id", pi.ID).Error
	if err != nil {
		return nil, err
	}

	l.Info("payment_intent_created", "payment_intent_id", pi.ID, "amount", o.TotalPrice)
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: o.TotalPrice, Currency: Currency}, nil
}

// HandleWebhook verifies a Stripe event and moves paid orders to
// processing. Events that need no retry return nil.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	l := logging.FromContext(ctx).With("svc", "payment.webhook")
	if s.WebhookSecret == "" {
		return ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	l = l.With("event_id", event.ID, "event_type", string(event.Type))

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return fmt.Errorf("%w: payment intent payload: %v", ErrValidation, err)
		}
		return s.markPaid(ctx, &pi)
	case stripe.EventTypePaymentIntentPaymentFailed:
		l.Warn("payment_failed", "payment_intent_id", event.GetObjectValue("id"))
	default:
		l.Info("webhook_ignored")
	}
	return nil
}

func (s *Service) markPaid(ctx context.Context, pi *stripe.PaymentIntent) error {
	l := logging.FromContext(ctx).With("svc", "payment.webhook", "payment_intent_id", pi.ID)

	orderID, err := s.orderFor(ctx, pi)
	if errors.Is(err, errUnmatched) {
		l.Warn("payment_unmatched", "reason", err.Error())
		return nil
	}
	if err != nil {
		l.Error("payment_lookup_error", "error", err)
		return err
	}

	_, err = s.Orders.TransitionStatus(ctx, orderID, string(order.StatusProcessing))
	switch {
	case err == nil:
		l.Info("order_paid", "order_id", orderID)
		return nil
	case errors.Is(err, order.ErrInvalidTransition), errors.Is(err, order.ErrOrderNotFound):
		l.Info("payment_already_applied", "order_id", orderID, "reason", err.Error())
		return nil
	default:
		return err
	}
}

// orderFor prefers the order_id metadata and falls back to the stored
// payment intent id.
func (s *Service) orderFor(ctx context.Context, pi *stripe.PaymentIntent) (uint, error) {
	if raw := pi.Metadata["order_id"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return 0, fmt.Errorf("%w: bad order_id metadata %q", errUnmatched, raw)
		}
		return uint(id), nil
	}

	var o models.Order
	err := s.DB.WithContext(ctx).Select("id").Where("payment_intent_id = ?", pi.ID).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("%w: no order has payment intent %s", errUnmatched, pi.ID)
	}
	if err != nil {
		return 0, fmt.Errorf("find order by payment intent: %w", err)
	}
	return o.ID, nil
}
