package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lvcu04/fashion_shop/internal/payment"
	"github.com/lvcu04/fashion_shop/internal/transport"
	"github.com/lvcu04/fashion_shop/pkg/logging"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBody        = 65536
)

type PaymentHTTP struct {
	Svc *payment.Service
}

func (h *PaymentHTTP) CreateIntent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create_intent")

	uid, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.CreatePaymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_payment_intent", "invalid body", err)
	}

	in, err := h.Svc.CreateIntent(ctx, uid, req.OrderID)
	if err != nil {
		return fail(l, "create_payment_intent", err)
	}

	l.Info("create_payment_intent_success", "order_id", req.OrderID, "payment_intent_id", in.ID)
	return c.JSON(http.StatusOK, transport.PaymentIntentResponse{
		ClientSecret:    in.ClientSecret,
		PaymentIntentID: in.ID,
		Amount:          in.Amount,
		Currency:        in.Currency,
	})
}

// Webhook needs the untouched body for signature verification.
func (h *PaymentHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.webhook")

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(l, "webhook", "cannot read body", err)
	}

	if err := h.Svc.HandleWebhook(ctx, payload, c.Request().Header.Get(stripeSignatureHeader)); err != nil {
		return fail(l, "webhook", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
