package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TopicOrders   = "orders"
	TopicProducts = "products"
)

const (
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
	ProductCreated     = "product_created"
	ProductUpdated     = "product_updated"
	ProductDeleted     = "product_deleted"
	ProductRestocked   = "product_restocked"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("events: marshal payload: %w", err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

type OrderLine struct {
	ProductID uint  `json:"product_id"`
	Quantity  int   `json:"quantity"`
	Price     int64 `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID    uint        `json:"order_id"`
	UserID     uint        `json:"user_id"`
	TotalPrice int64       `json:"total_price"`
	Items      []OrderLine `json:"items"`
}

type OrderStatusChangedPayload struct {
	OrderID   uint   `json:"order_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Restocked bool   `json:"restocked"`
}

type ProductPayload struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Price     int64  `json:"price,omitempty"`
	Stock     int    `json:"stock,omitempty"`
}
