// Package notify publishes order lifecycle events for the chat frontend to
// turn into user-facing messages. Delivery failures are logged and swallowed:
// a lost notification must never unwind a committed order.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/asafonov/ecombot/internal/models"
	"github.com/asafonov/ecombot/pkg/logging"
)

const publishTimeout = 5 * time.Second

type Dispatcher struct {
	writer *kafka.Writer
}

func NewDispatcher(brokers []string, topic string) *Dispatcher {
	return &Dispatcher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

// OrderEvent is the wire payload for both placement and status changes.
type OrderEvent struct {
	EventID     string             `json:"event_id"`
	Type        string             `json:"type"`
	OrderID     uint               `json:"order_id"`
	OrderNumber string             `json:"order_number"`
	UserID      uint               `json:"user_id"`
	Status      models.OrderStatus `json:"status"`
	Total       string             `json:"total"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

func (d *Dispatcher) OrderPlaced(ctx context.Context, order *models.Order) {
	d.publish(ctx, "order_placed", order)
}

func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order *models.Order) {
	// no message is defined for pending; placement already covered it
	if order.Status == models.StatusPending {
		return
	}
	d.publish(ctx, "order_status_changed", order)
}

func (d *Dispatcher) publish(ctx context.Context, kind string, order *models.Order) {
	event := OrderEvent{
		EventID:     uuid.NewString(),
		Type:        kind,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Status:      order.Status,
		Total:       order.Total().StringFixed(2),
		OccurredAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logging.FromContext(ctx).Error("notify_marshal_failed", "order", order.OrderNumber, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := d.writer.WriteMessages(pubCtx, kafka.Message{
		Key:   []byte(order.OrderNumber),
		Value: data,
	}); err != nil {
		logging.FromContext(ctx).Warn("notify_publish_failed",
			"type", kind, "order", order.OrderNumber, "error", err)
	}
}

func (d *Dispatcher) Close() error {
	return d.writer.Close()
}
