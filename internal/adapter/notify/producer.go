package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/artmarket/settlement/internal/domain/model"
)

// OrderSettledEvent is the message published for the notification pipeline
// (email/push consumers live outside this service).
type OrderSettledEvent struct {
	OrderNumber   string    `json:"order_number"`
	UserID        int64     `json:"user_id"`
	PaymentStatus string    `json:"payment_status"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	SaleTxIDs     []string  `json:"sale_tx_ids"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Producer publishes settlement notifications. Delivery is fire-and-forget:
// a publish failure is logged and never surfaces to the settlement caller.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewProducer creates a kafka-backed notification producer.
func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &Producer{writer: writer, logger: logger}
}

// OrderSettled publishes the settlement notification for an order.
func (p *Producer) OrderSettled(ctx context.Context, order *model.Order, result *model.SettlementResult) {
	event := OrderSettledEvent{
		OrderNumber:   order.Number,
		UserID:        order.UserID,
		PaymentStatus: string(result.PaymentStatus),
		Total:         order.Total.StringFixed(2),
		Currency:      order.Currency,
		SaleTxIDs:     result.SaleTxIDs,
		OccurredAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal settlement notification", slog.String("error", err.Error()))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.Number),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		p.logger.Error("publish settlement notification",
			slog.String("order", order.Number),
			slog.String("error", err.Error()))
	}
}

// Close flushes and closes the kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NopNotifier is used when no brokers are configured.
type NopNotifier struct{}

func (NopNotifier) OrderSettled(context.Context, *model.Order, *model.SettlementResult) {}
