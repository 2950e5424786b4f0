package kafka

import (
	"context"
	"encoding/json"
	"time"

	"ms-topup/internal/models"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

type statusChangeEvent struct {
	OrderID   string    `json:"order_id"`
	UserEmail string    `json:"user_email"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishStatusChange mirrors an order status change onto the event
// topic, keyed by order ID so per-order events stay in partition order.
func (p *Producer) PublishStatusChange(order models.Order, status string) error {
	msgBytes, err := json.Marshal(statusChangeEvent{
		OrderID:   order.OrderID,
		UserEmail: order.UserEmail,
		Status:    status,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(order.OrderID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
