// Package kafka publishes order status change events to a Kafka topic.
// Events are keyed by order ID so all transitions of one order land on the
// same partition and consumers see them in order.
package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"fulfillment/internal/core/application/usecases/commands"

	"github.com/segmentio/kafka-go"
)

// OrderStatusPublisher implements commands.StatusChangePublisher on top of a
// kafka-go Writer.
type OrderStatusPublisher struct {
	writer *kafka.Writer
}

// NewOrderStatusPublisher creates a publisher writing to the given topic on
// the given brokers. brokersCSV is a comma-separated broker list.
func NewOrderStatusPublisher(brokersCSV, topic string) *OrderStatusPublisher {
	brokers := make([]string, 0)
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}

	return &OrderStatusPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// PublishStatusChanged writes the event as JSON, keyed by order ID.
func (p *OrderStatusPublisher) PublishStatusChanged(ctx context.Context, event commands.OrderStatusChangedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

// Close flushes and closes the underlying writer.
func (p *OrderStatusPublisher) Close() error {
	return p.writer.Close()
}
