package commands

import (
	"context"
	"time"
)

// OrderStatusChangedEvent is emitted after a status transition commits.
type OrderStatusChangedEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ActorID     string    `json:"actor_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// StatusChangePublisher publishes committed status transitions to interested
// consumers. Publishing is best-effort: failures are logged by the handler
// and never fail or roll back the transition itself.
type StatusChangePublisher interface {
	PublishStatusChanged(ctx context.Context, event OrderStatusChangedEvent) error
}

// NoopStatusChangePublisher discards events. Used when no broker is configured.
type NoopStatusChangePublisher struct{}

func (NoopStatusChangePublisher) PublishStatusChanged(context.Context, OrderStatusChangedEvent) error {
	return nil
}
