package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate. Fails if the order number is
	// already taken.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate using the
	// aggregate's version for optimistic concurrency: if another transaction
	// committed first, the update fails with a version error and the caller
	// must re-read before retrying.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier, including
	// its items and any committed batch allocations.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
