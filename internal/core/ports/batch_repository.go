package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
)

// BatchRepository defines the persistence contract for stock batch aggregates.
// It is the inventory ledger's storage face: reads for allocation proposals
// are plain queries, while mutations during a reservation commit go through
// GetForUpdate so concurrent commits racing for the same batch are linearized
// by row locks.
type BatchRepository interface {
	// Add persists a batch created by stock receiving.
	Add(ctx context.Context, aggregate *inventory.Batch) error

	// Update persists quantity and reservation changes to an existing batch.
	Update(ctx context.Context, aggregate *inventory.Batch) error

	// Get retrieves a batch by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*inventory.Batch, error)

	// GetForUpdate retrieves the given batches under row locks, inside the
	// current transaction. Locks are acquired in a deterministic order
	// regardless of input order, so two commits touching overlapping batch
	// sets cannot deadlock. Fails with a not-found error if any ID does not
	// resolve.
	GetForUpdate(ctx context.Context, ids []kernel.UUID) ([]*inventory.Batch, error)

	// FindBySKU retrieves all batches of a SKU within a warehouse, ordered by
	// ascending expiry date then batch number (the FEFO candidate order).
	FindBySKU(ctx context.Context, warehouseID, skuID kernel.UUID) ([]*inventory.Batch, error)
}
