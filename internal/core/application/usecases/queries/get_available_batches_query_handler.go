package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchCandidate is one pickable batch in FEFO order.
type BatchCandidate struct {
	BatchID     kernel.UUID
	BatchNumber string
	ExpiryDate  time.Time
	Available   int
	Location    string
}

// ItemCandidates pairs an order item with its FEFO-ordered candidate batches.
// The first candidate is the suggested pick; any candidate with sufficient
// availability is acceptable.
type ItemCandidates struct {
	SKUID      kernel.UUID
	Required   int
	Candidates []BatchCandidate
}

// GetAvailableBatchesQueryHandler produces the allocation proposal for an
// order: per item, the batches of the order's warehouse holding that SKU with
// stock available, ranked by the domain allocator so the query path and the
// commit path share one definition of FEFO.
type GetAvailableBatchesQueryHandler struct {
	db        *gorm.DB
	allocator services.BatchAllocator
}

// NewGetAvailableBatchesQueryHandler creates a handler for candidate batch queries.
func NewGetAvailableBatchesQueryHandler(db *gorm.DB) GetAvailableBatchesQueryHandler {
	return GetAvailableBatchesQueryHandler{
		db:        db,
		allocator: services.NewBatchAllocator(),
	}
}

// Handle returns candidates for every item of the order, in item order.
// Items with no available stock get an empty candidate list rather than an
// error; the caller decides whether that blocks picking.
func (h GetAvailableBatchesQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableBatchesQuery,
) ([]ItemCandidates, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var warehouseID uuid.UUID
	row := h.db.WithContext(ctx).Raw(
		`SELECT warehouse_id FROM orders WHERE id = ?`,
		query.OrderID().Bytes(),
	).Row()
	if err := row.Scan(&warehouseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return nil, err
	}

	type itemRow struct {
		skuID    uuid.UUID
		quantity int
	}
	itemRows := make([]itemRow, 0)

	rows, err := h.db.WithContext(ctx).Raw(
		`SELECT sku_id, quantity FROM order_items WHERE order_id = ? ORDER BY position`,
		query.OrderID().Bytes(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ir itemRow
		if err = rows.Scan(&ir.skuID, &ir.quantity); err != nil {
			return nil, err
		}
		itemRows = append(itemRows, ir)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	result := make([]ItemCandidates, 0, len(itemRows))
	for _, ir := range itemRows {
		skuID, idErr := kernel.UUIDFromBytes(ir.skuID[:])
		if idErr != nil {
			return nil, idErr
		}

		batches, batchErr := h.loadBatches(ctx, warehouseID, ir.skuID)
		if batchErr != nil {
			return nil, batchErr
		}

		ranked := h.allocator.ProposeAllocation(batches)
		candidates := make([]BatchCandidate, 0, len(ranked))
		for _, b := range ranked {
			candidates = append(candidates, BatchCandidate{
				BatchID:     b.ID(),
				BatchNumber: b.BatchNumber(),
				ExpiryDate:  b.ExpiryDate(),
				Available:   b.Available(),
				Location:    b.Location(),
			})
		}

		result = append(result, ItemCandidates{
			SKUID:      skuID,
			Required:   ir.quantity,
			Candidates: candidates,
		})
	}

	return result, nil
}

func (h GetAvailableBatchesQueryHandler) loadBatches(
	ctx context.Context,
	warehouseID uuid.UUID,
	skuID uuid.UUID,
) ([]*inventory.Batch, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			sku_id,
			warehouse_id,
			batch_number,
			expiry_date,
			current_quantity,
			reserved,
			location
		FROM batches
		WHERE warehouse_id = ? AND sku_id = ?
	`, warehouseID, skuID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := make([]*inventory.Batch, 0)
	for rows.Next() {
		var (
			id              uuid.UUID
			rowSKU          uuid.UUID
			rowWarehouse    uuid.UUID
			batchNumber     string
			expiryDate      time.Time
			currentQuantity int
			reserved        int
			location        string
		)

		if err = rows.Scan(&id, &rowSKU, &rowWarehouse, &batchNumber, &expiryDate,
			&currentQuantity, &reserved, &location); err != nil {
			return nil, err
		}

		batchID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		batchSKU, idErr := kernel.UUIDFromBytes(rowSKU[:])
		if idErr != nil {
			return nil, idErr
		}
		batchWarehouse, idErr := kernel.UUIDFromBytes(rowWarehouse[:])
		if idErr != nil {
			return nil, idErr
		}

		batch, restoreErr := inventory.RestoreBatch(
			batchID, batchSKU, batchWarehouse, batchNumber, expiryDate,
			currentQuantity, reserved, location,
		)
		if restoreErr != nil {
			return nil, restoreErr
		}
		batches = append(batches, batch)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return batches, nil
}
