package commands

import (
	"context"

	"fulfillment/internal/core/domain/model/inventory"
)

// ReceiveBatchCommandHandler records received stock batches in the ledger.
type ReceiveBatchCommandHandler struct {
	uowFactory BatchUoWFactory
}

// NewReceiveBatchCommandHandler creates a handler for stock receiving.
func NewReceiveBatchCommandHandler(uowFactory BatchUoWFactory) ReceiveBatchCommandHandler {
	return ReceiveBatchCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle creates the batch record and returns it.
func (h *ReceiveBatchCommandHandler) Handle(ctx context.Context, cmd ReceiveBatchCommand) (*inventory.Batch, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	batch, err := inventory.NewBatch(
		cmd.BatchID(),
		cmd.SKUID(),
		cmd.WarehouseID(),
		cmd.BatchNumber(),
		cmd.ExpiryDate(),
		cmd.Quantity(),
		cmd.Location(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.BatchRepository().Add(ctx, batch); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return batch, nil
}
