package commands

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
)

// ChangeOrderStatusCommandHandler drives the fulfillment state machine. It is
// the single mutating path for order status: authorization gate first, then
// the structural transition on the aggregate, with the ledger side effects
// (reservation commit, shipping decrement, cancellation release) performed in
// the same transaction as the status change. Either everything commits or
// nothing does.
//
// Batches touched by a transition are loaded under row locks in deterministic
// order, so concurrent commits racing for the same batch are linearized and
// total reservations never exceed physical stock.
type ChangeOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	gate       services.AuthorizationGate
	allocator  services.BatchAllocator
	publisher  StatusChangePublisher
	logger     *slog.Logger
}

// NewChangeOrderStatusCommandHandler creates the transition handler.
// The publisher receives committed transitions; pass NoopStatusChangePublisher
// when eventing is disabled.
func NewChangeOrderStatusCommandHandler(
	uowFactory UoWFactory,
	publisher StatusChangePublisher,
	logger *slog.Logger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		gate:       services.NewAuthorizationGate(),
		allocator:  services.NewBatchAllocator(),
		publisher:  publisher,
		logger:     logger.With("component", "change_order_status"),
	}
}

// Handle applies the requested transition and returns the updated order.
// Failures are typed: authorization, invalid transition, insufficient stock
// and lost version races each surface distinctly so the caller can react.
func (h *ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ord, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	from := ord.Status()

	if err = h.gate.Authorize(cmd.Actor(), ord, cmd.Target()); err != nil {
		return nil, err
	}

	switch cmd.Target() {
	case order.Confirmed:
		err = ord.Confirm()
	case order.Picking:
		err = ord.StartPicking()
	case order.Picked:
		err = h.commitAllocations(ctx, uow, ord, cmd.Selections())
	case order.Packed:
		err = ord.Pack()
	case order.Shipped:
		if err = ord.Ship(); err == nil {
			err = h.decrementReservations(ctx, uow, ord)
		}
	case order.Delivered:
		err = ord.Deliver()
	case order.Cancelled:
		holdsReservations := from.HoldsReservations()
		if err = ord.Cancel(); err == nil && holdsReservations {
			err = h.releaseReservations(ctx, uow, ord)
		}
	default:
		err = order.NewInvalidTransitionError(from, cmd.Target())
	}
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Update(ctx, ord); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	h.publish(ctx, ord, from, cmd)
	return ord, nil
}

// commitAllocations is the reservation commit: the only point at which batch
// selections become authoritative. The selected batches are locked, the plan
// is re-validated server-side, each batch reservation is taken, and the
// allocations are recorded on the order. A single failed reservation fails
// the whole commit; the surrounding transaction discards partial state.
func (h *ChangeOrderStatusCommandHandler) commitAllocations(
	ctx context.Context,
	uow UoW,
	ord *order.Order,
	selections []BatchSelection,
) error {
	allocations := make(map[kernel.UUID][]order.BatchAllocation)
	batchIDs := make([]kernel.UUID, 0, len(selections))
	seen := make(map[kernel.UUID]bool)
	for _, sel := range selections {
		allocations[sel.SKUID] = append(allocations[sel.SKUID], order.BatchAllocation{
			BatchID:  sel.BatchID,
			Quantity: sel.Quantity,
		})
		if !seen[sel.BatchID] {
			seen[sel.BatchID] = true
			batchIDs = append(batchIDs, sel.BatchID)
		}
	}

	batches, err := uow.BatchRepository().GetForUpdate(ctx, batchIDs)
	if err != nil {
		return err
	}
	byID := make(map[kernel.UUID]*inventory.Batch, len(batches))
	for _, b := range batches {
		byID[b.ID()] = b
	}

	if err = h.allocator.ValidatePlan(ord, byID, allocations); err != nil {
		return err
	}

	for _, sel := range selections {
		if err = byID[sel.BatchID].Reserve(sel.Quantity); err != nil {
			return err
		}
	}

	for _, b := range batches {
		if err = uow.BatchRepository().Update(ctx, b); err != nil {
			return err
		}
	}

	return ord.CompletePicking(allocations)
}

// decrementReservations converts the order's reservations into permanent
// stock decrements when the order ships.
func (h *ChangeOrderStatusCommandHandler) decrementReservations(ctx context.Context, uow UoW, ord *order.Order) error {
	return h.applyToAllocatedBatches(ctx, uow, ord, (*inventory.Batch).Decrement)
}

// releaseReservations returns the order's reserved quantities to the
// available pool when the order is cancelled before shipping.
func (h *ChangeOrderStatusCommandHandler) releaseReservations(ctx context.Context, uow UoW, ord *order.Order) error {
	return h.applyToAllocatedBatches(ctx, uow, ord, (*inventory.Batch).Release)
}

func (h *ChangeOrderStatusCommandHandler) applyToAllocatedBatches(
	ctx context.Context,
	uow UoW,
	ord *order.Order,
	apply func(*inventory.Batch, int) error,
) error {
	// Multiple items may draw on the same batch; aggregate per batch first.
	totals := make(map[kernel.UUID]int)
	batchIDs := make([]kernel.UUID, 0)
	for _, item := range ord.Items() {
		for _, alloc := range item.Allocations() {
			if _, ok := totals[alloc.BatchID]; !ok {
				batchIDs = append(batchIDs, alloc.BatchID)
			}
			totals[alloc.BatchID] += alloc.Quantity
		}
	}
	if len(batchIDs) == 0 {
		return nil
	}

	batches, err := uow.BatchRepository().GetForUpdate(ctx, batchIDs)
	if err != nil {
		return err
	}

	for _, b := range batches {
		if err = apply(b, totals[b.ID()]); err != nil {
			return err
		}
		if err = uow.BatchRepository().Update(ctx, b); err != nil {
			return err
		}
	}

	return nil
}

func (h *ChangeOrderStatusCommandHandler) publish(ctx context.Context, ord *order.Order, from order.Status, cmd ChangeOrderStatusCommand) {
	event := OrderStatusChangedEvent{
		OrderID:     ord.ID().String(),
		OrderNumber: ord.OrderNumber(),
		From:        from.String(),
		To:          ord.Status().String(),
		ActorID:     cmd.Actor().ID().String(),
		OccurredAt:  time.Now().UTC(),
	}

	if err := h.publisher.PublishStatusChanged(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "Failed to publish order status change",
			"order", ord.OrderNumber(), "error", err)
	}
}
