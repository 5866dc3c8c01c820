package commands

import (
	"context"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// CreateOrderCommandHandler handles the business logic for order creation:
// assigning the order number, building the aggregate in Pending status and
// persisting it transactionally. Item validation (positive quantities, SKU
// uniqueness) lives in the aggregate; the handler surfaces those failures
// as-is.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
}

// NewCreateOrderCommandHandler creates a handler for order creation operations.
// Requires an OrderUoWFactory for transactional persistence.
func NewCreateOrderCommandHandler(uowFactory OrderUoWFactory) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the order creation command and returns the created order.
// When the command carries an expected total, it is checked against the
// derived Σ(quantity × unit price) before anything is persisted.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(cmd.Items()))
	for _, input := range cmd.Items() {
		item, err := order.NewItem(kernel.NewUUID(), input.SKUID, input.Quantity, input.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	now := time.Now().UTC()
	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		order.NewOrderNumber(now),
		cmd.CustomerID(),
		cmd.WarehouseID(),
		cmd.CreatedBy(),
		cmd.ShippingAddress(),
		now,
		items,
	)
	if err != nil {
		return nil, err
	}

	if expected := cmd.ExpectedTotal(); expected != nil && !newOrder.TotalAmount().IsEqual(*expected) {
		return nil, errs.NewValueIsInvalidErrorWithCause("total amount",
			fmt.Errorf("stated total %s does not match computed total %s",
				expected.String(), newOrder.TotalAmount().String()))
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return newOrder, nil
}
