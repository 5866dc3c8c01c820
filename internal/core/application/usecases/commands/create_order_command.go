package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
)

// ItemInput is one requested order line: a SKU reference, a positive
// quantity and a non-negative unit price. Deep validation (positive quantity,
// SKU uniqueness) happens in the order aggregate.
type ItemInput struct {
	SKUID     kernel.UUID
	Quantity  int
	UnitPrice kernel.Money
}

// CreateOrderCommand represents a request to create a new sales order in
// Pending status, bound to one customer and one warehouse.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customerID, warehouseID,
//	    actorID, "12 Harbor Rd", items, nil)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	created, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID         kernel.UUID
	customerID      kernel.UUID
	warehouseID     kernel.UUID
	createdBy       kernel.UUID
	shippingAddress string
	items           []ItemInput

	// expectedTotal, when supplied by the caller, must equal the derived
	// Σ(quantity × unit price); a mismatch is a validation error.
	expectedTotal *kernel.Money

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new sales order.
// All reference IDs must be valid, the shipping address must be non-empty
// and at least one item is required. expectedTotal is optional.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	warehouseID kernel.UUID,
	createdBy kernel.UUID,
	shippingAddress string,
	items []ItemInput,
	expectedTotal *kernel.Money,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomerID(customerID),
		cmd.setWarehouseID(warehouseID),
		cmd.setCreatedBy(createdBy),
		cmd.setShippingAddress(shippingAddress),
		cmd.setItems(items),
		cmd.setExpectedTotal(expectedTotal),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the identifier minted for the new order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the customer reference.
func (c CreateOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// WarehouseID returns the warehouse the order is bound to.
func (c CreateOrderCommand) WarehouseID() kernel.UUID {
	return c.warehouseID
}

// CreatedBy returns the creating actor's identity.
func (c CreateOrderCommand) CreatedBy() kernel.UUID {
	return c.createdBy
}

// ShippingAddress returns the delivery address.
func (c CreateOrderCommand) ShippingAddress() string {
	return c.shippingAddress
}

// Items returns the requested order lines.
func (c CreateOrderCommand) Items() []ItemInput {
	out := make([]ItemInput, len(c.items))
	copy(out, c.items)
	return out
}

// ExpectedTotal returns the caller-asserted total, or nil when not supplied.
func (c CreateOrderCommand) ExpectedTotal() *kernel.Money {
	return c.expectedTotal
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	c.customerID = customerID
	return nil
}

func (c *CreateOrderCommand) setWarehouseID(warehouseID kernel.UUID) error {
	if err := warehouseID.Validate(); err != nil {
		return err
	}
	c.warehouseID = warehouseID
	return nil
}

func (c *CreateOrderCommand) setCreatedBy(createdBy kernel.UUID) error {
	if err := createdBy.Validate(); err != nil {
		return err
	}
	c.createdBy = createdBy
	return nil
}

func (c *CreateOrderCommand) setShippingAddress(shippingAddress string) error {
	if shippingAddress == "" {
		return errs.NewValueIsRequiredError("shipping address")
	}
	c.shippingAddress = shippingAddress
	return nil
}

func (c *CreateOrderCommand) setItems(items []ItemInput) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}
	c.items = make([]ItemInput, len(items))
	copy(c.items, items)
	return nil
}

func (c *CreateOrderCommand) setExpectedTotal(expectedTotal *kernel.Money) error {
	if expectedTotal == nil {
		return nil
	}
	if err := expectedTotal.Validate(); err != nil {
		return err
	}
	c.expectedTotal = expectedTotal
	return nil
}
