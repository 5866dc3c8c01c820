package commands

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrReceiveBatchCommandIsNotConstructed = errors.New(
		"ReceiveBatchCommand must be created via NewReceiveBatchCommand constructor",
	)
)

// ReceiveBatchCommand records a stock batch delivered to a warehouse.
// Receiving itself (purchase orders, goods-in checks) is an external flow;
// this command is the ledger entry point it calls once goods are on the shelf.
type ReceiveBatchCommand struct { //nolint:recvcheck //using for validation
	batchID     kernel.UUID
	skuID       kernel.UUID
	warehouseID kernel.UUID
	batchNumber string
	expiryDate  time.Time
	quantity    int
	location    string

	guard guard.ConstructorGuard
}

// NewReceiveBatchCommand creates a stock receiving command with validation.
func NewReceiveBatchCommand(
	batchID kernel.UUID,
	skuID kernel.UUID,
	warehouseID kernel.UUID,
	batchNumber string,
	expiryDate time.Time,
	quantity int,
	location string,
) (ReceiveBatchCommand, error) {
	cmd := ReceiveBatchCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setBatchID(batchID),
		cmd.setSKUID(skuID),
		cmd.setWarehouseID(warehouseID),
		cmd.setBatchNumber(batchNumber),
		cmd.setExpiryDate(expiryDate),
		cmd.setQuantity(quantity),
		cmd.setLocation(location),
	); err != nil {
		return ReceiveBatchCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ReceiveBatchCommand) Validate() error {
	return c.guard.Validate(ErrReceiveBatchCommandIsNotConstructed)
}

// BatchID returns the identifier minted for the new batch.
func (c ReceiveBatchCommand) BatchID() kernel.UUID {
	return c.batchID
}

// SKUID returns the catalog item the batch holds.
func (c ReceiveBatchCommand) SKUID() kernel.UUID {
	return c.skuID
}

// WarehouseID returns the receiving warehouse.
func (c ReceiveBatchCommand) WarehouseID() kernel.UUID {
	return c.warehouseID
}

// BatchNumber returns the lot identifier.
func (c ReceiveBatchCommand) BatchNumber() string {
	return c.batchNumber
}

// ExpiryDate returns when the received stock expires.
func (c ReceiveBatchCommand) ExpiryDate() time.Time {
	return c.expiryDate
}

// Quantity returns the received unit count.
func (c ReceiveBatchCommand) Quantity() int {
	return c.quantity
}

// Location returns the storage location within the warehouse.
func (c ReceiveBatchCommand) Location() string {
	return c.location
}

func (c *ReceiveBatchCommand) setBatchID(batchID kernel.UUID) error {
	if err := batchID.Validate(); err != nil {
		return err
	}
	c.batchID = batchID
	return nil
}

func (c *ReceiveBatchCommand) setSKUID(skuID kernel.UUID) error {
	if err := skuID.Validate(); err != nil {
		return err
	}
	c.skuID = skuID
	return nil
}

func (c *ReceiveBatchCommand) setWarehouseID(warehouseID kernel.UUID) error {
	if err := warehouseID.Validate(); err != nil {
		return err
	}
	c.warehouseID = warehouseID
	return nil
}

func (c *ReceiveBatchCommand) setBatchNumber(batchNumber string) error {
	if batchNumber == "" {
		return errs.NewValueIsRequiredError("batch number")
	}
	c.batchNumber = batchNumber
	return nil
}

func (c *ReceiveBatchCommand) setExpiryDate(expiryDate time.Time) error {
	if expiryDate.IsZero() {
		return errs.NewValueIsRequiredError("expiry date")
	}
	c.expiryDate = expiryDate
	return nil
}

func (c *ReceiveBatchCommand) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	c.quantity = quantity
	return nil
}

func (c *ReceiveBatchCommand) setLocation(location string) error {
	if location == "" {
		return errs.NewValueIsRequiredError("location")
	}
	c.location = location
	return nil
}
