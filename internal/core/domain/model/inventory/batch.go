package inventory

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrBatchIsNotConstructed is returned when a Batch instance was not created
	// through the NewBatch factory method or RestoreBatch.
	ErrBatchIsNotConstructed = errors.New("Batch must be created via NewBatch constructor")

	// ErrInsufficientStock is the unwrap target for every operation that would
	// drive a batch's available quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError reports a reserve or decrement that exceeds the
// available quantity of a batch. It names the offending batch so the caller
// can re-query candidates and pick differently.
type InsufficientStockError struct {
	BatchID     kernel.UUID
	BatchNumber string
	Requested   int
	Available   int
}

// NewInsufficientStockError creates an InsufficientStockError for the given batch.
func NewInsufficientStockError(batchID kernel.UUID, batchNumber string, requested, available int) *InsufficientStockError {
	return &InsufficientStockError{
		BatchID:     batchID,
		BatchNumber: batchNumber,
		Requested:   requested,
		Available:   available,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("%s: batch %s has %d available, %d requested",
		ErrInsufficientStock, e.BatchNumber, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// Batch is a discrete lot of a SKU stored at a warehouse location, with its
// own expiry date and quantity. It is the unit of physical stock the ledger
// accounts for.
//
// The batch tracks two figures: currentQuantity, the physical stock on the
// shelf, and reserved, the portion provisionally claimed by picked orders.
// Every mutation preserves 0 <= reserved <= currentQuantity, so the available
// quantity (currentQuantity − reserved) never goes negative.
//
// Lifecycle: batches are created by stock receiving, drawn down by
// reservations and shipping decrements, and replenished only by releasing
// reservations when an order is cancelled before shipping.
type Batch struct {
	id          kernel.UUID
	skuID       kernel.UUID
	warehouseID kernel.UUID
	batchNumber string
	expiryDate  time.Time
	location    string

	// currentQuantity is the physical stock in the batch. Never negative.
	currentQuantity int

	// reserved is the outstanding provisional claim against this batch.
	// Never negative, never exceeds currentQuantity.
	reserved int

	isConstructed bool
}

// NewBatch creates a batch record as stock receiving reports it: no
// reservations, a positive quantity, a known location and expiry date.
func NewBatch(
	id kernel.UUID,
	skuID kernel.UUID,
	warehouseID kernel.UUID,
	batchNumber string,
	expiryDate time.Time,
	quantity int,
	location string,
) (*Batch, error) {
	b := &Batch{
		isConstructed: true,
	}

	if err := errors.Join(
		b.setID(id),
		b.setSKU(skuID),
		b.setWarehouse(warehouseID),
		b.setBatchNumber(batchNumber),
		b.setExpiryDate(expiryDate),
		b.setQuantity(quantity),
		b.setLocation(location),
	); err != nil {
		return nil, err
	}

	return b, nil
}

// RestoreBatch reconstructs a batch from persistence, including its
// outstanding reservations. The reservation invariant is re-checked.
func RestoreBatch(
	id kernel.UUID,
	skuID kernel.UUID,
	warehouseID kernel.UUID,
	batchNumber string,
	expiryDate time.Time,
	currentQuantity int,
	reserved int,
	location string,
) (*Batch, error) {
	b := &Batch{
		isConstructed: true,
	}

	if err := errors.Join(
		b.setID(id),
		b.setSKU(skuID),
		b.setWarehouse(warehouseID),
		b.setBatchNumber(batchNumber),
		b.setExpiryDate(expiryDate),
		b.setLocation(location),
	); err != nil {
		return nil, err
	}

	if currentQuantity < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("current quantity",
			fmt.Errorf("%d is negative", currentQuantity))
	}
	if reserved < 0 || reserved > currentQuantity {
		return nil, errs.NewValueIsInvalidErrorWithCause("reserved quantity",
			fmt.Errorf("%d is outside [0, %d]", reserved, currentQuantity))
	}

	b.currentQuantity = currentQuantity
	b.reserved = reserved
	return b, nil
}

// Validate ensures the Batch was built via NewBatch or RestoreBatch.
func (b *Batch) Validate() error {
	if b == nil || !b.isConstructed {
		return ErrBatchIsNotConstructed
	}
	return nil
}

// ID returns the batch's unique identifier.
func (b *Batch) ID() kernel.UUID {
	return b.id
}

// SKU returns the catalog item this batch holds.
func (b *Batch) SKU() kernel.UUID {
	return b.skuID
}

// Warehouse returns the warehouse the batch is stored at.
func (b *Batch) Warehouse() kernel.UUID {
	return b.warehouseID
}

// BatchNumber returns the lot identifier printed on the goods.
func (b *Batch) BatchNumber() string {
	return b.batchNumber
}

// ExpiryDate returns when the stock in this batch expires.
func (b *Batch) ExpiryDate() time.Time {
	return b.expiryDate
}

// Location returns the storage location within the warehouse.
func (b *Batch) Location() string {
	return b.location
}

// CurrentQuantity returns the physical stock in the batch.
func (b *Batch) CurrentQuantity() int {
	return b.currentQuantity
}

// Reserved returns the outstanding reservation total against the batch.
func (b *Batch) Reserved() int {
	return b.reserved
}

// Available returns the quantity open for new reservations:
// currentQuantity − reserved.
func (b *Batch) Available() int {
	return b.currentQuantity - b.reserved
}

// Reserve places a provisional claim of qty units on the batch. Fails with
// InsufficientStockError when qty exceeds the available quantity. The claim
// is reversible via Release until it is converted by Decrement.
func (b *Batch) Reserve(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("reserve quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}
	if qty > b.Available() {
		return NewInsufficientStockError(b.id, b.batchNumber, qty, b.Available())
	}

	b.reserved += qty
	return nil
}

// Release returns qty previously reserved units to the available pool.
// Only invoked by cancellation; releasing more than is reserved is invalid.
func (b *Batch) Release(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("release quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}
	if qty > b.reserved {
		return errs.NewValueIsInvalidErrorWithCause("release quantity",
			fmt.Errorf("%d exceeds reserved quantity %d", qty, b.reserved))
	}

	b.reserved -= qty
	return nil
}

// Decrement permanently removes qty reserved units from the batch when an
// order ships. The units must have been reserved first; the physical
// quantity and the reservation drop together, so available stock is
// unaffected and the invariant holds.
func (b *Batch) Decrement(qty int) error {
	if qty <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("decrement quantity",
			fmt.Errorf("%d is not greater than 0", qty))
	}
	if qty > b.reserved {
		return errs.NewValueIsInvalidErrorWithCause("decrement quantity",
			fmt.Errorf("%d exceeds reserved quantity %d", qty, b.reserved))
	}
	if qty > b.currentQuantity {
		return NewInsufficientStockError(b.id, b.batchNumber, qty, b.currentQuantity)
	}

	b.currentQuantity -= qty
	b.reserved -= qty
	return nil
}

func (b *Batch) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	b.id = id
	return nil
}

func (b *Batch) setSKU(skuID kernel.UUID) error {
	if err := skuID.Validate(); err != nil {
		return err
	}
	b.skuID = skuID
	return nil
}

func (b *Batch) setWarehouse(warehouseID kernel.UUID) error {
	if err := warehouseID.Validate(); err != nil {
		return err
	}
	b.warehouseID = warehouseID
	return nil
}

func (b *Batch) setBatchNumber(batchNumber string) error {
	if batchNumber == "" {
		return errs.NewValueIsRequiredError("batch number")
	}
	b.batchNumber = batchNumber
	return nil
}

func (b *Batch) setExpiryDate(expiryDate time.Time) error {
	if expiryDate.IsZero() {
		return errs.NewValueIsRequiredError("expiry date")
	}
	b.expiryDate = expiryDate
	return nil
}

func (b *Batch) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	b.currentQuantity = quantity
	return nil
}

func (b *Batch) setLocation(location string) error {
	if location == "" {
		return errs.NewValueIsRequiredError("location")
	}
	b.location = location
	return nil
}
