package order

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// ErrItemIsNotConstructed is returned when an Item instance was not created
// through the NewItem factory method.
var ErrItemIsNotConstructed = errors.New("Item must be created via NewItem constructor")

// BatchAllocation records a quantity claim an order item holds against a
// physical stock batch. Allocations are written once, when picking completes,
// and together they must cover the item quantity exactly.
type BatchAllocation struct {
	// BatchID identifies the reserved batch.
	BatchID kernel.UUID

	// Quantity is the number of units claimed from the batch. Always positive.
	Quantity int
}

// Item is an order line: one SKU, a positive quantity and a unit price.
// SKU and quantity are immutable after construction; batch allocations are
// attached exactly once when the picking step commits.
type Item struct {
	id        kernel.UUID
	skuID     kernel.UUID
	quantity  int
	unitPrice kernel.Money

	// allocations is empty until picking completes; afterwards the allocated
	// quantities sum to exactly the item quantity.
	allocations []BatchAllocation

	isConstructed bool
}

// NewItem creates an order line with validation: SKU must be a valid
// reference, quantity must be positive, unit price must be a constructed
// (non-negative) Money value.
func NewItem(id kernel.UUID, skuID kernel.UUID, quantity int, unitPrice kernel.Money) (*Item, error) {
	item := &Item{
		isConstructed: true,
	}

	if err := errors.Join(
		item.setID(id),
		item.setSKU(skuID),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
	); err != nil {
		return nil, err
	}

	return item, nil
}

// RestoreItem reconstructs an order line from persistence, including any
// committed batch allocations. Allocation coverage is re-checked so corrupt
// rows cannot produce a half-allocated item.
func RestoreItem(
	id kernel.UUID,
	skuID kernel.UUID,
	quantity int,
	unitPrice kernel.Money,
	allocations []BatchAllocation,
) (*Item, error) {
	item, err := NewItem(id, skuID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	if len(allocations) > 0 {
		if err := item.Allocate(allocations); err != nil {
			return nil, err
		}
	}

	return item, nil
}

// Validate ensures the Item was built via NewItem.
func (i *Item) Validate() error {
	if i == nil || !i.isConstructed {
		return ErrItemIsNotConstructed
	}
	return nil
}

// ID returns the item's unique identifier.
func (i *Item) ID() kernel.UUID {
	return i.id
}

// SKU returns the catalog item reference.
func (i *Item) SKU() kernel.UUID {
	return i.skuID
}

// Quantity returns the ordered unit count.
func (i *Item) Quantity() int {
	return i.quantity
}

// UnitPrice returns the price per unit.
func (i *Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

// Subtotal returns quantity × unit price.
func (i *Item) Subtotal() kernel.Money {
	return i.unitPrice.MulInt(i.quantity)
}

// Allocations returns a copy of the committed batch allocations.
// Empty until picking completes.
func (i *Item) Allocations() []BatchAllocation {
	out := make([]BatchAllocation, len(i.allocations))
	copy(out, i.allocations)
	return out
}

// IsAllocated reports whether batch allocations cover this item.
func (i *Item) IsAllocated() bool {
	return len(i.allocations) > 0
}

// Allocate attaches batch allocations to the item. Each allocation must claim
// a positive quantity from a distinct batch, and the claims must sum to the
// item quantity exactly. Allocating twice is rejected; the reservation commit
// is a single authoritative step.
func (i *Item) Allocate(allocations []BatchAllocation) error {
	if i.IsAllocated() {
		return errs.NewValueIsInvalidErrorWithCause("allocations",
			fmt.Errorf("item %s is already allocated", i.id))
	}
	if len(allocations) == 0 {
		return errs.NewValueIsRequiredError("allocations")
	}

	seen := make(map[kernel.UUID]bool, len(allocations))
	total := 0
	for _, alloc := range allocations {
		if err := alloc.BatchID.Validate(); err != nil {
			return err
		}
		if alloc.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause("allocation quantity",
				fmt.Errorf("%d is not greater than 0", alloc.Quantity))
		}
		if seen[alloc.BatchID] {
			return errs.NewValueIsInvalidErrorWithCause("allocations",
				fmt.Errorf("batch %s is selected twice", alloc.BatchID))
		}
		seen[alloc.BatchID] = true
		total += alloc.Quantity
	}

	if total != i.quantity {
		return errs.NewValueIsInvalidErrorWithCause("allocations",
			fmt.Errorf("allocated %d units, item requires %d", total, i.quantity))
	}

	i.allocations = make([]BatchAllocation, len(allocations))
	copy(i.allocations, allocations)
	return nil
}

func (i *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Item) setSKU(skuID kernel.UUID) error {
	if err := skuID.Validate(); err != nil {
		return err
	}
	i.skuID = skuID
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(unitPrice kernel.Money) error {
	if err := unitPrice.Validate(); err != nil {
		return err
	}
	i.unitPrice = unitPrice
	return nil
}
