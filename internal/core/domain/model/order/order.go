package order

import (
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created
	// through the NewOrder factory method or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is the aggregate root of the fulfillment workflow. It owns its line
// items and its lifecycle status, and is the only object through which either
// may change.
//
// Order invariants:
//   - Customer, warehouse, creator, shipping address and order date are immutable after creation
//   - Items are non-empty and each SKU appears at most once
//   - Status only moves along the workflow graph (see Status)
//   - Once status reaches Picked, every item is fully covered by batch allocations
//   - The total amount is always derived from the items, never stored independently
//
// Orders are never deleted; Delivered and Cancelled are the only terminal
// states. The version field supports optimistic concurrency control in the
// repository: two racing transitions from the same status cannot both commit.
type Order struct {
	id          kernel.UUID
	orderNumber string
	customerID  kernel.UUID
	warehouseID kernel.UUID
	status      Status
	items       []*Item

	shippingAddress string
	createdBy       kernel.UUID
	orderDate       time.Time

	// version is the persisted aggregate version used for optimistic locking.
	version int

	isConstructed bool
}

// NewOrder creates an order in Pending status. All reference IDs must be
// valid, the shipping address and order number must be non-empty, and the
// item list must be non-empty with each SKU appearing only once.
func NewOrder(
	id kernel.UUID,
	orderNumber string,
	customerID kernel.UUID,
	warehouseID kernel.UUID,
	createdBy kernel.UUID,
	shippingAddress string,
	orderDate time.Time,
	items []*Item,
) (*Order, error) {
	o := &Order{
		status:        Pending,
		version:       1,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setOrderNumber(orderNumber),
		o.setCustomerID(customerID),
		o.setWarehouseID(warehouseID),
		o.setCreatedBy(createdBy),
		o.setShippingAddress(shippingAddress),
		o.setOrderDate(orderDate),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder reconstructs an order from persistence with its stored status
// and version. Beyond constructor validation it re-checks the allocation
// coverage invariant: any order at or past Picked (except Cancelled) must
// have every item fully allocated.
func RestoreOrder(
	id kernel.UUID,
	orderNumber string,
	customerID kernel.UUID,
	warehouseID kernel.UUID,
	createdBy kernel.UUID,
	shippingAddress string,
	orderDate time.Time,
	items []*Item,
	status Status,
	version int,
) (*Order, error) {
	o, err := NewOrder(id, orderNumber, customerID, warehouseID, createdBy, shippingAddress, orderDate, items)
	if err != nil {
		return nil, err
	}

	if err := status.Validate(); err != nil {
		return nil, err
	}
	if version < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("version",
			fmt.Errorf("%d is not a valid aggregate version", version))
	}

	if statusRequiresAllocations(status) {
		for _, item := range o.items {
			if !item.IsAllocated() {
				return nil, errs.NewValueIsInvalidErrorWithCause("order",
					fmt.Errorf("order %s is %s but item %s has no allocations", orderNumber, status, item.SKU()))
			}
		}
	}

	o.status = status
	o.version = version
	return o, nil
}

func statusRequiresAllocations(status Status) bool {
	switch status {
	case Picked, Packed, Shipped, Delivered:
		return true
	default:
		return false
	}
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by identity.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// OrderNumber returns the human-readable unique order number.
func (o *Order) OrderNumber() string {
	return o.orderNumber
}

// Customer returns the customer reference.
func (o *Order) Customer() kernel.UUID {
	return o.customerID
}

// Warehouse returns the warehouse this order is bound to. Every batch
// allocation on the order must come from this warehouse.
func (o *Order) Warehouse() kernel.UUID {
	return o.warehouseID
}

// Status returns the current workflow status.
func (o *Order) Status() Status {
	return o.status
}

// Items returns the order lines in creation order.
// The slice is a copy; the items are the aggregate's own entities.
func (o *Order) Items() []*Item {
	out := make([]*Item, len(o.items))
	copy(out, o.items)
	return out
}

// ItemBySKU finds the order line for a SKU. SKUs are unique within an order.
func (o *Order) ItemBySKU(skuID kernel.UUID) (*Item, bool) {
	for _, item := range o.items {
		if item.SKU().IsEqual(skuID) {
			return item, true
		}
	}
	return nil, false
}

// ShippingAddress returns the delivery address captured at creation.
func (o *Order) ShippingAddress() string {
	return o.shippingAddress
}

// CreatedBy returns the actor who created the order.
func (o *Order) CreatedBy() kernel.UUID {
	return o.createdBy
}

// OrderDate returns the creation timestamp.
func (o *Order) OrderDate() time.Time {
	return o.orderDate
}

// Version returns the aggregate version for optimistic locking.
func (o *Order) Version() int {
	return o.version
}

// AdvanceVersion bumps the aggregate version. Called by the repository after
// a successful versioned update so the in-memory aggregate matches storage.
func (o *Order) AdvanceVersion() {
	o.version++
}

// TotalAmount returns the derived order total: Σ(quantity × unit price).
func (o *Order) TotalAmount() kernel.Money {
	total := kernel.ZeroMoney()
	for _, item := range o.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Confirm moves the order Pending -> Confirmed.
func (o *Order) Confirm() error {
	return o.transition(Confirmed)
}

// StartPicking moves the order Confirmed -> Picking. No stock is reserved at
// this point; candidate batches are a read-only query and reservation happens
// only when picking completes.
func (o *Order) StartPicking() error {
	return o.transition(Picking)
}

// CompletePicking moves the order Picking -> Picked and attaches the
// committed batch allocations, keyed by SKU. Every item must be covered;
// selections for SKUs not on the order are rejected. The caller is
// responsible for having reserved the referenced batches first: this
// method records the authoritative outcome on the aggregate.
func (o *Order) CompletePicking(allocations map[kernel.UUID][]BatchAllocation) error {
	next, err := o.status.TransitionTo(Picked)
	if err != nil {
		return err
	}

	if len(allocations) == 0 {
		return errs.NewValueIsRequiredError("batch allocations")
	}
	for skuID := range allocations {
		if _, ok := o.ItemBySKU(skuID); !ok {
			return errs.NewValueIsInvalidErrorWithCause("allocations",
				fmt.Errorf("SKU %s is not on order %s", skuID, o.orderNumber))
		}
	}
	for _, item := range o.items {
		itemAllocs, ok := allocations[item.SKU()]
		if !ok {
			return errs.NewValueIsInvalidErrorWithCause("allocations",
				fmt.Errorf("item %s has no batch selections", item.SKU()))
		}
		if err := item.Allocate(itemAllocs); err != nil {
			return err
		}
	}

	o.status = next
	return nil
}

// Pack moves the order Picked -> Packed.
func (o *Order) Pack() error {
	return o.transition(Packed)
}

// Ship moves the order Packed -> Shipped. The caller converts the batch
// reservations into permanent decrements in the same transaction.
func (o *Order) Ship() error {
	return o.transition(Shipped)
}

// Deliver moves the order Shipped -> Delivered, the terminal success state.
func (o *Order) Deliver() error {
	return o.transition(Delivered)
}

// Cancel aborts the order. Only reachable before Shipped; the caller releases
// any outstanding reservations in the same transaction. Allocations are kept
// on the items for audit.
func (o *Order) Cancel() error {
	return o.transition(Cancelled)
}

func (o *Order) transition(target Status) error {
	next, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setOrderNumber(orderNumber string) error {
	if orderNumber == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.orderNumber = orderNumber
	return nil
}

func (o *Order) setCustomerID(customerID kernel.UUID) error {
	if err := customerID.Validate(); err != nil {
		return err
	}
	o.customerID = customerID
	return nil
}

func (o *Order) setWarehouseID(warehouseID kernel.UUID) error {
	if err := warehouseID.Validate(); err != nil {
		return err
	}
	o.warehouseID = warehouseID
	return nil
}

func (o *Order) setCreatedBy(createdBy kernel.UUID) error {
	if err := createdBy.Validate(); err != nil {
		return err
	}
	o.createdBy = createdBy
	return nil
}

func (o *Order) setShippingAddress(shippingAddress string) error {
	if shippingAddress == "" {
		return errs.NewValueIsRequiredError("shipping address")
	}
	o.shippingAddress = shippingAddress
	return nil
}

func (o *Order) setOrderDate(orderDate time.Time) error {
	if orderDate.IsZero() {
		return errs.NewValueIsRequiredError("order date")
	}
	o.orderDate = orderDate
	return nil
}

func (o *Order) setItems(items []*Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}

	seen := make(map[kernel.UUID]bool, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if seen[item.SKU()] {
			return errs.NewValueIsInvalidErrorWithCause("order items",
				fmt.Errorf("SKU %s appears more than once", item.SKU()))
		}
		seen[item.SKU()] = true
	}

	o.items = make([]*Item, len(items))
	copy(o.items, items)
	return nil
}
