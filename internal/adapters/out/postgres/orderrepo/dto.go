// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, handling conversion between domain entities and database rows.
package orderrepo

import (
	"sort"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// The version column backs optimistic concurrency control; total_amount is
// denormalized for listing queries and always recomputed from the items on
// write.
type OrderDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderNumber     string    `gorm:"uniqueIndex;not null"`
	CustomerID      uuid.UUID `gorm:"type:uuid;index"`
	WarehouseID     uuid.UUID `gorm:"type:uuid;index"`
	Status          int       `gorm:"index"`
	ShippingAddress string
	CreatedBy       uuid.UUID       `gorm:"type:uuid"`
	OrderDate       time.Time       `gorm:"index"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(18,2)"`
	Version         int             `gorm:"not null"`

	Items []ItemDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO represents an order line. The (order, SKU) pair is unique and the
// position column preserves creation order.
type ItemDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_order_items_order_sku,priority:1"`
	SKUID     uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_order_items_order_sku,priority:2"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(18,2)"`
	Position  int             `gorm:"not null"`

	Allocations []AllocationDTO `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order line entities.
func (ItemDTO) TableName() string {
	return "order_items"
}

// AllocationDTO records a committed (item, batch, quantity) claim.
type AllocationDTO struct {
	ItemID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchID  uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Quantity int       `gorm:"not null"`
}

// TableName specifies the database table name for batch allocation rows.
func (AllocationDTO) TableName() string {
	return "order_item_allocations"
}

// fromDomain converts an order aggregate to its database representation,
// including line items and any committed allocations.
func fromDomain(o *order.Order) OrderDTO {
	items := o.Items()
	itemDTOs := make([]ItemDTO, 0, len(items))
	for pos, item := range items {
		allocs := item.Allocations()
		allocDTOs := make([]AllocationDTO, 0, len(allocs))
		for _, alloc := range allocs {
			allocDTOs = append(allocDTOs, AllocationDTO{
				ItemID:   item.ID().Bytes(),
				BatchID:  alloc.BatchID.Bytes(),
				Quantity: alloc.Quantity,
			})
		}

		itemDTOs = append(itemDTOs, ItemDTO{
			ID:          item.ID().Bytes(),
			OrderID:     o.ID().Bytes(),
			SKUID:       item.SKU().Bytes(),
			Quantity:    item.Quantity(),
			UnitPrice:   item.UnitPrice().Amount(),
			Position:    pos,
			Allocations: allocDTOs,
		})
	}

	return OrderDTO{
		ID:              o.ID().Bytes(),
		OrderNumber:     o.OrderNumber(),
		CustomerID:      o.Customer().Bytes(),
		WarehouseID:     o.Warehouse().Bytes(),
		Status:          int(o.Status()),
		ShippingAddress: o.ShippingAddress(),
		CreatedBy:       o.CreatedBy().Bytes(),
		OrderDate:       o.OrderDate(),
		TotalAmount:     o.TotalAmount().Amount(),
		Version:         o.Version(),
		Items:           itemDTOs,
	}
}

// toDomain converts a database DTO back into an order aggregate using
// RestoreOrder, which re-checks the aggregate invariants.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	warehouseID, err := kernel.UUIDFromBytes(dto.WarehouseID[:])
	if err != nil {
		return nil, err
	}
	createdBy, err := kernel.UUIDFromBytes(dto.CreatedBy[:])
	if err != nil {
		return nil, err
	}

	itemDTOs := make([]ItemDTO, len(dto.Items))
	copy(itemDTOs, dto.Items)
	sort.Slice(itemDTOs, func(i, j int) bool { return itemDTOs[i].Position < itemDTOs[j].Position })

	items := make([]*order.Item, 0, len(itemDTOs))
	for _, itemDTO := range itemDTOs {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		id,
		dto.OrderNumber,
		customerID,
		warehouseID,
		createdBy,
		dto.ShippingAddress,
		dto.OrderDate,
		items,
		order.Status(dto.Status),
		dto.Version,
	)
}

func itemToDomain(dto ItemDTO) (*order.Item, error) {
	itemID, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	skuID, err := kernel.UUIDFromBytes(dto.SKUID[:])
	if err != nil {
		return nil, err
	}
	unitPrice, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return nil, err
	}

	allocations := make([]order.BatchAllocation, 0, len(dto.Allocations))
	for _, allocDTO := range dto.Allocations {
		batchID, allocErr := kernel.UUIDFromBytes(allocDTO.BatchID[:])
		if allocErr != nil {
			return nil, allocErr
		}
		allocations = append(allocations, order.BatchAllocation{
			BatchID:  batchID,
			Quantity: allocDTO.Quantity,
		})
	}

	return order.RestoreItem(itemID, skuID, dto.Quantity, unitPrice, allocations)
}
