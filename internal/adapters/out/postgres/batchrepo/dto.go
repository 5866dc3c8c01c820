// Package batchrepo provides data transfer objects and mapping functions for
// stock batch persistence. It implements the repository pattern for the batch
// aggregate, handling conversion between domain entities and database rows.
package batchrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// BatchDTO represents the database structure for persisting batch aggregates.
// current_quantity and reserved back the inventory invariant
// 0 <= reserved <= current_quantity; both are always written together.
type BatchDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	SKUID           uuid.UUID `gorm:"type:uuid;index:idx_batches_sku_warehouse,priority:2"`
	WarehouseID     uuid.UUID `gorm:"type:uuid;index:idx_batches_sku_warehouse,priority:1"`
	BatchNumber     string    `gorm:"not null"`
	ExpiryDate      time.Time `gorm:"index"`
	CurrentQuantity int       `gorm:"not null"`
	Reserved        int       `gorm:"not null"`
	Location        string    `gorm:"not null"`
}

// TableName specifies the database table name for batch entities.
func (BatchDTO) TableName() string {
	return "batches"
}

// fromDomain converts a batch aggregate to its database representation.
func fromDomain(b *inventory.Batch) BatchDTO {
	return BatchDTO{
		ID:              b.ID().Bytes(),
		SKUID:           b.SKU().Bytes(),
		WarehouseID:     b.Warehouse().Bytes(),
		BatchNumber:     b.BatchNumber(),
		ExpiryDate:      b.ExpiryDate(),
		CurrentQuantity: b.CurrentQuantity(),
		Reserved:        b.Reserved(),
		Location:        b.Location(),
	}
}

// toDomain converts a database DTO back into a batch aggregate using
// RestoreBatch, which re-checks the reservation invariant.
func toDomain(dto BatchDTO) (*inventory.Batch, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	skuID, err := kernel.UUIDFromBytes(dto.SKUID[:])
	if err != nil {
		return nil, err
	}
	warehouseID, err := kernel.UUIDFromBytes(dto.WarehouseID[:])
	if err != nil {
		return nil, err
	}

	return inventory.RestoreBatch(
		id,
		skuID,
		warehouseID,
		dto.BatchNumber,
		dto.ExpiryDate,
		dto.CurrentQuantity,
		dto.Reserved,
		dto.Location,
	)
}
