package batchrepo

import (
	"context"
	"errors"
	"sort"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchRepository implements BatchRepository using GORM.
type GormBatchRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormBatchRepository creates a new GORM batch repository.
func NewGormBatchRepository(db *gorm.DB, tracker aggregateTracker) *GormBatchRepository {
	return &GormBatchRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new batch to the database.
func (r *GormBatchRepository) Add(ctx context.Context, aggregate *inventory.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves quantity and reservation changes to an existing batch.
// A map is used for the update so zero quantities are written too; a struct
// update would skip them as zero values.
func (r *GormBatchRepository) Update(ctx context.Context, aggregate *inventory.Batch) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&BatchDTO{}).
		Where("id = ?", dto.ID).
		Updates(map[string]any{
			"current_quantity": dto.CurrentQuantity,
			"reserved":         dto.Reserved,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("batch", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a batch by ID.
func (r *GormBatchRepository) Get(ctx context.Context, id kernel.UUID) (*inventory.Batch, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto BatchDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetForUpdate retrieves the given batches under FOR UPDATE row locks inside
// the current transaction. Rows are locked in ascending ID order regardless of
// the input order, so two reservation commits touching overlapping batch sets
// always queue behind each other instead of deadlocking.
func (r *GormBatchRepository) GetForUpdate(ctx context.Context, ids []kernel.UUID) ([]*inventory.Batch, error) {
	if len(ids) == 0 {
		return nil, errs.NewValueIsRequiredError("batch ids")
	}
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
	}

	sorted := make([]kernel.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	raw := make([]any, 0, len(sorted))
	for _, id := range sorted {
		raw = append(raw, id.Bytes())
	}

	var dtos []BatchDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", raw).
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	found := make(map[kernel.UUID]bool, len(dtos))
	batches := make([]*inventory.Batch, 0, len(dtos))
	for _, dto := range dtos {
		b, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		found[b.ID()] = true
		batches = append(batches, b)
	}

	for _, id := range sorted {
		if !found[id] {
			return nil, errs.NewObjectNotFoundError("batch", id.String())
		}
	}

	return batches, nil
}

// FindBySKU retrieves all batches of a SKU within a warehouse, ordered by
// ascending expiry date with batch number as tiebreak.
func (r *GormBatchRepository) FindBySKU(ctx context.Context, warehouseID, skuID kernel.UUID) ([]*inventory.Batch, error) {
	if err := warehouseID.Validate(); err != nil {
		return nil, err
	}
	if err := skuID.Validate(); err != nil {
		return nil, err
	}

	var dtos []BatchDTO
	err := r.db.WithContext(ctx).
		Where("warehouse_id = ? AND sku_id = ?", warehouseID.Bytes(), skuID.Bytes()).
		Order("expiry_date, batch_number").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	batches := make([]*inventory.Batch, 0, len(dtos))
	for _, dto := range dtos {
		b, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		batches = append(batches, b)
	}

	return batches, nil
}
