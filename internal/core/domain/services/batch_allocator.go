package services

import (
	"fmt"
	"sort"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"fulfillment/internal/pkg/errs"
)

// BatchAllocator is the domain service implementing the First-Expired-
// First-Out picking discipline. It has two distinct faces:
//
//   - ProposeAllocation is a read-only ranking of candidate batches, safe to
//     call repeatedly; it reserves nothing.
//   - ValidatePlan checks an explicit set of caller selections against an
//     order before the caller reserves them. The allocator validates rather
//     than dictates: any batch with sufficient stock is acceptable, FEFO
//     order is only the suggestion.
//
// The actual reservation is performed by the caller against locked batch
// aggregates, so two orders shown the same "available" batch cannot both
// claim it.
type BatchAllocator struct{}

// NewBatchAllocator creates a new BatchAllocator instance.
func NewBatchAllocator() BatchAllocator {
	return BatchAllocator{}
}

// ProposeAllocation ranks the given batches for picking: batches with no
// available stock are dropped, the rest are ordered by ascending expiry date
// with ties broken by ascending batch number for determinism. The input is
// the warehouse/SKU candidate set; the output is the FEFO suggestion list.
func (a BatchAllocator) ProposeAllocation(batches []*inventory.Batch) []*inventory.Batch {
	candidates := make([]*inventory.Batch, 0, len(batches))
	for _, b := range batches {
		if b.Available() > 0 {
			candidates = append(candidates, b)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if !candidates[i].ExpiryDate().Equal(candidates[j].ExpiryDate()) {
			return candidates[i].ExpiryDate().Before(candidates[j].ExpiryDate())
		}
		return candidates[i].BatchNumber() < candidates[j].BatchNumber()
	})

	return candidates
}

// ValidatePlan checks caller-supplied batch selections against an order
// before reservation. For every order item the selections must reference
// batches that exist in the provided set, hold the item's SKU, and belong to
// the order's warehouse. Quantity coverage per item is enforced by the order
// aggregate at commit; availability is enforced by each batch at Reserve.
// Client-side selection state is never trusted without this re-validation.
func (a BatchAllocator) ValidatePlan(
	o *order.Order,
	batches map[kernel.UUID]*inventory.Batch,
	selections map[kernel.UUID][]order.BatchAllocation,
) error {
	for skuID, allocs := range selections {
		item, ok := o.ItemBySKU(skuID)
		if !ok {
			return errs.NewValueIsInvalidErrorWithCause("selections",
				fmt.Errorf("SKU %s is not on order %s", skuID, o.OrderNumber()))
		}

		for _, alloc := range allocs {
			batch, ok := batches[alloc.BatchID]
			if !ok {
				return errs.NewObjectNotFoundError("batch", alloc.BatchID.String())
			}
			if !batch.SKU().IsEqual(item.SKU()) {
				return errs.NewValueIsInvalidErrorWithCause("selections",
					fmt.Errorf("batch %s holds a different SKU than item %s", batch.BatchNumber(), item.SKU()))
			}
			if !batch.Warehouse().IsEqual(o.Warehouse()) {
				return errs.NewValueIsInvalidErrorWithCause("selections",
					fmt.Errorf("batch %s belongs to another warehouse", batch.BatchNumber()))
			}
		}
	}

	return nil
}
