package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetAvailableBatchesQueryIsNotConstructed = errors.New(
		"GetAvailableBatchesQuery must be created via NewGetAvailableBatchesQuery constructor",
	)
)

// GetAvailableBatchesQuery retrieves, for each item of an order, the
// FEFO-ordered candidate batches a picker could draw from. This is the
// read-only half of the allocator: it reserves nothing, and calling it
// repeatedly with no intervening commit returns identical candidate lists.
type GetAvailableBatchesQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetAvailableBatchesQuery creates a candidate batch query for an order.
func NewGetAvailableBatchesQuery(orderID kernel.UUID) (GetAvailableBatchesQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetAvailableBatchesQuery{}, err
	}

	return GetAvailableBatchesQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetAvailableBatchesQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableBatchesQueryIsNotConstructed)
}

// OrderID returns the order whose items need candidates.
func (q GetAvailableBatchesQuery) OrderID() kernel.UUID {
	return q.orderID
}
