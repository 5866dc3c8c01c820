// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrGetOrdersQueryIsNotConstructed = errors.New(
		"GetOrdersQuery must be created via NewGetOrdersQuery constructor",
	)
)

// GetOrdersQuery retrieves order summaries, optionally filtered by status
// and/or warehouse. Reading orders carries no authorization check beyond
// authentication; any authenticated actor may list them.
//
// Example:
//
//	status := order.Pending
//	query, _ := NewGetOrdersQuery(&status, nil)
//	orders, err := handler.Handle(ctx, query)
type GetOrdersQuery struct {
	status      *order.Status
	warehouseID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrdersQuery creates an order listing query. Both filters are
// optional; a supplied status must be a valid workflow status and a supplied
// warehouse a valid reference.
func NewGetOrdersQuery(status *order.Status, warehouseID *kernel.UUID) (GetOrdersQuery, error) {
	if status != nil {
		if err := status.Validate(); err != nil {
			return GetOrdersQuery{}, err
		}
	}
	if warehouseID != nil {
		if err := warehouseID.Validate(); err != nil {
			return GetOrdersQuery{}, err
		}
	}

	return GetOrdersQuery{
		status:      status,
		warehouseID: warehouseID,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetOrdersQueryIsNotConstructed)
}

// Status returns the optional status filter.
func (q GetOrdersQuery) Status() *order.Status {
	return q.status
}

// Warehouse returns the optional warehouse filter.
func (q GetOrdersQuery) Warehouse() *kernel.UUID {
	return q.warehouseID
}
