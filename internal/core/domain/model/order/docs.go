// Package order provides domain entities and business logic for sales order
// fulfillment. It implements the Order aggregate root with lifecycle
// management and state transitions.
//
// The package includes:
//   - Order: The aggregate root owning identity, line items and workflow status
//   - Item: An order line binding a SKU, quantity, unit price and batch allocations
//   - Status: A state machine enforcing the fulfillment workflow graph
//
// Key business rules:
//   - Orders are created in Pending with a non-empty, SKU-unique item list
//   - Status follows Pending -> Confirmed -> Picking -> Picked -> Packed -> Shipped -> Delivered
//   - Cancellation is an explicit escape available until (not including) Shipped
//   - Batch allocations are committed exactly once, at the Picking -> Picked step,
//     and must cover every item quantity exactly
//   - The order total is always derived from its items
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
