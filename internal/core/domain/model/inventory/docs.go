// Package inventory provides the domain model for physical stock batches.
//
// A Batch is the ledger's unit of account: a lot of one SKU at one warehouse
// location with its own expiry date. The batch tracks physical quantity and
// outstanding reservations separately, so a provisional claim made during
// picking is distinct from the permanent decrement made at shipping and can
// be released if the order is cancelled first.
package inventory
