package http

import "time"

// Error is the JSON error body returned for every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	SkuID     string `json:"sku_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// CreateOrderRequest is the body of POST /api/v1/orders. TotalAmount is an
// optional client-side checksum: when present it must equal the computed
// order total.
type CreateOrderRequest struct {
	CustomerID      string             `json:"customer_id"`
	WarehouseID     string             `json:"warehouse_id"`
	ShippingAddress string             `json:"shipping_address"`
	Items           []OrderItemRequest `json:"items"`
	TotalAmount     *string            `json:"total_amount,omitempty"`
}

// OrderResponse is the order summary returned by order endpoints.
type OrderResponse struct {
	ID          string    `json:"id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  string    `json:"customer_id"`
	WarehouseID string    `json:"warehouse_id"`
	Status      string    `json:"status"`
	TotalAmount string    `json:"total_amount"`
	OrderDate   time.Time `json:"order_date"`
}

// BatchSelectionRequest is one (SKU, batch, quantity) pick for the transition
// to PICKED.
type BatchSelectionRequest struct {
	SkuID    string `json:"sku_id"`
	BatchID  string `json:"batch_id"`
	Quantity int    `json:"quantity"`
}

// ChangeOrderStatusRequest is the body of PATCH /api/v1/orders/{id}/status.
// Selections are required for the PICKED transition and rejected otherwise.
type ChangeOrderStatusRequest struct {
	Status     string                  `json:"status"`
	Selections []BatchSelectionRequest `json:"selections,omitempty"`
}

// ReceiveBatchRequest is the body of POST /api/v1/batches, recording a stock
// batch put on the shelf.
type ReceiveBatchRequest struct {
	SkuID       string    `json:"sku_id"`
	WarehouseID string    `json:"warehouse_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
	Location    string    `json:"location"`
}

// BatchResponse is the batch state returned after stock receiving.
type BatchResponse struct {
	ID          string    `json:"id"`
	SkuID       string    `json:"sku_id"`
	WarehouseID string    `json:"warehouse_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Quantity    int       `json:"quantity"`
	Reserved    int       `json:"reserved"`
	Location    string    `json:"location"`
}

// BatchCandidateResponse is one pickable batch in an allocation proposal,
// listed in first-expired-first-out order.
type BatchCandidateResponse struct {
	BatchID     string    `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Available   int       `json:"available"`
	Location    string    `json:"location"`
}

// ItemCandidatesResponse pairs an order item with its candidate batches.
type ItemCandidatesResponse struct {
	SkuID      string                   `json:"sku_id"`
	Required   int                      `json:"required"`
	Candidates []BatchCandidateResponse `json:"candidates"`
}
