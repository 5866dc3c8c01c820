package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrdersQueryResponse is the order summary read model.
type GetOrdersQueryResponse struct {
	ID          kernel.UUID
	OrderNumber string
	CustomerID  kernel.UUID
	WarehouseID kernel.UUID
	Status      order.Status
	TotalAmount decimal.Decimal
	OrderDate   time.Time
}

// GetOrdersQueryHandler lists order summaries from the database with
// optional status and warehouse filters. Reads go straight to SQL; the full
// aggregates are not needed for a listing.
type GetOrdersQueryHandler struct {
	db *gorm.DB
}

// NewGetOrdersQueryHandler creates a handler for order listing queries.
func NewGetOrdersQueryHandler(db *gorm.DB) GetOrdersQueryHandler {
	return GetOrdersQueryHandler{db: db}
}

// Handle executes the listing query. Results are sorted by order date,
// newest first, for stable output.
func (h GetOrdersQueryHandler) Handle(ctx context.Context, query GetOrdersQuery) ([]GetOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	sql := `
		SELECT
			id,
			order_number,
			customer_id,
			warehouse_id,
			status,
			total_amount,
			order_date
		FROM orders
		WHERE 1=1
	`
	args := make([]any, 0, 2)
	if query.Status() != nil {
		sql += " AND status = ?"
		args = append(args, int(*query.Status()))
	}
	if query.Warehouse() != nil {
		sql += " AND warehouse_id = ?"
		args = append(args, query.Warehouse().Bytes())
	}
	sql += " ORDER BY order_date DESC, order_number"

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			id          uuid.UUID
			orderNumber string
			customerID  uuid.UUID
			warehouseID uuid.UUID
			status      int
			totalAmount decimal.Decimal
			orderDate   time.Time
		)

		if err = rows.Scan(&id, &orderNumber, &customerID, &warehouseID, &status, &totalAmount, &orderDate); err != nil {
			return nil, err
		}

		orderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		custID, idErr := kernel.UUIDFromBytes(customerID[:])
		if idErr != nil {
			return nil, idErr
		}
		whID, idErr := kernel.UUIDFromBytes(warehouseID[:])
		if idErr != nil {
			return nil, idErr
		}

		orders = append(orders, GetOrdersQueryResponse{
			ID:          orderID,
			OrderNumber: orderNumber,
			CustomerID:  custID,
			WarehouseID: whID,
			Status:      order.Status(status),
			TotalAmount: totalAmount,
			OrderDate:   orderDate,
		})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
