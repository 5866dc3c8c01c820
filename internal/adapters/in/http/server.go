// Package http exposes the fulfillment workflow over a JSON HTTP API.
package http

import (
	"errors"
	"net/http"
	"strings"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
)

// Actor identity headers. Authentication happens upstream (gateway or service
// mesh); these headers carry the already-authenticated principal.
const (
	HeaderActorID        = "X-Actor-Id"
	HeaderActorRole      = "X-Actor-Role"
	HeaderActorWarehouse = "X-Actor-Warehouse"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler       commands.CreateOrderCommandHandler
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler
	receiveBatchHandler      commands.ReceiveBatchCommandHandler

	// Query handlers
	getOrdersHandler           queries.GetOrdersQueryHandler
	getAvailableBatchesHandler queries.GetAvailableBatchesQueryHandler

	metrics *metrics.Registry
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler,
	receiveBatchHandler commands.ReceiveBatchCommandHandler,
	getOrdersHandler queries.GetOrdersQueryHandler,
	getAvailableBatchesHandler queries.GetAvailableBatchesQueryHandler,
	registry *metrics.Registry,
) *Server {
	return &Server{
		createOrderHandler:         createOrderHandler,
		changeOrderStatusHandler:   changeOrderStatusHandler,
		receiveBatchHandler:        receiveBatchHandler,
		getOrdersHandler:           getOrdersHandler,
		getAvailableBatchesHandler: getAvailableBatchesHandler,
		metrics:                    registry,
	}
}

// RegisterRoutes attaches the API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetOrders)
	api.GET("/orders/:id/available-batches", s.GetAvailableBatches)
	api.PATCH("/orders/:id/status", s.ChangeOrderStatus)
	api.POST("/batches", s.ReceiveBatch)
}

// CreateOrder handles POST /api/v1/orders - registers a new pending order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	actor, err := actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("customer_id", err))
	}
	warehouseID, err := kernel.UUIDFromString(req.WarehouseID)
	if err != nil {
		return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("warehouse_id", err))
	}

	items := make([]commands.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		skuID, skuErr := kernel.UUIDFromString(it.SkuID)
		if skuErr != nil {
			return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("sku_id", skuErr))
		}
		unitPrice, priceErr := kernel.MoneyFromString(it.UnitPrice)
		if priceErr != nil {
			return respondError(ctx, priceErr)
		}
		items = append(items, commands.ItemInput{
			SKUID:     skuID,
			Quantity:  it.Quantity,
			UnitPrice: unitPrice,
		})
	}

	var expectedTotal *kernel.Money
	if req.TotalAmount != nil {
		total, totalErr := kernel.MoneyFromString(*req.TotalAmount)
		if totalErr != nil {
			return respondError(ctx, totalErr)
		}
		expectedTotal = &total
	}

	cmd, err := commands.NewCreateOrderCommand(
		kernel.NewUUID(),
		customerID,
		warehouseID,
		actor.ID(),
		req.ShippingAddress,
		items,
		expectedTotal,
	)
	if err != nil {
		return respondError(ctx, err)
	}

	created, err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	s.metrics.OrdersCreated.Inc()
	return ctx.JSON(http.StatusCreated, orderToResponse(created))
}

// GetOrders handles GET /api/v1/orders - lists order summaries with optional
// status and warehouse filters. Reads are open to any caller.
func (s *Server) GetOrders(ctx echo.Context) error {
	var statusFilter *order.Status
	if raw := ctx.QueryParam("status"); raw != "" {
		status, err := order.StatusFromString(raw)
		if err != nil {
			return respondError(ctx, err)
		}
		statusFilter = &status
	}

	var warehouseFilter *kernel.UUID
	if raw := ctx.QueryParam("warehouse"); raw != "" {
		warehouseID, err := kernel.UUIDFromString(raw)
		if err != nil {
			return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("warehouse", err))
		}
		warehouseFilter = &warehouseID
	}

	query, err := queries.NewGetOrdersQuery(statusFilter, warehouseFilter)
	if err != nil {
		return respondError(ctx, err)
	}

	orders, err := s.getOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]OrderResponse, len(orders))
	for i, o := range orders {
		response[i] = OrderResponse{
			ID:          o.ID.String(),
			OrderNumber: o.OrderNumber,
			CustomerID:  o.CustomerID.String(),
			WarehouseID: o.WarehouseID.String(),
			Status:      o.Status.String(),
			TotalAmount: o.TotalAmount.StringFixed(2),
			OrderDate:   o.OrderDate,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetAvailableBatches handles GET /api/v1/orders/{id}/available-batches -
// returns the allocation proposal for the order, candidates in
// first-expired-first-out order. This is a read-only preview; nothing is
// reserved.
func (s *Server) GetAvailableBatches(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("order id", err))
	}

	query, err := queries.NewGetAvailableBatchesQuery(orderID)
	if err != nil {
		return respondError(ctx, err)
	}

	proposal, err := s.getAvailableBatchesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]ItemCandidatesResponse, len(proposal))
	for i, item := range proposal {
		candidates := make([]BatchCandidateResponse, len(item.Candidates))
		for j, c := range item.Candidates {
			candidates[j] = BatchCandidateResponse{
				BatchID:     c.BatchID.String(),
				BatchNumber: c.BatchNumber,
				ExpiryDate:  c.ExpiryDate,
				Available:   c.Available,
				Location:    c.Location,
			}
		}
		response[i] = ItemCandidatesResponse{
			SkuID:      item.SKUID.String(),
			Required:   item.Required,
			Candidates: candidates,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ChangeOrderStatus handles PATCH /api/v1/orders/{id}/status - moves an order
// to the requested workflow status on behalf of the acting principal.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("order id", err))
	}

	var req ChangeOrderStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	actor, err := actorFromRequest(ctx)
	if err != nil {
		return respondError(ctx, err)
	}

	target, err := order.StatusFromString(req.Status)
	if err != nil {
		return respondError(ctx, err)
	}

	selections := make([]commands.BatchSelection, 0, len(req.Selections))
	for _, sel := range req.Selections {
		skuID, skuErr := kernel.UUIDFromString(sel.SkuID)
		if skuErr != nil {
			return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("sku_id", skuErr))
		}
		batchID, batchErr := kernel.UUIDFromString(sel.BatchID)
		if batchErr != nil {
			return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("batch_id", batchErr))
		}
		selections = append(selections, commands.BatchSelection{
			SKUID:    skuID,
			BatchID:  batchID,
			Quantity: sel.Quantity,
		})
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, actor, target, selections)
	if err != nil {
		return respondError(ctx, err)
	}

	updated, err := s.changeOrderStatusHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		s.recordRejection(err)
		return respondError(ctx, err)
	}

	s.metrics.TransitionsApplied.WithLabelValues(updated.Status().String()).Inc()
	return ctx.JSON(http.StatusOK, orderToResponse(updated))
}

// ReceiveBatch handles POST /api/v1/batches - records a received stock batch.
func (s *Server) ReceiveBatch(ctx echo.Context) error {
	var req ReceiveBatchRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	skuID, err := kernel.UUIDFromString(req.SkuID)
	if err != nil {
		return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("sku_id", err))
	}
	warehouseID, err := kernel.UUIDFromString(req.WarehouseID)
	if err != nil {
		return respondError(ctx, errs.NewValueIsInvalidErrorWithCause("warehouse_id", err))
	}

	cmd, err := commands.NewReceiveBatchCommand(
		kernel.NewUUID(),
		skuID,
		warehouseID,
		req.BatchNumber,
		req.ExpiryDate,
		req.Quantity,
		req.Location,
	)
	if err != nil {
		return respondError(ctx, err)
	}

	batch, err := s.receiveBatchHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	s.metrics.BatchesReceived.Inc()
	return ctx.JSON(http.StatusCreated, BatchResponse{
		ID:          batch.ID().String(),
		SkuID:       batch.SKU().String(),
		WarehouseID: batch.Warehouse().String(),
		BatchNumber: batch.BatchNumber(),
		ExpiryDate:  batch.ExpiryDate(),
		Quantity:    batch.CurrentQuantity(),
		Reserved:    batch.Reserved(),
		Location:    batch.Location(),
	})
}

func (s *Server) recordRejection(err error) {
	switch {
	case errors.Is(err, errs.ErrVersionIsInvalid):
		s.metrics.VersionConflicts.Inc()
		s.metrics.TransitionsRejected.WithLabelValues("version_conflict").Inc()
	case errors.Is(err, inventory.ErrInsufficientStock):
		s.metrics.StockConflicts.Inc()
		s.metrics.TransitionsRejected.WithLabelValues("insufficient_stock").Inc()
	case errors.Is(err, services.ErrUnauthorized):
		s.metrics.TransitionsRejected.WithLabelValues("unauthorized").Inc()
	case errors.Is(err, order.ErrInvalidTransition):
		s.metrics.TransitionsRejected.WithLabelValues("invalid_transition").Inc()
	default:
		s.metrics.TransitionsRejected.WithLabelValues("other").Inc()
	}
}

// actorFromRequest builds the acting principal from the identity headers.
func actorFromRequest(ctx echo.Context) (*staff.Actor, error) {
	rawID := strings.TrimSpace(ctx.Request().Header.Get(HeaderActorID))
	if rawID == "" {
		return nil, errs.NewValueIsRequiredError(HeaderActorID + " header")
	}
	actorID, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(HeaderActorID+" header", err)
	}

	role, err := staff.RoleFromString(strings.TrimSpace(ctx.Request().Header.Get(HeaderActorRole)))
	if err != nil {
		return nil, err
	}

	var warehouseID *kernel.UUID
	if rawWarehouse := strings.TrimSpace(ctx.Request().Header.Get(HeaderActorWarehouse)); rawWarehouse != "" {
		id, warehouseErr := kernel.UUIDFromString(rawWarehouse)
		if warehouseErr != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause(HeaderActorWarehouse+" header", warehouseErr)
		}
		warehouseID = &id
	}

	return staff.NewActor(actorID, role, warehouseID)
}

func orderToResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:          o.ID().String(),
		OrderNumber: o.OrderNumber(),
		CustomerID:  o.Customer().String(),
		WarehouseID: o.Warehouse().String(),
		Status:      o.Status().String(),
		TotalAmount: o.TotalAmount().String(),
		OrderDate:   o.OrderDate(),
	}
}

// respondError maps domain and application errors onto HTTP status codes.
func respondError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, errs.ErrVersionIsInvalid):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, Error{
		Code:    code,
		Message: err.Error(),
	})
}
