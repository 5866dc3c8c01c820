package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/staff"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTransitionOrderRepository struct{ mock.Mock }

func (m *MockTransitionOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockTransitionOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}
func (m *MockTransitionOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockTransitionBatchRepository struct{ mock.Mock }

func (m *MockTransitionBatchRepository) Add(ctx context.Context, b *inventory.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockTransitionBatchRepository) Update(ctx context.Context, b *inventory.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockTransitionBatchRepository) Get(_ context.Context, _ kernel.UUID) (*inventory.Batch, error) {
	return nil, errors.New("not implemented in mock")
}
func (m *MockTransitionBatchRepository) GetForUpdate(ctx context.Context, ids []kernel.UUID) ([]*inventory.Batch, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Batch), args.Error(1)
}
func (m *MockTransitionBatchRepository) FindBySKU(_ context.Context, _, _ kernel.UUID) ([]*inventory.Batch, error) {
	return nil, errors.New("not implemented in mock")
}

type MockTransitionUoW struct{ mock.Mock }

func (m *MockTransitionUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockTransitionUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockTransitionUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *MockTransitionUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}
func (m *MockTransitionUoW) BatchRepository() ports.BatchRepository {
	args := m.Called()
	return args.Get(0).(ports.BatchRepository)
}

type MockTransitionUoWFactory struct{ mock.Mock }

func (m *MockTransitionUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	events []commands.OrderStatusChangedEvent
	err    error
}

func (p *capturingPublisher) PublishStatusChanged(_ context.Context, event commands.OrderStatusChangedEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type transitionFixture struct {
	orderRepo *MockTransitionOrderRepository
	batchRepo *MockTransitionBatchRepository
	uow       *MockTransitionUoW
	factory   *MockTransitionUoWFactory
	publisher *capturingPublisher
	handler   commands.ChangeOrderStatusCommandHandler
}

func newTransitionFixture() *transitionFixture {
	f := &transitionFixture{
		orderRepo: new(MockTransitionOrderRepository),
		batchRepo: new(MockTransitionBatchRepository),
		uow:       new(MockTransitionUoW),
		factory:   new(MockTransitionUoWFactory),
		publisher: &capturingPublisher{},
	}
	f.factory.On("Create").Return(f.uow).Once()
	f.uow.On("OrderRepository").Return(f.orderRepo)
	f.uow.On("BatchRepository").Return(f.batchRepo)
	f.handler = commands.NewChangeOrderStatusCommandHandler(f.factory, f.publisher, discardLogger())
	return f
}

func restoreTestOrder(t *testing.T, warehouseID kernel.UUID, items []*order.Item, status order.Status) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(
		kernel.NewUUID(),
		"ORD-20250102150405-1A2B3C",
		kernel.NewUUID(),
		warehouseID,
		kernel.NewUUID(),
		"12 Harbor Rd",
		time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC),
		items,
		status,
		2,
	)
	require.NoError(t, err)
	return o
}

func plainItem(t *testing.T, skuID kernel.UUID, quantity int) *order.Item {
	t.Helper()
	item, err := order.NewItem(kernel.NewUUID(), skuID, quantity, testMoney(t, "2.00"))
	require.NoError(t, err)
	return item
}

func allocatedItem(t *testing.T, skuID, batchID kernel.UUID, quantity int) *order.Item {
	t.Helper()
	item, err := order.RestoreItem(kernel.NewUUID(), skuID, quantity, testMoney(t, "2.00"),
		[]order.BatchAllocation{{BatchID: batchID, Quantity: quantity}})
	require.NoError(t, err)
	return item
}

func restoreTestBatch(t *testing.T, skuID, warehouseID kernel.UUID, current, reserved int) *inventory.Batch {
	t.Helper()
	batch, err := inventory.RestoreBatch(
		kernel.NewUUID(), skuID, warehouseID, "LOT-2025-001",
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), current, reserved, "A-01-03",
	)
	require.NoError(t, err)
	return batch
}

func TestChangeOrderStatusCommandHandler_Handle_Confirm(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, kernel.NewUUID(), 5)}, order.Pending)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleManager, nil), order.Confirmed, nil)
	require.NoError(t, err)

	updated, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, updated.Status())

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "PENDING", f.publisher.events[0].From)
	assert.Equal(t, "CONFIRMED", f.publisher.events[0].To)
	assert.Equal(t, ord.OrderNumber(), f.publisher.events[0].OrderNumber)

	f.orderRepo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_Unauthorized(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, kernel.NewUUID(), 5)}, order.Pending)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleViewer, nil), order.Confirmed, nil)
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUnauthorized)
	assert.Equal(t, order.Pending, ord.Status())
	assert.Empty(t, f.publisher.events)

	f.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestChangeOrderStatusCommandHandler_Handle_InvalidTransition(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, kernel.NewUUID(), 5)}, order.Confirmed)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleManager, nil), order.Confirmed, nil)
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Empty(t, f.publisher.events)

	f.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestChangeOrderStatusCommandHandler_Handle_CompletePicking(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	skuID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, skuID, 5)}, order.Picking)

	first := restoreTestBatch(t, skuID, warehouseID, 10, 0)
	second := restoreTestBatch(t, skuID, warehouseID, 10, 0)
	selections := []commands.BatchSelection{
		{SKUID: skuID, BatchID: first.ID(), Quantity: 3},
		{SKUID: skuID, BatchID: second.ID(), Quantity: 2},
	}

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.batchRepo.On("GetForUpdate", mock.Anything, []kernel.UUID{first.ID(), second.ID()}).
		Return([]*inventory.Batch{first, second}, nil).Once()
	f.batchRepo.On("Update", mock.Anything, mock.AnythingOfType("*inventory.Batch")).Return(nil).Times(2)
	f.orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleOperator, &warehouseID), order.Picked, selections)
	require.NoError(t, err)

	updated, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Picked, updated.Status())
	assert.Equal(t, 3, first.Reserved())
	assert.Equal(t, 2, second.Reserved())

	item := updated.Items()[0]
	require.Len(t, item.Allocations(), 2)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "PICKING", f.publisher.events[0].From)
	assert.Equal(t, "PICKED", f.publisher.events[0].To)

	f.orderRepo.AssertExpectations(t)
	f.batchRepo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_InsufficientStock(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	skuID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, skuID, 5)}, order.Picking)

	// 10 on the shelf but 8 already promised elsewhere.
	batch := restoreTestBatch(t, skuID, warehouseID, 10, 8)
	selections := []commands.BatchSelection{
		{SKUID: skuID, BatchID: batch.ID(), Quantity: 5},
	}

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.batchRepo.On("GetForUpdate", mock.Anything, []kernel.UUID{batch.ID()}).
		Return([]*inventory.Batch{batch}, nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleOperator, &warehouseID), order.Picked, selections)
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	assert.Equal(t, order.Picking, ord.Status())
	assert.Empty(t, f.publisher.events)

	f.batchRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestChangeOrderStatusCommandHandler_Handle_ShipDecrements(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	skuID := kernel.NewUUID()
	batch := restoreTestBatch(t, skuID, warehouseID, 10, 5)
	ord := restoreTestOrder(t, warehouseID,
		[]*order.Item{allocatedItem(t, skuID, batch.ID(), 5)}, order.Packed)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.batchRepo.On("GetForUpdate", mock.Anything, []kernel.UUID{batch.ID()}).
		Return([]*inventory.Batch{batch}, nil).Once()
	f.batchRepo.On("Update", mock.Anything, batch).Return(nil).Once()
	f.orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleOperator, &warehouseID), order.Shipped, nil)
	require.NoError(t, err)

	updated, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Shipped, updated.Status())
	assert.Equal(t, 5, batch.CurrentQuantity())
	assert.Equal(t, 0, batch.Reserved())

	f.batchRepo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_CancelReleasesReservations(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	skuID := kernel.NewUUID()
	batch := restoreTestBatch(t, skuID, warehouseID, 10, 5)
	ord := restoreTestOrder(t, warehouseID,
		[]*order.Item{allocatedItem(t, skuID, batch.ID(), 5)}, order.Picked)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.batchRepo.On("GetForUpdate", mock.Anything, []kernel.UUID{batch.ID()}).
		Return([]*inventory.Batch{batch}, nil).Once()
	f.batchRepo.On("Update", mock.Anything, batch).Return(nil).Once()
	f.orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleManager, nil), order.Cancelled, nil)
	require.NoError(t, err)

	updated, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, updated.Status())
	assert.Equal(t, 10, batch.CurrentQuantity())
	assert.Equal(t, 0, batch.Reserved())
	assert.Equal(t, 10, batch.Available())

	f.batchRepo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_CancelPendingTouchesNoBatches(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, kernel.NewUUID(), 5)}, order.Pending)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleManager, nil), order.Cancelled, nil)
	require.NoError(t, err)

	updated, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, updated.Status())

	f.batchRepo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
	f.uow.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	orderID := kernel.NewUUID()

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, orderID).
		Return(nil, errs.NewObjectNotFoundError("order", orderID.String())).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, testActor(t, staff.RoleManager, nil), order.Confirmed, nil)
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestChangeOrderStatusCommandHandler_Handle_VersionConflict(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	warehouseID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, kernel.NewUUID(), 5)}, order.Pending)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.orderRepo.On("Update", mock.Anything, ord).
		Return(errs.NewVersionIsInvalidErrorWithCause("order")).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleManager, nil), order.Confirmed, nil)
	require.NoError(t, err)

	_, err = f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	assert.Empty(t, f.publisher.events)

	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestChangeOrderStatusCommandHandler_Handle_PublishFailureDoesNotFail(t *testing.T) {
	ctx := t.Context()
	f := newTransitionFixture()
	f.publisher.err = errors.New("broker unavailable")
	warehouseID := kernel.NewUUID()
	ord := restoreTestOrder(t, warehouseID, []*order.Item{plainItem(t, kernel.NewUUID(), 5)}, order.Pending)

	f.uow.On("Begin", ctx).Return(nil).Once()
	f.orderRepo.On("Get", mock.Anything, ord.ID()).Return(ord, nil).Once()
	f.orderRepo.On("Update", mock.Anything, ord).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewChangeOrderStatusCommand(ord.ID(), testActor(t, staff.RoleManager, nil), order.Confirmed, nil)
	require.NoError(t, err)

	updated, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, updated.Status())
}
