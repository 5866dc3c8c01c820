package queries_test

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type GetOrdersQueryHandlerTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	handler   queries.GetOrdersQueryHandler
}

func (suite *GetOrdersQueryHandlerTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.ItemDTO{}, &orderrepo.AllocationDTO{})
	suite.Require().NoError(err)

	suite.handler = queries.NewGetOrdersQueryHandler(db)
}

func (suite *GetOrdersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *GetOrdersQueryHandlerTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE orders CASCADE").Error
	suite.Require().NoError(err)
}

func (suite *GetOrdersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query, err := queries.NewGetOrdersQuery(nil, nil)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetOrdersQueryHandlerTestSuite) TestHandle_NoFilters_ReturnsNewestFirst() {
	warehouseID := kernel.NewUUID()
	older := suite.seedOrder("ORD-20250101090000-AAAAAA", warehouseID, order.Pending,
		time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	newer := suite.seedOrder("ORD-20250102090000-BBBBBB", warehouseID, order.Pending,
		time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC))

	query, err := queries.NewGetOrdersQuery(nil, nil)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	suite.Equal(newer.OrderNumber(), result[0].OrderNumber)
	suite.Equal(older.OrderNumber(), result[1].OrderNumber)
	suite.True(result[0].ID.IsEqual(newer.ID()))
	suite.Equal("26.00", result[0].TotalAmount.StringFixed(2))
}

func (suite *GetOrdersQueryHandlerTestSuite) TestHandle_StatusFilter() {
	warehouseID := kernel.NewUUID()
	suite.seedOrder("ORD-20250101090000-AAAAAA", warehouseID, order.Pending,
		time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	confirmed := suite.seedOrder("ORD-20250102090000-BBBBBB", warehouseID, order.Confirmed,
		time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC))

	status := order.Confirmed
	query, err := queries.NewGetOrdersQuery(&status, nil)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(confirmed.OrderNumber(), result[0].OrderNumber)
	suite.Equal(order.Confirmed, result[0].Status)
}

func (suite *GetOrdersQueryHandlerTestSuite) TestHandle_WarehouseFilter() {
	warehouseA := kernel.NewUUID()
	warehouseB := kernel.NewUUID()
	inA := suite.seedOrder("ORD-20250101090000-AAAAAA", warehouseA, order.Pending,
		time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	suite.seedOrder("ORD-20250102090000-BBBBBB", warehouseB, order.Pending,
		time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC))

	query, err := queries.NewGetOrdersQuery(nil, &warehouseA)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(inA.OrderNumber(), result[0].OrderNumber)
	suite.True(result[0].WarehouseID.IsEqual(warehouseA))
}

func (suite *GetOrdersQueryHandlerTestSuite) TestHandle_CombinedFilters() {
	warehouseA := kernel.NewUUID()
	warehouseB := kernel.NewUUID()
	match := suite.seedOrder("ORD-20250101090000-AAAAAA", warehouseA, order.Confirmed,
		time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	suite.seedOrder("ORD-20250102090000-BBBBBB", warehouseA, order.Pending,
		time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC))
	suite.seedOrder("ORD-20250103090000-CCCCCC", warehouseB, order.Confirmed,
		time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC))

	status := order.Confirmed
	query, err := queries.NewGetOrdersQuery(&status, &warehouseA)
	suite.Require().NoError(err)

	result, err := suite.handler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(match.OrderNumber(), result[0].OrderNumber)
}

func (suite *GetOrdersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	invalidQuery := queries.GetOrdersQuery{}

	result, err := suite.handler.Handle(context.Background(), invalidQuery)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetOrdersQuery constructor")
}

func (suite *GetOrdersQueryHandlerTestSuite) seedOrder(
	orderNumber string,
	warehouseID kernel.UUID,
	status order.Status,
	orderDate time.Time,
) *order.Order {
	price1, err := kernel.MoneyFromString("10.50")
	suite.Require().NoError(err)
	price2, err := kernel.MoneyFromString("2.00")
	suite.Require().NoError(err)

	item1, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), 2, price1)
	suite.Require().NoError(err)
	item2, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), 5, price2)
	suite.Require().NoError(err)

	o, err := order.RestoreOrder(
		kernel.NewUUID(), orderNumber, kernel.NewUUID(), warehouseID, kernel.NewUUID(),
		"12 Harbor Rd", orderDate, []*order.Item{item1, item2}, status, 1,
	)
	suite.Require().NoError(err)

	repo := orderrepo.NewGormOrderRepository(suite.db, &mockAggregateTracker{})
	err = repo.Add(context.Background(), o)
	suite.Require().NoError(err)

	return o
}

func TestGetOrdersQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetOrdersQueryHandlerTestSuite))
}

// mockAggregateTracker is a no-op tracker; query tests do not inspect
// tracked aggregates.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}
