package cmd

import (
	"log/slog"
	"os"
	"time"

	"fulfillment/internal/adapters/out/kafka"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/metrics"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	publisher  commands.StatusChangePublisher
	metrics    *metrics.Registry
	logger     *slog.Logger

	expiryWindow time.Duration
}

func NewCompositionRoot(config Config, gormDB *gorm.DB) CompositionRoot {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Eventing is optional: without a broker the workflow runs unchanged and
	// transitions are simply not announced.
	var publisher commands.StatusChangePublisher = commands.NoopStatusChangePublisher{}
	if config.KafkaHost != "" && config.KafkaOrderChangedTopic != "" {
		publisher = kafka.NewOrderStatusPublisher(config.KafkaHost, config.KafkaOrderChangedTopic)
	}

	expiryWindow := 72 * time.Hour
	if config.ExpiryWarningWindow != "" {
		if parsed, err := time.ParseDuration(config.ExpiryWarningWindow); err == nil && parsed > 0 {
			expiryWindow = parsed
		} else {
			logger.Warn("Invalid expiry warning window, using default",
				"value", config.ExpiryWarningWindow, "default", expiryWindow.String())
		}
	}

	return CompositionRoot{
		gormDB:       gormDB,
		uowFactory:   *postgres.NewGormUnitOfWorkFactory(gormDB),
		publisher:    publisher,
		metrics:      metrics.NewRegistry(),
		logger:       logger,
		expiryWindow: expiryWindow,
	}
}

func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

func (c *CompositionRoot) Metrics() *metrics.Registry {
	return c.metrics
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeOrderStatusCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateReceiveBatchCommandHandler() commands.ReceiveBatchCommandHandler {
	var f commands.BatchUoWFactory = FuncBatchUoWFactory(func() commands.BatchUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReceiveBatchCommandHandler(f)
}

func (c *CompositionRoot) CreateGetOrdersQueryHandler() queries.GetOrdersQueryHandler {
	return queries.NewGetOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableBatchesQueryHandler() queries.GetAvailableBatchesQueryHandler {
	return queries.NewGetAvailableBatchesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.gormDB, c.expiryWindow, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncBatchUoWFactory func() commands.BatchUoW

func (f FuncBatchUoWFactory) Create() commands.BatchUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
