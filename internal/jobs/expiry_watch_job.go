package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ExpiryWatchJob periodically scans the batch ledger for stock that expires
// within the warning window and still has units on the shelf. It only reports;
// disposing of expiring stock is a warehouse process, not an automated one.
type ExpiryWatchJob struct {
	db     *gorm.DB
	window time.Duration
	cron   *cron.Cron
	logger *slog.Logger
}

// expiringBatchRow is the scan target for the expiry query.
type expiringBatchRow struct {
	ID              string
	SKUID           string
	WarehouseID     string
	BatchNumber     string
	ExpiryDate      time.Time
	CurrentQuantity int
	Reserved        int
	Location        string
}

// NewExpiryWatchJob creates a job that reports batches expiring within window.
func NewExpiryWatchJob(db *gorm.DB, window time.Duration, logger *slog.Logger) *ExpiryWatchJob {
	return &ExpiryWatchJob{
		db:     db,
		window: window,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "expiry_watch_job"),
	}
}

// Start begins the expiry watch job to run at the top of every hour.
func (j *ExpiryWatchJob) Start() error {
	_, err := j.cron.AddFunc("0 0 * * * *", func() {
		j.Run(context.Background())
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expiry watch job started (running hourly)",
		"window", j.window.String())
	return nil
}

// Run executes one expiry scan. Exposed so the scan can be triggered outside
// the schedule.
func (j *ExpiryWatchJob) Run(ctx context.Context) {
	deadline := time.Now().UTC().Add(j.window)

	var rows []expiringBatchRow
	err := j.db.WithContext(ctx).Raw(`
		SELECT id, sku_id, warehouse_id, batch_number, expiry_date,
		       current_quantity, reserved, location
		FROM batches
		WHERE expiry_date <= ? AND current_quantity > 0
		ORDER BY expiry_date, batch_number`, deadline,
	).Scan(&rows).Error
	if err != nil {
		j.logger.ErrorContext(ctx, "Expiry watch scan failed", "error", err)
		return
	}

	for _, row := range rows {
		j.logger.WarnContext(ctx, "Batch expiring with stock on shelf",
			"batch_id", row.ID,
			"batch_number", row.BatchNumber,
			"sku_id", row.SKUID,
			"warehouse_id", row.WarehouseID,
			"expiry_date", row.ExpiryDate.Format(time.RFC3339),
			"current_quantity", row.CurrentQuantity,
			"reserved", row.Reserved,
			"location", row.Location,
		)
	}

	j.logger.InfoContext(ctx, "Expiry watch scan completed", "expiring_batches", len(rows))
}

// Stop stops the expiry watch job.
func (j *ExpiryWatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Expiry watch job stopped")
}
