// Package jobs provides scheduled background tasks for the fulfillment system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the fulfillment service.
//
// # Available Jobs
//
// 1. ExpiryWatchJob - Runs hourly to report batches expiring within the warning window while still holding stock
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with database access and the warning window
//	jobManager := jobs.NewJobManager(db, 72*time.Hour, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The expiry watch runs on the cron expression "0 0 * * * *", the top of
// every hour. Expiring stock is a slow-moving condition; an hourly report is
// timely enough for warehouse follow-up.
//
// # Error Handling
//
// - Scan failures are logged and retried on the next tick
// - The job is read-only: it never mutates the ledger
// - Failed job starts will stop any already running jobs
package jobs
