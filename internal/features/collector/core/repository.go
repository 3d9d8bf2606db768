package collector_core

import (
	"context"
	"nesttelemetry/internal/features/logging"
	"time"
)

// Repository persists accepted telemetry grouped by UTC day.
type Repository interface {
	AppendLogs(ctx context.Context, day time.Time, logs []logging.LogEntry) error
	AppendMetrics(ctx context.Context, day time.Time, batch MetricsBatch) error

	// GetLogs and GetMetrics return an empty slice for a day with no data.
	GetLogs(ctx context.Context, day time.Time) ([]logging.LogEntry, error)
	GetMetrics(ctx context.Context, day time.Time) ([]MetricsBatch, error)

	// DeleteBefore removes every day strictly older than cutoff's day and
	// returns how many days were removed.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)

	Ping(ctx context.Context) error
}
