package collector_core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"nesttelemetry/internal/features/logging"
	"nesttelemetry/internal/features/monitoring"
	time_parser "nesttelemetry/internal/util/time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const insertBatchSize = 500

type PostgresRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewPostgresRepository migrates the telemetry tables before returning.
func NewPostgresRepository(db *gorm.DB, logger *slog.Logger) (*PostgresRepository, error) {
	if err := db.AutoMigrate(&LogRecord{}, &MetricsBatchRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate telemetry tables: %w", err)
	}

	return &PostgresRepository{db: db, logger: logger}, nil
}

func (r *PostgresRepository) AppendLogs(ctx context.Context, day time.Time, logs []logging.LogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	dayKey := time_parser.FormatDay(day)
	records := make([]LogRecord, 0, len(logs))

	for i, entry := range logs {
		contextJSON, err := encodeContext(entry.Context)
		if err != nil {
			return err
		}

		records = append(records, LogRecord{
			ID:        uuid.New(),
			Day:       dayKey,
			Position:  i,
			Timestamp: entry.Timestamp,
			Level:     string(entry.Level),
			Message:   entry.Message,
			Context:   contextJSON,
			UserID:    entry.UserID,
			SessionID: entry.SessionID,
			CreatedAt: now,
		})
	}

	return r.db.WithContext(ctx).CreateInBatches(records, insertBatchSize).Error
}

func (r *PostgresRepository) AppendMetrics(ctx context.Context, day time.Time, batch MetricsBatch) error {
	metricsJSON, err := json.Marshal(nonNilMetrics(batch.Metrics))
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	actionsJSON, err := json.Marshal(nonNilActions(batch.UserActions))
	if err != nil {
		return fmt.Errorf("failed to encode user actions: %w", err)
	}

	record := &MetricsBatchRecord{
		ID:          uuid.New(),
		Day:         time_parser.FormatDay(day),
		Timestamp:   batch.Timestamp,
		Metrics:     string(metricsJSON),
		UserActions: string(actionsJSON),
		CreatedAt:   time.Now().UTC(),
	}

	return r.db.WithContext(ctx).Create(record).Error
}

func (r *PostgresRepository) GetLogs(ctx context.Context, day time.Time) ([]logging.LogEntry, error) {
	var records []LogRecord

	err := r.db.WithContext(ctx).
		Where("day = ?", time_parser.FormatDay(day)).
		Order("created_at ASC, position ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	logs := make([]logging.LogEntry, 0, len(records))
	for _, record := range records {
		entry := logging.LogEntry{
			Timestamp: record.Timestamp,
			Level:     logging.LogLevel(record.Level),
			Message:   record.Message,
			UserID:    record.UserID,
			SessionID: record.SessionID,
		}

		if record.Context != "" {
			if err := json.Unmarshal([]byte(record.Context), &entry.Context); err != nil {
				r.logger.Warn("Skipping malformed log context",
					slog.String("id", record.ID.String()),
					slog.String("error", err.Error()))
			}
		}

		logs = append(logs, entry)
	}

	return logs, nil
}

func (r *PostgresRepository) GetMetrics(ctx context.Context, day time.Time) ([]MetricsBatch, error) {
	var records []MetricsBatchRecord

	err := r.db.WithContext(ctx).
		Where("day = ?", time_parser.FormatDay(day)).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	batches := make([]MetricsBatch, 0, len(records))
	for _, record := range records {
		batch := MetricsBatch{Timestamp: record.Timestamp}

		if err := json.Unmarshal([]byte(record.Metrics), &batch.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics of batch %s: %w", record.ID, err)
		}

		if err := json.Unmarshal([]byte(record.UserActions), &batch.UserActions); err != nil {
			return nil, fmt.Errorf("failed to decode user actions of batch %s: %w", record.ID, err)
		}

		batches = append(batches, batch)
	}

	return batches, nil
}

func (r *PostgresRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	cutoffDay := time_parser.FormatDay(cutoff)
	removedDays := make(map[string]struct{})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&LogRecord{}, &MetricsBatchRecord{}} {
			var days []string
			if err := tx.Model(model).Where("day < ?", cutoffDay).Distinct().Pluck("day", &days).Error; err != nil {
				return err
			}

			for _, day := range days {
				removedDays[day] = struct{}{}
			}

			if err := tx.Where("day < ?", cutoffDay).Delete(model).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired telemetry: %w", err)
	}

	return len(removedDays), nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec("SELECT 1").Error
}

func encodeContext(fields map[string]any) (string, error) {
	if len(fields) == 0 {
		return "", nil
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode log context: %w", err)
	}

	return string(data), nil
}

func nonNilMetrics(metrics []monitoring.PerformanceMetric) []monitoring.PerformanceMetric {
	if metrics == nil {
		return []monitoring.PerformanceMetric{}
	}
	return metrics
}

func nonNilActions(actions []monitoring.UserAction) []monitoring.UserAction {
	if actions == nil {
		return []monitoring.UserAction{}
	}
	return actions
}
