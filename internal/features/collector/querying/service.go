package collector_querying

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	collector_core "nesttelemetry/internal/features/collector/core"
	"nesttelemetry/internal/features/logging"
	time_parser "nesttelemetry/internal/util/time"

	"golang.org/x/sync/singleflight"
)

type QueryingService struct {
	repository   collector_core.Repository
	logger       *slog.Logger
	singleflight singleflight.Group // Concurrent reads of one day share a single load
}

func NewQueryingService(repository collector_core.Repository, logger *slog.Logger) *QueryingService {
	return &QueryingService{repository: repository, logger: logger}
}

func (s *QueryingService) GetLogs(ctx context.Context, dayStr string) ([]logging.LogEntry, error) {
	day, err := parseDay(dayStr)
	if err != nil {
		return nil, err
	}

	result, err, _ := s.singleflight.Do("logs:"+dayStr, func() (any, error) {
		return s.repository.GetLogs(context.WithoutCancel(ctx), day)
	})
	if err != nil {
		s.logger.Error("Failed to read logs", slog.String("day", dayStr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}

	return result.([]logging.LogEntry), nil
}

func (s *QueryingService) GetMetrics(ctx context.Context, dayStr string) ([]collector_core.MetricsBatch, error) {
	day, err := parseDay(dayStr)
	if err != nil {
		return nil, err
	}

	result, err, _ := s.singleflight.Do("metrics:"+dayStr, func() (any, error) {
		return s.repository.GetMetrics(context.WithoutCancel(ctx), day)
	})
	if err != nil {
		s.logger.Error("Failed to read metrics", slog.String("day", dayStr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to read metrics: %w", err)
	}

	return result.([]collector_core.MetricsBatch), nil
}

func parseDay(dayStr string) (time.Time, error) {
	day, ok := time_parser.ParseDay(dayStr)
	if !ok {
		return time.Time{}, &collector_core.ValidationError{
			Code:    collector_core.ErrorInvalidDate,
			Message: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", dayStr),
			Field:   "date",
		}
	}

	return day, nil
}
