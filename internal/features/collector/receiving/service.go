package collector_receiving

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	collector_core "nesttelemetry/internal/features/collector/core"
	"nesttelemetry/internal/features/monitoring"
	rate_limit "nesttelemetry/internal/util/rate_limit"
	time_parser "nesttelemetry/internal/util/time"
)

const (
	MaxBatchSize      = 10_000
	MaxBatchSizeBytes = 10 * 1024 * 1024

	statusSuccess = "success"
)

type ReceivingService struct {
	repository  collector_core.Repository
	rateLimiter *rate_limit.RateLimiter
	logger      *slog.Logger
	now         func() time.Time
}

func NewReceivingService(
	repository collector_core.Repository,
	rateLimiter *rate_limit.RateLimiter,
	logger *slog.Logger,
) *ReceivingService {
	return &ReceivingService{
		repository:  repository,
		rateLimiter: rateLimiter,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitLogs validates the whole batch and stores it under today's UTC day.
// A single invalid entry rejects the batch.
func (s *ReceivingService) SubmitLogs(
	ctx context.Context,
	request *SubmitLogsRequestDTO,
	clientIP string,
) (*SubmitResponseDTO, error) {
	if err := s.validateRateLimit(clientIP); err != nil {
		return nil, err
	}

	if err := validateBatchSize(len(request.Logs)); err != nil {
		return nil, err
	}

	for i, entry := range request.Logs {
		if !entry.Level.IsValid() {
			return nil, &collector_core.ValidationError{
				Code:    collector_core.ErrorInvalidLogLevel,
				Message: fmt.Sprintf("invalid log level %q", entry.Level),
				Field:   fmt.Sprintf("logs[%d].level", i),
			}
		}

		if entry.Timestamp == "" {
			return nil, &collector_core.ValidationError{
				Code:    collector_core.ErrorMissingTimestamp,
				Message: "log timestamp is required",
				Field:   fmt.Sprintf("logs[%d].timestamp", i),
			}
		}
	}

	if err := s.repository.AppendLogs(ctx, s.now().UTC(), request.Logs); err != nil {
		s.logger.Error("Failed to store logs",
			slog.Int("count", len(request.Logs)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to store logs: %w", err)
	}

	s.logger.Debug("Logs received", slog.Int("count", len(request.Logs)), slog.String("clientIP", clientIP))

	return &SubmitResponseDTO{
		Status:  statusSuccess,
		Message: fmt.Sprintf("Received %d logs", len(request.Logs)),
	}, nil
}

// SubmitMetrics stores the metrics and user actions as one batch stamped
// with the receive time.
func (s *ReceivingService) SubmitMetrics(
	ctx context.Context,
	request *SubmitMetricsRequestDTO,
	clientIP string,
) (*SubmitResponseDTO, error) {
	if err := s.validateRateLimit(clientIP); err != nil {
		return nil, err
	}

	if err := validateBatchSize(len(request.Metrics) + len(request.UserActions)); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	batch := collector_core.MetricsBatch{
		Timestamp:   time_parser.FormatISO(now),
		Metrics:     request.Metrics,
		UserActions: request.UserActions,
	}
	if batch.Metrics == nil {
		batch.Metrics = []monitoring.PerformanceMetric{}
	}
	if batch.UserActions == nil {
		batch.UserActions = []monitoring.UserAction{}
	}

	if err := s.repository.AppendMetrics(ctx, now, batch); err != nil {
		s.logger.Error("Failed to store metrics",
			slog.Int("metrics", len(batch.Metrics)),
			slog.Int("userActions", len(batch.UserActions)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to store metrics: %w", err)
	}

	return &SubmitResponseDTO{
		Status: statusSuccess,
		Message: fmt.Sprintf(
			"Received %d metrics and %d user actions",
			len(batch.Metrics),
			len(batch.UserActions),
		),
	}, nil
}

func (s *ReceivingService) validateRateLimit(clientIP string) error {
	result := s.rateLimiter.CheckRateLimit(clientIP)
	if result.Allowed {
		return nil
	}

	s.logger.Warn("Rate limit exceeded", slog.String("clientIP", clientIP))

	return &collector_core.ValidationError{
		Code:          collector_core.ErrorRateLimitExceeded,
		Message:       "rate limit exceeded",
		RetryAfterSec: result.RetryAfterSec,
	}
}

func validateBatchSize(size int) error {
	if size > MaxBatchSize {
		return &collector_core.ValidationError{
			Code:    collector_core.ErrorBatchTooLarge,
			Message: fmt.Sprintf("batch size %d exceeds maximum %d", size, MaxBatchSize),
		}
	}

	return nil
}
