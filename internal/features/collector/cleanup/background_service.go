package collector_cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nesttelemetry/internal/config"
	collector_core "nesttelemetry/internal/features/collector/core"
)

const (
	retentionCleanupInterval = 1 * time.Minute
	retentionCleanupTimeout  = 30 * time.Second
)

// RetentionBackgroundService deletes stored days older than retentionDays.
type RetentionBackgroundService struct {
	repository    collector_core.Repository
	retentionDays int
	logger        *slog.Logger
	now           func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRetentionBackgroundService(
	repository collector_core.Repository,
	retentionDays int,
	logger *slog.Logger,
) *RetentionBackgroundService {
	return &RetentionBackgroundService{
		repository:    repository,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *RetentionBackgroundService) StartWorkers() {
	if s.retentionDays <= 0 {
		s.logger.Info("Retention cleanup disabled, telemetry is kept forever")
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("Starting retention cleanup worker",
		slog.Int("retentionDays", s.retentionDays),
		slog.Duration("interval", retentionCleanupInterval))

	s.wg.Add(1)
	go s.retentionWorker()
}

func (s *RetentionBackgroundService) Shutdown() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
}

func (s *RetentionBackgroundService) ExecuteAllTasksForTest() error {
	if err := s.enforceRetention(context.Background()); err != nil {
		s.logger.Error("Error during retention cleanup in test execution", slog.String("error", err.Error()))
		return err
	}

	return nil
}

func (s *RetentionBackgroundService) retentionWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(retentionCleanupInterval)
	defer ticker.Stop()

	s.runOnce()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Retention cleanup worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			s.logger.Info("Retention cleanup worker shutting down")
			return

		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *RetentionBackgroundService) runOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, retentionCleanupTimeout)
	defer cancel()

	if err := s.enforceRetention(ctx); err != nil {
		s.logger.Error("Error during retention cleanup", slog.String("error", err.Error()))
	}
}

func (s *RetentionBackgroundService) enforceRetention(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	cutoff := s.now().UTC().AddDate(0, 0, -s.retentionDays)

	removedDays, err := s.repository.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired telemetry: %w", err)
	}

	if removedDays > 0 {
		s.logger.Info("Expired telemetry removed",
			slog.Int("days", removedDays),
			slog.Time("cutoff", cutoff))
	}

	return nil
}
