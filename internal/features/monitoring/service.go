package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"sync"
	"time"

	"nesttelemetry/internal/config"
	"nesttelemetry/internal/features/telemetry/buffer"
	"nesttelemetry/internal/features/telemetry/transport"
	time_parser "nesttelemetry/internal/util/time"
)

const (
	DefaultMaxMetrics    = 1000
	DefaultFlushInterval = 60 * time.Second

	sendTimeout          = 10 * time.Second
	shutdownFlushTimeout = 5 * time.Second
)

// EventLogger is the part of the log pipeline the monitoring service reports
// through.
type EventLogger interface {
	Debug(message string, fields map[string]any)
	Info(message string, fields map[string]any)
	Error(message string, fields map[string]any)
}

type Options struct {
	MaxMetrics    int
	FlushInterval time.Duration
}

// MonitoringService buffers performance metrics and user actions and sends
// both in one payload per flush.
//
// The two buffers fail differently. A failed send restores the metrics
// snapshot in front of the metrics buffer. The actions buffer is only ever
// cleared after a successful send, so on failure it is resent whole next time.
// A successful send clears the actions buffer completely, including actions
// tracked while the request was in flight.
type MonitoringService struct {
	metrics       *buffer.Buffer[PerformanceMetric]
	actions       *buffer.Buffer[UserAction]
	sender        transport.Sender
	eventLogger   EventLogger
	logger        *slog.Logger
	flushInterval time.Duration
	startedAt     time.Time
	pageLoadOnce  sync.Once

	lifecycleMutex sync.Mutex
	isStopped      bool
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
}

func NewMonitoringService(
	sender transport.Sender,
	eventLogger EventLogger,
	logger *slog.Logger,
	opts Options,
) *MonitoringService {
	if opts.MaxMetrics <= 0 {
		opts.MaxMetrics = DefaultMaxMetrics
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}

	return &MonitoringService{
		metrics:       buffer.New[PerformanceMetric](opts.MaxMetrics),
		actions:       buffer.New[UserAction](opts.MaxMetrics),
		sender:        sender,
		eventLogger:   eventLogger,
		logger:        logger,
		flushInterval: opts.FlushInterval,
		startedAt:     time.Now(),
	}
}

func (s *MonitoringService) Init(ctx context.Context) {
	s.lifecycleMutex.Lock()
	defer s.lifecycleMutex.Unlock()

	if s.cancel != nil || s.isStopped {
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	s.wg.Add(1)
	go s.flushWorker()

	s.logger.InfoContext(ctx, "Monitoring service started",
		slog.Duration("flushInterval", s.flushInterval),
		slog.Int("maxMetrics", s.metrics.MaxSize()))
}

func (s *MonitoringService) Shutdown() {
	s.lifecycleMutex.Lock()
	if s.isStopped {
		s.lifecycleMutex.Unlock()
		return
	}
	s.isStopped = true
	cancel := s.cancel
	s.lifecycleMutex.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}

	ctx, cancelFlush := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancelFlush()

	if err := s.Flush(ctx); err != nil {
		s.logger.Warn("Final metrics flush failed, pending metrics not delivered",
			slog.Int("pendingMetrics", s.metrics.Len()),
			slog.Int("pendingActions", s.actions.Len()),
			slog.String("error", err.Error()))
	}

	s.logger.Info("Monitoring service stopped")
}

// RecordMetric drops NaN and infinite values, which JSON cannot carry.
func (s *MonitoringService) RecordMetric(name string, value float64, tags map[string]string) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		s.logger.Warn("Dropping non-finite metric value",
			slog.String("metric", name),
			slog.Float64("value", value))
		return
	}

	tags = maps.Clone(tags)

	s.metrics.Append(PerformanceMetric{
		Name:      name,
		Value:     value,
		Timestamp: time_parser.NowISO(),
		Tags:      tags,
	})

	s.eventLogger.Debug(fmt.Sprintf("Metric recorded: %s", name), map[string]any{
		"value": value,
		"tags":  tags,
	})
}

func (s *MonitoringService) TrackUserAction(action string, fields map[string]any) {
	fields = transport.SanitizeFields(fields)

	s.actions.Append(UserAction{
		Action:    action,
		Timestamp: time_parser.NowISO(),
		Context:   fields,
	})

	s.eventLogger.Info(fmt.Sprintf("User action: %s", action), fields)
}

// Flush sends the buffered metrics together with a copy of the buffered user
// actions. When both buffers are empty no request is made.
func (s *MonitoringService) Flush(ctx context.Context) error {
	if s.metrics.Len() == 0 && s.actions.Len() == 0 {
		return nil
	}

	metricsSnapshot := s.metrics.Take()
	actionsSnapshot := s.actions.Snapshot()

	request := &SendMetricsRequest{
		Metrics:     metricsSnapshot,
		UserActions: actionsSnapshot,
	}
	if request.Metrics == nil {
		request.Metrics = []PerformanceMetric{}
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := s.sender.Send(ctx, transport.MetricsPath, request); err != nil {
		s.metrics.Restore(metricsSnapshot)

		s.eventLogger.Error("Failed to send metrics to server", map[string]any{
			"error":   err.Error(),
			"metrics": len(metricsSnapshot),
			"actions": len(actionsSnapshot),
		})

		return err
	}

	s.actions.Clear()

	return nil
}

func (s *MonitoringService) GetMetrics() []PerformanceMetric {
	return s.metrics.Snapshot()
}

func (s *MonitoringService) GetUserActions() []UserAction {
	return s.actions.Snapshot()
}

func (s *MonitoringService) ClearMetrics() {
	s.metrics.Clear()
	s.actions.Clear()
}

func (s *MonitoringService) flushWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Metrics flush worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			_ = s.Flush(s.ctx)
		}
	}
}
