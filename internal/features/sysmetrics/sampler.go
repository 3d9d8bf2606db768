package sysmetrics

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"nesttelemetry/internal/config"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	MetricCPUPercent        = "system_cpu_percent"
	MetricMemoryUsedPercent = "system_memory_used_percent"
	MetricGoroutines        = "process_goroutines"

	readTimeout = 5 * time.Second
)

type MetricRecorder interface {
	RecordMetric(name string, value float64, tags map[string]string)
}

// Gauge reads one host measurement.
type Gauge struct {
	Name string
	Read func(ctx context.Context) (float64, error)
}

// Sampler periodically reads host resource usage and records it through the
// metric pipeline.
type Sampler struct {
	recorder MetricRecorder
	gauges   []Gauge
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSampler(recorder MetricRecorder, interval time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		recorder: recorder,
		gauges:   DefaultGauges(),
		interval: interval,
		logger:   logger,
	}
}

func DefaultGauges() []Gauge {
	return []Gauge{
		{Name: MetricCPUPercent, Read: readCPUPercent},
		{Name: MetricMemoryUsedPercent, Read: readMemoryUsedPercent},
		{Name: MetricGoroutines, Read: readGoroutines},
	}
}

// StartWorkers starts sampling. A non-positive interval disables the sampler.
func (s *Sampler) StartWorkers() {
	if s.interval <= 0 {
		s.logger.Info("Host metrics sampler disabled")
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go s.samplingWorker()

	s.logger.Info("Host metrics sampler started", slog.Duration("interval", s.interval))
}

func (s *Sampler) Shutdown() {
	if s.cancel == nil {
		return
	}

	s.cancel()
	s.wg.Wait()
}

// Sample reads every gauge once. Failing gauges are logged and skipped.
func (s *Sampler) Sample(ctx context.Context) {
	tags := map[string]string{"os": runtime.GOOS}

	for _, gauge := range s.gauges {
		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		value, err := gauge.Read(readCtx)
		cancel()

		if err != nil {
			s.logger.Warn("Failed to read host metric",
				slog.String("metric", gauge.Name),
				slog.String("error", err.Error()))
			continue
		}

		s.recorder.RecordMetric(gauge.Name, value, tags)
	}
}

func (s *Sampler) samplingWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Host metrics sampler shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			s.Sample(s.ctx)
		}
	}
}

func readCPUPercent(ctx context.Context) (float64, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}

	if len(percents) == 0 {
		return 0, nil
	}

	return percents[0], nil
}

func readMemoryUsedPercent(ctx context.Context) (float64, error) {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}

	return stat.UsedPercent, nil
}

func readGoroutines(context.Context) (float64, error) {
	return float64(runtime.NumGoroutine()), nil
}
