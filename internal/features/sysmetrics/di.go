package sysmetrics

import (
	"nesttelemetry/internal/config"
	"nesttelemetry/internal/features/monitoring"
	"nesttelemetry/internal/util/logger"
	"sync"
)

var (
	sampler *Sampler
	once    sync.Once
)

func GetSampler() *Sampler {
	once.Do(func() {
		sampler = NewSampler(
			monitoring.GetMonitoringService(),
			config.GetEnv().SysMetricsInterval,
			logger.GetLogger(),
		)
	})

	return sampler
}
