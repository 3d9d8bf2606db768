package monitoring

import (
	"nesttelemetry/internal/config"
	"nesttelemetry/internal/features/logging"
	"nesttelemetry/internal/features/telemetry/transport"
	"nesttelemetry/internal/util/logger"
	"sync"
)

var (
	monitoringService *MonitoringService
	once              sync.Once
)

func GetMonitoringService() *MonitoringService {
	once.Do(func() {
		env := config.GetEnv()

		monitoringService = NewMonitoringService(
			transport.GetCollectorTransport(),
			logging.GetLoggingService(),
			logger.GetLogger(),
			Options{
				MaxMetrics:    env.TelemetryMaxMetrics,
				FlushInterval: env.TelemetryFlush,
			},
		)
	})

	return monitoringService
}
