package logging

import (
	"nesttelemetry/internal/config"
	"nesttelemetry/internal/features/telemetry/storage"
	"nesttelemetry/internal/features/telemetry/transport"
	"nesttelemetry/internal/util/logger"
	"sync"
)

var (
	loggingService *LoggingService
	once           sync.Once
)

func GetLoggingService() *LoggingService {
	once.Do(func() {
		env := config.GetEnv()

		loggingService = NewLoggingService(
			transport.GetCollectorTransport(),
			storage.GetKeyValueStore(),
			logger.GetLogger(),
			Options{
				MaxLocalLogs:  env.TelemetryMaxLocalLogs,
				FlushInterval: env.TelemetryFlush,
			},
		)
	})

	return loggingService
}
