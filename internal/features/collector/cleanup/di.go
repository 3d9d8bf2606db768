package collector_cleanup

import (
	"sync"

	"nesttelemetry/internal/config"
	collector_core "nesttelemetry/internal/features/collector/core"
	"nesttelemetry/internal/util/logger"
)

var (
	retentionService *RetentionBackgroundService
	once             sync.Once
)

func GetRetentionBackgroundService() *RetentionBackgroundService {
	once.Do(func() {
		retentionService = NewRetentionBackgroundService(
			collector_core.GetRepository(),
			config.GetEnv().CollectorRetentionDays,
			logger.GetLogger(),
		)
	})

	return retentionService
}
