package collector_receiving

import (
	"sync"

	"nesttelemetry/internal/config"
	collector_core "nesttelemetry/internal/features/collector/core"
	"nesttelemetry/internal/util/logger"
	rate_limit "nesttelemetry/internal/util/rate_limit"
)

var (
	receivingController *ReceivingController
	once                sync.Once
)

func GetReceivingController() *ReceivingController {
	once.Do(func() {
		receivingController = &ReceivingController{
			NewReceivingService(
				collector_core.GetRepository(),
				rate_limit.NewRateLimiter(config.GetEnv().CollectorRateLimitRPS, 0),
				logger.GetLogger(),
			),
		}
	})

	return receivingController
}
