package collector_querying

import (
	"sync"

	collector_core "nesttelemetry/internal/features/collector/core"
	"nesttelemetry/internal/util/logger"
)

var (
	queryingController *QueryingController
	once               sync.Once
)

func GetQueryingController() *QueryingController {
	once.Do(func() {
		queryingController = &QueryingController{
			NewQueryingService(collector_core.GetRepository(), logger.GetLogger()),
		}
	})

	return queryingController
}
