package system_healthcheck

import (
	"path/filepath"
	"sync"

	"nesttelemetry/internal/config"
	collector_core "nesttelemetry/internal/features/collector/core"
)

var (
	healthcheckController *HealthcheckController
	once                  sync.Once
)

func GetHealthcheckController() *HealthcheckController {
	once.Do(func() {
		env := config.GetEnv()

		dataDir := ""
		if env.CollectorStorage == config.CollectorStorageFile {
			dataDir = env.CollectorDataDir
			if !filepath.IsAbs(dataDir) {
				dataDir = filepath.Join(env.BackendRootPath, dataDir)
			}
		}

		healthcheckController = &HealthcheckController{
			NewHealthcheckService(collector_core.GetRepository(), dataDir),
		}
	})

	return healthcheckController
}
