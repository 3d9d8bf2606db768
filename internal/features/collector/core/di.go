package collector_core

import (
	"os"
	"path/filepath"
	"sync"

	"nesttelemetry/internal/config"
	"nesttelemetry/internal/storage"
	"nesttelemetry/internal/util/logger"
)

var (
	repository     Repository
	repositoryOnce sync.Once
)

// GetRepository returns the collector storage selected by COLLECTOR_STORAGE.
func GetRepository() Repository {
	repositoryOnce.Do(func() {
		env := config.GetEnv()
		log := logger.GetLogger()

		if env.CollectorStorage == config.CollectorStoragePostgres {
			postgresRepository, err := NewPostgresRepository(storage.GetDb(), log)
			if err != nil {
				log.Error("Failed to initialize postgres collector storage", "error", err)
				os.Exit(1)
			}

			repository = postgresRepository
			return
		}

		dataDir := env.CollectorDataDir
		if !filepath.IsAbs(dataDir) {
			dataDir = filepath.Join(env.BackendRootPath, dataDir)
		}

		repository = NewFileRepository(dataDir, log)
	})

	return repository
}
