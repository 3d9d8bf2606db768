package storage

import (
	"context"
	"nesttelemetry/internal/cache"
	"nesttelemetry/internal/config"
	cache_utils "nesttelemetry/internal/util/cache"
	"nesttelemetry/internal/util/logger"
	"sync"
)

var (
	keyValueStore KeyValueStore
	once          sync.Once
)

// GetKeyValueStore builds the store selected by KV_STORE_KIND. An unreachable
// Valkey falls back to the file store so telemetry keeps working.
func GetKeyValueStore() KeyValueStore {
	once.Do(func() {
		env := config.GetEnv()
		log := logger.GetLogger()

		path := env.KVStorePath
		if path == "" {
			path = DefaultFileStorePath()
		}

		switch env.KVStoreKind {
		case config.KVStoreMemory:
			keyValueStore = NewMemoryStore()
		case config.KVStoreValkey:
			client, err := cache.GetCache()
			if err == nil {
				err = cache_utils.TestCacheConnection(context.Background(), client)
			}
			if err != nil {
				log.Warn("Valkey unavailable, falling back to file store",
					"error", err,
					"path", path)
				keyValueStore = NewFileStore(path)
				return
			}
			keyValueStore = NewValkeyStore(client)
		default:
			keyValueStore = NewFileStore(path)
		}
	})

	return keyValueStore
}
