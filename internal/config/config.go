package config

import (
	env_utils "nesttelemetry/internal/util/env"
	"nesttelemetry/internal/util/logger"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var log = logger.GetLogger()

const (
	KVStoreMemory = "memory"
	KVStoreFile   = "file"
	KVStoreValkey = "valkey"

	CollectorStorageFile     = "file"
	CollectorStoragePostgres = "postgres"
)

type EnvVariables struct {
	IsTesting       bool
	EnvMode         env_utils.EnvMode `env:"ENV_MODE"                 env-default:"development"`
	BackendRootPath string

	// telemetry client
	CollectorURL          string        `env:"COLLECTOR_URL"            env-default:"http://localhost:8000"`
	TelemetryFlush        time.Duration `env:"TELEMETRY_FLUSH_INTERVAL" env-default:"60s"`
	TelemetryMaxLocalLogs int           `env:"TELEMETRY_MAX_LOCAL_LOGS" env-default:"1000"`
	TelemetryMaxMetrics   int           `env:"TELEMETRY_MAX_METRICS"    env-default:"1000"`
	TelemetryCompress     bool          `env:"TELEMETRY_COMPRESS"       env-default:"false"`
	TelemetryAuthToken    string        `env:"TELEMETRY_AUTH_TOKEN"`
	SysMetricsInterval    time.Duration `env:"SYSMETRICS_INTERVAL"      env-default:"0s"`

	// durable key-value store for the client
	KVStoreKind string `env:"KV_STORE_KIND" env-default:"file"`
	KVStorePath string `env:"KV_STORE_PATH"`

	// cache
	ValkeyHost     string `env:"VALKEY_HOST"     env-default:"localhost"`
	ValkeyPort     string `env:"VALKEY_PORT"     env-default:"6379"`
	ValkeyUsername string `env:"VALKEY_USERNAME"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyIsSsl    bool   `env:"VALKEY_IS_SSL"   env-default:"false"`

	// collector
	CollectorAddr          string `env:"COLLECTOR_ADDR"           env-default:":8000"`
	CollectorStorage       string `env:"COLLECTOR_STORAGE"        env-default:"file"`
	CollectorDataDir       string `env:"COLLECTOR_DATA_DIR"       env-default:"logs"`
	CollectorRetentionDays int    `env:"COLLECTOR_RETENTION_DAYS" env-default:"0"`
	CollectorRateLimitRPS  int    `env:"COLLECTOR_RATE_LIMIT_RPS" env-default:"0"`
	CollectorJWTSecret     string `env:"COLLECTOR_JWT_SECRET"`
	DatabaseDsn            string `env:"DATABASE_DSN"`
}

var (
	env  EnvVariables
	once sync.Once
)

func GetEnv() EnvVariables {
	once.Do(loadEnvVariables)
	return env
}

func loadEnvVariables() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Warn("could not get current working directory", "error", err)
		cwd = "."
	}

	backendRoot := cwd
	for {
		if _, err := os.Stat(filepath.Join(backendRoot, "go.mod")); err == nil {
			break
		}

		parent := filepath.Dir(backendRoot)
		if parent == backendRoot {
			break
		}

		backendRoot = parent
	}

	env.BackendRootPath = backendRoot

	envPaths := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(backendRoot, ".env"),
	}

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Info("Successfully loaded .env", "path", path)
			break
		}
	}

	if err := cleanenv.ReadEnv(&env); err != nil {
		log.Error("Configuration could not be loaded", "error", err)
		os.Exit(1)
	}

	for _, arg := range os.Args {
		if strings.Contains(arg, "test") {
			env.IsTesting = true
			break
		}
	}

	if !env.EnvMode.IsValid() {
		log.Error("ENV_MODE is invalid", "mode", env.EnvMode)
		os.Exit(1)
	}

	switch env.KVStoreKind {
	case KVStoreMemory, KVStoreFile, KVStoreValkey:
	default:
		log.Error("KV_STORE_KIND is invalid", "kind", env.KVStoreKind)
		os.Exit(1)
	}

	switch env.CollectorStorage {
	case CollectorStorageFile:
	case CollectorStoragePostgres:
		if env.DatabaseDsn == "" {
			log.Error("DATABASE_DSN is empty but COLLECTOR_STORAGE is postgres")
			os.Exit(1)
		}
	default:
		log.Error("COLLECTOR_STORAGE is invalid", "storage", env.CollectorStorage)
		os.Exit(1)
	}

	if env.TelemetryFlush <= 0 {
		log.Error("TELEMETRY_FLUSH_INTERVAL must be positive", "interval", env.TelemetryFlush)
		os.Exit(1)
	}

	log.Info("Environment variables loaded successfully!", "mode", env.EnvMode)
}
