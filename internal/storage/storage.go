package storage

import (
	"nesttelemetry/internal/config"
	"nesttelemetry/internal/util/logger"
	"os"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
)

// GetDb opens the Postgres connection on first use. The process exits if
// the DSN is unusable.
func GetDb() *gorm.DB {
	dbOnce.Do(func() {
		log := logger.GetLogger()

		conn, err := gorm.Open(postgres.Open(config.GetEnv().DatabaseDsn), &gorm.Config{
			Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
		})
		if err != nil {
			log.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			log.Error("Failed to get database handle", "error", err)
			os.Exit(1)
		}

		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)

		db = conn
		log.Info("Connected to database")
	})

	return db
}
