package collector_core

import (
	"time"

	"github.com/google/uuid"
)

type LogRecord struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Day       string    `gorm:"column:day;type:varchar(10);index"`
	Position  int       `gorm:"column:position"`
	Timestamp string    `gorm:"column:timestamp"`
	Level     string    `gorm:"column:level"`
	Message   string    `gorm:"column:message;type:text"`
	Context   string    `gorm:"column:context;type:text"`
	UserID    string    `gorm:"column:user_id"`
	SessionID string    `gorm:"column:session_id"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (LogRecord) TableName() string {
	return "telemetry_logs"
}

type MetricsBatchRecord struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Day         string    `gorm:"column:day;type:varchar(10);index"`
	Timestamp   string    `gorm:"column:timestamp"`
	Metrics     string    `gorm:"column:metrics;type:text"`
	UserActions string    `gorm:"column:user_actions;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (MetricsBatchRecord) TableName() string {
	return "telemetry_metric_batches"
}
