package collector_core

import (
	"nesttelemetry/internal/features/monitoring"
)

// MetricsBatch is one accepted POST /metrics payload as persisted for its day.
type MetricsBatch struct {
	Timestamp   string                         `json:"timestamp"`
	Metrics     []monitoring.PerformanceMetric `json:"metrics"`
	UserActions []monitoring.UserAction        `json:"userActions"`
}
