package collector_querying

import (
	collector_core "nesttelemetry/internal/features/collector/core"
	"nesttelemetry/internal/features/logging"
)

type GetLogsResponseDTO struct {
	Logs []logging.LogEntry `json:"logs"`
}

type GetMetricsResponseDTO struct {
	Metrics []collector_core.MetricsBatch `json:"metrics"`
}
