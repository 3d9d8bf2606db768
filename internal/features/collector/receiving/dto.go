package collector_receiving

import (
	"nesttelemetry/internal/features/logging"
	"nesttelemetry/internal/features/monitoring"
)

type SubmitLogsRequestDTO struct {
	Logs []logging.LogEntry `json:"logs"`
}

type SubmitMetricsRequestDTO struct {
	Metrics     []monitoring.PerformanceMetric `json:"metrics"`
	UserActions []monitoring.UserAction        `json:"userActions"`
}

type SubmitResponseDTO struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
