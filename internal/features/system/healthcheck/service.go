package system_healthcheck

import (
	"context"
	"fmt"

	collector_core "nesttelemetry/internal/features/collector/core"

	"github.com/shirou/gopsutil/v4/disk"
)

type HealthStatus struct {
	Status          string  `json:"status"`
	Storage         string  `json:"storage"`
	DiskUsedPercent float64 `json:"diskUsedPercent,omitempty"`
	Error           string  `json:"error,omitempty"`
}

type HealthcheckService struct {
	repository collector_core.Repository
	// dataDir is empty when storage is not on the local filesystem
	dataDir string
	usage   func(ctx context.Context, path string) (*disk.UsageStat, error)
}

func NewHealthcheckService(repository collector_core.Repository, dataDir string) *HealthcheckService {
	return &HealthcheckService{
		repository: repository,
		dataDir:    dataDir,
		usage:      disk.UsageWithContext,
	}
}

func (s *HealthcheckService) IsAvailable(ctx context.Context) (*HealthStatus, error) {
	if err := s.repository.Ping(ctx); err != nil {
		return &HealthStatus{Status: "unavailable", Storage: "down", Error: err.Error()},
			fmt.Errorf("storage check failed: %w", err)
	}

	status := &HealthStatus{Status: "ok", Storage: "ok"}

	if s.dataDir != "" {
		usage, err := s.usage(ctx, s.dataDir)
		if err == nil {
			status.DiskUsedPercent = usage.UsedPercent
		}
	}

	return status, nil
}
