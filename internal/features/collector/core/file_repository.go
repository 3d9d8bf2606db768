package collector_core

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"nesttelemetry/internal/features/logging"
	time_parser "nesttelemetry/internal/util/time"
)

const (
	logFilePrefix     = "app-"
	logFileSuffix     = ".log"
	metricsFilePrefix = "metrics-"
	metricsFileSuffix = ".json"

	maxLogLineBytes = 4 * 1024 * 1024
)

// FileRepository keeps one JSON-lines file of logs and one JSON array of
// metric batches per day under dir.
type FileRepository struct {
	dir    string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewFileRepository(dir string, logger *slog.Logger) *FileRepository {
	return &FileRepository{dir: dir, logger: logger}
}

func (r *FileRepository) AppendLogs(_ context.Context, day time.Time, logs []logging.LogEntry) error {
	if len(logs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, entry := range logs {
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode log entry: %w", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	file, err := os.OpenFile(r.logsPath(day), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}

	return nil
}

func (r *FileRepository) AppendMetrics(_ context.Context, day time.Time, batch MetricsBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	batches, err := r.readMetrics(day)
	if err != nil {
		return err
	}

	batches = append(batches, batch)

	data, err := json.MarshalIndent(batches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	path := r.metricsPath(day)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace metrics file: %w", err)
	}

	return nil
}

func (r *FileRepository) GetLogs(_ context.Context, day time.Time) ([]logging.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logs := []logging.LogEntry{}

	file, err := os.Open(r.logsPath(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return logs, nil
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLogLineBytes)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry logging.LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			r.logger.Warn("Skipping malformed log line",
				slog.String("day", time_parser.FormatDay(day)),
				slog.String("error", err.Error()))
			continue
		}

		logs = append(logs, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	return logs, nil
}

func (r *FileRepository) GetMetrics(_ context.Context, day time.Time) ([]MetricsBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.readMetrics(day)
}

func (r *FileRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list data directory: %w", err)
	}

	cutoffDay := time_parser.FormatDay(cutoff)
	removedDays := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		day, ok := dayFromFileName(entry.Name())
		if !ok || day >= cutoffDay {
			continue
		}

		if err := os.Remove(filepath.Join(r.dir, entry.Name())); err != nil {
			return len(removedDays), fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}

		removedDays[day] = struct{}{}
	}

	return len(removedDays), nil
}

func (r *FileRepository) Ping(_ context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("data directory is not writable: %w", err)
	}

	return nil
}

func (r *FileRepository) readMetrics(day time.Time) ([]MetricsBatch, error) {
	batches := []MetricsBatch{}

	data, err := os.ReadFile(r.metricsPath(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return batches, nil
		}
		return nil, fmt.Errorf("failed to read metrics file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return batches, nil
	}

	if err := json.Unmarshal(data, &batches); err != nil {
		return nil, fmt.Errorf("failed to decode metrics file: %w", err)
	}

	return batches, nil
}

func (r *FileRepository) logsPath(day time.Time) string {
	return filepath.Join(r.dir, logFilePrefix+time_parser.FormatDay(day)+logFileSuffix)
}

func (r *FileRepository) metricsPath(day time.Time) string {
	return filepath.Join(r.dir, metricsFilePrefix+time_parser.FormatDay(day)+metricsFileSuffix)
}

// dayFromFileName extracts the YYYY-MM-DD part of a collector data file name.
func dayFromFileName(name string) (string, bool) {
	var day string

	switch {
	case strings.HasPrefix(name, logFilePrefix) && strings.HasSuffix(name, logFileSuffix):
		day = strings.TrimSuffix(strings.TrimPrefix(name, logFilePrefix), logFileSuffix)
	case strings.HasPrefix(name, metricsFilePrefix) && strings.HasSuffix(name, metricsFileSuffix):
		day = strings.TrimSuffix(strings.TrimPrefix(name, metricsFilePrefix), metricsFileSuffix)
	default:
		return "", false
	}

	if _, ok := time_parser.ParseDay(day); !ok {
		return "", false
	}

	return day, true
}
