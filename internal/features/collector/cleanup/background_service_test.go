package collector_cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	collector_core "nesttelemetry/internal/features/collector/core"
	"nesttelemetry/internal/features/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func utcDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Test_ExecuteAllTasksForTest_RemovesDaysOlderThanRetention(t *testing.T) {
	repository := collector_core.NewFileRepository(filepath.Join(t.TempDir(), "logs"), newTestLogger())
	ctx := context.Background()
	entry := []logging.LogEntry{{Timestamp: "t", Level: logging.LogLevelInfo, Message: "m", SessionID: "s"}}

	for _, day := range []time.Time{utcDay(2024, 2, 20), utcDay(2024, 2, 28), utcDay(2024, 3, 1)} {
		require.NoError(t, repository.AppendLogs(ctx, day, entry))
	}

	service := NewRetentionBackgroundService(repository, 7, newTestLogger())
	service.now = func() time.Time { return time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC) }

	require.NoError(t, service.ExecuteAllTasksForTest())

	removed, err := repository.GetLogs(ctx, utcDay(2024, 2, 20))
	require.NoError(t, err)
	assert.Empty(t, removed)

	kept, err := repository.GetLogs(ctx, utcDay(2024, 2, 28))
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	today, err := repository.GetLogs(ctx, utcDay(2024, 3, 1))
	require.NoError(t, err)
	assert.Len(t, today, 1)
}

type countingRepository struct {
	collector_core.Repository
	calls  atomic.Int32
	cutoff atomic.Value
	err    error
}

func (r *countingRepository) DeleteBefore(_ context.Context, cutoff time.Time) (int, error) {
	r.calls.Add(1)
	r.cutoff.Store(cutoff)
	return 0, r.err
}

func Test_ExecuteAllTasksForTest_WithZeroRetention_KeepsEverything(t *testing.T) {
	repository := &countingRepository{}
	service := NewRetentionBackgroundService(repository, 0, newTestLogger())

	require.NoError(t, service.ExecuteAllTasksForTest())

	assert.Equal(t, int32(0), repository.calls.Load())
}

func Test_ExecuteAllTasksForTest_WhenRepositoryFails_ReturnsError(t *testing.T) {
	repository := &countingRepository{err: errors.New("permission denied")}
	service := NewRetentionBackgroundService(repository, 3, newTestLogger())

	err := service.ExecuteAllTasksForTest()

	assert.ErrorContains(t, err, "permission denied")
}

func Test_StartWorkers_RunsCleanupImmediatelyAndStopsOnShutdown(t *testing.T) {
	repository := &countingRepository{}
	service := NewRetentionBackgroundService(repository, 3, newTestLogger())
	service.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) }

	service.StartWorkers()

	assert.Eventually(t, func() bool { return repository.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	service.Shutdown()

	cutoff, ok := repository.cutoff.Load().(time.Time)
	require.True(t, ok)
	assert.Equal(t, "2024-03-07", cutoff.Format("2006-01-02"))
}

func Test_StartWorkers_WithZeroRetention_DoesNotStartWorker(t *testing.T) {
	repository := &countingRepository{}
	service := NewRetentionBackgroundService(repository, 0, newTestLogger())

	service.StartWorkers()
	time.Sleep(20 * time.Millisecond)
	service.Shutdown()

	assert.Equal(t, int32(0), repository.calls.Load())
}
