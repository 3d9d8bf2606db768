package sysmetrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedMetric struct {
	name  string
	value float64
	tags  map[string]string
}

type fakeRecorder struct {
	mu      sync.Mutex
	metrics []recordedMetric
}

func (r *fakeRecorder) RecordMetric(name string, value float64, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = append(r.metrics, recordedMetric{name, value, tags})
}

func (r *fakeRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.metrics)
}

func newTestSampler(recorder MetricRecorder, interval time.Duration, gauges []Gauge) *Sampler {
	sampler := NewSampler(recorder, interval, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sampler.gauges = gauges
	return sampler
}

func Test_Sample_RecordsEveryGaugeWithOSTag(t *testing.T) {
	recorder := &fakeRecorder{}
	sampler := newTestSampler(recorder, time.Minute, []Gauge{
		{Name: "a", Read: func(context.Context) (float64, error) { return 1.5, nil }},
		{Name: "b", Read: func(context.Context) (float64, error) { return 2, nil }},
	})

	sampler.Sample(context.Background())

	require.Len(t, recorder.metrics, 2)
	assert.Equal(t, "a", recorder.metrics[0].name)
	assert.Equal(t, 1.5, recorder.metrics[0].value)
	assert.NotEmpty(t, recorder.metrics[0].tags["os"])
	assert.Equal(t, "b", recorder.metrics[1].name)
}

func Test_Sample_WithFailingGauge_SkipsItAndKeepsOthers(t *testing.T) {
	recorder := &fakeRecorder{}
	sampler := newTestSampler(recorder, time.Minute, []Gauge{
		{Name: "broken", Read: func(context.Context) (float64, error) { return 0, errors.New("no /proc") }},
		{Name: "ok", Read: func(context.Context) (float64, error) { return 3, nil }},
	})

	sampler.Sample(context.Background())

	require.Len(t, recorder.metrics, 1)
	assert.Equal(t, "ok", recorder.metrics[0].name)
}

func Test_StartWorkers_WithInterval_SamplesPeriodically(t *testing.T) {
	recorder := &fakeRecorder{}
	sampler := newTestSampler(recorder, 10*time.Millisecond, []Gauge{
		{Name: "a", Read: func(context.Context) (float64, error) { return 1, nil }},
	})

	sampler.StartWorkers()
	defer sampler.Shutdown()

	assert.Eventually(t, func() bool {
		return recorder.Count() >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func Test_StartWorkers_WithZeroInterval_IsDisabled(t *testing.T) {
	recorder := &fakeRecorder{}
	sampler := newTestSampler(recorder, 0, []Gauge{
		{Name: "a", Read: func(context.Context) (float64, error) { return 1, nil }},
	})

	sampler.StartWorkers()
	time.Sleep(30 * time.Millisecond)
	sampler.Shutdown()

	assert.Equal(t, 0, recorder.Count())
}

func Test_DefaultGauges_GoroutineGaugeReturnsPositiveCount(t *testing.T) {
	for _, gauge := range DefaultGauges() {
		if gauge.Name != MetricGoroutines {
			continue
		}

		value, err := gauge.Read(context.Background())
		assert.NoError(t, err)
		assert.Greater(t, value, 0.0)
	}
}
