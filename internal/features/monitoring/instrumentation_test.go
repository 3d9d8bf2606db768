package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nesttelemetry/internal/features/telemetry/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func Test_InstrumentClient_WithSuccessfulRequest_RecordsStatusMetric(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	service, _ := newTestService(transport.NewRecordingSender(), Options{})
	original := &http.Client{Timeout: time.Second}
	client := service.InstrumentClient(original)

	resp, err := client.Post(server.URL+"/training/train", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, original.Transport, "original client must stay untouched")

	metrics := service.GetMetrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, MetricAPIRequestTime, metrics[0].Name)
	assert.GreaterOrEqual(t, metrics[0].Value, 0.0)
	assert.Equal(t, server.URL+"/training/train", metrics[0].Tags["url"])
	assert.Equal(t, http.MethodPost, metrics[0].Tags["method"])
	assert.Equal(t, "201", metrics[0].Tags["status"])
	assert.NotContains(t, metrics[0].Tags, "error")
}

func Test_InstrumentTransport_WithFailingRequest_RecordsErrorAndPropagatesIt(t *testing.T) {
	errNetwork := errors.New("connection refused")
	service, _ := newTestService(transport.NewRecordingSender(), Options{})
	roundTripper := service.InstrumentTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, errNetwork
	}))

	req, err := http.NewRequest("", "http://collector.invalid/status", nil)
	require.NoError(t, err)

	resp, err := roundTripper.RoundTrip(req)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, errNetwork)

	metrics := service.GetMetrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, http.MethodGet, metrics[0].Tags["method"])
	assert.Equal(t, "connection refused", metrics[0].Tags["error"])
	assert.NotContains(t, metrics[0].Tags, "status")
}

func Test_MarkPageLoaded_RecordsMetricOnlyOnce(t *testing.T) {
	service, _ := newTestService(transport.NewRecordingSender(), Options{})

	service.MarkPageLoaded("/chat")
	service.MarkPageLoaded("/meditation")

	metrics := service.GetMetrics()
	require.Len(t, metrics, 1)
	assert.Equal(t, MetricPageLoadTime, metrics[0].Name)
	assert.Equal(t, "/chat", metrics[0].Tags["page"])
	assert.GreaterOrEqual(t, metrics[0].Value, 0.0)
}
