package monitoring

import (
	"net/http"
	"strconv"
	"time"
)

// MarkPageLoaded records page_load_time as the milliseconds elapsed since the
// service was created. Only the first call per service has any effect.
func (s *MonitoringService) MarkPageLoaded(page string) {
	s.pageLoadOnce.Do(func() {
		elapsed := time.Since(s.startedAt)

		s.RecordMetric(MetricPageLoadTime, durationMillis(elapsed), map[string]string{
			"page": page,
		})
	})
}

// InstrumentTransport wraps next so that every round trip records
// api_request_time. The response and error from next are returned untouched.
func (s *MonitoringService) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &instrumentedTransport{next: next, monitor: s}
}

// InstrumentClient returns a shallow copy of client whose transport is
// instrumented. The original client is not modified.
func (s *MonitoringService) InstrumentClient(client *http.Client) *http.Client {
	if client == nil {
		client = &http.Client{}
	}

	instrumented := *client
	instrumented.Transport = s.InstrumentTransport(client.Transport)

	return &instrumented
}

type instrumentedTransport struct {
	next    http.RoundTripper
	monitor *MonitoringService
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(startTime)

	tags := map[string]string{
		"url":    req.URL.String(),
		"method": requestMethod(req),
	}

	if err != nil {
		tags["error"] = err.Error()
	} else {
		tags["status"] = strconv.Itoa(resp.StatusCode)
	}

	t.monitor.RecordMetric(MetricAPIRequestTime, durationMillis(elapsed), tags)

	return resp, err
}

func requestMethod(req *http.Request) string {
	if req.Method == "" {
		return http.MethodGet
	}
	return req.Method
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
