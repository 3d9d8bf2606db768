package monitoring

type PerformanceMetric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Timestamp string            `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
}

type UserAction struct {
	Action    string         `json:"action"`
	Timestamp string         `json:"timestamp"`
	Context   map[string]any `json:"context,omitempty"`
}

type SendMetricsRequest struct {
	Metrics     []PerformanceMetric `json:"metrics"`
	UserActions []UserAction        `json:"userActions"`
}

const (
	MetricPageLoadTime   = "page_load_time"
	MetricAPIRequestTime = "api_request_time"
)
