package logging

type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	SessionID string         `json:"sessionId"`
}

type SendLogsRequest struct {
	Logs []LogEntry `json:"logs"`
}
