package collector_core

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`

	RetryAfterSec int `json:"-"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	ErrorInvalidLogLevel    = "INVALID_LOG_LEVEL"
	ErrorMissingTimestamp   = "MISSING_TIMESTAMP"
	ErrorBatchTooLarge      = "BATCH_TOO_LARGE"
	ErrorRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrorInvalidDate        = "INVALID_DATE"
	ErrorInvalidRequestBody = "INVALID_REQUEST_BODY"
)
