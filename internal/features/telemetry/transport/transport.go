package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

const (
	LogsPath    = "/logs"
	MetricsPath = "/metrics"

	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 512
)

// Sender delivers one JSON payload to a collector path. Any error means the
// whole payload was not accepted.
type Sender interface {
	Send(ctx context.Context, path string, payload any) error
}

// DeliveryError is returned when the collector answers with a non-2xx status.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("collector responded with HTTP %d", e.StatusCode)
	}

	return fmt.Sprintf("collector responded with HTTP %d: %s", e.StatusCode, e.Body)
}

type Options struct {
	BaseURL   string
	AuthToken string
	Compress  bool
	Client    *http.Client
}

type HTTPTransport struct {
	baseURL   string
	authToken string
	compress  bool
	client    *http.Client
}

func NewHTTPTransport(opts Options) *HTTPTransport {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &HTTPTransport{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		authToken: opts.AuthToken,
		compress:  opts.Compress,
		client:    client,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, path string, payload any) error {
	body, err := t.encode(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if t.compress {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if t.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.authToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach collector: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &DeliveryError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (t *HTTPTransport) encode(payload any) (*bytes.Buffer, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	if !t.compress {
		return bytes.NewBuffer(data), nil
	}

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return &buf, nil
}

// SanitizeFields returns a shallow copy of fields when they encode as JSON,
// and a single "unserializable" string otherwise. The copy keeps later writes
// by the caller out of buffered entries.
func SanitizeFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}

	fields = maps.Clone(fields)

	if _, err := json.Marshal(fields); err == nil {
		return fields
	}

	return map[string]any{"unserializable": fmt.Sprintf("%v", fields)}
}
