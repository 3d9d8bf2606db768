package transport

import (
	"nesttelemetry/internal/config"
	"sync"
)

var (
	collectorTransport *HTTPTransport
	once               sync.Once
)

func GetCollectorTransport() *HTTPTransport {
	once.Do(func() {
		env := config.GetEnv()

		collectorTransport = NewHTTPTransport(Options{
			BaseURL:   env.CollectorURL,
			AuthToken: env.TelemetryAuthToken,
			Compress:  env.TelemetryCompress,
		})
	})

	return collectorTransport
}
