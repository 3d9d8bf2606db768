package logging

import (
	"io"
	"log/slog"

	"nesttelemetry/internal/features/telemetry/storage"
	"nesttelemetry/internal/features/telemetry/transport"
)

// NewTestLoggingService builds a service with a discarding slog logger, an
// in-memory store and the given sender.
func NewTestLoggingService(sender transport.Sender, opts Options) *LoggingService {
	return NewLoggingService(
		sender,
		storage.NewMemoryStore(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		opts,
	)
}
