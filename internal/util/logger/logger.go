package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	loggerInstance *slog.Logger
	once           sync.Once
)

// GetLogger returns the process-wide logger. LOG_LEVEL (debug, info, warn,
// error) is read once, before config is loaded, so config itself can log.
func GetLogger() *slog.Logger {
	once.Do(func() {
		handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: parseLevel(os.Getenv("LOG_LEVEL")),
		})

		loggerInstance = slog.New(handler)
	})

	return loggerInstance
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
