package logging

import (
	"fmt"
	"runtime/debug"
)

const unhandledErrorMessage = "Unhandled error"

// CapturePanic turns a panic into an ERROR entry instead of letting it crash
// the process. It must be deferred directly:
//
//	defer loggingService.CapturePanic()
func (s *LoggingService) CapturePanic() {
	if recovered := recover(); recovered != nil {
		s.capture(panicToError(recovered), string(debug.Stack()))
	}
}

// Go runs fn on its own goroutine. A panic or a returned error is recorded
// as an ERROR entry rather than propagated.
func (s *LoggingService) Go(fn func() error) {
	go func() {
		defer s.CapturePanic()

		if err := fn(); err != nil {
			s.ReportError(err)
		}
	}()
}

// ReportError records an error nobody else handled.
func (s *LoggingService) ReportError(err error) {
	if err == nil {
		return
	}

	s.capture(err, string(debug.Stack()))
}

func (s *LoggingService) capture(err error, stack string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("Failed to capture unhandled error", "panic", recovered)
		}
	}()

	s.Error(unhandledErrorMessage, map[string]any{
		"error": err.Error(),
		"stack": stack,
	})
}

func panicToError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return err
	}

	return fmt.Errorf("%v", recovered)
}
