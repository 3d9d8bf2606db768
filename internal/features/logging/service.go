package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nesttelemetry/internal/config"
	"nesttelemetry/internal/features/telemetry/buffer"
	"nesttelemetry/internal/features/telemetry/storage"
	"nesttelemetry/internal/features/telemetry/transport"
	time_parser "nesttelemetry/internal/util/time"

	"github.com/google/uuid"
)

const (
	DefaultMaxLocalLogs  = 1000
	DefaultFlushInterval = 60 * time.Second

	sendTimeout          = 10 * time.Second
	shutdownFlushTimeout = 5 * time.Second
)

type Options struct {
	MaxLocalLogs  int
	FlushInterval time.Duration
}

// LoggingService buffers leveled log entries in memory and ships them to the
// collector on a ticker, immediately on ERROR, and once more on Shutdown.
// A failed send puts the entries back in front of the buffer; entries are
// only ever lost to the MaxLocalLogs bound.
type LoggingService struct {
	buffer        *buffer.Buffer[LogEntry]
	sender        transport.Sender
	store         storage.KeyValueStore
	logger        *slog.Logger
	sessionID     string
	flushInterval time.Duration

	userMutex sync.RWMutex
	userID    string

	lifecycleMutex sync.Mutex
	isStopped      bool
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup
	inFlight       sync.WaitGroup
}

func NewLoggingService(
	sender transport.Sender,
	store storage.KeyValueStore,
	logger *slog.Logger,
	opts Options,
) *LoggingService {
	if opts.MaxLocalLogs <= 0 {
		opts.MaxLocalLogs = DefaultMaxLocalLogs
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}

	return &LoggingService{
		buffer:        buffer.New[LogEntry](opts.MaxLocalLogs),
		sender:        sender,
		store:         store,
		logger:        logger,
		sessionID:     uuid.NewString(),
		flushInterval: opts.FlushInterval,
	}
}

// Init restores the persisted user id and starts the periodic flush. It is a
// no-op when already started or after Shutdown.
func (s *LoggingService) Init(ctx context.Context) {
	s.lifecycleMutex.Lock()
	defer s.lifecycleMutex.Unlock()

	if s.cancel != nil || s.isStopped {
		return
	}

	s.loadUserID(ctx)

	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go s.flushWorker()

	s.logger.Info("Logging service started",
		slog.String("sessionId", s.sessionID),
		slog.Duration("flushInterval", s.flushInterval),
		slog.Int("maxLocalLogs", s.buffer.MaxSize()))
}

// Shutdown stops the periodic flush, waits for sends already in flight and
// makes one last bounded flush attempt. Nothing is sent after it returns.
func (s *LoggingService) Shutdown() {
	s.lifecycleMutex.Lock()
	if s.isStopped {
		s.lifecycleMutex.Unlock()
		return
	}
	s.isStopped = true
	cancel := s.cancel
	s.lifecycleMutex.Unlock()

	if cancel != nil {
		cancel()
		s.wg.Wait()
	}

	s.inFlight.Wait()

	ctx, cancelFlush := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancelFlush()

	if err := s.Flush(ctx); err != nil {
		s.logger.Warn("Final log flush failed, pending entries not delivered",
			slog.Int("pendingLogs", s.buffer.Len()),
			slog.String("error", err.Error()))
	}

	s.logger.Info("Logging service stopped", slog.String("sessionId", s.sessionID))
}

func (s *LoggingService) Debug(message string, fields map[string]any) {
	s.log(LogLevelDebug, message, fields)
}

func (s *LoggingService) Info(message string, fields map[string]any) {
	s.log(LogLevelInfo, message, fields)
}

func (s *LoggingService) Warn(message string, fields map[string]any) {
	s.log(LogLevelWarn, message, fields)
}

func (s *LoggingService) Error(message string, fields map[string]any) {
	s.log(LogLevelError, message, fields)
}

// SetUserID stamps every entry logged after this call with userID and
// persists it for the next process. Buffered entries keep their old value.
// The in-memory id is applied even when persisting fails.
func (s *LoggingService) SetUserID(ctx context.Context, userID string) error {
	s.userMutex.Lock()
	s.userID = userID
	s.userMutex.Unlock()

	if s.store == nil {
		return nil
	}

	return s.store.SetItem(ctx, storage.UserIDKey, userID)
}

func (s *LoggingService) UserID() string {
	s.userMutex.RLock()
	defer s.userMutex.RUnlock()

	return s.userID
}

func (s *LoggingService) SessionID() string {
	return s.sessionID
}

// Flush sends everything buffered right now in one request. On failure the
// entries go back in front of anything logged during the attempt and the
// error is returned. An empty buffer makes no request.
func (s *LoggingService) Flush(ctx context.Context) error {
	snapshot := s.buffer.Take()
	if len(snapshot) == 0 {
		return nil
	}

	return s.deliver(ctx, snapshot)
}

func (s *LoggingService) GetLogs() []LogEntry {
	return s.buffer.Snapshot()
}

func (s *LoggingService) ClearLogs() {
	s.buffer.Clear()
}

func (s *LoggingService) log(level LogLevel, message string, fields map[string]any) {
	entry := LogEntry{
		Timestamp: time_parser.NowISO(),
		Level:     level,
		Message:   message,
		Context:   transport.SanitizeFields(fields),
		UserID:    s.UserID(),
		SessionID: s.sessionID,
	}

	s.buffer.Append(entry)

	if entry.Context != nil {
		s.logger.Log(context.Background(), level.slogLevel(), message, slog.Any("context", entry.Context))
	} else {
		s.logger.Log(context.Background(), level.slogLevel(), message)
	}

	if level == LogLevelError {
		s.flushAsync()
	}
}

// flushAsync takes the snapshot on the caller's goroutine and sends it on a
// tracked one, so the ERROR entry is already out of the buffer when Error
// returns.
func (s *LoggingService) flushAsync() {
	s.lifecycleMutex.Lock()
	if s.isStopped {
		s.lifecycleMutex.Unlock()
		return
	}

	snapshot := s.buffer.Take()
	if len(snapshot) == 0 {
		s.lifecycleMutex.Unlock()
		return
	}

	baseCtx := s.ctx
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	s.inFlight.Add(1)
	s.lifecycleMutex.Unlock()

	go func() {
		defer s.inFlight.Done()
		_ = s.deliver(baseCtx, snapshot)
	}()
}

func (s *LoggingService) deliver(ctx context.Context, snapshot []LogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	err := s.sender.Send(ctx, transport.LogsPath, &SendLogsRequest{Logs: snapshot})
	if err != nil {
		s.buffer.Restore(snapshot)

		s.logger.Error("Failed to send logs to server",
			slog.Int("logsCount", len(snapshot)),
			slog.String("error", err.Error()))

		return err
	}

	return nil
}

func (s *LoggingService) flushWorker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		if config.IsShouldShutdown() {
			s.logger.Info("Log flush worker shutting down due to shutdown signal")
			return
		}

		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			_ = s.Flush(s.ctx)
		}
	}
}

func (s *LoggingService) loadUserID(ctx context.Context) {
	if s.store == nil {
		return
	}

	userID, ok, err := s.store.GetItem(ctx, storage.UserIDKey)
	if err != nil {
		s.logger.Warn("Failed to load persisted user id", slog.String("error", err.Error()))
		return
	}

	if !ok {
		return
	}

	s.userMutex.Lock()
	if s.userID == "" {
		s.userID = userID
	}
	s.userMutex.Unlock()
}
