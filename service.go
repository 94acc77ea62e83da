package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Service owns the process-wide subscriber: the writers, the level filter
// and the span-event selection. Hosts normally reach it through Init and
// the Guard it returns rather than constructing one directly.
type Service struct {
	Config Config

	logger        atomic.Pointer[zerolog.Logger]
	isInitialized atomic.Bool
	mu            sync.RWMutex
	wg            sync.WaitGroup
	activeOps     atomic.Int64
	// fileWriter holds the rolling file writer (*lumberjack.Logger in
	// production); the interface keeps the close/flush path testable.
	fileWriter io.WriteCloser
	spanEvents SpanEvents

	// output overrides the configured writers when set. Used by tests to
	// capture emitted records.
	output io.Writer
}

// NewService returns an uninitialized Service for the given config.
func NewService(cfg Config) *Service {
	return &Service{Config: cfg}
}

// Initialize validates the configuration, constructs the writers and
// installs the logger. It must not be called from multiple goroutines
// concurrently; Init serializes this for the process-wide instance.
// Calling Initialize on an already-initialized Service is a no-op.
func (s *Service) Initialize() error {
	if s == nil {
		return errors.New(errMsgNilService)
	}
	if s.isInitialized.Load() {
		return nil
	}

	if err := validateConfig(&s.Config); err != nil {
		return err
	}

	level, err := parseLevel(s.Config.Level)
	if err != nil {
		return fmt.Errorf("%w: setting logging level: %w", ErrInvalidConfig, err)
	}

	writers, err := s.initializeWriters()
	if err != nil {
		s.fileWriter = nil
		return err
	}

	logger := zerolog.New(io.MultiWriter(writers...)).Level(level)

	if s.Config.WithTimestamp {
		logger = logger.With().Timestamp().Logger()
	}
	if s.Config.SkipFrameCount > 0 {
		logger = logger.With().CallerWithSkipFrameCount(s.Config.SkipFrameCount).Logger()
	}

	if s.Config.EnableSpanEvents {
		// Validated above; cannot fail here.
		s.spanEvents, _ = ParseSpanEvents(s.Config.SpanEvents)
	} else {
		s.spanEvents = 0
	}

	s.logger.Store(&logger)
	s.isInitialized.Store(true)
	return nil
}

// Close flushes and releases the logging resources. It waits for in-flight
// log events up to Config.ShutdownTimeoutMS, then closes the file writer.
// Safe to call multiple times and on a nil or uninitialized Service; later
// calls are no-ops. After Close all logging methods degrade to no-ops.
func (s *Service) Close() error {
	if s == nil {
		return nil
	}
	if !s.isInitialized.CompareAndSwap(true, false) {
		return nil
	}

	// New events check isInitialized before registering with the waitgroup,
	// so this wait only covers events already in flight.
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var timedOut bool
	select {
	case <-done:
	case <-time.After(s.Config.shutdownTimeout()):
		timedOut = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Store(nil)

	var closeErr error
	if s.fileWriter != nil {
		if err := s.fileWriter.Close(); err != nil {
			closeErr = fmt.Errorf("%w: %w", ErrFlushFailed, err)
		}
		s.fileWriter = nil
	}

	if timedOut {
		if s.Config.ShutdownTimeoutWarning {
			fmt.Fprintf(os.Stderr, "logging: shutdown timed out with %d event(s) in flight\n", s.activeOps.Load())
		}
		if closeErr == nil {
			closeErr = fmt.Errorf("%w after %v", ErrFlushTimeout, s.Config.shutdownTimeout())
		}
	}
	return closeErr
}

// Hook installs zerolog hooks on the active logger. Hooks run for every
// subsequent event; typical use is stamping a correlation identifier.
func (s *Service) Hook(hooks ...zerolog.Hook) {
	if s == nil || !s.isInitialized.Load() {
		return
	}

	// CAS loop so concurrent Hook calls don't lose each other's hooks.
	for {
		oldLogger := s.logger.Load()
		if oldLogger == nil {
			return
		}
		newLogger := oldLogger.Hook(hooks...)
		if s.logger.CompareAndSwap(oldLogger, &newLogger) {
			return
		}
	}
}

// TraceWith returns a LogEvent for structured Trace-level logging.
func (s *Service) TraceWith() LogEvent {
	return logEventBuilder(s, zerolog.TraceLevel)
}

// DebugWith returns a LogEvent for structured Debug-level logging.
func (s *Service) DebugWith() LogEvent {
	return logEventBuilder(s, zerolog.DebugLevel)
}

// InfoWith returns a LogEvent for structured Info-level logging.
// Example: svc.InfoWith().Str("user_id", id).Int("count", 5).Msg("processed")
func (s *Service) InfoWith() LogEvent {
	return logEventBuilder(s, zerolog.InfoLevel)
}

// WarnWith returns a LogEvent for structured Warn-level logging.
func (s *Service) WarnWith() LogEvent {
	return logEventBuilder(s, zerolog.WarnLevel)
}

// ErrorWith returns a LogEvent for structured Error-level logging.
// Example: svc.ErrorWith().Err(err).Str("operation", "database").Msg("query failed")
func (s *Service) ErrorWith() LogEvent {
	return logEventBuilder(s, zerolog.ErrorLevel)
}

// FatalWith returns a LogEvent for structured Fatal-level logging.
// The program exits after the event is written.
func (s *Service) FatalWith() LogEvent {
	return logEventBuilder(s, zerolog.FatalLevel)
}

// With returns a LogContext for creating a child logger with pre-populated
// fields. Example: req := svc.With().Str("request_id", id).Logger()
func (s *Service) With() LogContext {
	if s == nil || !s.isInitialized.Load() {
		return &noopLogContext{}
	}
	logger := s.logger.Load()
	if logger == nil {
		return &noopLogContext{}
	}
	return &logContext{
		context: logger.With(),
		service: s,
	}
}
