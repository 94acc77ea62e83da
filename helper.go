package logging

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// parseLevel parses a string log level into a zerolog.Level.
// Returns zerolog.NoLevel and an error if parsing fails.
func parseLevel(level string) (zerolog.Level, error) {
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.NoLevel, err
	}
	return l, nil
}

// buildErrorChain walks an error's unwrap chain and returns the messages
// outermost -> innermost plus the root cause message. It guards against
// excessive depth and repeated messages to avoid cycles.
func buildErrorChain(err error) (chain []string, root string) {
	const maxDepth = 50
	seen := map[string]bool{}

	for visited := 0; err != nil && visited < maxDepth; visited++ {
		msg := err.Error()
		if seen[msg] {
			break
		}
		seen[msg] = true
		chain = append(chain, msg)
		err = errors.Unwrap(err)
	}

	if len(chain) > 0 {
		root = chain[len(chain)-1]
	}
	return
}

// joinChain returns a single string for the error chain separated by " -> ".
func joinChain(chain []string) string {
	if len(chain) == 0 {
		return ""
	}
	return strings.Join(chain, " -> ")
}

// logEventBuilder creates a log event for the given level. It registers the
// event with the service waitgroup so Close() can wait for it, and holds a
// read lock during creation to avoid racing Close(). If the service is
// closed or the level is disabled, it returns a no-op LogEvent.
func logEventBuilder(s *Service, level zerolog.Level) LogEvent {
	if s == nil || !s.isInitialized.Load() {
		return newLogEvent(nil)
	}
	if level == zerolog.NoLevel {
		return newLogEvent(nil)
	}

	s.activeOps.Add(1)
	s.wg.Add(1)

	s.mu.RLock()

	// Double-check after acquiring the lock: Close may have won the race.
	if !s.isInitialized.Load() {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	logger := s.logger.Load()
	if logger == nil || logger.GetLevel() > level {
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	var event *zerolog.Event
	switch level {
	case zerolog.TraceLevel:
		event = logger.Trace()
	case zerolog.DebugLevel:
		event = logger.Debug()
	case zerolog.InfoLevel:
		event = logger.Info()
	case zerolog.WarnLevel:
		event = logger.Warn()
	case zerolog.ErrorLevel:
		event = logger.Error()
	case zerolog.FatalLevel:
		event = logger.Fatal()
	case zerolog.PanicLevel:
		event = logger.Panic()
	default:
		s.mu.RUnlock()
		s.activeOps.Add(-1)
		s.wg.Done()
		return newLogEvent(nil)
	}

	s.mu.RUnlock()

	return newTrackedLogEvent(event, s)
}
