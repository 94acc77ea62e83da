package logging

import (
	"time"

	"github.com/rs/zerolog"
)

// LogContext provides a fluent interface for building a context logger with
// pre-populated fields. Fields added through LogContext are included in all
// records emitted by the resulting logger.
type LogContext interface {
	Str(key, val string) LogContext
	Strs(key string, vals []string) LogContext
	Int(key string, val int) LogContext
	Int64(key string, val int64) LogContext
	Float64(key string, val float64) LogContext
	Bool(key string, val bool) LogContext
	Time(key string, val time.Time) LogContext
	Err(err error) LogContext
	Interface(key string, val any) LogContext
	// Logger creates and returns the new context logger
	Logger() Logger
}

// LogEvent provides a fluent interface for structured logging with type-safe
// field methods. It wraps zerolog.Event behind nil-safe no-op fallbacks so a
// released or disabled backend never panics a caller mid-chain.
type LogEvent interface {
	Str(key, val string) LogEvent
	Strs(key string, vals []string) LogEvent
	Stringer(key string, val interface{ String() string }) LogEvent
	Int(key string, val int) LogEvent
	Int64(key string, val int64) LogEvent
	Uint64(key string, val uint64) LogEvent
	Float64(key string, val float64) LogEvent
	Bool(key string, val bool) LogEvent
	Time(key string, val time.Time) LogEvent
	Dur(key string, val time.Duration) LogEvent
	Err(err error) LogEvent
	AnErr(key string, err error) LogEvent
	Bytes(key string, val []byte) LogEvent
	Interface(key string, val any) LogEvent
	Dict(key string, dict func(LogEvent)) LogEvent
	Msg(msg string)
	Msgf(format string, v ...any)
	Send()
}

// logEvent implements LogEvent by wrapping zerolog.Event. When service is
// set the event is registered with the service's in-flight accounting, which
// is settled exactly once when the event finishes via Msg/Msgf/Send. The
// accounting lives on the same struct as the field methods so no step of a
// builder chain can shed it.
type logEvent struct {
	event   *zerolog.Event
	service *Service
}

func newLogEvent(e *zerolog.Event) LogEvent {
	return &logEvent{event: e}
}

func newTrackedLogEvent(e *zerolog.Event, s *Service) LogEvent {
	if e == nil || s == nil {
		return &logEvent{event: nil}
	}
	return &logEvent{event: e, service: s}
}

// done settles the in-flight accounting. Idempotent, so a doubled finish
// call cannot underflow the waitgroup.
func (e *logEvent) done() {
	if e.service != nil {
		e.service.activeOps.Add(-1)
		e.service.wg.Done()
		e.service = nil
	}
}

func (e *logEvent) Str(key, val string) LogEvent {
	if e.event != nil {
		e.event.Str(key, val)
	}
	return e
}

func (e *logEvent) Strs(key string, vals []string) LogEvent {
	if e.event != nil {
		e.event.Strs(key, vals)
	}
	return e
}

func (e *logEvent) Stringer(key string, val interface{ String() string }) LogEvent {
	if e.event != nil {
		e.event.Stringer(key, val)
	}
	return e
}

func (e *logEvent) Int(key string, val int) LogEvent {
	if e.event != nil {
		e.event.Int(key, val)
	}
	return e
}

func (e *logEvent) Int64(key string, val int64) LogEvent {
	if e.event != nil {
		e.event.Int64(key, val)
	}
	return e
}

func (e *logEvent) Uint64(key string, val uint64) LogEvent {
	if e.event != nil {
		e.event.Uint64(key, val)
	}
	return e
}

func (e *logEvent) Float64(key string, val float64) LogEvent {
	if e.event != nil {
		e.event.Float64(key, val)
	}
	return e
}

func (e *logEvent) Bool(key string, val bool) LogEvent {
	if e.event != nil {
		e.event.Bool(key, val)
	}
	return e
}

func (e *logEvent) Time(key string, val time.Time) LogEvent {
	if e.event != nil {
		e.event.Time(key, val)
	}
	return e
}

func (e *logEvent) Dur(key string, val time.Duration) LogEvent {
	if e.event != nil {
		e.event.Dur(key, val)
	}
	return e
}

func (e *logEvent) Err(err error) LogEvent {
	if e.event != nil {
		e.event.Err(err)
		if err != nil {
			if chain, root := buildErrorChain(err); len(chain) > 1 {
				// include array and joined string for readability
				e.event.Strs("error_chain", chain)
				e.event.Str("error_root", root)
				e.event.Str("error_history", joinChain(chain))
			}
		}
	}
	return e
}

func (e *logEvent) AnErr(key string, err error) LogEvent {
	if e.event != nil {
		e.event.AnErr(key, err)
		if err != nil {
			if chain, root := buildErrorChain(err); len(chain) > 1 {
				e.event.Strs(key+"_chain", chain)
				e.event.Str(key+"_root", root)
				e.event.Str(key+"_history", joinChain(chain))
			}
		}
	}
	return e
}

func (e *logEvent) Bytes(key string, val []byte) LogEvent {
	if e.event != nil {
		e.event.Bytes(key, val)
	}
	return e
}

func (e *logEvent) Interface(key string, val any) LogEvent {
	if e.event != nil {
		e.event.Interface(key, val)
	}
	return e
}

// Dict for nested objects
func (e *logEvent) Dict(key string, dict func(LogEvent)) LogEvent {
	if e.event != nil {
		dictEvent := zerolog.Dict()
		dict(newLogEvent(dictEvent))
		e.event.Dict(key, dictEvent)
	}
	return e
}

// Msg, Msgf and Send settle the in-flight accounting even when the
// underlying write panics.
func (e *logEvent) Msg(msg string) {
	defer e.done()
	if e.event != nil {
		e.event.Msg(msg)
	}
}

func (e *logEvent) Msgf(format string, v ...any) {
	defer e.done()
	if e.event != nil {
		e.event.Msgf(format, v...)
	}
}

func (e *logEvent) Send() {
	defer e.done()
	if e.event != nil {
		e.event.Send()
	}
}

// logContext implements LogContext by wrapping zerolog.Context
type logContext struct {
	context zerolog.Context
	service *Service
}

func (c *logContext) Str(key, val string) LogContext {
	c.context = c.context.Str(key, val)
	return c
}

func (c *logContext) Strs(key string, vals []string) LogContext {
	c.context = c.context.Strs(key, vals)
	return c
}

func (c *logContext) Int(key string, val int) LogContext {
	c.context = c.context.Int(key, val)
	return c
}

func (c *logContext) Int64(key string, val int64) LogContext {
	c.context = c.context.Int64(key, val)
	return c
}

func (c *logContext) Float64(key string, val float64) LogContext {
	c.context = c.context.Float64(key, val)
	return c
}

func (c *logContext) Bool(key string, val bool) LogContext {
	c.context = c.context.Bool(key, val)
	return c
}

func (c *logContext) Time(key string, val time.Time) LogContext {
	c.context = c.context.Time(key, val)
	return c
}

func (c *logContext) Err(err error) LogContext {
	c.context = c.context.Err(err)
	return c
}

func (c *logContext) Interface(key string, val any) LogContext {
	c.context = c.context.Interface(key, val)
	return c
}

func (c *logContext) Logger() Logger {
	logger := c.context.Logger()
	// Delegate resource accounting to the parent service so child loggers
	// never outlive the writers they share with it.
	return &contextLogger{
		logger: &logger,
		parent: c.service,
	}
}

// contextLogger wraps a zerolog.Logger created from a context. It delegates
// lifecycle state to the parent Service, so a child logger built before
// Close degrades to no-ops afterwards like everything else.
type contextLogger struct {
	logger *zerolog.Logger
	parent *Service
}

func (cl *contextLogger) event(level zerolog.Level) LogEvent {
	if cl == nil || cl.logger == nil || cl.parent == nil {
		return newLogEvent(nil)
	}

	cl.parent.activeOps.Add(1)
	cl.parent.wg.Add(1)

	cl.parent.mu.RLock()

	if !cl.parent.isInitialized.Load() || cl.logger.GetLevel() > level {
		cl.parent.mu.RUnlock()
		cl.parent.activeOps.Add(-1)
		cl.parent.wg.Done()
		return newLogEvent(nil)
	}

	var event *zerolog.Event
	switch level {
	case zerolog.TraceLevel:
		event = cl.logger.Trace()
	case zerolog.DebugLevel:
		event = cl.logger.Debug()
	case zerolog.InfoLevel:
		event = cl.logger.Info()
	case zerolog.WarnLevel:
		event = cl.logger.Warn()
	case zerolog.ErrorLevel:
		event = cl.logger.Error()
	case zerolog.FatalLevel:
		event = cl.logger.Fatal()
	case zerolog.PanicLevel:
		event = cl.logger.Panic()
	default:
		cl.parent.mu.RUnlock()
		cl.parent.activeOps.Add(-1)
		cl.parent.wg.Done()
		return newLogEvent(nil)
	}

	cl.parent.mu.RUnlock()

	return newTrackedLogEvent(event, cl.parent)
}

func (cl *contextLogger) TraceWith() LogEvent { return cl.event(zerolog.TraceLevel) }
func (cl *contextLogger) DebugWith() LogEvent { return cl.event(zerolog.DebugLevel) }
func (cl *contextLogger) InfoWith() LogEvent  { return cl.event(zerolog.InfoLevel) }
func (cl *contextLogger) WarnWith() LogEvent  { return cl.event(zerolog.WarnLevel) }
func (cl *contextLogger) ErrorWith() LogEvent { return cl.event(zerolog.ErrorLevel) }
func (cl *contextLogger) FatalWith() LogEvent { return cl.event(zerolog.FatalLevel) }

func (cl *contextLogger) With() LogContext {
	if cl == nil || cl.logger == nil || cl.parent == nil || !cl.parent.isInitialized.Load() {
		return &noopLogContext{}
	}
	return &logContext{
		context: cl.logger.With(),
		service: cl.parent,
	}
}

func (cl *contextLogger) Span(name string) *Span {
	if cl == nil || cl.parent == nil {
		return &Span{name: name}
	}
	return cl.parent.Span(name)
}

// noopLogContext is a no-op implementation of LogContext
type noopLogContext struct{}

func (n *noopLogContext) Str(key, val string) LogContext            { return n }
func (n *noopLogContext) Strs(key string, vals []string) LogContext { return n }
func (n *noopLogContext) Int(key string, val int) LogContext        { return n }
func (n *noopLogContext) Int64(key string, val int64) LogContext    { return n }
func (n *noopLogContext) Float64(key string, val float64) LogContext {
	return n
}
func (n *noopLogContext) Bool(key string, val bool) LogContext      { return n }
func (n *noopLogContext) Time(key string, val time.Time) LogContext { return n }
func (n *noopLogContext) Err(err error) LogContext                  { return n }
func (n *noopLogContext) Interface(key string, val any) LogContext  { return n }
func (n *noopLogContext) Logger() Logger                            { return &noopLogger{} }

// noopLogger is a no-op implementation of Logger
type noopLogger struct{}

func (n *noopLogger) TraceWith() LogEvent    { return newLogEvent(nil) }
func (n *noopLogger) DebugWith() LogEvent    { return newLogEvent(nil) }
func (n *noopLogger) InfoWith() LogEvent     { return newLogEvent(nil) }
func (n *noopLogger) WarnWith() LogEvent     { return newLogEvent(nil) }
func (n *noopLogger) ErrorWith() LogEvent    { return newLogEvent(nil) }
func (n *noopLogger) FatalWith() LogEvent    { return newLogEvent(nil) }
func (n *noopLogger) With() LogContext       { return &noopLogContext{} }
func (n *noopLogger) Span(name string) *Span { return &Span{name: name} }
