package logging

import (
	"go.uber.org/atomic"
)

// Package-level initialization gate. Only one Init may ever succeed for the
// lifetime of the process; the flag plus the stored service form the one-shot
// result cell, so no hidden re-entrancy exists beyond this file.
var (
	initGate   atomic.Bool
	defaultSvc atomic.Pointer[Service]
)

// Init installs the process-wide logging service and returns the Guard that
// owns its flush/close resources. The host must keep the Guard alive until
// the final log statement and release it at shutdown, typically via
//
//	guard, err := logging.Init(cfg)
//	if err != nil { ... }
//	defer guard.Release()
//
// Init is one-shot: a second call returns ErrAlreadyInitialized and never
// replaces the installed subscriber. Concurrent callers are serialized by an
// atomic gate so at most one proceeds; a caller losing the gate observes
// ErrAlreadyInitialized even if the winner's initialization subsequently
// fails and re-arms the gate. Init is therefore intended to run once from
// the startup goroutine, before any workers begin logging.
//
// On failure (ErrInvalidConfig, ErrWriterSetup) nothing is installed and the
// gate re-arms, so the host may fix the configuration and call Init again.
func Init(cfg Config) (*Guard, error) {
	if !initGate.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInitialized
	}

	svc := NewService(cfg)
	if err := svc.Initialize(); err != nil {
		initGate.Store(false)
		return nil, err
	}

	defaultSvc.Store(svc)
	return &Guard{svc: svc}, nil
}

// Default returns the process-wide Logger installed by Init. Before Init,
// and after the Guard is released, it returns a no-op logger, so callers
// never need to nil-check.
func Default() Logger {
	if svc := defaultSvc.Load(); svc != nil && svc.isInitialized.Load() {
		return svc
	}
	return &noopLogger{}
}

// Guard is the opaque handle bounding the validity of the logging writers.
// While it is alive the underlying resources stay open; Release flushes and
// closes them exactly once. Dropping the guard early turns subsequent log
// calls into no-ops rather than crashes.
type Guard struct {
	svc      *Service
	released atomic.Bool
}

// Release flushes buffered records and closes the writers. It blocks up to
// the configured shutdown timeout waiting for in-flight events.
//
// Release is idempotent: the second and later calls are no-ops returning
// nil, and a nil Guard is tolerated, so release during panic unwind or a
// doubled defer can never abort the process. Flush failures come back as
// ErrFlushFailed/ErrFlushTimeout wrapped errors for the host to inspect or
// ignore.
func (g *Guard) Release() error {
	if g == nil || g.svc == nil {
		return nil
	}
	if !g.released.CompareAndSwap(false, true) {
		return nil
	}
	return g.svc.Close()
}
