// Package logging provides a guard-safe bootstrap over rs/zerolog with a
// structured-first API, optional span lifecycle events, and nanoid-based
// correlation identifiers.
//
// Key features
//   - One-shot process-wide initialization: Init installs the subscriber at
//     most once and returns a Guard whose Release performs the final flush
//   - Structured logging only: typed fields via LogEvent, context loggers
//     via With() for per-request scoping
//   - Span lifecycle events (new/enter/exit/close) selectable per transition
//     and cheap to disable entirely
//   - Graceful shutdown that waits for in-flight logs (bounded timeout);
//     logging after release degrades to no-ops instead of crashing
//   - File rotation via lumberjack and configurable console formatting
//
// Typical usage
//
//	guard, err := logging.Init(logging.DefaultConfig())
//	if err != nil {
//		panic(err)
//	}
//	defer guard.Release()
//
//	log := logging.Default()
//	log.InfoWith().Str("user_id", id).Msg("processed")
//
//	sp := log.Span("checkout")
//	sp.Enter()
//	// ... work ...
//	sp.Exit()
//	sp.Close()
package logging
