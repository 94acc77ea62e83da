package logging

import "errors"

// Sentinel errors returned by Init, Close, and Guard.Release. All failures
// are returned to the caller; none of the release paths panic, so a host
// that ignores them loses logging output at worst.
var (
	// ErrAlreadyInitialized is returned by Init when the process-wide
	// subscriber has already been installed.
	ErrAlreadyInitialized = errors.New("logging already initialized")

	// ErrWriterSetup wraps I/O failures while opening the configured
	// output destination. No global state is installed when it is returned.
	ErrWriterSetup = errors.New("log writer setup failed")

	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = errors.New("invalid logging configuration")

	// ErrFlushFailed wraps sink errors during the final flush on release.
	ErrFlushFailed = errors.New("log flush failed")

	// ErrFlushTimeout is returned when release gave up waiting for
	// in-flight log events after the configured shutdown timeout.
	ErrFlushTimeout = errors.New("log flush timed out")
)
