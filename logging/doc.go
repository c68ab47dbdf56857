// Package logging provides a minimal logging interface and adapters for blockmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the accumulator, transports and CLI use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging (json, text or tint handlers)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelDebug, Format: "tint"})
//	acc := stream.New(stream.WithLogger(logger))
//
// Translators never log: translation is pure.
package logging
