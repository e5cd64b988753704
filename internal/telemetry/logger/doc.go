// Package logger provides structured logging for rudis.
//
// It wraps log/slog behind a small Logger interface:
//
//   - logger.go: construction, level control and connection-scoped loggers
//   - context.go: context propagation of the logger and connection ID
//
// Features:
//
//   - JSON and text output formats
//   - Runtime log level adjustment (used by config hot reload)
//   - Connection-scoped loggers carrying conn_id
package logger
