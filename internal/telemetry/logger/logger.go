// Package logger provides structured logging for rudis.
package logger

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync/atomic"
)

// Attribute keys shared by every rudis log line that concerns a client.
const (
	KeyConnID  = "conn_id"
	KeyRemote  = "remote"
	KeyCommand = "command"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config selects the level, encoding and destination of log output.
type Config struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Format is json or text. Anything else falls back to json.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
	// AddSource records the caller's file and line.
	AddSource bool
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
}

// level is shared by all loggers from New so a config reload applies
// to every connection logger at once.
var level = new(slog.LevelVar)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New builds a logger from cfg and sets the shared level.
func New(cfg Config) (Logger, error) {
	SetLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		h = slog.NewTextHandler(out, opts)
	default:
		h = slog.NewJSONHandler(out, opts)
	}
	return wrap(slog.New(h)), nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return wrap(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func wrap(l *slog.Logger) *slogLogger {
	return &slogLogger{logger: l, ctx: context.Background()}
}

// ForConn scopes l to one client connection. Every line it writes
// carries the connection's ULID and remote address.
func ForConn(l Logger, id string, remote net.Addr) Logger {
	addr := "unknown"
	if remote != nil {
		addr = remote.String()
	}
	return l.With(KeyConnID, id, KeyRemote, addr)
}

// SetLevel changes the level of every logger made by New. Unknown
// names select info. The config watcher calls it when log.level changes.
func SetLevel(name string) {
	lvl, ok := levels[strings.ToLower(name)]
	if !ok {
		lvl = slog.LevelInfo
	}
	level.Set(lvl)
}

// GetLevel reports the current level name.
func GetLevel() string {
	return strings.ToLower(level.Level().String())
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.InfoContext(l.ctx, msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{logger: l.logger.With(args...), ctx: l.ctx}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return &slogLogger{logger: l.logger, ctx: ctx}
}

var defaultLogger atomic.Pointer[slogLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*slogLogger))
}

// SetDefault replaces the logger returned by Default and routes the
// slog package default through it, so libraries logging via slog end
// up in the same stream.
func SetDefault(l Logger) {
	if sl, ok := l.(*slogLogger); ok {
		defaultLogger.Store(sl)
		slog.SetDefault(sl.logger)
	}
}

// Default returns the process-wide logger. Components fall back to it
// when no logger option is given.
func Default() Logger {
	return defaultLogger.Load()
}
