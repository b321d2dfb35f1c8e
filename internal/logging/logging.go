// Package logging provides structured logging for the image cache. It wraps
// log/slog so the rest of the module logs through one nil-safe surface with a
// no-op default.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"
)

// LogLevel represents different logging levels
type LogLevel int

// LogLevelDebug represents debug logging level
const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Tier identifies which data source satisfied (or failed to satisfy) a fetch.
type Tier string

// Tier constants for fetch sources
const (
	TierMemory  Tier = "memory"
	TierDisk    Tier = "disk"
	TierNetwork Tier = "network"
)

// Logger provides structured logging for the image cache.
// It wraps different logger implementations for consistent behavior.
type Logger struct {
	impl loggerImpl
}

// loggerImpl defines the internal interface for logger implementations.
type loggerImpl interface {
	debug(ctx context.Context, msg string, args ...any)
	info(ctx context.Context, msg string, args ...any)
	warn(ctx context.Context, msg string, args ...any)
	error(ctx context.Context, msg string, args ...any)
	with(args ...any) *concreteLoggerImpl
}

// concreteLoggerImpl provides a concrete implementation that can be returned
type concreteLoggerImpl struct {
	impl loggerImpl
}

// nopLoggerWrapper is a special marker for nop logger with fields attached
type nopLoggerWrapper struct {
	*nopLogger
}

func (c *concreteLoggerImpl) debug(ctx context.Context, msg string, args ...any) {
	if c.impl != nil {
		c.impl.debug(ctx, msg, args...)
	}
}

func (c *concreteLoggerImpl) info(ctx context.Context, msg string, args ...any) {
	if c.impl != nil {
		c.impl.info(ctx, msg, args...)
	}
}

func (c *concreteLoggerImpl) warn(ctx context.Context, msg string, args ...any) {
	if c.impl != nil {
		c.impl.warn(ctx, msg, args...)
	}
}

func (c *concreteLoggerImpl) error(ctx context.Context, msg string, args ...any) {
	if c.impl != nil {
		c.impl.error(ctx, msg, args...)
	}
}

func (c *concreteLoggerImpl) with(args ...any) *concreteLoggerImpl {
	if c.impl != nil {
		return c.impl.with(args...)
	}
	return &concreteLoggerImpl{}
}

// Debug logs debug-level messages
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	if l.impl != nil {
		l.impl.debug(ctx, msg, args...)
	}
}

// Info logs info-level messages
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	if l.impl != nil {
		l.impl.info(ctx, msg, args...)
	}
}

// Warn logs warning-level messages
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	if l.impl != nil {
		l.impl.warn(ctx, msg, args...)
	}
}

// Error logs error-level messages
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	if l.impl != nil {
		l.impl.error(ctx, msg, args...)
	}
}

// With returns a logger with additional context fields
func (l *Logger) With(args ...any) *Logger {
	if l.impl == nil {
		return l
	}
	concreteImpl := l.impl.with(args...)
	// Special case for nop logger - return the same instance
	if _, ok := concreteImpl.impl.(*nopLoggerWrapper); ok {
		return l
	}
	return &Logger{impl: concreteImpl}
}

// WithOperation returns a logger with operation context
func (l *Logger) WithOperation(operation string) *Logger {
	return l.With("operation", operation)
}

// WithLocator returns a logger with the locator being fetched
func (l *Logger) WithLocator(locator string) *Logger {
	return l.With("locator", locator)
}

// WithDigest returns a logger with the content digest of a persisted blob
func (l *Logger) WithDigest(dgst digest.Digest) *Logger {
	return l.With("digest", dgst.String())
}

// WithSize returns a logger with size context
func (l *Logger) WithSize(size int64) *Logger {
	return l.With("size", size)
}

// WithDuration returns a logger with duration context
func (l *Logger) WithDuration(duration time.Duration) *Logger {
	return l.With("duration", duration)
}

// LogConfig holds configuration for the cache logger.
type LogConfig struct {
	// Level sets the minimum log level (debug, info, warn, error)
	Level LogLevel
	// EnableCallerInfo includes file and line number in logs
	EnableCallerInfo bool
	// EnableOperationLogging enables logging of individual fetch steps
	EnableOperationLogging bool
}

// DefaultLogConfig returns a default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:                  LogLevelInfo,
		EnableCallerInfo:       false,
		EnableOperationLogging: false, // Disabled by default to avoid noise
	}
}

// slogLogger implements the Logger interface using slog.
type slogLogger struct {
	logger *slog.Logger
	level  LogLevel
	fields []any
}

// NewLogger creates a new structured logger with the given configuration.
func NewLogger(config LogConfig) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: func() slog.Level {
			switch config.Level {
			case LogLevelDebug:
				return slog.LevelDebug
			case LogLevelInfo:
				return slog.LevelInfo
			case LogLevelWarn:
				return slog.LevelWarn
			case LogLevelError:
				return slog.LevelError
			default:
				return slog.LevelInfo
			}
		}(),
		AddSource: config.EnableCallerInfo,
	})

	return &Logger{
		impl: &slogLogger{
			logger: slog.New(handler),
			level:  config.Level,
			fields: make([]any, 0),
		},
	}
}

// FromSlog wraps an existing slog.Logger so callers can route cache logs into
// their own handler. A nil logger yields the no-op logger.
func FromSlog(logger *slog.Logger) *Logger {
	if logger == nil {
		return NewNopLogger()
	}
	return &Logger{
		impl: &slogLogger{
			logger: logger,
			level:  LogLevelDebug, // level filtering is the handler's job here
			fields: make([]any, 0),
		},
	}
}

// NewNopLogger creates a no-op logger that discards all log messages.
func NewNopLogger() *Logger {
	return &Logger{
		impl: &nopLogger{},
	}
}

// debug logs debug-level messages.
func (l *slogLogger) debug(ctx context.Context, msg string, args ...any) {
	if l.level <= LogLevelDebug {
		l.logger.DebugContext(ctx, msg, l.merged(args)...)
	}
}

// info logs info-level messages.
func (l *slogLogger) info(ctx context.Context, msg string, args ...any) {
	if l.level <= LogLevelInfo {
		l.logger.InfoContext(ctx, msg, l.merged(args)...)
	}
}

// warn logs warning-level messages.
func (l *slogLogger) warn(ctx context.Context, msg string, args ...any) {
	if l.level <= LogLevelWarn {
		l.logger.WarnContext(ctx, msg, l.merged(args)...)
	}
}

// error logs error-level messages.
func (l *slogLogger) error(ctx context.Context, msg string, args ...any) {
	if l.level <= LogLevelError {
		l.logger.ErrorContext(ctx, msg, l.merged(args)...)
	}
}

// merged prepends the accumulated fields to the per-call args.
func (l *slogLogger) merged(args []any) []any {
	allArgs := make([]any, len(l.fields)+len(args))
	copy(allArgs, l.fields)
	copy(allArgs[len(l.fields):], args)
	return allArgs
}

// with returns a logger with additional context fields.
func (l *slogLogger) with(args ...any) *concreteLoggerImpl {
	newFields := make([]any, len(l.fields)+len(args))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], args)

	return &concreteLoggerImpl{
		impl: &slogLogger{
			logger: l.logger,
			level:  l.level,
			fields: newFields,
		},
	}
}

// nopLogger is a no-op logger implementation that discards all messages.
type nopLogger struct{}

func (n *nopLogger) debug(ctx context.Context, msg string, args ...any) {}
func (n *nopLogger) info(ctx context.Context, msg string, args ...any)  {}
func (n *nopLogger) warn(ctx context.Context, msg string, args ...any)  {}
func (n *nopLogger) error(ctx context.Context, msg string, args ...any) {}
func (n *nopLogger) with(args ...any) *concreteLoggerImpl {
	return &concreteLoggerImpl{impl: &nopLoggerWrapper{nopLogger: n}}
}

// Operation represents different fetch steps for logging.
type Operation string

// Operation constants for fetch steps
const (
	OpFetch      Operation = "fetch"
	OpDiskRead   Operation = "disk_read"
	OpDiskWrite  Operation = "disk_write"
	OpDerivePath Operation = "derive_path"
	OpJoin       Operation = "join"
	OpPrefetch   Operation = "prefetch"
)

// LogFetchOperation logs a completed fetch step with its outcome.
func LogFetchOperation(
	ctx context.Context,
	logger *Logger,
	operation Operation,
	duration time.Duration,
	success bool,
	size int64,
	err error,
) {
	if logger == nil {
		return
	}

	fields := []any{
		"operation", string(operation),
		"duration_ms", duration.Milliseconds(),
		"success", success,
	}

	if size > 0 {
		fields = append(fields, "size", size)
	}

	if err != nil {
		fields = append(fields, "error", err.Error())
	}

	if success {
		logger.Info(ctx, "fetch operation completed", fields...)
	} else {
		logger.Warn(ctx, "fetch operation failed", fields...)
	}
}

// LogHit logs a cache hit event for the given tier.
func LogHit(ctx context.Context, logger *Logger, tier Tier, locator string, size int64) {
	if logger == nil {
		return
	}

	logger.Debug(ctx, "cache hit",
		"tier", string(tier),
		"locator", locator,
		"size", size,
		"result", "hit")
}

// LogMiss logs a cache miss event for the given tier.
func LogMiss(ctx context.Context, logger *Logger, tier Tier, locator string, reason string) {
	if logger == nil {
		return
	}

	logger.Debug(ctx, "cache miss",
		"tier", string(tier),
		"locator", locator,
		"reason", reason,
		"result", "miss")
}

// LogJoin logs a caller joining an in-flight fetch instead of starting one.
func LogJoin(ctx context.Context, logger *Logger, locator string) {
	if logger == nil {
		return
	}

	logger.Debug(ctx, "joined in-flight fetch",
		"locator", locator,
		"result", "join")
}

// LogPersisted logs a blob written to disk, keyed by its content digest.
func LogPersisted(ctx context.Context, logger *Logger, locator, path string, dgst digest.Digest, size int64) {
	if logger == nil {
		return
	}

	logger.Info(ctx, "image persisted",
		"locator", locator,
		"path", path,
		"digest", dgst.String(),
		"size", size)
}

// ParseLogLevel parses a string log level into a LogLevel.
func ParseLogLevel(level string) (LogLevel, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug, nil
	case "info":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}
