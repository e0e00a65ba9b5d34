// Package zaplog provides a sink that emits error events as structured zap
// log entries. Useful when a service already ships zap output to a log
// pipeline and wants error events in the same stream.
package zaplog

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

// zapSink logs error events through a zap logger.
type zapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a sink that logs events through the given logger.
// A nil logger disables output (zap.NewNop).
func NewZapSink(logger *zap.Logger) crashsen.Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &zapSink{
		// The caller's wrapping is not part of the event; report the
		// sink as the log site.
		logger: logger.WithOptions(zap.WithCaller(false)),
	}
}

// Write emits the event as one structured log entry.
func (s *zapSink) Write(ctx context.Context, event crashsen.ErrorEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID),
		zap.Time("timestamp", event.Timestamp),
		zap.String("fingerprint", event.Fingerprint),
		zap.String("error_type", event.ErrorType),
	}

	if event.Mechanism != nil {
		fields = append(fields,
			zap.String("mechanism", event.Mechanism.Type),
			zap.Bool("handled", event.Mechanism.Handled),
		)
	}
	if event.Component != "" {
		fields = append(fields, zap.String("component", event.Component))
	}
	if event.OperationID != "" {
		fields = append(fields, zap.String("operation_id", event.OperationID))
	}
	if event.StackTrace != "" {
		fields = append(fields, zap.String("stack_trace", event.StackTrace))
	}
	if st := event.SystemState; st != nil {
		fields = append(fields,
			zap.Int64("memory_bytes", st.MemoryBytes),
			zap.Int("goroutine_count", st.GoroutineCount),
			zap.Int64("uptime_ms", st.UptimeMs),
		)
	}
	for k, v := range event.Metadata {
		fields = append(fields, zap.String("meta."+k, v))
	}

	s.logger.Log(mapLevel(event.Severity), event.Message, fields...)
	return nil
}

// Flush syncs the underlying logger.
func (s *zapSink) Flush(ctx context.Context) error {
	// Sync on stderr-backed loggers returns ENOTTY-style errors that are
	// not actionable; surface them anyway and let callers decide.
	return s.logger.Sync()
}

// Close syncs the underlying logger. The logger itself is owned by the caller.
func (s *zapSink) Close() error {
	return s.logger.Sync()
}

// mapLevel converts a crashsen severity to a zap level. Fatal maps to
// zap's error level on purpose: process termination belongs to the fatal
// handler, never to the log sink.
func mapLevel(severity crashsen.Severity) zapcore.Level {
	switch severity {
	case crashsen.SeverityWarning:
		return zapcore.WarnLevel
	case crashsen.SeverityCrash, crashsen.SeverityFatal:
		return zapcore.ErrorLevel
	default:
		return zapcore.ErrorLevel
	}
}
