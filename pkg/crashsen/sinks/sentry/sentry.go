// Package sentry provides a sink that forwards error events to a Sentry
// backend. The caller owns client initialization (sentry.Init or an
// explicit hub); the sink only maps and submits events.
package sentry

import (
	"context"
	"errors"
	"strings"
	"time"

	sentrygo "github.com/getsentry/sentry-go"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

// SentrySinkOption configures the sentry sink.
type SentrySinkOption func(*sentrySinkConfig)

type sentrySinkConfig struct {
	flushTimeout time.Duration
}

// WithFlushTimeout sets the maximum time Flush and Close wait for buffered
// events to reach the backend (default: 2s).
func WithFlushTimeout(d time.Duration) SentrySinkOption {
	return func(c *sentrySinkConfig) {
		if d > 0 {
			c.flushTimeout = d
		}
	}
}

// sentrySink submits events through a sentry hub.
type sentrySink struct {
	hub          *sentrygo.Hub
	flushTimeout time.Duration
}

// NewSentrySink creates a sink that submits events through the given hub.
// A nil hub falls back to sentry's current hub, so callers that already
// ran sentry.Init can pass nil.
func NewSentrySink(hub *sentrygo.Hub, opts ...SentrySinkOption) crashsen.Sink {
	cfg := &sentrySinkConfig{
		flushTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if hub == nil {
		hub = sentrygo.CurrentHub()
	}

	return &sentrySink{
		hub:          hub,
		flushTimeout: cfg.flushTimeout,
	}
}

// Write maps the event to a sentry event and submits it.
func (s *sentrySink) Write(ctx context.Context, event crashsen.ErrorEvent) error {
	if s.hub.Client() == nil {
		return errors.New("sentry sink: no client bound to hub")
	}

	out := sentrygo.NewEvent()
	out.Timestamp = event.Timestamp
	out.Level = mapLevel(event.Severity)
	out.Message = event.Message

	// Sentry event IDs are 32 hex chars; crashsen event IDs are UUIDs.
	if id := strings.ReplaceAll(event.EventID, "-", ""); len(id) == 32 {
		out.EventID = sentrygo.EventID(id)
	}

	// Carry crashsen's own grouping instead of sentry's server-side one.
	if event.Fingerprint != "" {
		out.Fingerprint = []string{event.Fingerprint}
	}

	if event.ErrorType != "" {
		out.Tags["error_type"] = event.ErrorType
	}
	if event.Component != "" {
		out.Tags["component"] = event.Component
	}
	if event.OperationID != "" {
		out.Tags["operation_id"] = event.OperationID
	}
	for k, v := range event.Metadata {
		out.Extra[k] = v
	}
	if st := event.SystemState; st != nil {
		out.Extra["memory_bytes"] = st.MemoryBytes
		out.Extra["goroutine_count"] = st.GoroutineCount
		out.Extra["uptime_ms"] = st.UptimeMs
		out.ServerName = st.HostName
	}

	exc := sentrygo.Exception{
		Type:  event.ErrorType,
		Value: event.Message,
	}
	if event.Mechanism != nil {
		handled := event.Mechanism.Handled
		exc.Mechanism = &sentrygo.Mechanism{
			Type:    event.Mechanism.Type,
			Handled: &handled,
		}
	}
	out.Exception = []sentrygo.Exception{exc}

	if s.hub.CaptureEvent(out) == nil {
		return errors.New("sentry sink: event was not accepted")
	}
	return nil
}

// Flush blocks until buffered events are sent or the timeout elapses.
func (s *sentrySink) Flush(ctx context.Context) error {
	timeout := s.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if !s.hub.Flush(timeout) {
		return errors.New("sentry sink: flush timed out")
	}
	return nil
}

// Close flushes outstanding events. The underlying transport is owned by
// the sentry client, not the sink, so there is nothing else to release.
func (s *sentrySink) Close() error {
	s.hub.Flush(s.flushTimeout)
	return nil
}

// mapLevel converts a crashsen severity to a sentry level.
func mapLevel(severity crashsen.Severity) sentrygo.Level {
	switch severity {
	case crashsen.SeverityWarning:
		return sentrygo.LevelWarning
	case crashsen.SeverityError:
		return sentrygo.LevelError
	case crashsen.SeverityCrash, crashsen.SeverityFatal:
		return sentrygo.LevelFatal
	default:
		return sentrygo.LevelError
	}
}
