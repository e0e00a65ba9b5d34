// Package noop provides a sink that discards all events.
// Useful for tests and for disabling capture without rewiring callers.
package noop

import (
	"context"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

// noopSink discards all events.
type noopSink struct{}

// NewNoopSink creates a sink that discards all events.
func NewNoopSink() crashsen.Sink {
	return &noopSink{}
}

// Write discards the event.
func (s *noopSink) Write(ctx context.Context, event crashsen.ErrorEvent) error {
	return nil
}

// Flush is a no-op.
func (s *noopSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *noopSink) Close() error {
	return nil
}
