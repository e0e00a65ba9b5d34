// Package stderr provides a sink that logs errors to stderr in human-readable format.
// Useful for development and debugging.
package stderr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

// StderrSinkOption configures the stderr sink.
type StderrSinkOption func(*stderrSinkConfig)

type stderrSinkConfig struct {
	verbose bool
	out     io.Writer
}

// WithVerbose enables full error details including stack traces.
func WithVerbose() StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.verbose = true
	}
}

// WithWriter redirects output away from os.Stderr. Used in tests.
func WithWriter(w io.Writer) StderrSinkOption {
	return func(c *stderrSinkConfig) {
		c.out = w
	}
}

// stderrSink writes errors to stderr in human-readable format.
type stderrSink struct {
	verbose bool
	out     io.Writer
}

// NewStderrSink creates a sink that writes to stderr.
func NewStderrSink(opts ...StderrSinkOption) crashsen.Sink {
	cfg := &stderrSinkConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	return &stderrSink{
		verbose: cfg.verbose,
		out:     cfg.out,
	}
}

// Write formats and outputs the error event to stderr.
func (s *stderrSink) Write(ctx context.Context, event crashsen.ErrorEvent) error {
	// Format severity as uppercase
	severity := strings.ToUpper(string(event.Severity))

	// Build the main line
	// Format: [CRASHSEN] <timestamp> <SEVERITY> <error_type> via <mechanism> in <component>
	timestamp := event.Timestamp.Format("2006-01-02T15:04:05Z07:00")

	var parts []string
	parts = append(parts, fmt.Sprintf("[CRASHSEN] %s %s %s", timestamp, severity, event.ErrorType))

	if event.Mechanism != nil {
		parts = append(parts, fmt.Sprintf("via %s", event.Mechanism.Type))
		if !event.Mechanism.Handled {
			parts = append(parts, "(unhandled)")
		}
	}
	if event.Component != "" {
		parts = append(parts, fmt.Sprintf("in %s", event.Component))
	}
	if event.OperationID != "" {
		parts = append(parts, fmt.Sprintf("op=%s", event.OperationID))
	}

	fmt.Fprintln(s.out, strings.Join(parts, " "))

	// Message line
	if event.Message != "" {
		fmt.Fprintf(s.out, "        Message: %s\n", event.Message)
	}

	// Fingerprint line
	if event.Fingerprint != "" {
		fmt.Fprintf(s.out, "        Fingerprint: %s\n", event.Fingerprint)
	}

	// System state line (if captured)
	if event.SystemState != nil {
		fmt.Fprintf(s.out, "        System: %d bytes, %d goroutines, up %dms\n",
			event.SystemState.MemoryBytes, event.SystemState.GoroutineCount, event.SystemState.UptimeMs)
	}

	// Stack trace (only in verbose mode)
	if s.verbose && event.StackTrace != "" {
		fmt.Fprintf(s.out, "        Stack trace:\n")
		for _, line := range strings.Split(event.StackTrace, "\n") {
			fmt.Fprintf(s.out, "          %s\n", line)
		}
	}

	return nil
}

// Flush is a no-op for stderr sink.
func (s *stderrSink) Flush(ctx context.Context) error {
	return nil
}

// Close is a no-op for stderr sink.
func (s *stderrSink) Close() error {
	return nil
}
