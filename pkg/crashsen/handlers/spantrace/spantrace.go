// Package spantrace provides the tracing companion handler. It records
// dispatched errors onto the active OpenTelemetry span so that a trace
// ending in a fatal error carries the exception that killed it.
//
// The handler registers under crashsen.HandlerTagTracing, which keeps it
// out of the fatal handler's count of "other" handlers: its presence never
// suppresses process termination.
package spantrace

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

// Exception attribute keys per OTEL semantic conventions.
var (
	exceptionEscapedKey    = attribute.Key("exception.escaped")
	exceptionStacktraceKey = attribute.Key("exception.stacktrace")
)

// Handler records errors onto the span carried by the dispatch context.
type Handler struct{}

// NewHandler creates a tracing companion handler.
func NewHandler() *Handler {
	return &Handler{}
}

// HandleError records the error on the context's span, if one is recording.
func (h *Handler) HandleError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		// Errors reaching the dispatcher escaped application code.
		exceptionEscapedKey.Bool(true),
	}
	var pe *crashsen.PanicError
	if errors.As(err, &pe) && pe.Stack != "" {
		attrs = append(attrs, exceptionStacktraceKey.String(pe.Stack))
	}

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// Attach registers a tracing companion handler on the dispatcher under
// crashsen.HandlerTagTracing and returns the deregister func.
func Attach(d *crashsen.Dispatcher) (deregister func()) {
	return d.Register(crashsen.HandlerTagTracing, NewHandler())
}
