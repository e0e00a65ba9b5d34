package spantrace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

func newRecordingSpan(t *testing.T) (context.Context, func() []sdktrace.ReadOnlySpan, func()) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	ctx, span := tp.Tracer("spantrace_test").Start(context.Background(), "operation")
	return ctx, recorder.Ended, func() { span.End() }
}

func TestHandler_RecordsErrorOnSpan(t *testing.T) {
	ctx, ended, end := newRecordingSpan(t)

	NewHandler().HandleError(ctx, errors.New("disk full"))
	end()

	spans := ended()
	require.Len(t, spans, 1)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "disk full", spans[0].Status().Description)

	require.NotEmpty(t, spans[0].Events())
	event := spans[0].Events()[0]
	assert.Equal(t, "exception", event.Name)

	var sawEscaped bool
	for _, attr := range event.Attributes {
		if attr.Key == "exception.escaped" {
			sawEscaped = true
			assert.True(t, attr.Value.AsBool())
		}
	}
	assert.True(t, sawEscaped, "exception.escaped attribute missing")
}

func TestHandler_PanicErrorCarriesStack(t *testing.T) {
	ctx, ended, end := newRecordingSpan(t)

	NewHandler().HandleError(ctx, &crashsen.PanicError{
		Value: "nil deref",
		Stack: "goroutine 3 [running]:\nmain.worker()",
	})
	end()

	spans := ended()
	require.Len(t, spans, 1)
	require.NotEmpty(t, spans[0].Events())

	var stack string
	for _, attr := range spans[0].Events()[0].Attributes {
		if attr.Key == "exception.stacktrace" {
			stack = attr.Value.AsString()
		}
	}
	assert.Contains(t, stack, "main.worker")
}

func TestHandler_NoRecordingSpanIsNoOp(t *testing.T) {
	h := NewHandler()

	// Context without a span: must not panic, nothing to record onto.
	h.HandleError(context.Background(), errors.New("unattached"))
}

func TestAttach_RegistersUnderTracingTag(t *testing.T) {
	d := crashsen.NewDispatcher(nil)

	deregister := Attach(d)
	defer deregister()

	assert.Equal(t, 1, d.HandlerCount())
	assert.Equal(t, 0, d.HandlerCountExcluding(crashsen.HandlerTagTracing))
}
