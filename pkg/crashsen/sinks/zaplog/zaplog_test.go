package zaplog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

func newObservedSink() (crashsen.Sink, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapSink(zap.New(core)), logs
}

func TestZapSink_ImplementsSinkInterface(t *testing.T) {
	var _ crashsen.Sink = NewZapSink(nil)
}

func TestZapSink_Write_EmitsStructuredEntry(t *testing.T) {
	sink, logs := newObservedSink()

	event := crashsen.ErrorEvent{
		EventID:     "evt-1",
		Timestamp:   time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC),
		Fingerprint: "fp-99",
		Severity:    crashsen.SeverityFatal,
		ErrorType:   "panic",
		Message:     "worker died",
		Mechanism:   &crashsen.Mechanism{Type: crashsen.MechanismUncaught, Handled: false},
		Component:   "ingest",
		Metadata:    map[string]string{"queue": "jobs-high"},
	}

	require.NoError(t, sink.Write(context.Background(), event))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "worker died", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "fp-99", fields["fingerprint"])
	assert.Equal(t, "panic", fields["error_type"])
	assert.Equal(t, "uncaught", fields["mechanism"])
	assert.Equal(t, false, fields["handled"])
	assert.Equal(t, "ingest", fields["component"])
	assert.Equal(t, "jobs-high", fields["meta.queue"])
}

func TestZapSink_Write_FatalNeverUsesZapFatal(t *testing.T) {
	sink, logs := newObservedSink()

	// A zap fatal entry would os.Exit; the sink must stay at error level
	// and leave termination to the fatal handler.
	require.NoError(t, sink.Write(context.Background(), crashsen.ErrorEvent{
		Severity: crashsen.SeverityFatal,
		Message:  "going down",
	}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestZapSink_Write_WarningLevel(t *testing.T) {
	sink, logs := newObservedSink()

	require.NoError(t, sink.Write(context.Background(), crashsen.ErrorEvent{
		Severity: crashsen.SeverityWarning,
		Message:  "slow response",
	}))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestZapSink_NilLoggerDiscards(t *testing.T) {
	sink := NewZapSink(nil)
	assert.NoError(t, sink.Write(context.Background(), crashsen.ErrorEvent{Message: "dropped"}))
	assert.NoError(t, sink.Flush(context.Background()))
	assert.NoError(t, sink.Close())
}
