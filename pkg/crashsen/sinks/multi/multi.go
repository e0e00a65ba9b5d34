// Package multi provides a sink that fans out to multiple sinks.
// All sinks receive all events; errors are aggregated.
package multi

import (
	"context"
	"errors"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

// multiSink fans out to multiple sinks.
type multiSink struct {
	sinks []crashsen.Sink
}

// NewMultiSink creates a sink that writes to multiple sinks.
// All sinks receive all events. Errors are aggregated via errors.Join.
func NewMultiSink(sinks ...crashsen.Sink) crashsen.Sink {
	return &multiSink{
		sinks: sinks,
	}
}

// Write sends the event to all sinks, collecting any errors.
// All sinks are called even if some return errors.
func (s *multiSink) Write(ctx context.Context, event crashsen.ErrorEvent) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush calls Flush on all sinks, collecting any errors.
func (s *multiSink) Flush(ctx context.Context) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on all sinks, collecting any errors.
func (s *multiSink) Close() error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
