// Package async provides a sink wrapper with a bounded queue for high-throughput scenarios.
// Events are queued and processed asynchronously; oldest events are dropped when full.
package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/observekit/crash-observe/pkg/crashsen"
)

// AsyncSinkOption configures the async sink.
type AsyncSinkOption func(*asyncSinkConfig)

type asyncSinkConfig struct {
	queueSize     int
	flushInterval time.Duration
	onDropped     func(count int)
}

// WithQueueSize sets the maximum number of queued events (default: 1000).
func WithQueueSize(size int) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if size > 0 {
			c.queueSize = size
		}
	}
}

// WithFlushInterval sets how often Flush polls for drain completion (default: 10ms).
func WithFlushInterval(d time.Duration) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

// WithOnDropped sets a callback invoked when events are dropped due to queue overflow.
func WithOnDropped(fn func(count int)) AsyncSinkOption {
	return func(c *asyncSinkConfig) {
		c.onDropped = fn
	}
}

// asyncSink wraps a sink with a bounded queue.
type asyncSink struct {
	inner crashsen.Sink
	queue chan crashsen.ErrorEvent

	// pending counts accepted events not yet delivered: everything still
	// in the queue plus the one the processor may be writing. It is what
	// Flush waits on; queue length alone cannot see an in-flight write.
	pending atomic.Int64

	flushInterval time.Duration
	done          chan struct{}
	closeOnce     sync.Once
	closeMu       sync.Mutex
	closed        bool
	wg            sync.WaitGroup
	onDropped     func(count int)
}

// NewAsyncSink wraps a sink with a bounded queue for async writes.
// Write() returns immediately; events are processed in the background.
// When the queue is full, the oldest event is dropped to make room.
func NewAsyncSink(inner crashsen.Sink, opts ...AsyncSinkOption) crashsen.Sink {
	cfg := &asyncSinkConfig{
		queueSize:     1000,
		flushInterval: 10 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &asyncSink{
		inner:         inner,
		queue:         make(chan crashsen.ErrorEvent, cfg.queueSize),
		flushInterval: cfg.flushInterval,
		done:          make(chan struct{}),
		onDropped:     cfg.onDropped,
	}

	s.wg.Add(1)
	go s.processLoop()

	return s
}

// processLoop drains the queue and writes to the inner sink.
func (s *asyncSink) processLoop() {
	defer s.wg.Done()
	for {
		select {
		case event, ok := <-s.queue:
			if !ok {
				return
			}
			s.deliver(event)
		case <-s.done:
			// Drain remaining events
			for {
				select {
				case event, ok := <-s.queue:
					if !ok {
						return
					}
					s.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// deliver writes one event to the inner sink, fire and forget. The pending
// count drops only after the write returns, so a wedged inner sink keeps
// Flush blocked rather than letting it report a clean drain.
func (s *asyncSink) deliver(event crashsen.ErrorEvent) {
	_ = s.inner.Write(context.Background(), event)
	s.pending.Add(-1)
}

// Write enqueues an event for async processing.
// Returns immediately. If the queue is full, drops the oldest event.
func (s *asyncSink) Write(ctx context.Context, event crashsen.ErrorEvent) error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return errors.New("async sink is closed")
	}
	s.closeMu.Unlock()

	s.pending.Add(1)

	// Try to enqueue
	select {
	case s.queue <- event:
		return nil
	default:
		// Queue is full - drop oldest and enqueue new
		s.dropOldestAndEnqueue(event)
		return nil
	}
}

// dropOldestAndEnqueue drops the oldest event and enqueues the new one.
// Every dropped event leaves the pending count.
func (s *asyncSink) dropOldestAndEnqueue(event crashsen.ErrorEvent) {
	// Try to read (drop) one event from the queue
	select {
	case <-s.queue:
		s.pending.Add(-1)
		if s.onDropped != nil {
			s.onDropped(1)
		}
	default:
		// Queue was emptied by processor, try again
	}

	// Now try to enqueue again
	select {
	case s.queue <- event:
	default:
		// Still full, just drop the new event
		s.pending.Add(-1)
		if s.onDropped != nil {
			s.onDropped(1)
		}
	}
}

// Flush blocks until every accepted event has been delivered to the inner
// sink, including one mid-write when Flush was called, then flushes the
// inner sink. Returns the context error if it expires first.
func (s *asyncSink) Flush(ctx context.Context) error {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.pending.Load() == 0 {
				return s.inner.Flush(ctx)
			}
		}
	}
}

// Close stops the async processor and closes the inner sink.
func (s *asyncSink) Close() error {
	s.closeOnce.Do(func() {
		s.closeMu.Lock()
		s.closed = true
		s.closeMu.Unlock()

		// Signal done and wait for drain
		close(s.done)
		s.wg.Wait()
		close(s.queue)
	})

	return s.inner.Close()
}
