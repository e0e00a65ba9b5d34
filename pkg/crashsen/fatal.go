// fatal.go implements the fatal error handler: it decides when an uncaught
// error terminates the process, deduplicates a storm of near-simultaneous
// errors into one reported first error plus an optional second error, and
// guarantees the termination callback fires under its control at most once.

package crashsen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// DefaultGracePeriod is how long the fatal handler waits after a second
// error before assuming the first error's reporting has stalled.
const DefaultGracePeriod = 2 * time.Second

// ExitCodeFatal is the process exit status used by the default terminator.
const ExitCodeFatal = 1

// FatalOption configures a FatalHandler.
type FatalOption func(*fatalConfig)

type fatalConfig struct {
	exitEvenIfOtherHandlersAreRegistered bool
	onFatalError                         func(first, second error)
	gracePeriod                          time.Duration
}

// WithExitEvenIfOtherHandlersAreRegistered controls whether the handler
// terminates the process when handlers outside crashsen are registered on
// the dispatcher. When false and such handlers exist, termination is
// suppressed entirely and those handlers own the outcome. Default: true.
func WithExitEvenIfOtherHandlersAreRegistered(exit bool) FatalOption {
	return func(c *fatalConfig) {
		c.exitEvenIfOtherHandlersAreRegistered = exit
	}
}

// WithOnFatalError overrides the default terminator. The callback receives
// the first error and, when a second error arrived during reporting, that
// second error; otherwise second is nil. The handler may invoke the
// callback more than once for errors arriving after shutdown has begun, so
// the callback must be safe to call multiple times.
func WithOnFatalError(fn func(first, second error)) FatalOption {
	return func(c *fatalConfig) {
		c.onFatalError = fn
	}
}

// WithGracePeriod overrides how long the handler waits after a second error
// before concluding the first error's reporting path is wedged. There is no
// completion signal from the reporting path; the period is a heuristic.
// Default: DefaultGracePeriod.
func WithGracePeriod(d time.Duration) FatalOption {
	return func(c *fatalConfig) {
		if d > 0 {
			c.gracePeriod = d
		}
	}
}

// FatalHandler is the process termination policy for uncaught errors.
//
// On the first error it reports through the collector without waiting on
// the report and, under the default policy, terminates immediately. A
// second error arriving while the first is still being reported opens a
// grace window; when the window elapses with termination still pending,
// the handler concludes reporting is wedged and terminates with both
// errors attached. Errors after termination has been decided are
// force-terminated immediately, and errors beyond the second while a
// grace window is open are ignored.
//
// Register exactly one FatalHandler per monitoring client per process.
type FatalHandler struct {
	dispatcher *Dispatcher
	collector  Collector
	cfg        fatalConfig

	mu              sync.Mutex
	caughtFirst     bool
	caughtSecond    bool
	calledTerminate bool
	firstErr        error
}

// NewFatalHandler creates a fatal handler bound to the dispatcher's
// currently active collector. If the dispatcher is later rebound to a
// different collector, this handler stops reporting (termination policy is
// unaffected).
func NewFatalHandler(d *Dispatcher, opts ...FatalOption) *FatalHandler {
	cfg := fatalConfig{
		exitEvenIfOtherHandlersAreRegistered: true,
		gracePeriod:                          DefaultGracePeriod,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &FatalHandler{
		dispatcher: d,
		collector:  d.ActiveCollector(),
		cfg:        cfg,
	}
}

// Attach registers the handler on its dispatcher under HandlerTagFatal and
// returns the deregister func. The tag keeps the handler out of its own
// "other handlers" count, so re-attachment stays safe.
func (h *FatalHandler) Attach() (deregister func()) {
	return h.dispatcher.Register(HandlerTagFatal, h)
}

// HandleError applies the termination policy to one uncaught error.
// Safe for concurrent use; each invocation's state transition commits
// atomically before any callback runs.
func (h *FatalHandler) HandleError(ctx context.Context, err error) {
	// Handlers tagged as crashsen's own (this handler, the tracing
	// companion) never count as "other" handlers.
	shouldApply := h.cfg.exitEvenIfOtherHandlersAreRegistered ||
		h.dispatcher.HandlerCountExcluding(HandlerTagFatal, HandlerTagTracing) == 0

	h.mu.Lock()
	switch {
	case !h.caughtFirst:
		h.caughtFirst = true
		h.firstErr = err
		terminate := shouldApply && !h.calledTerminate
		if terminate {
			h.calledTerminate = true
		}
		h.mu.Unlock()

		// Fire-and-forget: termination must not block on a slow or
		// wedged reporting path.
		if h.dispatcher.ActiveCollector() == h.collector && h.collector != nil {
			go h.report(context.WithoutCancel(ctx), err)
		}
		if terminate {
			h.terminate(err, nil)
		}

	case !shouldApply:
		// Other handlers own the outcome.
		h.mu.Unlock()

	case h.calledTerminate:
		h.mu.Unlock()
		fmt.Fprintf(os.Stderr, "crashsen: error arrived after shutdown began: %v\n", err)
		h.terminate(err, nil)

	case !h.caughtSecond:
		h.caughtSecond = true
		first := h.firstErr
		h.mu.Unlock()

		// The timer is never cancelled; it re-checks state when it fires,
		// which avoids a cancel-on-terminate race.
		time.AfterFunc(h.cfg.gracePeriod, func() {
			h.mu.Lock()
			if h.calledTerminate {
				h.mu.Unlock()
				return
			}
			h.calledTerminate = true
			h.mu.Unlock()
			h.terminate(first, err)
		})

	default:
		// A grace timer is already pending and governs the outcome.
		h.mu.Unlock()
	}
}

// report submits the fatal error through the bound collector, best-effort.
func (h *FatalHandler) report(ctx context.Context, err error) {
	event := ErrorEvent{
		Severity:  SeverityFatal,
		ErrorType: "error",
		Message:   err.Error(),
		Mechanism: &Mechanism{Type: MechanismUncaught, Handled: false},
	}

	var pe *PanicError
	if errors.As(err, &pe) {
		event.ErrorType = "panic"
		event.StackTrace = pe.Stack
	}

	if component, ok := ComponentFromContext(ctx); ok {
		event.Component = component
	}
	if opID, ok := OperationIDFromContext(ctx); ok {
		event.OperationID = opID
	}

	_ = h.collector.Record(ctx, event)
}

func (h *FatalHandler) terminate(first, second error) {
	if h.cfg.onFatalError != nil {
		h.cfg.onFatalError(first, second)
		return
	}
	defaultOnFatalError(first, second)
}

// defaultOnFatalError logs the error(s) to stderr and exits non-zero.
func defaultOnFatalError(first, second error) {
	if second != nil {
		fmt.Fprintf(os.Stderr, "crashsen: fatal error: %v\ncrashsen: second error while reporting it: %v\n", first, second)
	} else {
		fmt.Fprintf(os.Stderr, "crashsen: fatal error: %v\n", first)
	}
	os.Exit(ExitCodeFatal)
}
