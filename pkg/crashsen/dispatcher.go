// dispatcher.go provides the process-level error channel that uncaught
// errors are funneled through. Handlers register with a tag so subsystem
// handlers can be told apart from application-supplied ones.

package crashsen

import (
	"context"
	"runtime/debug"
	"sync"
)

// HandlerTag identifies which subsystem registered a handler. The fatal
// handler uses tags to decide whether handlers other than crashsen's own
// are present before committing to process termination.
type HandlerTag string

const (
	// HandlerTagFatal tags the fatal termination handler.
	HandlerTagFatal HandlerTag = "crashsen.fatal"

	// HandlerTagTracing tags the tracing companion handler.
	HandlerTagTracing HandlerTag = "crashsen.tracing"

	// HandlerTagApplication tags handlers registered by application code.
	HandlerTagApplication HandlerTag = "application"
)

// Handler receives errors dispatched at the process level.
// Implementations must be safe for concurrent use.
type Handler interface {
	HandleError(ctx context.Context, err error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, err error)

// HandleError calls f(ctx, err).
func (f HandlerFunc) HandleError(ctx context.Context, err error) {
	f(ctx, err)
}

type taggedHandler struct {
	tag     HandlerTag
	handler Handler
}

// Dispatcher is the process-wide channel for uncaught errors. Goroutines
// started through Go, and defer sites using RecoverDispatch, funnel escaped
// errors into Dispatch, which fans them out to every registered handler.
//
// A Dispatcher also carries the active monitoring client (Collector). The
// fatal handler binds to the collector that is active at its construction
// and stops reporting if the dispatcher is later rebound, so a stale
// handler never writes through a replaced client.
//
// Registration is an explicit call, never an import-time side effect, and
// every Register returns a deregister func for clean teardown.
type Dispatcher struct {
	mu        sync.Mutex
	handlers  []*taggedHandler
	collector Collector
}

// NewDispatcher creates a dispatcher bound to the given collector.
// A nil collector is allowed; handlers that report will then skip reporting.
func NewDispatcher(collector Collector) *Dispatcher {
	return &Dispatcher{collector: collector}
}

// SetCollector rebinds the dispatcher to a new active collector.
func (d *Dispatcher) SetCollector(collector Collector) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.collector = collector
}

// ActiveCollector returns the currently bound collector.
func (d *Dispatcher) ActiveCollector() Collector {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.collector
}

// Register adds a handler under the given tag and returns a func that
// removes it again. Registering the same handler twice adds it twice.
func (d *Dispatcher) Register(tag HandlerTag, handler Handler) (deregister func()) {
	entry := &taggedHandler{tag: tag, handler: handler}

	d.mu.Lock()
	d.handlers = append(d.handlers, entry)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, e := range d.handlers {
			if e == entry {
				d.handlers = append(d.handlers[:i], d.handlers[i+1:]...)
				return
			}
		}
	}
}

// HandlerCount returns the number of registered handlers.
func (d *Dispatcher) HandlerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers)
}

// HandlerCountExcluding returns the number of registered handlers whose tag
// is not in the given set. The fatal handler uses it to count handlers that
// belong to neither crashsen's fatal nor tracing subsystems.
func (d *Dispatcher) HandlerCountExcluding(tags ...HandlerTag) int {
	excluded := make(map[HandlerTag]bool, len(tags))
	for _, tag := range tags {
		excluded[tag] = true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0
	for _, e := range d.handlers {
		if !excluded[e.tag] {
			count++
		}
	}
	return count
}

// Dispatch delivers an error to every registered handler, in registration
// order. Handlers run on the caller's goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, err error) {
	if err == nil {
		return
	}

	d.mu.Lock()
	snapshot := make([]*taggedHandler, len(d.handlers))
	copy(snapshot, d.handlers)
	d.mu.Unlock()

	for _, e := range snapshot {
		e.handler.HandleError(ctx, err)
	}
}

// Go runs fn on a new goroutine. A panic escaping fn is converted to a
// *PanicError and dispatched instead of crashing the runtime.
func (d *Dispatcher) Go(ctx context.Context, fn func(ctx context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.Dispatch(ctx, &PanicError{
					Value: r,
					Stack: string(debug.Stack()),
				})
			}
		}()
		fn(ctx)
	}()
}

// PanicError wraps a recovered panic value as an error, retaining the
// stack captured at the recovery site.
type PanicError struct {
	// Value is the value the panic was raised with.
	Value any

	// Stack is the goroutine stack at the recovery point.
	Stack string
}

// Error returns the panic value formatted as a message.
func (e *PanicError) Error() string {
	return "panic: " + formatRecovered(e.Value)
}
