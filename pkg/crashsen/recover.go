// recover.go provides panic recovery helpers for defer sites.
// Use these in HTTP handlers, goroutines, or other code outside Go().

package crashsen

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Recover captures a panic, records it to the collector, and returns the
// recovered value. Recover does NOT re-panic after recording.
//
// Recover must be deferred directly; wrapping it in another deferred
// closure defeats the runtime's recover mechanics.
//
//	func handler(ctx context.Context) {
//	    defer crashsen.Recover(ctx, collector)
//	    // code that might panic
//	}
func Recover(ctx context.Context, collector Collector) any {
	r := recover()
	if r == nil {
		return nil
	}

	event := ErrorEvent{
		Severity:   SeverityCrash,
		ErrorType:  "panic",
		Message:    formatRecovered(r),
		StackTrace: string(debug.Stack()),
		Mechanism:  &Mechanism{Type: MechanismPanic, Handled: true},
	}

	// Attribute to the component/operation carried by the context, if any
	if component, ok := ComponentFromContext(ctx); ok {
		event.Component = component
	}
	if opID, ok := OperationIDFromContext(ctx); ok {
		event.OperationID = opID
	}

	// Record the event (ignore errors - we don't want to affect caller)
	_ = collector.Record(ctx, event)

	return r
}

// RecoverDispatch captures a panic and funnels it through the dispatcher as
// an uncaught error, which lets the fatal handler apply its termination
// policy. Returns the recovered value, nil when no panic was in flight.
func RecoverDispatch(ctx context.Context, d *Dispatcher) any {
	r := recover()
	if r == nil {
		return nil
	}

	d.Dispatch(ctx, &PanicError{
		Value: r,
		Stack: string(debug.Stack()),
	})

	return r
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
