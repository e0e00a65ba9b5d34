// event.go defines the canonical error event data structure for crashsen.

package crashsen

import "time"

// Severity indicates the severity level of an error event.
type Severity string

const (
	// SeverityWarning indicates a non-fatal issue that may need attention.
	SeverityWarning Severity = "warning"

	// SeverityError indicates a recoverable error that caused an operation to fail.
	SeverityError Severity = "error"

	// SeverityCrash indicates an unrecoverable error such as a panic.
	SeverityCrash Severity = "crash"

	// SeverityFatal indicates an error that is terminating the process.
	SeverityFatal Severity = "fatal"
)

// Mechanism describes the capture path through which an error event was
// produced. Backends use it to distinguish errors an application handled
// itself from errors that escaped to a process-level handler.
type Mechanism struct {
	// Type identifies the capture path (uncaught, panic, manual).
	Type string

	// Handled is false when the error escaped application code and was
	// caught by a process-level handler rather than by the application.
	Handled bool
}

// Mechanism types used by the built-in capture paths.
const (
	// MechanismUncaught marks events produced by the fatal handler for
	// errors that reached the process-level dispatcher.
	MechanismUncaught = "uncaught"

	// MechanismPanic marks events produced by Recover for escaped panics.
	MechanismPanic = "panic"

	// MechanismManual marks events recorded directly by application code.
	MechanismManual = "manual"
)

// SystemState captures system metrics at the time of an error.
type SystemState struct {
	// MemoryBytes is the current memory allocation in bytes.
	MemoryBytes int64

	// GoroutineCount is the number of active goroutines.
	GoroutineCount int

	// UptimeMs is the process uptime in milliseconds.
	UptimeMs int64

	// HostName is the hostname of the machine where the error occurred.
	HostName string
}

// ErrorEvent is the canonical error representation.
// All fields are populated by the collector before passing to sinks.
type ErrorEvent struct {
	// Identity fields

	// EventID is a unique identifier for this error event (UUID).
	EventID string

	// Timestamp is when the error occurred.
	Timestamp time.Time

	// Fingerprint is a hash for grouping similar errors.
	Fingerprint string

	// Error details

	// Severity indicates the error severity (warning, error, crash, fatal).
	Severity Severity

	// ErrorType categorizes the error (panic, error, timeout, oom).
	ErrorType string

	// Message is the human-readable error message.
	Message string

	// StackTrace is the optional scrubbed stack trace.
	StackTrace string

	// Mechanism describes how the error was captured. Nil means manual.
	Mechanism *Mechanism

	// Operation context

	// Component is the subsystem or package the error originated in.
	Component string

	// OperationID is an optional identifier (e.g., request or job ID).
	OperationID string

	// System state

	// SystemState captures system metrics at error time.
	SystemState *SystemState

	// Arbitrary metadata

	// Metadata contains scrubbed key-value pairs for additional context.
	Metadata map[string]string
}
