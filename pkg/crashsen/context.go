// context.go provides utilities for propagating component and operation
// identity through Go context.Context.

package crashsen

import "context"

// Context key types (unexported to avoid collisions)
type componentKey struct{}
type operationIDKey struct{}

// WithComponent returns a context with the component name attached.
// Errors captured under this context are attributed to the component.
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey{}, component)
}

// ComponentFromContext extracts the component name from context.
// Returns empty string and false if not set or if the name is empty.
func ComponentFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(componentKey{})
	name, ok := v.(string)
	return name, ok && name != ""
}

// WithOperationID returns a context with an operation identifier attached
// (request ID, job ID). It links captured errors to the unit of work that
// produced them.
func WithOperationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, operationIDKey{}, id)
}

// OperationIDFromContext extracts the operation identifier from context.
// Returns empty string and false if not set.
func OperationIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(operationIDKey{})
	id, ok := v.(string)
	return id, ok && id != ""
}
