// Package reqid carries request and invocation identity through contexts.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// key is the context key for the request ID.
type key struct{}

// invocationKey is the context key for the current business method call.
type invocationKey struct{}

// NewContext returns a copy of parent with a new random request ID stored.
// It also returns the generated ID.
func NewContext(parent context.Context) (context.Context, string) {
	id := uuid.NewString()
	return context.WithValue(parent, key{}, id), id
}

// WithID stores an externally supplied request ID, e.g. one taken from an
// incoming header.
func WithID(parent context.Context, id string) context.Context {
	return context.WithValue(parent, key{}, id)
}

// FromContext extracts the request ID from ctx.
// It returns the ID and whether it was present.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}

// Invocation describes the business method a resolver is running.
type Invocation struct {
	RequestID string
	Type      string
	Field     string
	Arguments map[string]any
}

// WithInvocation opens an invocation scope below ctx. The request ID is
// copied from ctx when present.
func WithInvocation(ctx context.Context, inv Invocation) context.Context {
	if inv.RequestID == "" {
		inv.RequestID, _ = FromContext(ctx)
	}
	return context.WithValue(ctx, invocationKey{}, &inv)
}

// InvocationFromContext returns the innermost invocation, if any.
func InvocationFromContext(ctx context.Context) (*Invocation, bool) {
	inv, ok := ctx.Value(invocationKey{}).(*Invocation)
	return inv, ok
}
