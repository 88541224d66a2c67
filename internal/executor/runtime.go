package executor

import (
	"context"
)

// Runtime is the host side of execution.
//
// At each depth the Executor drains synchronous fields through ResolveSync,
// then calls BatchResolveAsync once with every asynchronous task of that
// depth. Errors from any method become located GraphQL errors. A Runtime may
// be called concurrently for different operations and must not mutate source
// or argument values.
type Runtime interface {
	// ResolveSync resolves a field with Async == false. objectType is the
	// parent type name, source is nil for root fields, and args holds the
	// coerced argument values.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of asynchronous fields. It returns
	// exactly one result per task, in task order, and one failing element must
	// not fail the others.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the concrete object type of a value declared as an
	// interface or union.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// SerializeLeafValue turns a scalar or enum value into a JSON-safe value.
	// Enums serialize to their symbolic name.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

// RequestScoper is implemented by runtimes that keep per-request state.
type RequestScoper interface {
	BeginRequest(ctx context.Context) context.Context
}

// ErrorExtender is implemented by errors that carry GraphQL error extensions.
type ErrorExtender interface {
	Extensions() map[string]any
}

// AsyncResolveTask is one queued field resolution.
type AsyncResolveTask struct {
	ObjectType string
	Field      string
	Source     any // nil for root fields
	Args       map[string]any
}

// AsyncResolveResult is the outcome of one AsyncResolveTask.
type AsyncResolveResult struct {
	Value any
	Error error
}
