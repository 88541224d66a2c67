// Package executor runs GraphQL operations breadth first against a
// bootstrapped schema, handing field resolution to a Runtime.
//
// # Execution model
//
// Fields are classified by schema.Field.Async. Synchronous fields are plain
// projections of the source value (property data fetchers) and are resolved
// immediately through Runtime.ResolveSync; descending through them never adds
// a batch round. Asynchronous fields are backed by a method or batch loader
// and are queued. Once the synchronous frontier of a depth is exhausted, every
// queued task is handed to Runtime.BatchResolveAsync in a single call, and
// the completed values seed the next depth.
//
// For an operation whose deepest chain crosses d asynchronous fields,
// BatchResolveAsync is called exactly d times.
//
// # Value completion
//
//   - Non-Null: a null inner value records an error and nulls the nearest
//     nullable ancestor. Queued tasks under that ancestor are dropped.
//   - List: elements complete with index-aware paths.
//   - Scalar and enum: Runtime.SerializeLeafValue produces the wire value.
//   - Interface and union: Runtime.ResolveType names the concrete object type,
//     which must be one of the abstract type's possible types.
//
// Fragment type conditions apply when they name the object type itself, an
// interface it implements, or a union that contains it.
//
// # Errors
//
// Errors are collected with their response path and execution continues, so
// a result can carry both data and errors. Errors implementing ErrorExtender
// contribute their extensions to the GraphQL error.
//
// # Request scope
//
// When the Runtime implements RequestScoper, BeginRequest is called once per
// operation before any field resolves. Runtimes use it to attach per-request
// state such as batch loader instances to the context.
package executor
