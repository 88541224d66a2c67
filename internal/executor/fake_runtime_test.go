package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"

	language "github.com/hanpama/gqlboot/internal/language"
)

type resolveFunc func(ctx context.Context, source any, args map[string]any) (any, error)

func value(v any) resolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return v, nil }
}

func failing(err error) resolveFunc {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

type call struct {
	Coord string
	Batch int // 0 for sync calls
}

// fakeRuntime records every resolution it performs. Batches are numbered
// from one in call order.
type fakeRuntime struct {
	mu       sync.Mutex
	fields   map[string]resolveFunc
	calls    []call
	batches  int
	scoped   int
	typeName func(v any) (string, error)
}

func newFakeRuntime(fields map[string]resolveFunc) *fakeRuntime {
	return &fakeRuntime{
		fields: fields,
		typeName: func(v any) (string, error) {
			if m, ok := v.(map[string]any); ok {
				if n, ok := m["__typename"].(string); ok {
					return n, nil
				}
			}
			return "", fmt.Errorf("cannot resolve type of %T", v)
		},
	}
}

func (r *fakeRuntime) resolve(ctx context.Context, coord string, batch int, source any, args map[string]any) (any, error) {
	r.mu.Lock()
	r.calls = append(r.calls, call{Coord: coord, Batch: batch})
	f := r.fields[coord]
	r.mu.Unlock()
	if f == nil {
		return nil, nil
	}
	return f(ctx, source, args)
}

func (r *fakeRuntime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	return r.resolve(ctx, objectType+"."+field, 0, source, args)
}

func (r *fakeRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	r.mu.Lock()
	r.batches++
	batch := r.batches
	r.mu.Unlock()
	out := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		v, err := r.resolve(ctx, t.ObjectType+"."+t.Field, batch, t.Source, t.Args)
		out[i] = AsyncResolveResult{Value: v, Error: err}
	}
	return out
}

func (r *fakeRuntime) ResolveType(_ context.Context, _ string, v any) (string, error) {
	return r.typeName(v)
}

func (r *fakeRuntime) SerializeLeafValue(_ context.Context, _ string, v any) (any, error) {
	return v, nil
}

type scopeKey struct{}

// scopedRuntime also implements RequestScoper.
type scopedRuntime struct{ *fakeRuntime }

func (r scopedRuntime) BeginRequest(ctx context.Context) context.Context {
	r.mu.Lock()
	r.scoped++
	r.mu.Unlock()
	return context.WithValue(ctx, scopeKey{}, "request")
}

func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return d
}
