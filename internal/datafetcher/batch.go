package datafetcher

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	dataloader "github.com/hanpama/gqlboot/internal/dataloader"
	reqid "github.com/hanpama/gqlboot/internal/reqid"
)

var ErrNoLoaderScope = errors.New("no batch loader scope in context")

// Batch resolves a field through the per-request loader named Loader. Parents
// resolved in the same dispatch round are collapsed into one call.
type Batch struct {
	Loader    string
	Arguments []Argument
}

func NewBatch(loader string, args []Argument) *Batch {
	return &Batch{Loader: loader, Arguments: args}
}

func (b *Batch) Get(env Environment) (any, error) {
	r := b.GetMany([]Environment{env})[0]
	return r.Value, r.Err
}

// GetMany loads every parent in envs. Parents selected with different
// arguments are sent to different loader instances.
func (b *Batch) GetMany(envs []Environment) []Result {
	results := make([]Result, len(envs))
	if len(envs) == 0 {
		return results
	}
	ctx := envs[0].Context
	if ctx == nil {
		ctx = context.Background()
	}
	scope, ok := dataloader.FromContext(ctx)
	if !ok {
		for i := range results {
			results[i].Err = ErrNoLoaderScope
		}
		return results
	}

	type partition struct {
		args    map[string]any
		indexes []int
		keys    []any
	}
	var order []string
	parts := map[string]*partition{}
	for i, env := range envs {
		id := dataloader.ArgumentsKey(env.Arguments)
		p, ok := parts[id]
		if !ok {
			p = &partition{args: env.Arguments}
			parts[id] = p
			order = append(order, id)
		}
		p.indexes = append(p.indexes, i)
		p.keys = append(p.keys, env.Source)
	}

	for _, id := range order {
		p := parts[id]
		loader, err := scope.Loader(b.Loader, p.args)
		if err != nil {
			for _, i := range p.indexes {
				results[i].Err = err
			}
			continue
		}
		invCtx := reqid.WithInvocation(ctx, reqid.Invocation{
			Type:      envs[p.indexes[0]].ParentType,
			Field:     envs[p.indexes[0]].Field,
			Arguments: p.args,
		})
		for j, r := range loader.LoadMany(invCtx, p.keys) {
			results[p.indexes[j]] = r
		}
	}
	return results
}

func (b *Batch) String() string { return fmt.Sprintf("batch(%s)", b.Loader) }

// NewBatchFunc returns the loader function for a batch operation. It calls
// the business method once with every collected parent in the source
// argument position and splits the returned slice into per-key results.
func NewBatchFunc(methods *Methods, class, method string, args []Argument) dataloader.BatchFunc {
	return func(ctx context.Context, keys []any) []Result {
		fail := func(err error) []Result {
			out := make([]Result, len(keys))
			for i := range out {
				out[i].Err = err
			}
			return out
		}
		m, err := methods.Lookup(class, method)
		if err != nil {
			return fail(err)
		}
		var invArgs map[string]any
		if inv, ok := reqid.InvocationFromContext(ctx); ok {
			invArgs = inv.Arguments
		}
		values := argumentValues(args, nil, invArgs)
		if len(values) != m.NumParams() {
			return fail(fmt.Errorf("%s.%s: expected %d arguments, got %d", class, method, m.NumParams(), len(values)))
		}
		for i, a := range args {
			if !a.Source {
				continue
			}
			sources, err := convertSlice(keys, m.Param(i))
			if err != nil {
				return fail(fmt.Errorf("%s.%s: %w", class, method, err))
			}
			values[i] = sources.Interface()
		}

		out, err := m.Call(ctx, values)
		if err != nil {
			return fail(err)
		}
		rv := reflect.ValueOf(out)
		if out == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
			return fail(fmt.Errorf("%s.%s: batch result must be a list, got %T", class, method, out))
		}
		results := make([]Result, rv.Len())
		for i := range results {
			results[i].Value = valueOf(rv.Index(i))
		}
		return results
	}
}
