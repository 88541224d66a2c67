// Package runtime answers executor requests from the data fetchers and type
// resolvers bound during bootstrap.
package runtime

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	datafetcher "github.com/hanpama/gqlboot/internal/datafetcher"
	dataloader "github.com/hanpama/gqlboot/internal/dataloader"
	errinfo "github.com/hanpama/gqlboot/internal/errinfo"
	executor "github.com/hanpama/gqlboot/internal/executor"
	reqid "github.com/hanpama/gqlboot/internal/reqid"
)

// Runtime implements executor.Runtime over a Registry.
//   - Sync fields without a bound fetcher read the property of the same name
//     off the parent value.
//   - Async fields without a bound fetcher fail with a field error.
//   - BatchResolveAsync groups tasks by coordinate and runs groups in
//     parallel. A group whose fetcher is a datafetcher.BatchDataFetcher is
//     answered with a single GetMany call.
//   - Results keep task order; one failing task never fails its group.
//   - Errors whose class is a declared error kind carry its code.
type Runtime struct {
	reg     *Registry
	loaders *dataloader.Registry
	errors  *errinfo.Map
}

var (
	_ executor.Runtime       = (*Runtime)(nil)
	_ executor.RequestScoper = (*Runtime)(nil)
)

func New(registry *Registry, loaders *dataloader.Registry, errors *errinfo.Map) *Runtime {
	if loaders == nil {
		loaders = dataloader.NewRegistry()
	}
	if errors == nil {
		errors = errinfo.NewMap()
	}
	return &Runtime{reg: registry, loaders: loaders, errors: errors}
}

// Registry returns the fetcher bindings the runtime serves.
func (r *Runtime) Registry() *Registry { return r.reg }

// Loaders returns the batch loader registry used for new request scopes.
func (r *Runtime) Loaders() *dataloader.Registry { return r.loaders }

// BeginRequest gives the request a fresh loader scope and a request id,
// keeping any that the caller already attached.
func (r *Runtime) BeginRequest(ctx context.Context) context.Context {
	if _, ok := dataloader.FromContext(ctx); !ok {
		ctx = dataloader.NewContext(ctx, r.loaders.NewScope())
	}
	if _, ok := reqid.FromContext(ctx); !ok {
		ctx, _ = reqid.NewContext(ctx)
	}
	return ctx
}

func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	f := r.reg.Fetcher(objectType, field)
	if f == nil {
		f = datafetcher.NewProperty(field, field)
	}
	return r.get(f, datafetcher.Environment{
		Context:    ctx,
		ParentType: objectType,
		Field:      field,
		Source:     source,
		Arguments:  args,
	})
}

func (r *Runtime) get(f datafetcher.DataFetcher, env datafetcher.Environment) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("%s: data fetcher panicked: %v", env.Coordinate(), p)
		}
	}()
	v, err = f.Get(env)
	if err != nil {
		return nil, r.errors.Attach(err)
	}
	return v, nil
}

func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	type groupKey struct {
		objectType string
		field      string
	}
	type group struct {
		objectType string
		field      string
		idxs       []int
	}
	groups := []group{}
	idxByKey := map[groupKey]int{}
	for i, t := range tasks {
		k := groupKey{objectType: t.ObjectType, field: t.Field}
		if gi, ok := idxByKey[k]; ok {
			groups[gi].idxs = append(groups[gi].idxs, i)
		} else {
			idxByKey[k] = len(groups)
			groups = append(groups, group{objectType: t.ObjectType, field: t.Field, idxs: []int{i}})
		}
	}

	run := func(g group) {
		f := r.reg.Fetcher(g.objectType, g.field)
		if f == nil {
			err := fmt.Errorf("no data fetcher bound to %s", Coordinate(g.objectType, g.field))
			for _, i := range g.idxs {
				results[i] = executor.AsyncResolveResult{Error: err}
			}
			return
		}
		envs := make([]datafetcher.Environment, len(g.idxs))
		for j, i := range g.idxs {
			envs[j] = datafetcher.Environment{
				Context:    ctx,
				ParentType: tasks[i].ObjectType,
				Field:      tasks[i].Field,
				Source:     tasks[i].Source,
				Arguments:  tasks[i].Args,
			}
		}
		if bf, ok := f.(datafetcher.BatchDataFetcher); ok {
			r.runBatchGroup(bf, envs, g.idxs, results)
			return
		}
		for j, i := range g.idxs {
			v, err := r.get(f, envs[j])
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
		}
	}

	if len(groups) == 1 {
		run(groups[0])
		return results
	}
	var eg errgroup.Group
	for _, g := range groups {
		eg.Go(func() error {
			run(g)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}

// runBatchGroup answers a whole group with one GetMany call and writes the
// results into their task slots.
func (r *Runtime) runBatchGroup(f datafetcher.BatchDataFetcher, envs []datafetcher.Environment, idxs []int, results []executor.AsyncResolveResult) {
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("%s: batch data fetcher panicked: %v", envs[0].Coordinate(), p)
			for _, i := range idxs {
				results[i] = executor.AsyncResolveResult{Error: err}
			}
		}
	}()
	out := f.GetMany(envs)
	for j, i := range idxs {
		if j >= len(out) {
			results[i] = executor.AsyncResolveResult{Error: fmt.Errorf("%s: missing batch result", envs[j].Coordinate())}
			continue
		}
		res := executor.AsyncResolveResult{Value: out[j].Value}
		if out[j].Err != nil {
			res = executor.AsyncResolveResult{Error: r.errors.Attach(out[j].Err)}
		}
		results[i] = res
	}
}

// ResolveType asks the type resolver registered for abstractType.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	tr := r.reg.Resolver(abstractType)
	if tr == nil {
		return "", fmt.Errorf("no type resolver registered for %s", abstractType)
	}
	return tr.ResolveType(value)
}

// SerializeLeafValue converts scalar and enum values to JSON-safe values.
// Arbitrary-precision numbers serialize as strings so no digits are lost.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case decimal.Decimal:
		return v.String(), nil
	case *decimal.Decimal:
		if v == nil {
			return nil, nil
		}
		return v.String(), nil
	case *big.Int:
		if v == nil {
			return nil, nil
		}
		return v.String(), nil
	case *big.Float:
		if v == nil {
			return nil, nil
		}
		return v.Text('g', -1), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return v.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, nil
		}
		return r.SerializeLeafValue(ctx, scalarOrEnumTypeName, rv.Elem().Interface())
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	}
	return nil, fmt.Errorf("cannot serialize %T as %s", value, scalarOrEnumTypeName)
}
