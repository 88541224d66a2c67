package datafetcher

import (
	"context"
	"fmt"
	"reflect"

	reqid "github.com/hanpama/gqlboot/internal/reqid"
)

// Argument describes how one method parameter is filled.
type Argument struct {
	Name string
	// Source arguments take the parent value instead of client input.
	Source     bool
	Default    any
	HasDefault bool
}

// Reflection invokes a registered business method, filling its parameters
// from the parent value and the field arguments.
type Reflection struct {
	Class     string
	Method    string
	Arguments []Argument
	methods   *Methods
}

func NewReflection(methods *Methods, class, method string, args []Argument) *Reflection {
	return &Reflection{Class: class, Method: method, Arguments: args, methods: methods}
}

func (f *Reflection) Get(env Environment) (any, error) {
	m, err := f.methods.Lookup(f.Class, f.Method)
	if err != nil {
		return nil, err
	}
	ctx := invocationContext(env)
	return m.Call(ctx, argumentValues(f.Arguments, env.Source, env.Arguments))
}

func (f *Reflection) String() string { return fmt.Sprintf("reflection(%s.%s)", f.Class, f.Method) }

func invocationContext(env Environment) context.Context {
	ctx := env.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return reqid.WithInvocation(ctx, reqid.Invocation{
		Type:      env.ParentType,
		Field:     env.Field,
		Arguments: env.Arguments,
	})
}

func argumentValues(spec []Argument, source any, args map[string]any) []any {
	values := make([]any, len(spec))
	for i, a := range spec {
		switch {
		case a.Source:
			values[i] = source
		default:
			v, ok := args[a.Name]
			if !ok && a.HasDefault {
				v = a.Default
			}
			values[i] = v
		}
	}
	return values
}

// convertSlice builds a slice of type t from items, converting each element.
func convertSlice(items []any, t reflect.Type) (reflect.Value, error) {
	if t.Kind() != reflect.Slice {
		return reflect.Value{}, fmt.Errorf("batch source parameter must be a slice, got %s", t)
	}
	out := reflect.MakeSlice(t, len(items), len(items))
	for i, item := range items {
		v, err := Convert(item, t.Elem())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("source %d: %w", i, err)
		}
		out.Index(i).Set(v)
	}
	return out, nil
}
