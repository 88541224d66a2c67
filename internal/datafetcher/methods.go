package datafetcher

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
)

var ErrMethodNotFound = errors.New("method not found")

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// Method is a registered business method. Supported signatures take an
// optional leading context.Context followed by one parameter per declared
// argument, and return either T or (T, error).
type Method struct {
	Class  string
	Name   string
	fn     reflect.Value
	hasCtx bool
	params []reflect.Type
	errOut bool
}

func newMethod(class, name string, fn reflect.Value) (*Method, error) {
	t := fn.Type()
	if t.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s.%s: expected a func, got %s", class, name, t)
	}
	m := &Method{Class: class, Name: name, fn: fn}
	start := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		m.hasCtx = true
		start = 1
	}
	for i := start; i < t.NumIn(); i++ {
		m.params = append(m.params, t.In(i))
	}
	if t.IsVariadic() {
		return nil, fmt.Errorf("%s.%s: variadic methods are not supported", class, name)
	}
	switch {
	case t.NumOut() == 1 && t.Out(0) != errorType:
	case t.NumOut() == 2 && t.Out(1) == errorType:
		m.errOut = true
	default:
		return nil, fmt.Errorf("%s.%s: must return T or (T, error)", class, name)
	}
	return m, nil
}

// NumParams is the number of non-context parameters.
func (m *Method) NumParams() int { return len(m.params) }

// Param returns the type of the i-th non-context parameter.
func (m *Method) Param(i int) reflect.Type { return m.params[i] }

// Out is the method's value result type.
func (m *Method) Out() reflect.Type { return m.fn.Type().Out(0) }

// Call converts args into the parameter types and invokes the method.
func (m *Method) Call(ctx context.Context, args []any) (any, error) {
	if len(args) != len(m.params) {
		return nil, fmt.Errorf("%s.%s: expected %d arguments, got %d", m.Class, m.Name, len(m.params), len(args))
	}
	in := make([]reflect.Value, 0, len(args)+1)
	if m.hasCtx {
		in = append(in, reflect.ValueOf(ctx))
	}
	for i, raw := range args {
		v, err := Convert(raw, m.params[i])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: argument %d: %w", m.Class, m.Name, i, err)
		}
		in = append(in, v)
	}
	out := m.fn.Call(in)
	if m.errOut && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return valueOf(out[0]), nil
}

// valueOf unwraps a reflected result, mapping nil pointers, maps, slices and
// interfaces to an untyped nil so the executor sees GraphQL null.
func valueOf(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

// Methods is the registry of business methods addressed by class and method
// name. It is safe for concurrent use.
type Methods struct {
	mu      sync.RWMutex
	methods map[string]*Method
}

func NewMethods() *Methods {
	return &Methods{methods: make(map[string]*Method)}
}

func methodKey(class, method string) string { return class + "#" + method }

// Register adds fn under class and method.
func (r *Methods) Register(class, method string, fn any) error {
	m, err := newMethod(class, method, reflect.ValueOf(fn))
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.methods[methodKey(class, method)] = m
	return nil
}

// RegisterService adds every exported method of receiver under class. A
// method is reachable both by its Go name and by its name with a lowercase
// first letter.
func (r *Methods) RegisterService(class string, receiver any) error {
	v := reflect.ValueOf(receiver)
	t := v.Type()
	var errs []error
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		m, err := newMethod(class, name, v.Method(i))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		r.mu.Lock()
		r.methods[methodKey(class, name)] = m
		r.methods[methodKey(class, lowerFirst(name))] = m
		r.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Lookup returns the method registered under class and method.
func (r *Methods) Lookup(class, method string) (*Method, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.methods[methodKey(class, method)]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, class, method)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	if r[0] >= 'A' && r[0] <= 'Z' {
		r[0] += 'a' - 'A'
	}
	return string(r)
}

// Convert turns an executor value (scalars, map[string]any, []any) into a
// value of type t. Values already assignable are passed through.
func Convert(raw any, t reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if t.Kind() == reflect.Interface && rv.Type().Implements(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) && sameKindFamily(rv.Kind(), t.Kind()) {
		return rv.Convert(t), nil
	}
	out := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numberHook,
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

func sameKindFamily(a, b reflect.Kind) bool {
	num := func(k reflect.Kind) bool {
		return k >= reflect.Int && k <= reflect.Float64
	}
	if num(a) && num(b) {
		return true
	}
	return a == b
}

var (
	decimalType = reflect.TypeOf(decimal.Decimal{})
	bigIntType  = reflect.TypeOf(big.Int{})
)

// numberHook decodes JSON-ish numbers into decimal.Decimal and big.Int.
func numberHook(from, to reflect.Type, data any) (any, error) {
	switch to {
	case decimalType:
		switch v := data.(type) {
		case decimal.Decimal:
			return v, nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case float32:
			return decimal.NewFromFloat32(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case int32:
			return decimal.NewFromInt32(v), nil
		case int64:
			return decimal.NewFromInt(v), nil
		case string:
			return decimal.NewFromString(v)
		}
	case bigIntType:
		switch v := data.(type) {
		case int:
			return *big.NewInt(int64(v)), nil
		case int32:
			return *big.NewInt(int64(v)), nil
		case int64:
			return *big.NewInt(v), nil
		case decimal.Decimal:
			return *v.BigInt(), nil
		case string:
			n, ok := new(big.Int).SetString(v, 10)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", v)
			}
			return *n, nil
		}
	}
	// decimal defaults feeding plain numeric parameters
	if d, ok := data.(decimal.Decimal); ok {
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return d.IntPart(), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return uint64(d.IntPart()), nil
		case reflect.Float32, reflect.Float64:
			return d.InexactFloat64(), nil
		case reflect.String:
			return d.String(), nil
		}
	}
	return data, nil
}
