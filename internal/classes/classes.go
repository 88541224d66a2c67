// Package classes maps runtime class identifiers used by schema models onto
// Go types. A class identifier is the package-qualified type name, e.g.
// "time.Time" or "github.com/acme/pets.Pet"; predeclared types use their
// bare name ("string", "int64").
package classes

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var ErrUnknownClass = errors.New("unknown class")

// Loader resolves a class identifier to a Go type.
type Loader interface {
	LoadClass(name string) (reflect.Type, error)
}

// Collection identifiers for model arrays declared against an abstract
// collection rather than a concrete slice type.
const (
	List       = "list"
	Set        = "set"
	Collection = "collection"
)

// Registry is a Loader backed by explicit registrations. It is safe for
// concurrent use.
type Registry struct {
	mu          sync.RWMutex
	types       map[string]reflect.Type
	collections map[string]struct{}
}

// NewRegistry returns a registry that already knows the predeclared types,
// time.Time, decimal.Decimal, big.Int and the abstract collections.
func NewRegistry() *Registry {
	r := &Registry{
		types:       make(map[string]reflect.Type),
		collections: make(map[string]struct{}),
	}
	for _, v := range []any{
		"", false, int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0), time.Time{}, decimal.Decimal{}, big.Int{}, big.Float{},
	} {
		r.Register(reflect.TypeOf(v))
	}
	for _, c := range []string{List, Set, Collection} {
		r.RegisterCollection(c)
	}
	return r
}

// Register makes t loadable under NameOf(t).
func (r *Registry) Register(t reflect.Type) *Registry {
	return r.RegisterAs(NameOf(t), t)
}

// RegisterAs makes t loadable under an explicit identifier.
func (r *Registry) RegisterAs(name string, t reflect.Type) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[name] = t
	return r
}

// RegisterCollection declares name as an abstract collection whose values
// are materialized as slices.
func (r *Registry) RegisterCollection(name string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[name] = struct{}{}
	return r
}

func (r *Registry) LoadClass(name string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.types[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
}

// IsCollection reports whether name was registered as an abstract collection.
func (r *Registry) IsCollection(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.collections[name]
	return ok
}

// CollectionType returns the concrete type to decode a collection literal
// into. A concrete slice or array class is used as-is; an abstract
// collection becomes a slice of elem, or []any when elem is unknown.
func (r *Registry) CollectionType(name string, elem reflect.Type) (reflect.Type, error) {
	if r.IsCollection(name) {
		if elem == nil {
			elem = reflect.TypeOf((*any)(nil)).Elem()
		}
		return reflect.SliceOf(elem), nil
	}
	t, err := r.LoadClass(name)
	if err != nil {
		return nil, err
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return t, nil
	}
	return nil, fmt.Errorf("class %s is not a collection", name)
}

// Of returns the reflect.Type of T.
func Of[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// NameOf returns the class identifier for t.
func NameOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

var (
	decimalType  = reflect.TypeOf(decimal.Decimal{})
	bigIntType   = reflect.TypeOf(big.Int{})
	bigFloatType = reflect.TypeOf(big.Float{})
)

// IsNumberLike reports whether values of t are numbers: Go numeric kinds,
// decimal.Decimal and the math/big number types.
func IsNumberLike(t reflect.Type) bool {
	t = deref(t)
	if t == nil {
		return false
	}
	switch t {
	case decimalType, bigIntType, bigFloatType:
		return true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// IsBoolean reports whether t is a boolean kind.
func IsBoolean(t reflect.Type) bool {
	t = deref(t)
	return t != nil && t.Kind() == reflect.Bool
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
