// Package resolver maps runtime values of interface-typed fields onto the
// concrete object types that serialize them.
package resolver

import (
	"fmt"
	"reflect"
	"sync"

	classes "github.com/hanpama/gqlboot/internal/classes"
)

// Named is implemented by values that know their GraphQL object type.
type Named interface {
	GraphQLTypeName() string
}

// TypeResolver returns the concrete object type name for a value of an
// abstract type.
type TypeResolver interface {
	ResolveType(value any) (string, error)
}

// OutputRegistry records, for every compiled object type, the runtime class
// backing it and the interfaces it implements. Entries are added while
// types are compiled, so resolvers created earlier observe later types.
type OutputRegistry struct {
	mu         sync.RWMutex
	byClass    map[string]string
	implements map[string]map[string]struct{} // object type -> interfaces
}

func NewOutputRegistry() *OutputRegistry {
	return &OutputRegistry{
		byClass:    make(map[string]string),
		implements: make(map[string]map[string]struct{}),
	}
}

// Register records that values of class serialize as objectType.
func (r *OutputRegistry) Register(class, objectType string, interfaces ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if class != "" {
		r.byClass[class] = objectType
	}
	set := r.implements[objectType]
	if set == nil {
		set = make(map[string]struct{})
		r.implements[objectType] = set
	}
	for _, i := range interfaces {
		set[i] = struct{}{}
	}
}

// ObjectType returns the object type registered for class.
func (r *OutputRegistry) ObjectType(class string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byClass[class]
	return t, ok
}

// Implements reports whether objectType was registered with iface.
func (r *OutputRegistry) Implements(objectType, iface string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.implements[objectType][iface]
	return ok
}

// Interface resolves values of one interface type.
type Interface struct {
	Name     string
	registry *OutputRegistry
}

func NewInterface(name string, registry *OutputRegistry) *Interface {
	return &Interface{Name: name, registry: registry}
}

func (i *Interface) ResolveType(value any) (string, error) {
	name, err := typeNameOf(value, i.registry)
	if err != nil {
		return "", fmt.Errorf("interface %s: %w", i.Name, err)
	}
	if !i.registry.Implements(name, i.Name) {
		return "", fmt.Errorf("interface %s: type %s does not implement it", i.Name, name)
	}
	return name, nil
}

func typeNameOf(value any, registry *OutputRegistry) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", fmt.Errorf("cannot resolve the type of null")
	case Named:
		return v.GraphQLTypeName(), nil
	case map[string]any:
		if n, ok := v["__typename"].(string); ok {
			return n, nil
		}
		return "", fmt.Errorf("map value has no __typename")
	}
	t := reflect.TypeOf(value)
	for {
		if name, ok := registry.ObjectType(classes.NameOf(t)); ok {
			return name, nil
		}
		if t.Kind() != reflect.Pointer {
			break
		}
		t = t.Elem()
	}
	return "", fmt.Errorf("no object type registered for class %s", classes.NameOf(reflect.TypeOf(value)))
}
