package datafetcher

import (
	"reflect"
	"strings"
	"sync"
	"unicode"
)

// Property reads a named property off the parent value. Lookup order on
// structs: the exported field named PropertyName, the exported field named
// after the GraphQL name, a field whose json tag matches, then a
// zero-argument getter method. Maps are read by key.
type Property struct {
	Name         string
	PropertyName string
}

func NewProperty(name, propertyName string) *Property {
	if propertyName == "" {
		propertyName = name
	}
	return &Property{Name: name, PropertyName: propertyName}
}

func (p *Property) Get(env Environment) (any, error) {
	return readProperty(env.Source, p.Name, p.PropertyName), nil
}

type accessorKey struct {
	t    reflect.Type
	name string
	prop string
}

// accessor reads one property from a value of a fixed type.
type accessor func(v reflect.Value) reflect.Value

var accessors sync.Map // accessorKey -> accessor (nil accessor means absent)

func readProperty(source any, name, prop string) any {
	if source == nil {
		return nil
	}
	v := reflect.ValueOf(source)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	if m, ok := source.(map[string]any); ok {
		if val, ok := m[prop]; ok {
			return val
		}
		return m[name]
	}

	key := accessorKey{t: v.Type(), name: name, prop: prop}
	acc, ok := accessors.Load(key)
	if !ok {
		acc, _ = accessors.LoadOrStore(key, buildAccessor(v.Type(), name, prop))
	}
	fn := acc.(accessor)
	if fn == nil {
		return nil
	}
	out := fn(v)
	if !out.IsValid() {
		return nil
	}
	return out.Interface()
}

func buildAccessor(t reflect.Type, name, prop string) accessor {
	// Getter methods may be declared on the pointer receiver.
	for _, m := range getterNames(name, prop) {
		if method, ok := t.MethodByName(m); ok && isGetter(method.Type, 1) {
			idx := method.Index
			return func(v reflect.Value) reflect.Value { return v.Method(idx).Call(nil)[0] }
		}
	}

	base := t
	depth := 0
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
		depth++
	}
	switch base.Kind() {
	case reflect.Map:
		if base.Key().Kind() != reflect.String {
			return nil
		}
		return func(v reflect.Value) reflect.Value {
			v = indirect(v, depth)
			if !v.IsValid() {
				return v
			}
			if out := v.MapIndex(reflect.ValueOf(prop).Convert(base.Key())); out.IsValid() {
				return out
			}
			return v.MapIndex(reflect.ValueOf(name).Convert(base.Key()))
		}
	case reflect.Struct:
		if index, ok := structField(base, name, prop); ok {
			return func(v reflect.Value) reflect.Value {
				v = indirect(v, depth)
				if !v.IsValid() {
					return v
				}
				f, err := v.FieldByIndexErr(index)
				if err != nil {
					return reflect.Value{}
				}
				return f
			}
		}
		for _, m := range getterNames(name, prop) {
			if method, ok := base.MethodByName(m); ok && isGetter(method.Type, 1) {
				idx := method.Index
				return func(v reflect.Value) reflect.Value {
					v = indirect(v, depth)
					if !v.IsValid() {
						return v
					}
					return v.Method(idx).Call(nil)[0]
				}
			}
		}
	}
	return nil
}

func structField(t reflect.Type, name, prop string) ([]int, bool) {
	for _, candidate := range []string{prop, exportedName(prop), exportedName(name)} {
		if f, ok := t.FieldByName(candidate); ok && f.IsExported() {
			return f.Index, true
		}
	}
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("json"), ",")[0]
		if tag == prop || tag == name {
			return f.Index, true
		}
	}
	return nil, false
}

func getterNames(name, prop string) []string {
	return []string{exportedName(prop), "Get" + exportedName(prop), exportedName(name), "Get" + exportedName(name)}
}

// isGetter reports whether a method type takes only its receiver (in
// parameters, including receiver) and returns one value.
func isGetter(t reflect.Type, in int) bool {
	return t.NumIn() == in && t.NumOut() == 1
}

func indirect(v reflect.Value, depth int) reflect.Value {
	for i := 0; i < depth; i++ {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func exportedName(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
