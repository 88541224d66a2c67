package schema

import (
	"errors"
	"fmt"
	"sort"
)

// NewSchema returns an empty schema with no root types.
func NewSchema(description string) *Schema {
	return &Schema{
		Types:       make(map[string]*Type),
		Directives:  make(map[string]*Directive),
		Description: description,
	}
}

func (s *Schema) SetQueryType(name string) *Schema        { s.QueryType = name; return s }
func (s *Schema) SetMutationType(name string) *Schema     { s.MutationType = name; return s }
func (s *Schema) SetSubscriptionType(name string) *Schema { s.SubscriptionType = name; return s }

// AddType registers t under its name, replacing any previous entry.
func (s *Schema) AddType(t *Type) *Schema {
	s.Types[t.Name] = t
	return s
}

func (s *Schema) AddDirective(d *Directive) *Schema {
	s.Directives[d.Name] = d
	return s
}

func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description}
}

func (t *Type) AddField(f *Field) *Type           { t.Fields = append(t.Fields, f); return t }
func (t *Type) AddInterface(name string) *Type    { t.Interfaces = append(t.Interfaces, name); return t }
func (t *Type) AddPossibleType(name string) *Type { t.PossibleTypes = append(t.PossibleTypes, name); return t }
func (t *Type) AddEnumValue(v *EnumValue) *Type   { t.EnumValues = append(t.EnumValues, v); return t }
func (t *Type) AddInputField(v *InputValue) *Type { t.InputFields = append(t.InputFields, v); return t }
func (t *Type) SetOneOf(oneOf bool) *Type         { t.OneOf = oneOf; return t }

// GetField returns the field called name, or nil.
func (t *Type) GetField(name string) *Field {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasInterface reports whether t declares the named interface.
func (t *Type) HasInterface(name string) bool {
	for _, n := range t.Interfaces {
		if n == name {
			return true
		}
	}
	return false
}

// GetOrderedFields returns the fields in declaration order.
func (t *Type) GetOrderedFields() []*Field { return t.Fields }

// GetOrderedInputFields returns the input fields in declaration order.
func (t *Type) GetOrderedInputFields() []*InputValue { return t.InputFields }

func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

func (f *Field) SetAsync(async bool) *Field { f.Async = async; return f }

func (f *Field) AddArgument(a *InputValue) *Field {
	f.Arguments = append(f.Arguments, a)
	return f
}

func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

func (f *Field) GetOrderedArguments() []*InputValue { return f.Arguments }

func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

func (v *InputValue) SetDefault(value any) *InputValue { v.DefaultValue = value; return v }

func (v *InputValue) Deprecate(reason string) *InputValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

func (v *EnumValue) Deprecate(reason string) *EnumValue {
	v.IsDeprecated = true
	v.DeprecationReason = reason
	return v
}

func NewDirective(name, description string) *Directive {
	return &Directive{Name: name, Description: description}
}

func (d *Directive) SetRepeatable(r bool) *Directive { d.IsRepeatable = r; return d }

func (d *Directive) AddArgument(a *InputValue) *Directive {
	d.Arguments = append(d.Arguments, a)
	return d
}

// Builder collects root and additional types before the schema is
// finalized. Types reference each other by name only; Build resolves every
// name and rejects references that point nowhere.
type Builder struct {
	description  string
	query        *Type
	mutation     *Type
	subscription *Type
	types        []*Type
	directives   []*Directive
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Description(d string) *Builder   { b.description = d; return b }
func (b *Builder) Query(t *Type) *Builder          { b.query = t; return b }
func (b *Builder) Mutation(t *Type) *Builder       { b.mutation = t; return b }
func (b *Builder) Subscription(t *Type) *Builder   { b.subscription = t; return b }
func (b *Builder) Directive(d *Directive) *Builder { b.directives = append(b.directives, d); return b }

// AdditionalType adds a type that is not reachable from a root type.
func (b *Builder) AdditionalType(t *Type) *Builder {
	b.types = append(b.types, t)
	return b
}

func (b *Builder) AdditionalTypes(ts ...*Type) *Builder {
	b.types = append(b.types, ts...)
	return b
}

// QueryType returns the query root registered so far.
func (b *Builder) QueryType() *Type { return b.query }

// MutationType returns the mutation root registered so far.
func (b *Builder) MutationType() *Type { return b.mutation }

// Types returns the additional types registered so far.
func (b *Builder) Types() []*Type { return b.types }

// Build finalizes the schema.
func (b *Builder) Build() (*Schema, error) {
	if b.query == nil {
		return nil, errors.New("schema: query type is required")
	}
	s := NewSchema(b.description)
	for _, t := range specifiedScalars {
		s.AddType(t)
	}
	s.AddDirective(includeDirective).
		AddDirective(skipDirective)

	var errs []error
	add := func(t *Type) {
		if t == nil {
			return
		}
		if prev, ok := s.Types[t.Name]; ok && prev != t && !isBuiltinScalar(prev) {
			errs = append(errs, fmt.Errorf("schema: type %q is defined more than once", t.Name))
			return
		}
		s.AddType(t)
	}
	add(b.query)
	s.SetQueryType(b.query.Name)
	if b.mutation != nil {
		add(b.mutation)
		s.SetMutationType(b.mutation.Name)
	}
	if b.subscription != nil {
		add(b.subscription)
		s.SetSubscriptionType(b.subscription.Name)
	}
	for _, t := range b.types {
		add(t)
	}
	for _, d := range b.directives {
		s.AddDirective(d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	collectPossibleTypes(s)
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// collectPossibleTypes records every object type under the interfaces it
// implements.
func collectPossibleTypes(s *Schema) {
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := s.Types[name]
		if t.Kind != TypeKindObject {
			continue
		}
		for _, iface := range t.Interfaces {
			it := s.Types[iface]
			if it == nil || it.Kind != TypeKindInterface {
				continue
			}
			if !containsString(it.PossibleTypes, t.Name) {
				it.AddPossibleType(t.Name)
			}
		}
	}
}

// Validate checks that every named reference in s resolves to a type of a
// suitable kind.
func Validate(s *Schema) error {
	var errs []error
	if s.GetQueryType() == nil {
		errs = append(errs, fmt.Errorf("schema: query type %q is not defined", s.QueryType))
	}
	if s.MutationType != "" && s.GetMutationType() == nil {
		errs = append(errs, fmt.Errorf("schema: mutation type %q is not defined", s.MutationType))
	}
	names := make([]string, 0, len(s.Types))
	for name := range s.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := s.Types[name]
		for _, f := range t.Fields {
			errs = append(errs, checkRef(s, t.Name+"."+f.Name, f.Type, false)...)
			for _, a := range f.Arguments {
				errs = append(errs, checkRef(s, t.Name+"."+f.Name+"("+a.Name+")", a.Type, true)...)
			}
		}
		for _, v := range t.InputFields {
			errs = append(errs, checkRef(s, t.Name+"."+v.Name, v.Type, true)...)
		}
		for _, iface := range t.Interfaces {
			it := s.Types[iface]
			if it == nil {
				errs = append(errs, fmt.Errorf("schema: %s implements unknown interface %q", t.Name, iface))
			} else if it.Kind != TypeKindInterface {
				errs = append(errs, fmt.Errorf("schema: %s implements %q which is not an interface", t.Name, iface))
			}
		}
	}
	return errors.Join(errs...)
}

func checkRef(s *Schema, coord string, ref *TypeRef, input bool) []error {
	name := GetNamedType(ref)
	if name == "" {
		return []error{fmt.Errorf("schema: %s has no type", coord)}
	}
	t := s.Types[name]
	if t == nil {
		return []error{fmt.Errorf("schema: %s references unknown type %q", coord, name)}
	}
	switch t.Kind {
	case TypeKindScalar, TypeKindEnum:
		return nil
	case TypeKindInputObject:
		if !input {
			return []error{fmt.Errorf("schema: %s cannot output input type %q", coord, name)}
		}
	default:
		if input {
			return []error{fmt.Errorf("schema: %s cannot accept output type %q", coord, name)}
		}
	}
	return nil
}

func isBuiltinScalar(t *Type) bool {
	for _, b := range specifiedScalars {
		if b == t {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
