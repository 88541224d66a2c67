package schema

import (
	"fmt"
	"sort"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

// ParseSDL loads and validates schema definition language documents and
// converts the result into a Schema. Built-in scalars and directives come
// from this package so rendered output matches bootstrapped schemas.
func ParseSDL(sources map[string]string) (*Schema, error) {
	srcs := make([]*ast.Source, 0, len(sources))
	for _, name := range sortedNames(sources) {
		srcs = append(srcs, &ast.Source{Name: name, Input: sources[name]})
	}
	doc, err := gqlparser.LoadSchema(srcs...)
	if err != nil {
		return nil, fmt.Errorf("parse sdl: %w", err)
	}

	s := NewSchema(doc.Description)
	for _, t := range specifiedScalars {
		s.AddType(t)
	}
	s.AddDirective(includeDirective).AddDirective(skipDirective)
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
	}

	for name, def := range doc.Types {
		if isPrelude(def.Position) {
			continue
		}
		s.AddType(typeFromDefinition(name, def))
	}
	for name, d := range doc.Directives {
		if isPrelude(d.Position) {
			continue
		}
		dir := NewDirective(name, d.Description).SetRepeatable(d.IsRepeatable)
		for _, loc := range d.Locations {
			dir.Locations = append(dir.Locations, string(loc))
		}
		for _, a := range d.Arguments {
			dir.AddArgument(inputValueFromDefinition(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
		}
		s.AddDirective(dir)
	}
	collectPossibleTypes(s)
	return s, nil
}

func isPrelude(pos *ast.Position) bool {
	return pos != nil && pos.Src != nil && pos.Src.BuiltIn
}

func typeFromDefinition(name string, def *ast.Definition) *Type {
	var kind TypeKind
	switch def.Kind {
	case ast.Scalar:
		kind = TypeKindScalar
	case ast.Object:
		kind = TypeKindObject
	case ast.Interface:
		kind = TypeKindInterface
	case ast.Union:
		kind = TypeKindUnion
	case ast.Enum:
		kind = TypeKindEnum
	case ast.InputObject:
		kind = TypeKindInputObject
	}
	t := NewType(name, kind, def.Description)
	t.Interfaces = append(t.Interfaces, def.Interfaces...)
	if kind == TypeKindUnion {
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	}
	if d := def.Directives.ForName("oneOf"); d != nil {
		t.SetOneOf(true)
	}
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if a := d.Arguments.ForName("url"); a != nil && a.Value != nil {
			url := a.Value.Raw
			t.SpecifiedByURL = &url
		}
	}
	for _, v := range def.EnumValues {
		ev := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecation(v.Directives); ok {
			ev.Deprecate(reason)
		}
		t.AddEnumValue(ev)
	}
	for _, f := range def.Fields {
		if kind == TypeKindInputObject {
			t.AddInputField(inputValueFromDefinition(f.Name, f.Description, f.Type, f.DefaultValue, f.Directives))
			continue
		}
		if len(f.Name) > 1 && f.Name[:2] == "__" {
			continue
		}
		field := NewField(f.Name, f.Description, typeRefFromAST(f.Type))
		for _, a := range f.Arguments {
			field.AddArgument(inputValueFromDefinition(a.Name, a.Description, a.Type, a.DefaultValue, a.Directives))
		}
		if reason, ok := deprecation(f.Directives); ok {
			field.Deprecate(reason)
		}
		t.AddField(field)
	}
	return t
}

func inputValueFromDefinition(name, desc string, typ *ast.Type, def *ast.Value, dirs ast.DirectiveList) *InputValue {
	v := NewInputValue(name, desc, typeRefFromAST(typ))
	if def != nil {
		if val, err := def.Value(nil); err == nil {
			v.SetDefault(val)
		}
	}
	if reason, ok := deprecation(dirs); ok {
		v.Deprecate(reason)
	}
	return v
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if a := d.Arguments.ForName("reason"); a != nil && a.Value != nil {
		return a.Value.Raw, true
	}
	return "", true
}

func typeRefFromAST(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(typeRefFromAST(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func sortedNames(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
