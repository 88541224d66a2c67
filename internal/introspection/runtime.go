// Package introspection answers __schema and __type selections over a
// compiled schema and hands every other field to the wrapped runtime.
package introspection

import (
	"context"
	"sort"

	executor "github.com/hanpama/gqlboot/internal/executor"
	schema "github.com/hanpama/gqlboot/internal/schema"
	visibility "github.com/hanpama/gqlboot/internal/visibility"
)

// Wrapped is a runtime together with the schema it must be executed against.
type Wrapped struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap extends sch with the introspection types and root fields. Fields the
// policy hides are left out of every listing. When the policy disables
// introspection, base and sch are returned unchanged.
func Wrap(base executor.Runtime, sch *schema.Schema, policy *visibility.Policy) *Wrapped {
	if !policy.Introspectable() {
		return &Wrapped{Runtime: base, Schema: sch}
	}
	return &Wrapped{
		Runtime: &runtime{base: base, schema: sch, policy: policy},
		Schema:  extend(sch),
	}
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
	policy *visibility.Policy
}

var _ executor.RequestScoper = (*runtime)(nil)

func (r *runtime) BeginRequest(ctx context.Context) context.Context {
	if s, ok := r.base.(executor.RequestScoper); ok {
		return s.BeginRequest(ctx)
	}
	return ctx
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	var (
		v  any
		ok bool
	)
	switch src := source.(type) {
	case *schema.Schema:
		v, ok = r.schemaField(src, field)
	case *schema.Type:
		v, ok = r.typeField(src, field, args)
	case *schema.TypeRef:
		v, ok = r.typeRefField(src, field, args)
	case *schema.Field:
		v, ok = fieldField(src, field, args)
	case *schema.InputValue:
		v, ok = inputValueField(r.schema, src, field)
	case *schema.EnumValue:
		v, ok = enumValueField(src, field)
	case *schema.Directive:
		v, ok = directiveField(src, field, args)
	}
	if ok {
		return v, nil
	}

	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	return r.base.ResolveSync(ctx, objectType, field, source, args)
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	return r.base.ResolveType(ctx, abstractType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typ string, value any) (any, error) {
	return r.base.SerializeLeafValue(ctx, typ, value)
}

func (r *runtime) schemaField(s *schema.Schema, field string) (any, bool) {
	switch field {
	case "types":
		out := make([]*schema.Type, 0, len(s.Types))
		for _, t := range s.Types {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, true
	case "queryType":
		return orNil(s.GetQueryType()), true
	case "mutationType":
		return orNil(s.GetMutationType()), true
	case "subscriptionType":
		return orNil(s.GetSubscriptionType()), true
	case "directives":
		out := make([]*schema.Directive, 0, len(s.Directives))
		for _, d := range s.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, true
	case "description":
		return s.Description, true
	}
	return nil, false
}

func (r *runtime) typeField(t *schema.Type, field string, args map[string]any) (any, bool) {
	switch field {
	case "kind":
		return string(t.Kind), true
	case "name":
		return t.Name, true
	case "description":
		return t.Description, true
	case "specifiedByURL":
		return t.SpecifiedByURL, true
	case "fields":
		return r.fields(t, includeDeprecated(args)), true
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, true
		}
		return r.named(t.Interfaces), true
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil, true
		}
		return r.named(t.PossibleTypes), true
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, true
		}
		return enumValues(t.EnumValues, includeDeprecated(args)), true
	case "inputFields":
		return r.inputFields(t, includeDeprecated(args)), true
	case "isOneOf":
		return t.OneOf, true
	case "ofType":
		// named types are never wrappers
		return nil, true
	}
	return nil, false
}

// fields lists the visible fields of an object or interface type.
func (r *runtime) fields(t *schema.Type, deprecated bool) []*schema.Field {
	if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
		return nil
	}
	out := []*schema.Field{}
	for _, f := range t.GetOrderedFields() {
		if f.IsDeprecated && !deprecated {
			continue
		}
		if !r.policy.FieldVisible(t.Name, f.Name) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *runtime) inputFields(t *schema.Type, deprecated bool) []*schema.InputValue {
	if t.Kind != schema.TypeKindInputObject {
		return nil
	}
	out := []*schema.InputValue{}
	for _, v := range inputValues(t.GetOrderedInputFields(), deprecated) {
		if r.policy.FieldVisible(t.Name, v.Name) {
			out = append(out, v)
		}
	}
	return out
}

func (r *runtime) named(names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := r.schema.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *runtime) typeRefField(ref *schema.TypeRef, field string, args map[string]any) (any, bool) {
	if ref.Kind == schema.TypeRefKindNonNull || ref.Kind == schema.TypeRefKindList {
		switch field {
		case "kind":
			return string(ref.Kind), true
		case "ofType":
			return ref.OfType, true
		}
		return nil, true
	}
	// a named reference answers for the type it names
	if field == "name" {
		return ref.Named, true
	}
	if t := r.schema.Types[ref.Named]; t != nil {
		return r.typeField(t, field, args)
	}
	return nil, true
}

func fieldField(f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return f.Description, true
	case "args":
		return inputValues(f.GetOrderedArguments(), includeDeprecated(args)), true
	case "type":
		return f.Type, true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return reason(f.IsDeprecated, f.DeprecationReason), true
	}
	return nil, false
}

func inputValueField(s *schema.Schema, v *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "description":
		return v.Description, true
	case "type":
		return v.Type, true
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, true
		}
		return schema.RenderDefault(s, v), true
	case "isDeprecated":
		return v.IsDeprecated, true
	case "deprecationReason":
		return reason(v.IsDeprecated, v.DeprecationReason), true
	}
	return nil, false
}

func enumValueField(v *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "description":
		return v.Description, true
	case "isDeprecated":
		return v.IsDeprecated, true
	case "deprecationReason":
		return reason(v.IsDeprecated, v.DeprecationReason), true
	}
	return nil, false
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return d.Description, true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		locs := append([]string(nil), d.Locations...)
		sort.Strings(locs)
		return locs, true
	case "args":
		return inputValues(d.Arguments, includeDeprecated(args)), true
	}
	return nil, false
}

func inputValues(in []*schema.InputValue, deprecated bool) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range in {
		if v.IsDeprecated && !deprecated {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func enumValues(in []*schema.EnumValue, deprecated bool) []*schema.EnumValue {
	out := []*schema.EnumValue{}
	for _, v := range in {
		if v.IsDeprecated && !deprecated {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// orNil keeps a missing root from reaching the executor as a typed nil.
func orNil(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}

func reason(deprecated bool, text string) *string {
	if !deprecated {
		return nil
	}
	return &text
}

func includeDeprecated(args map[string]any) bool {
	b, _ := args["includeDeprecated"].(bool)
	return b
}
