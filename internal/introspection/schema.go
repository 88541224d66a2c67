package introspection

import (
	schema "github.com/hanpama/gqlboot/internal/schema"
)

// extend returns a copy of s carrying the meta types and a query root with
// __schema and __type. s itself is not modified.
func extend(s *schema.Schema) *schema.Schema {
	out := &schema.Schema{
		Description:      s.Description,
		QueryType:        s.QueryType,
		MutationType:     s.MutationType,
		SubscriptionType: s.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(s.Types)+8),
		Directives:       s.Directives,
	}
	for name, t := range s.Types {
		out.Types[name] = t
	}
	for _, t := range metaTypes() {
		out.Types[t.Name] = t
	}

	if q := s.GetQueryType(); q != nil {
		root := *q
		root.Fields = append(append([]*schema.Field(nil), q.Fields...),
			schema.NewField("__schema", "Access the current type schema of this server.", nn(named("__Schema"))),
			schema.NewField("__type", "Request the type information of a single type.", named("__Type")).
				AddArgument(schema.NewInputValue("name", "The name of the type to look up.", nn(named("String")))),
		)
		out.Types[root.Name] = &root
	}
	return out
}

func named(name string) *schema.TypeRef { return schema.NamedType(name) }

func nn(t *schema.TypeRef) *schema.TypeRef { return schema.NonNullType(t) }

// listOf is [name!].
func listOf(name string) *schema.TypeRef { return schema.ListType(nn(named(name))) }

func withDeprecated(f *schema.Field) *schema.Field {
	return f.AddArgument(schema.NewInputValue("includeDeprecated", "", named("Boolean")).SetDefault(false))
}

func metaTypes() []*schema.Type {
	return []*schema.Type{
		schema.NewType("__Schema", schema.TypeKindObject, "A GraphQL Schema defines the capabilities of a GraphQL server.").
			AddField(schema.NewField("description", "", named("String"))).
			AddField(schema.NewField("types", "A list of all types supported by this server.", nn(listOf("__Type")))).
			AddField(schema.NewField("queryType", "The type that query operations will be rooted at.", nn(named("__Type")))).
			AddField(schema.NewField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.", named("__Type"))).
			AddField(schema.NewField("subscriptionType", "If this server support subscription, the type that subscription operations will be rooted at.", named("__Type"))).
			AddField(schema.NewField("directives", "A list of all directives supported by this server.", nn(listOf("__Directive")))),

		schema.NewType("__Type", schema.TypeKindObject, "The fundamental unit of any GraphQL Schema is the type.").
			AddField(schema.NewField("kind", "", nn(named("__TypeKind")))).
			AddField(schema.NewField("name", "", named("String"))).
			AddField(schema.NewField("description", "", named("String"))).
			AddField(schema.NewField("specifiedByURL", "", named("String"))).
			AddField(withDeprecated(schema.NewField("fields", "", listOf("__Field")))).
			AddField(schema.NewField("interfaces", "", listOf("__Type"))).
			AddField(schema.NewField("possibleTypes", "", listOf("__Type"))).
			AddField(withDeprecated(schema.NewField("enumValues", "", listOf("__EnumValue")))).
			AddField(withDeprecated(schema.NewField("inputFields", "", listOf("__InputValue")))).
			AddField(schema.NewField("ofType", "", named("__Type"))).
			AddField(schema.NewField("isOneOf", "", named("Boolean"))),

		schema.NewType("__Field", schema.TypeKindObject, "").
			AddField(schema.NewField("name", "", nn(named("String")))).
			AddField(schema.NewField("description", "", named("String"))).
			AddField(withDeprecated(schema.NewField("args", "", nn(listOf("__InputValue"))))).
			AddField(schema.NewField("type", "", nn(named("__Type")))).
			AddField(schema.NewField("isDeprecated", "", nn(named("Boolean")))).
			AddField(schema.NewField("deprecationReason", "", named("String"))),

		schema.NewType("__InputValue", schema.TypeKindObject, "").
			AddField(schema.NewField("name", "", nn(named("String")))).
			AddField(schema.NewField("description", "", named("String"))).
			AddField(schema.NewField("type", "", nn(named("__Type")))).
			AddField(schema.NewField("defaultValue", "A GraphQL-formatted string representing the default value for this input value.", named("String"))).
			AddField(schema.NewField("isDeprecated", "", nn(named("Boolean")))).
			AddField(schema.NewField("deprecationReason", "", named("String"))),

		schema.NewType("__EnumValue", schema.TypeKindObject, "").
			AddField(schema.NewField("name", "", nn(named("String")))).
			AddField(schema.NewField("description", "", named("String"))).
			AddField(schema.NewField("isDeprecated", "", nn(named("Boolean")))).
			AddField(schema.NewField("deprecationReason", "", named("String"))),

		schema.NewType("__Directive", schema.TypeKindObject, "").
			AddField(schema.NewField("name", "", nn(named("String")))).
			AddField(schema.NewField("description", "", named("String"))).
			AddField(schema.NewField("isRepeatable", "", nn(named("Boolean")))).
			AddField(schema.NewField("locations", "", nn(listOf("__DirectiveLocation")))).
			AddField(withDeprecated(schema.NewField("args", "", nn(listOf("__InputValue"))))),

		enum("__TypeKind",
			"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"),
		enum("__DirectiveLocation",
			"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
			"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
			"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
			"INPUT_FIELD_DEFINITION"),
	}
}

func enum(name string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}
