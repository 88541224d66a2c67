package schema

var stringType = &Type{
	Name:        "String",
	Kind:        TypeKindScalar,
	Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
}

var intType = &Type{
	Name:        "Int",
	Kind:        TypeKindScalar,
	Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
}

var floatType = &Type{
	Name:        "Float",
	Kind:        TypeKindScalar,
	Description: "The `Float` scalar type represents signed double-precision fractional values.",
}

var booleanType = &Type{
	Name:        "Boolean",
	Kind:        TypeKindScalar,
	Description: "The `Boolean` scalar type represents `true` or `false`.",
}

var idType = &Type{
	Name:        "ID",
	Kind:        TypeKindScalar,
	Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
}

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        &TypeRef{Kind: TypeRefKindNonNull, OfType: &TypeRef{Kind: TypeRefKindNamed, Named: "Boolean"}},
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        &TypeRef{Kind: TypeRefKindNonNull, OfType: &TypeRef{Kind: TypeRefKindNamed, Named: "Boolean"}},
		},
	},
	Locations:    []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	IsRepeatable: false,
}

var bigDecimalType = &Type{
	Name:        "BigDecimal",
	Kind:        TypeKindScalar,
	Description: "Arbitrary precision signed decimal number, serialized as a JSON number.",
}

var bigIntegerType = &Type{
	Name:        "BigInteger",
	Kind:        TypeKindScalar,
	Description: "Arbitrary precision signed whole number, serialized as a JSON number.",
}

var dateTimeType = &Type{
	Name:        "DateTime",
	Kind:        TypeKindScalar,
	Description: "An RFC 3339 timestamp, serialized as a string.",
}

// specifiedScalars are always present in a built schema.
var specifiedScalars = []*Type{stringType, intType, floatType, booleanType, idType}

// extendedScalars are added to a schema only when something references them.
var extendedScalars = []*Type{bigDecimalType, bigIntegerType, dateTimeType}

// IsSpecifiedScalar reports whether name is one of the five scalars every
// GraphQL schema carries.
func IsSpecifiedScalar(name string) bool {
	for _, t := range specifiedScalars {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ScalarType returns the scalar type called name. Well-known scalars share
// one definition; any other name yields a fresh custom scalar.
func ScalarType(name string) *Type {
	for _, t := range specifiedScalars {
		if t.Name == name {
			return t
		}
	}
	for _, t := range extendedScalars {
		if t.Name == name {
			return t
		}
	}
	return NewType(name, TypeKindScalar, "")
}
