package bootstrap

import (
	model "github.com/hanpama/gqlboot/internal/model"
	schema "github.com/hanpama/gqlboot/internal/schema"
)

// reference picks the type a field is exposed as. A global mapping on the
// value type wins over a mapping declared on the field.
func reference(f model.Field) model.Reference {
	if f.Reference.HasMapping() {
		return *f.Reference.Mapping.Reference
	}
	if f.HasMapping() {
		return *f.Mapping.Reference
	}
	return f.Reference
}

// typeRef is the full, wrapped type of a field, argument or input field.
func (c *compiler) typeRef(f model.Field) *schema.TypeRef {
	return wrap(c.namedType(reference(f)), f.Array, f.NotNull)
}

// namedType resolves a reference to a named type. Types that are not built
// yet are referenced by name and resolved when the schema is built; an
// unknown kind is treated the same way.
func (c *compiler) namedType(ref model.Reference) *schema.TypeRef {
	switch ref.Type {
	case model.ReferenceTypeScalar:
		return schema.NamedType(c.scalar(ref.Name).Name)
	case model.ReferenceTypeEnum:
		if e, ok := c.enums[ref.ClassName]; ok {
			return schema.NamedType(e.Name)
		}
	}
	return schema.NamedType(ref.Name)
}

// scalar returns the scalar called name. Scalars other than the five
// specified ones are collected so the schema carries their definitions.
func (c *compiler) scalar(name string) *schema.Type {
	if t, ok := c.scalars[name]; ok {
		return t
	}
	t := schema.ScalarType(name)
	if !schema.IsSpecifiedScalar(name) {
		c.scalars[name] = t
	}
	return t
}

// wrap applies collection and nullability wrappers around base: the element
// becomes non-null for non-empty arrays, one list per array level, and the
// whole type non-null last.
func wrap(base *schema.TypeRef, array *model.Array, notNull bool) *schema.TypeRef {
	t := base
	if array != nil && array.Depth > 0 {
		if array.NotEmpty {
			t = schema.NonNullType(t)
		}
		for i := 0; i < array.Depth; i++ {
			t = schema.ListType(t)
		}
	}
	if notNull {
		t = schema.NonNullType(t)
	}
	return t
}
